package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const deferredDeleteDirName = "deferred_delete"

// DeleteDB moves the files of the named database, its WAL and shm files included, to a directory of dir.
// A connection may still hold them open; they are removed by DeleteDeferredDBFiles when the syncer starts again.
func DeleteDB(dir, name string) error {
	deferredDir := filepath.Join(dir, deferredDeleteDirName)

	if err := os.MkdirAll(deferredDir, 0o700); err != nil {
		return fmt.Errorf("failed to create deferred delete dir: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, name+"*"))
	if err != nil {
		return fmt.Errorf("failed to match draft state db files: %w", err)
	}

	for _, file := range files {
		// Another database of the same name may already wait for deletion.
		if err := os.Rename(file, filepath.Join(deferredDir, uuid.NewString())); err != nil {
			return fmt.Errorf("failed to move draft state db file %q: %w", file, err)
		}
	}

	return nil
}

// DeleteDeferredDBFiles removes the files moved away by DeleteDB.
func DeleteDeferredDBFiles(dir string) error {
	if err := os.RemoveAll(filepath.Join(dir, deferredDeleteDirName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}
