package sqlite3

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
	v0 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v0"
	v1 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v1"
	v2 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v2"
	"github.com/sirupsen/logrus"
)

type Migration interface {
	Run(ctx context.Context, tx utils.QueryWrapper) error
}

var migrationList = []Migration{
	&v0.Migration{},
	&v1.Migration{},
	&v2.Migration{},
}

func RunMigrations(ctx context.Context, tx utils.QueryWrapper) error {
	return runMigrations(ctx, tx, migrationList)
}

func runMigrations(ctx context.Context, tx utils.QueryWrapper, migrations []Migration) error {
	dbVersion, err := getDatabaseVersion(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to get db version: %w", err)
	}

	if dbVersion < 0 {
		logrus.Debug("Version table does not exist, running all migrations")
	} else {
		logrus.Debugf("DB Version is %v", dbVersion)
	}

	if dbVersion >= len(migrations) {
		return fmt.Errorf("db version %v is newer than the latest known version %v", dbVersion, len(migrations)-1)
	}

	for i := dbVersion + 1; i < len(migrations); i++ {
		logrus.Debugf("Running migration for version %v", i)

		if err := migrations[i].Run(ctx, tx); err != nil {
			return fmt.Errorf("failed to run migration %v: %w", i, err)
		}
	}

	if err := updateDBVersion(ctx, tx, len(migrations)-1); err != nil {
		return fmt.Errorf("failed to update db version: %w", err)
	}

	logrus.Debug("Migrations completed")

	return nil
}

// getDatabaseVersion returns -1 if the version table does not exist or the version information contained within.
func getDatabaseVersion(ctx context.Context, tx utils.QueryWrapper) (int, error) {
	query := fmt.Sprintf("SELECT `name` FROM sqlite_master WHERE `type` = 'table' AND `name` = '%v'", v0.VersionTableName)

	if _, err := utils.MapQueryRow[string](ctx, tx, query); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return -1, nil
		}

		return 0, err
	}

	versionQuery := fmt.Sprintf("SELECT `%v` FROM %v WHERE `%v` = 0", v0.VersionFieldVersion, v0.VersionTableName, v0.VersionFieldID)

	return utils.MapQueryRow[int](ctx, tx, versionQuery)
}

func updateDBVersion(ctx context.Context, tx utils.QueryWrapper, version int) error {
	query := fmt.Sprintf("UPDATE %v SET `%v` = ? WHERE `%v` = 0", v0.VersionTableName, v0.VersionFieldVersion, v0.VersionFieldID)

	return utils.ExecQueryAndCheckUpdatedNotZero(ctx, tx, query, version)
}
