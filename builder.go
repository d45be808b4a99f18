package draftsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ProtonMail/draftsync/async"
	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/internal/db_impl"
	"github.com/ProtonMail/draftsync/internal/remote"
	"github.com/ProtonMail/draftsync/internal/resolver"
	"github.com/ProtonMail/draftsync/internal/state"
	"github.com/ProtonMail/draftsync/internal/tracker"
	"github.com/ProtonMail/draftsync/internal/uploader"
	"github.com/ProtonMail/draftsync/observability"
	"github.com/ProtonMail/draftsync/reporter"
	"github.com/ProtonMail/draftsync/store"
	"github.com/sirupsen/logrus"
)

const (
	defaultUploadInterval = time.Second

	dbName = "drafts"
)

type syncerBuilder struct {
	dir                 string
	conn                connector.Connector
	storeBuilder        store.Builder
	storeOptions        []store.Option
	dbBuilder           db.ClientInterface
	passphrase          []byte
	uploadInterval      time.Duration
	reporter            reporter.Reporter
	observabilitySender observability.Sender
	panicHandler        async.PanicHandler
}

func newBuilder() *syncerBuilder {
	return &syncerBuilder{
		storeBuilder:   &store.BadgerStoreBuilder{},
		dbBuilder:      db_impl.NewSQLiteDB(),
		uploadInterval: defaultUploadInterval,
		reporter:       &reporter.NullReporter{},
		panicHandler:   async.NoopPanicHandler{},
	}
}

func (builder *syncerBuilder) storeDir() string {
	return filepath.Join(builder.dir, "store")
}

func (builder *syncerBuilder) dbDir() string {
	return filepath.Join(builder.dir, "db")
}

// remove deletes the draft store and the draft state database of the data directory.
func (builder *syncerBuilder) remove() error {
	if builder.dir == "" {
		return ErrNoDataDir
	}

	if err := builder.storeBuilder.Delete(builder.storeDir()); err != nil {
		return fmt.Errorf("failed to delete draft store: %w", err)
	}

	if err := builder.dbBuilder.Delete(builder.dbDir(), dbName); err != nil {
		return fmt.Errorf("failed to delete draft state database: %w", err)
	}

	return nil
}

func (builder *syncerBuilder) build() (*Syncer, error) {
	if builder.conn == nil {
		return nil, ErrNoConnector
	}

	if builder.uploadInterval <= 0 {
		return nil, fmt.Errorf("invalid upload interval %v", builder.uploadInterval)
	}

	if builder.dir == "" {
		dir, err := os.MkdirTemp("", "draftsync-*")
		if err != nil {
			return nil, err
		}

		builder.dir = dir
	}

	if err := os.MkdirAll(builder.dir, 0o700); err != nil {
		return nil, err
	}

	dbDir := builder.dbDir()

	if err := db.DeleteDeferredDBFiles(dbDir); err != nil {
		logrus.WithError(err).Error("Failed to remove old database files")
	}

	impl, err := builder.storeBuilder.New(builder.storeDir(), builder.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft store: %w", err)
	}

	drafts := store.NewDraftStore(impl, builder.storeOptions...)

	client, isNew, err := builder.dbBuilder.New(dbDir, dbName)
	if err != nil {
		if err := drafts.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close draft store")
		}

		return nil, fmt.Errorf("failed to open draft state database: %w", err)
	}

	syncer := &Syncer{
		dir:       builder.dir,
		conn:      builder.conn,
		drafts:    drafts,
		db:        client,
		reporter:  builder.reporter,
		obsSender: builder.observabilitySender,
	}

	if err := client.Init(syncer.context(context.Background())); err != nil {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close draft state database")
		}

		if err := drafts.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close draft store")
		}

		return nil, fmt.Errorf("failed to initialize draft state database: %w", err)
	}

	logrus.WithField("pkg", "draftsync").
		WithField("dir", builder.dir).
		WithField("newDB", isNew).
		Debug("Draft syncer storage opened")

	syncer.states = state.NewRepository(client, syncer.publish)
	syncer.resolver = resolver.New(drafts, syncer.states)
	syncer.tracker = tracker.New(syncer.states, syncer.resolver)
	syncer.remote = remote.New(builder.conn, drafts, syncer.states, syncer.resolver, syncer.tracker, syncer.publish)
	syncer.uploader = uploader.New(syncer.remote, syncer.states, builder.uploadInterval, syncer.publish, builder.panicHandler)

	return syncer, nil
}
