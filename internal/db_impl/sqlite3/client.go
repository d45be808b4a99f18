package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
	"github.com/ProtonMail/draftsync/reporter"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Client stores draft states in a SQLite database. Writes are serialized; reads only wait for running writes.
type Client struct {
	db    *sql.DB
	lock  sync.RWMutex
	debug bool
	trace bool
}

// NewClient opens the database name.db of dir. The returned bool reports whether the file was created.
func NewClient(dir string, name string, debug, trace bool) (*Client, bool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, false, err
	}

	path := getDatabasePath(dir, name)

	exists, err := pathExists(path)
	if err != nil {
		return nil, false, err
	}

	sqlDB, err := sql.Open("sqlite3", getDatabaseConn(path))
	if err != nil {
		return nil, false, err
	}

	return &Client{db: sqlDB, debug: debug, trace: trace}, !exists, nil
}

func (c *Client) Init(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to enable db pragma: %w", err)
	}

	return c.transact(ctx, func(ctx context.Context, qw utils.QueryWrapper, entry *logrus.Entry) error {
		entry.Debug("Migrating draft state database")

		if err := RunMigrations(ctx, qw); err != nil {
			return fmt.Errorf("%w: %v", db.ErrMigrationFailed, err)
		}

		return nil
	})
}

func (c *Client) Read(ctx context.Context, op func(context.Context, db.ReadOnly) error) error {
	c.lock.RLock()
	defer c.lock.RUnlock()

	entry := c.newEntry("rd")

	if c.debug {
		entry.Debug("Begin read")
		defer entry.Debug("End read")
	}

	var rd db.ReadOnly = readOps{qw: c.wrap(c.db, entry)}

	if c.trace {
		rd = &utils.ReadTracer{RD: rd, Entry: entry}
	}

	return op(ctx, rd)
}

func (c *Client) Write(ctx context.Context, op func(context.Context, db.Transaction) error) error {
	return c.transact(ctx, func(ctx context.Context, qw utils.QueryWrapper, entry *logrus.Entry) error {
		var tx db.Transaction = &writeOps{readOps: readOps{qw: qw}, qw: qw}

		if c.trace {
			tx = &utils.WriteTracer{TX: tx, ReadTracer: utils.ReadTracer{RD: tx, Entry: entry}}
		}

		return op(ctx, tx)
	})
}

func (c *Client) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.db.Close()
}

// newEntry returns the log entry of one read or transaction. Debug mode tags it with a unique id.
func (c *Client) newEntry(kind string) *logrus.Entry {
	entry := logrus.WithField("pkg", "draftsync/db")

	if c.debug {
		entry = entry.WithField(kind, uuid.NewString())
	}

	return entry
}

// wrap logs the statements run through qw in debug mode.
func (c *Client) wrap(qw utils.QueryWrapper, entry *logrus.Entry) utils.QueryWrapper {
	if c.debug {
		return &utils.DebugQueryWrapper{QW: qw, Entry: entry}
	}

	return qw
}

// transact runs op in a transaction which is committed if op succeeds and rolled back if it fails or panics.
func (c *Client) transact(ctx context.Context, op func(context.Context, utils.QueryWrapper, *logrus.Entry) error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry := c.newEntry("tx")

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if c.debug {
		entry.Debug("Begin transaction")
	}

	defer func() {
		if v := recover(); v != nil {
			if err := tx.Rollback(); err != nil {
				panic(fmt.Errorf("rolling back while recovering (%v): %w", v, err))
			}

			panic(v)
		}
	}()

	if err := op(ctx, c.wrap(tx, entry), entry); err != nil {
		if c.debug {
			entry.WithError(err).Debug("Rolling back transaction")
		}

		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rolling back transaction (%v): %w", rerr, err)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		if !errors.Is(err, context.Canceled) {
			reporter.MessageWithContext(ctx, "Failed to commit draft state transaction", reporter.ErrorContext(err))
		}

		entry.WithError(err).Error("Failed to commit draft state transaction")

		return fmt.Errorf("%v: %w", err, db.ErrTransactionFailed)
	}

	if c.debug {
		entry.Debug("Transaction committed")
	}

	return nil
}

type Builder struct {
	debug bool
	trace bool
}

type Option interface {
	apply(builder *Builder)
}

type dbDebugOption struct{}

func (dbDebugOption) apply(builder *Builder) {
	builder.debug = true
}

type dbTraceOption struct{}

func (dbTraceOption) apply(builder *Builder) {
	builder.trace = true
}

// Trace enables db interface call tracing. Name of the called functions will be written to trace log.
func Trace() Option {
	return &dbTraceOption{}
}

// Debug enables logging of the SQL queries and their values. Written to debug log.
func Debug() Option {
	return &dbDebugOption{}
}

func NewBuilder(options ...Option) db.ClientInterface {
	builder := &Builder{}

	for _, opt := range options {
		opt.apply(builder)
	}

	return builder
}

func (b Builder) New(dir string, name string) (db.Client, bool, error) {
	return NewClient(dir, name, b.debug, b.trace)
}

func (Builder) Delete(dir string, name string) error {
	return db.DeleteDB(dir, name)
}

func getDatabasePath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%v.db", name))
}

func pathExists(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, nil
}

// uriPathEscaper escapes the characters which end the path of a sqlite URI filename or start an escape sequence.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func getDatabaseConn(path string) string {
	return fmt.Sprintf("file:%v?cache=shared&_journal=WAL&_busy_timeout=5000", uriPathEscaper.Replace(path))
}
