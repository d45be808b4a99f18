package draftsync

import (
	"time"

	"github.com/ProtonMail/draftsync/async"
	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/internal/db_impl"
	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3"
	"github.com/ProtonMail/draftsync/observability"
	"github.com/ProtonMail/draftsync/reporter"
	"github.com/ProtonMail/draftsync/store"
)

// Option represents a type that can be used to configure the syncer.
type Option interface {
	config(*syncerBuilder)
}

// WithDataDir instructs the syncer to keep draft contents and states in the given directory.
func WithDataDir(dir string) Option {
	return &withDataDir{
		dir: dir,
	}
}

type withDataDir struct {
	dir string
}

func (opt withDataDir) config(builder *syncerBuilder) {
	builder.dir = opt.dir
}

// WithConnector sets the connector used to reach the API. It is required.
func WithConnector(conn connector.Connector) Option {
	return &withConnector{
		conn: conn,
	}
}

type withConnector struct {
	conn connector.Connector
}

func (opt withConnector) config(builder *syncerBuilder) {
	builder.conn = opt.conn
}

// WithStoreBuilder sets the store builder used to hold draft contents.
func WithStoreBuilder(storeBuilder store.Builder) Option {
	return &withStoreBuilder{
		storeBuilder: storeBuilder,
	}
}

type withStoreBuilder struct {
	storeBuilder store.Builder
}

func (opt withStoreBuilder) config(builder *syncerBuilder) {
	builder.storeBuilder = opt.storeBuilder
}

// WithDBBuilder sets the database used to hold draft states.
func WithDBBuilder(dbBuilder db.ClientInterface) Option {
	return &withDBBuilder{
		dbBuilder: dbBuilder,
	}
}

type withDBBuilder struct {
	dbBuilder db.ClientInterface
}

func (opt withDBBuilder) config(builder *syncerBuilder) {
	builder.dbBuilder = opt.dbBuilder
}

// WithDBDebug logs every database transaction and, if trace is set, every query.
func WithDBDebug(trace bool) Option {
	return &withDBDebug{
		trace: trace,
	}
}

type withDBDebug struct {
	trace bool
}

func (opt withDBDebug) config(builder *syncerBuilder) {
	options := []sqlite3.Option{sqlite3.Debug()}

	if opt.trace {
		options = append(options, sqlite3.Trace())
	}

	builder.dbBuilder = db_impl.NewSQLiteDB(options...)
}

// WithEncryptionPassphrase sets the passphrase the draft contents are encrypted with at rest.
func WithEncryptionPassphrase(passphrase []byte) Option {
	return &withEncryptionPassphrase{
		passphrase: passphrase,
	}
}

type withEncryptionPassphrase struct {
	passphrase []byte
}

func (opt withEncryptionPassphrase) config(builder *syncerBuilder) {
	builder.passphrase = opt.passphrase
}

// WithCompression compresses draft contents before they are stored.
func WithCompression() Option {
	return &withCompression{}
}

type withCompression struct{}

func (withCompression) config(builder *syncerBuilder) {
	builder.storeOptions = append(builder.storeOptions, store.WithCompressor(&store.ZLibCompressor{}))
}

// WithUploadInterval sets the period of the continuous upload.
func WithUploadInterval(interval time.Duration) Option {
	return &withUploadInterval{
		interval: interval,
	}
}

type withUploadInterval struct {
	interval time.Duration
}

func (opt withUploadInterval) config(builder *syncerBuilder) {
	builder.uploadInterval = opt.interval
}

// WithReporter sets the reporter unexpected failures are sent to.
func WithReporter(reporter reporter.Reporter) Option {
	return &withReporter{
		reporter: reporter,
	}
}

type withReporter struct {
	reporter reporter.Reporter
}

func (opt withReporter) config(builder *syncerBuilder) {
	builder.reporter = opt.reporter
}

// WithObservabilitySender sets the sender upload failure metrics are sent to.
func WithObservabilitySender(sender observability.Sender, uploadErrorType, stateErrorType int) Option {
	return &withObservabilitySender{
		sender:          sender,
		uploadErrorType: uploadErrorType,
		stateErrorType:  stateErrorType,
	}
}

type withObservabilitySender struct {
	sender          observability.Sender
	uploadErrorType int
	stateErrorType  int
}

func (opt withObservabilitySender) config(builder *syncerBuilder) {
	builder.observabilitySender = opt.sender

	observability.SetupMetricTypes(opt.uploadErrorType, opt.stateErrorType)
}

// WithPanicHandler sets the handler panics of background goroutines are given to.
func WithPanicHandler(panicHandler async.PanicHandler) Option {
	return &withPanicHandler{
		panicHandler: panicHandler,
	}
}

type withPanicHandler struct {
	panicHandler async.PanicHandler
}

func (opt withPanicHandler) config(builder *syncerBuilder) {
	builder.panicHandler = opt.panicHandler
}
