// Package reporter forwards unexpected synchronization failures to an external crash and error reporting tool.
//
// The Reporter is carried by the context passed to the syncer internals; when the context holds none, nothing is
// reported.
package reporter

type Context = map[string]any

// Reporter is implemented by the host application to receive reports about failed uploads and storage errors.
type Reporter interface {
	ReportMessageWithContext(string, Context) error
	ReportExceptionWithContext(any, Context) error
}
