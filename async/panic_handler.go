package async

import "github.com/sirupsen/logrus"

// PanicHandler is given the value recovered from a panicking goroutine.
type PanicHandler interface {
	HandlePanic(any)
}

// NoopPanicHandler lets the panic go on.
type NoopPanicHandler struct{}

func (n NoopPanicHandler) HandlePanic(r any) {
	panic(r)
}

// LogPanicHandler logs the panic and swallows it.
type LogPanicHandler struct {
	Entry *logrus.Entry
}

func (h LogPanicHandler) HandlePanic(r any) {
	entry := h.Entry
	if entry == nil {
		entry = logrus.WithField("pkg", "draftsync/async")
	}

	entry.WithField("panic", r).Error("Recovered from panic")
}

// HandlePanic must be deferred directly. A nil handler lets the panic go on.
func HandlePanic(panicHandler PanicHandler) {
	if panicHandler == nil {
		return
	}

	if r := recover(); r != nil {
		panicHandler.HandlePanic(r)
	}
}
