package reporter

import (
	"context"
	"fmt"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/internal/utils"
	"github.com/sirupsen/logrus"
)

// DraftContext describes the failure of an operation on a draft.
// Message ids are shortened, user ids are left out.
func DraftContext(id draft.ID, err error) Context {
	ctx := Context{"messageID": id.MessageID.ShortID()}

	if err != nil {
		ctx["error"] = err.Error()
		ctx["type"] = errorType(err)
	}

	return ctx
}

// ErrorContext describes a failure that is not bound to a single draft.
func ErrorContext(err error) Context {
	return Context{"error": err.Error(), "type": errorType(err)}
}

func MessageWithContext(ctx context.Context, message string, context Context) {
	reporter, ok := GetReporterFromContext(ctx)
	if !ok {
		return
	}

	if err := reporter.ReportMessageWithContext(message, context); err != nil {
		logrus.WithField("pkg", "draftsync/reporter").WithError(err).Error("Failed to report message")
	}
}

func ExceptionWithContext(ctx context.Context, message string, context Context) {
	reporter, ok := GetReporterFromContext(ctx)
	if !ok {
		return
	}

	if err := reporter.ReportExceptionWithContext(message, context); err != nil {
		logrus.WithField("pkg", "draftsync/reporter").WithError(err).Error("Failed to report exception")
	}
}

func errorType(err error) string {
	return fmt.Sprintf("%T", utils.ErrCause(err))
}
