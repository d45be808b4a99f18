package reporter

import "context"

type reporterKey struct{}

func NewContextWithReporter(ctx context.Context, reporter Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, reporter)
}

func GetReporterFromContext(ctx context.Context) (Reporter, bool) {
	rep, ok := ctx.Value(reporterKey{}).(Reporter)

	return rep, ok && rep != nil
}
