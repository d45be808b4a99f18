package observability

import "context"

type senderKey struct{}

func NewContextWithObservabilitySender(ctx context.Context, sender Sender) context.Context {
	return context.WithValue(ctx, senderKey{}, sender)
}

func senderFromContext(ctx context.Context) (Sender, bool) {
	sender, ok := ctx.Value(senderKey{}).(Sender)

	return sender, ok && sender != nil
}
