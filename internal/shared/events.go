package shared

import "context"

// SubmitNotifier hears about every submitted document. Implementations must
// not fail the caller; the document is already committed.
type SubmitNotifier interface {
	Submitted(ctx context.Context, doctype, name string)
}

// NopNotifier ignores notifications.
type NopNotifier struct{}

func (NopNotifier) Submitted(context.Context, string, string) {}
