package client

import "context"

type ctxKey struct{}

// CtxKey carries the initialized *App through the command context.
var CtxKey = ctxKey{}

// FromContext extracts the App placed in the context by the CLI root.
func FromContext(ctx context.Context) (*App, bool) {
	app, ok := ctx.Value(CtxKey).(*App)
	return app, ok
}
