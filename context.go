package gotmemo

import "context"

type engineKey struct{}

// NewContext returns a copy of ctx carrying e, so that code further down a
// call chain can reach the configured engine without an explicit parameter.
func NewContext(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, engineKey{}, e)
}

// FromContext returns the engine stored in ctx by NewContext.
func FromContext(ctx context.Context) (*Engine, bool) {
	e, ok := ctx.Value(engineKey{}).(*Engine)
	return e, ok && e != nil
}
