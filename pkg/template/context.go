// Package template holds the per-run execution context and resolves Handlebars
// templates against it.
package template

import "maps"

// Context is the accumulated key/value state of one workflow run. It is seeded
// from the trigger's initial data and grows by one key per node result.
type Context map[string]any

// New returns a context holding a shallow copy of initial.
func New(initial map[string]any) Context {
	ctx := make(Context, len(initial))
	maps.Copy(ctx, initial)

	return ctx
}

// Merge returns a copy of c with key set to value. c itself is left untouched.
func (c Context) Merge(key string, value any) Context {
	merged := make(Context, len(c)+1)
	maps.Copy(merged, c)
	merged[key] = value

	return merged
}

// Clone returns a shallow copy of c.
func (c Context) Clone() Context {
	return New(c)
}
