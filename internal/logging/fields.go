package logging

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type fieldsKey struct{}

// Fields is the mutable key/value bag bound to a single request.
type Fields struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewFields returns an empty store.
func NewFields() *Fields {
	return &Fields{m: make(map[string]any)}
}

// Bind merges kv into the store, overwriting existing keys.
func (f *Fields) Bind(kv map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range kv {
		f.m[k] = v
	}
}

// Current returns a copy of the bound fields.
func (f *Fields) Current() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.m)
}

// Clear removes every bound field.
func (f *Fields) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.m)
}

func (f *Fields) each(fn func(k string, v any)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.m))
	for k := range f.m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fn(k, f.m[k])
	}
}

// WithFields returns a copy of ctx carrying f.
func WithFields(ctx context.Context, f *Fields) context.Context {
	return context.WithValue(ctx, fieldsKey{}, f)
}

// FieldsFromContext returns the store bound to ctx, or nil.
func FieldsFromContext(ctx context.Context) *Fields {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).(*Fields)
	return f
}

// Bind merges kv into the store carried by ctx. It is a no-op outside a request.
func Bind(ctx context.Context, kv map[string]any) {
	if f := FieldsFromContext(ctx); f != nil {
		f.Bind(kv)
	}
}
