// Package di holds the application's type-to-factory registry. The registry
// is built once at the composition root and passed down explicitly; there is
// no ambient global.
package di

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps requested types to providers. Factory registrations yield a
// fresh value per resolve (screen view-models); singleton registrations are
// constructed lazily on first resolve and shared afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[reflect.Type]func() any
}

func New() *Registry {
	return &Registry{factories: make(map[reflect.Type]func() any)}
}

// RegisterFactory binds T to fn with factory scope.
func RegisterFactory[T any](r *Registry, fn func() T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[keyOf[T]()] = func() any { return fn() }
}

// RegisterSingleton binds T to fn with singleton scope: fn runs at most
// once, on first resolve.
func RegisterSingleton[T any](r *Registry, fn func() T) {
	var (
		once  sync.Once
		value T
	)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[keyOf[T]()] = func() any {
		once.Do(func() { value = fn() })
		return value
	}
}

// Resolve produces a T from its registered provider.
func Resolve[T any](r *Registry) (T, error) {
	r.mu.RLock()
	fn, ok := r.factories[keyOf[T]()]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("di: no provider registered for %v", keyOf[T]())
	}
	return fn().(T), nil
}

// MustResolve is Resolve for wiring code where a missing provider is a
// programming error.
func MustResolve[T any](r *Registry) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
