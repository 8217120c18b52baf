// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package alias implements the type alias registry: a bidirectional
// name↔factory table that resolves the text tags a typed-object node
// carries on the wire.
//
// It is grounded on go-yaml's internal/testutil/datatest.TypeRegistry
// (name → reflect.Type, name → factory), generalized here into a
// process-wide, concurrency-safe registry so concurrent registrations from
// different parts of a program are all visible to each other.
package alias

import (
	"reflect"
	"sync"

	"github.com/eventwire/eventwire/wireerr"
)

// Factory creates a new zero-value instance of an aliased type.
type Factory func() any

// Registry is a per-wire-instance view over the process-wide alias table.
// Multiple Registry values may share the same underlying pool (e.g. one per
// Wire instance); a registration is visible to every view of that pool. The
// pool behind Default() is process-wide, while New() creates a separate pool
// that does not see registrations made elsewhere.
type Registry struct {
	pool *pool
}

type pool struct {
	mu        sync.RWMutex
	toName    map[reflect.Type]string
	toFactory map[string]Factory
	oldNames  map[string]string // lenient old name -> canonical name
}

// New returns a fresh, independent alias pool. Most callers should use
// Default() instead so aliases registered by one part of a program are
// visible to another.
func New() *Registry {
	return &Registry{pool: &pool{
		toName:    make(map[reflect.Type]string),
		toFactory: make(map[string]Factory),
		oldNames:  make(map[string]string),
	}}
}

var defaultPool = New()

// Default returns the process-wide registry.
func Default() *Registry { return defaultPool }

// Register associates name with t's concrete type and factory. Registering
// the same (name, type) pair twice is idempotent, so concurrent callers
// racing to register the same alias is safe; registering a different type
// under an already-used name overwrites the mapping.
func (r *Registry) Register(name string, sample any, factory Factory) {
	t := reflect.TypeOf(sample)
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()
	r.pool.toName[t] = name
	r.pool.toFactory[name] = factory
}

// AddAlias records oldName as a lenient, read-only alternative name for the
// type already registered as canonicalName. Writes always use the
// canonical name; reads accept either.
func (r *Registry) AddAlias(oldName, canonicalName string) {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()
	r.pool.oldNames[oldName] = canonicalName
}

// NameOf returns the registered alias for sample's type, and whether one
// was found. Lookup failures are reported, not silently ignored — callers
// should turn a false into a *wireerr.ClassNotFound.
func (r *Registry) NameOf(sample any) (string, bool) {
	r.pool.mu.RLock()
	defer r.pool.mu.RUnlock()
	name, ok := r.pool.toName[reflect.TypeOf(sample)]
	return name, ok
}

// New constructs a fresh instance for the given alias, resolving old names
// leniently. Returns *wireerr.ClassNotFound if name is unregistered under
// either its canonical or alias form.
func (r *Registry) New(name string) (any, error) {
	r.pool.mu.RLock()
	defer r.pool.mu.RUnlock()
	if f, ok := r.pool.toFactory[name]; ok {
		return f(), nil
	}
	if canon, ok := r.pool.oldNames[name]; ok {
		if f, ok := r.pool.toFactory[canon]; ok {
			return f(), nil
		}
	}
	return nil, &wireerr.ClassNotFound{Alias: name}
}
