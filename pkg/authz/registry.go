// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import "sync"

// Registry is an ordered, append-only collection of roles plus the kind
// hierarchy they are evaluated against. Construct one per application
// (or per test) instead of sharing process-global state.
//
// Thread-safety: Define, Add and Reset take the write lock; Roles and
// Len take the read lock. The production pattern is write-once at
// startup, read-many at decision time, but the lock makes definition and
// reset safe under concurrent test runners too.
type Registry struct {
	mu    sync.RWMutex
	roles []*Role
	kinds *Hierarchy
}

// NewRegistry creates an empty Registry with its own kind hierarchy.
func NewRegistry() *Registry {
	return &Registry{kinds: NewHierarchy()}
}

// Kinds returns the registry's kind hierarchy for supertype
// registration.
func (r *Registry) Kinds() *Hierarchy {
	return r.kinds
}

// Define builds a role through the given definition function and appends
// it to the registry. Configuration errors surface here, at definition
// time; nothing is appended on error.
func (r *Registry) Define(name string, define func(*RoleBuilder)) (*Role, error) {
	b := NewRoleBuilder(name)
	if define != nil {
		define(b)
	}
	role, err := b.Build()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.roles = append(r.roles, role)
	r.mu.Unlock()

	rolesDefined.Inc()
	return role, nil
}

// Add appends pre-built roles, e.g. roles compiled from a role document.
func (r *Registry) Add(roles ...*Role) {
	r.mu.Lock()
	r.roles = append(r.roles, roles...)
	r.mu.Unlock()

	rolesDefined.Add(float64(len(roles)))
}

// Roles returns a snapshot of the registered roles in definition order.
// Mutating the returned slice does not affect the registry.
func (r *Registry) Roles() []*Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Role, len(r.roles))
	copy(out, r.roles)
	return out
}

// Len returns the number of registered roles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roles)
}

// Reset clears all roles. Intended for test isolation, not for
// production authorization flow.
func (r *Registry) Reset() {
	r.mu.Lock()
	n := len(r.roles)
	r.roles = nil
	r.mu.Unlock()

	rolesDefined.Sub(float64(n))
}
