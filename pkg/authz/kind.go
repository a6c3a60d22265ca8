// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import (
	"sync"

	"github.com/samber/oops"
)

// Hierarchy is an explicit supertype-registration table for target
// kinds. Hosts register child → parent edges at setup time; IsA answers
// reflexive "is-subtype-of" queries by walking the parent chain.
//
// Thread-safety: guarded by an RWMutex so registration during setup and
// reads during evaluation are safe under concurrent test runners.
type Hierarchy struct {
	mu     sync.RWMutex
	parent map[Kind]Kind
}

// NewHierarchy creates an empty Hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{parent: make(map[Kind]Kind)}
}

// Register records that child is a subkind of parent. A kind has at most
// one parent; re-registering a child overwrites its previous parent.
// Rejects empty identifiers, the KindAny wildcard, and edges that would
// close a cycle.
func (h *Hierarchy) Register(child, parent Kind) error {
	if child == "" || parent == "" {
		return oops.In("authz").
			Code("INVALID_KIND").
			New("kind identifier cannot be empty")
	}
	if child == KindAny || parent == KindAny {
		return oops.In("authz").
			Code("INVALID_KIND").
			New("the wildcard kind cannot appear in the hierarchy")
	}
	if child == parent {
		return oops.In("authz").
			Code("KIND_CYCLE").
			With("kind", string(child)).
			New("kind cannot be its own parent")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Walking up from the proposed parent must not reach the child.
	for k := parent; k != ""; k = h.parent[k] {
		if k == child {
			return oops.In("authz").
				Code("KIND_CYCLE").
				With("child", string(child)).
				With("parent", string(parent)).
				New("registration would create a kind cycle")
		}
	}

	h.parent[child] = parent
	return nil
}

// IsA reports whether kind is ancestor or a registered subkind of it.
// The relation is reflexive: IsA(k, k) is always true for non-empty k.
func (h *Hierarchy) IsA(kind, ancestor Kind) bool {
	if kind == "" || ancestor == "" {
		return false
	}
	if kind == ancestor {
		return true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for k := h.parent[kind]; k != ""; k = h.parent[k] {
		if k == ancestor {
			return true
		}
	}
	return false
}

// Matches reports whether a permission bucket registered under bucket
// applies to a target of the given kind. The KindAny bucket applies to
// every target, including kindless ones.
func (h *Hierarchy) Matches(kind, bucket Kind) bool {
	if bucket == KindAny {
		return true
	}
	return h.IsA(kind, bucket)
}
