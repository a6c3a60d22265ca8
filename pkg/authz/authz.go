// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

// Package authz is a role-based authorization evaluator.
//
// Roles are defined once at setup time and registered into a Registry.
// Each role carries a membership predicate and a set of permissions
// scoped by target kind. At decision time an Authorizer filters roles by
// membership and returns the logical OR over the surviving roles'
// permissions. Permissions only grant; there is no deny effect and no
// rule priority — the evaluator is additive.
//
// Users and targets are opaque to the engine. Targets expose their kind
// through the Entity interface; attribute-driven predicates (see
// pkg/roledsl) additionally read the Attributer interface.
package authz

import "context"

// Action names an operation a user wants to perform, e.g. "read", "edit".
type Action string

// Kind identifies a target type. Kinds form a host-registered hierarchy
// (see Hierarchy); a permission registered under a kind applies to
// targets of that kind and of any registered subkind.
type Kind string

// KindAny matches targets of every kind, including targets that expose
// no kind at all.
const KindAny Kind = "*"

// Entity is implemented by targets that expose an authorization kind.
// Targets that do not implement Entity only match permissions registered
// under KindAny.
type Entity interface {
	AuthzKind() Kind
}

// Attributer is implemented by users and targets that expose named
// attributes for condition evaluation. A plain map[string]any works too.
type Attributer interface {
	AuthzAttrs() map[string]any
}

// Predicate decides a boolean over a (user, target) pair. Membership and
// condition predicates share this shape. A returned error propagates
// unmodified to the caller of the authorization check; the engine never
// catches or wraps predicate failures.
type Predicate func(ctx context.Context, user, target any) (bool, error)

// allowAll is the default membership and condition predicate.
func allowAll(_ context.Context, _, _ any) (bool, error) {
	return true, nil
}

// KindOf returns the kind a target exposes, or "" when the target is nil
// or does not implement Entity.
func KindOf(target any) Kind {
	if target == nil {
		return ""
	}
	if e, ok := target.(Entity); ok {
		return e.AuthzKind()
	}
	return ""
}

// AttrsOf returns the attribute map a value exposes, or nil. Plain
// map[string]any values are returned as-is.
func AttrsOf(v any) map[string]any {
	switch val := v.(type) {
	case Attributer:
		return val.AuthzAttrs()
	case map[string]any:
		return val
	default:
		return nil
	}
}

// Record is a ready-made Entity+Attributer value. The CLI uses it to
// build users and targets from flags; tests use it as a stand-in for
// host domain objects.
type Record struct {
	Kind  Kind
	Attrs map[string]any
}

// AuthzKind implements Entity.
func (r Record) AuthzKind() Kind { return r.Kind }

// AuthzAttrs implements Attributer.
func (r Record) AuthzAttrs() map[string]any { return r.Attrs }
