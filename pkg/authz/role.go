// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// grant is one kind-scoped bucket of permissions on a role. Buckets keep
// definition order; evaluation order across buckets and permissions is
// deterministic (definition order) but not part of the contract —
// callers must not rely on it when using impure predicates.
type grant struct {
	kind  Kind
	perms []Permission
}

// Role is a named membership predicate plus kind-scoped permissions.
// Immutable after construction; build one through a RoleBuilder or
// Registry.Define. The name carries no authorization semantics and is
// used only for diagnostics; names need not be unique.
type Role struct {
	id         ulid.ULID
	name       string
	membership Predicate
	grants     []grant
}

// ID returns the role's ULID, assigned at build time for log
// correlation.
func (r *Role) ID() ulid.ULID { return r.id }

// Name returns the role's diagnostic name.
func (r *Role) Name() string { return r.name }

// IsMember evaluates the membership predicate for the given user and
// target. A role defined without Detect matches every pair. Predicate
// errors are returned unmodified.
func (r *Role) IsMember(ctx context.Context, user, target any) (bool, error) {
	return r.membership(ctx, user, target)
}

// Authorizes reports whether any permission on this role grants action
// on target for user:
//
//  1. Select grant buckets whose kind matches the target's kind under
//     the given hierarchy (is-a, reflexive; KindAny matches everything).
//  2. Keep permissions whose action set contains action.
//  3. OR the surviving permissions' conditions, short-circuiting on the
//     first grant.
//
// An empty selection at any stage yields false, never an error. A nil
// hierarchy degrades to exact kind matching (plus KindAny).
func (r *Role) Authorizes(ctx context.Context, user any, action Action, target any, kinds *Hierarchy) (bool, error) {
	targetKind := KindOf(target)
	for _, g := range r.grants {
		if !bucketMatches(targetKind, g.kind, kinds) {
			continue
		}
		for _, p := range g.perms {
			if !p.HasAction(action) {
				continue
			}
			ok, err := p.Allows(ctx, user, target)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func bucketMatches(targetKind, bucket Kind, kinds *Hierarchy) bool {
	if bucket == KindAny {
		return true
	}
	if kinds == nil {
		return targetKind != "" && targetKind == bucket
	}
	return kinds.Matches(targetKind, bucket)
}

// Grants returns the role's permissions keyed by kind bucket. The
// returned structures are copies.
func (r *Role) Grants() map[Kind][]Permission {
	out := make(map[Kind][]Permission, len(r.grants))
	for _, g := range r.grants {
		out[g.kind] = append(out[g.kind], g.perms...)
	}
	return out
}
