// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import (
	"errors"

	"github.com/samber/oops"
)

// RoleBuilder accumulates detect/can declarations into an immutable
// Role. Builders are short-lived, single-goroutine values scoped to one
// role definition; Build transfers the accumulated state into the Role
// by copy, so a retained builder cannot mutate a finalized role.
//
// Malformed declarations (a grant with no actions, empty identifiers)
// are collected and surfaced by Build — configuration errors fail at
// definition time, not at decision time.
type RoleBuilder struct {
	name       string
	membership Predicate
	grants     []grant
	bucket     map[Kind]int
	errs       []error
}

// NewRoleBuilder starts a builder for a role with the given diagnostic
// name.
func NewRoleBuilder(name string) *RoleBuilder {
	return &RoleBuilder{name: name, bucket: make(map[Kind]int)}
}

// Detect records the membership predicate. Calling Detect again
// overwrites the previous predicate (last write wins). Without Detect
// the role matches every (user, target) pair.
func (b *RoleBuilder) Detect(membership Predicate) *RoleBuilder {
	if membership == nil {
		b.errs = append(b.errs, oops.In("authz").
			Code("INVALID_PREDICATE").
			With("role", b.name).
			New("detect requires a non-nil predicate"))
		return b
	}
	b.membership = membership
	return b
}

// Can grants unconditional actions on targets of the given kind.
// Repeated calls for the same kind accumulate permissions; later grants
// never shadow earlier ones.
func (b *RoleBuilder) Can(kind Kind, actions ...Action) *RoleBuilder {
	return b.CanWhen(kind, nil, actions...)
}

// CanWhen grants actions on targets of the given kind, gated by a
// condition predicate. A nil condition means unconditional.
func (b *RoleBuilder) CanWhen(kind Kind, condition Predicate, actions ...Action) *RoleBuilder {
	if kind == "" {
		b.errs = append(b.errs, oops.In("authz").
			Code("INVALID_KIND").
			With("role", b.name).
			New("grant requires a target kind"))
		return b
	}
	perm, err := NewPermission(actions, condition)
	if err != nil {
		b.errs = append(b.errs, oops.With("role", b.name).Wrap(err))
		return b
	}

	idx, ok := b.bucket[kind]
	if !ok {
		b.grants = append(b.grants, grant{kind: kind})
		idx = len(b.grants) - 1
		b.bucket[kind] = idx
	}
	b.grants[idx].perms = append(b.grants[idx].perms, perm)
	return b
}

// Build finalizes the role. Returns the joined configuration errors if
// any declaration was malformed or the name is empty. The builder's
// accumulated grants are copied into the role; the builder can be
// discarded afterwards.
func (b *RoleBuilder) Build() (*Role, error) {
	if b.name == "" {
		b.errs = append(b.errs, oops.In("authz").
			Code("INVALID_ROLE_NAME").
			New("role name cannot be empty"))
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	membership := b.membership
	if membership == nil {
		membership = allowAll
	}

	grants := make([]grant, len(b.grants))
	for i, g := range b.grants {
		perms := make([]Permission, len(g.perms))
		copy(perms, g.perms)
		grants[i] = grant{kind: g.kind, perms: perms}
	}

	return &Role{
		id:         newULID(),
		name:       b.name,
		membership: membership,
		grants:     grants,
	}, nil
}
