// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import (
	"context"
	"log/slog"
	"time"
)

// CurrentUserProvider supplies the ambient user for checks that omit an
// explicit one. Hosts that carry a "current user" in their execution
// context implement this; returning nil means no ambient user.
type CurrentUserProvider interface {
	CurrentUser(ctx context.Context) any
}

// Authorizer answers "can this user perform this action on this target"
// against a Registry.
type Authorizer struct {
	registry *Registry
	users    CurrentUserProvider
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithCurrentUserProvider wires the ambient-user hook. Checks made
// through Can resolve their user from the provider; CanAs always uses
// its explicit argument.
func WithCurrentUserProvider(p CurrentUserProvider) Option {
	return func(a *Authorizer) { a.users = p }
}

// NewAuthorizer creates an Authorizer over the given registry.
func NewAuthorizer(registry *Registry, opts ...Option) *Authorizer {
	a := &Authorizer{registry: registry}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Can checks the action using the ambient user: the current-user
// provider's value when one is wired, otherwise an absent (nil) user.
// Absent users are a normal denial path, never an error.
func (a *Authorizer) Can(ctx context.Context, action Action, target any) (bool, error) {
	var user any
	if a.users != nil {
		user = a.users.CurrentUser(ctx)
	}
	return a.CanAs(ctx, user, action, target)
}

// CanAs checks the action for an explicitly supplied user, ignoring any
// ambient-user provider. The decision is the logical OR over all roles
// the user belongs to: true iff any member role carries a permission
// that grants the action on the target.
//
// No matching role, no matching permission, and nil user all resolve to
// (false, nil). A predicate error aborts the check and is returned
// unmodified.
func (a *Authorizer) CanAs(ctx context.Context, user any, action Action, target any) (bool, error) {
	start := time.Now()
	kinds := a.registry.Kinds()

	for _, role := range a.registry.Roles() {
		member, err := role.IsMember(ctx, user, target)
		if err != nil {
			slog.WarnContext(ctx, "membership predicate failed",
				"role", role.Name(),
				"role_id", role.ID().String(),
				"error", err)
			predicateErrors.Inc()
			recordDecision(time.Since(start), outcomeError)
			return false, err
		}
		if !member {
			continue
		}

		granted, err := role.Authorizes(ctx, user, action, target, kinds)
		if err != nil {
			slog.WarnContext(ctx, "condition predicate failed",
				"role", role.Name(),
				"role_id", role.ID().String(),
				"action", string(action),
				"error", err)
			predicateErrors.Inc()
			recordDecision(time.Since(start), outcomeError)
			return false, err
		}
		if granted {
			slog.DebugContext(ctx, "authorization granted",
				"action", string(action),
				"kind", string(KindOf(target)),
				"role", role.Name(),
				"role_id", role.ID().String())
			recordDecision(time.Since(start), outcomeAllow)
			return true, nil
		}
	}

	slog.DebugContext(ctx, "authorization denied",
		"action", string(action),
		"kind", string(KindOf(target)))
	recordDecision(time.Since(start), outcomeDeny)
	return false, nil
}
