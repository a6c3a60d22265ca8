// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import (
	"context"

	"github.com/samber/oops"
)

// Permission is an action set plus a condition predicate, scoped to one
// target kind by the role grant it was registered under. Immutable after
// construction.
type Permission struct {
	actions   map[Action]struct{}
	condition Predicate
}

// NewPermission creates a Permission from a non-empty action list and an
// optional condition. A nil condition means the permission is
// unconditional. An empty action list is a configuration error.
func NewPermission(actions []Action, condition Predicate) (Permission, error) {
	if len(actions) == 0 {
		return Permission{}, oops.In("authz").
			Code("EMPTY_ACTIONS").
			New("permission requires at least one action")
	}
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		if a == "" {
			return Permission{}, oops.In("authz").
				Code("INVALID_ACTION").
				New("action identifier cannot be empty")
		}
		set[a] = struct{}{}
	}
	if condition == nil {
		condition = allowAll
	}
	return Permission{actions: set, condition: condition}, nil
}

// HasAction returns true if action is a member of the permission's
// action set.
func (p Permission) HasAction(action Action) bool {
	_, ok := p.actions[action]
	return ok
}

// Allows evaluates the condition predicate for the given user and
// target. Predicate errors are returned unmodified.
func (p Permission) Allows(ctx context.Context, user, target any) (bool, error) {
	return p.condition(ctx, user, target)
}

// Actions returns the permission's action set in unspecified order.
func (p Permission) Actions() []Action {
	out := make([]Action, 0, len(p.actions))
	for a := range p.actions {
		out = append(out, a)
	}
	return out
}
