// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

// Package authztest provides helpers for testing code that uses the
// authz engine.
package authztest

import (
	"context"
	"sync/atomic"

	"github.com/rolecall/rolecall/pkg/authz"
)

// StaticProvider is a CurrentUserProvider that always returns the same
// user. A nil User means no ambient user.
type StaticProvider struct {
	User any
}

// CurrentUser implements authz.CurrentUserProvider.
func (p StaticProvider) CurrentUser(_ context.Context) any {
	return p.User
}

// CountingPredicate wraps a fixed result and counts evaluations. Safe
// for concurrent use.
type CountingPredicate struct {
	Result bool
	Err    error
	calls  atomic.Int64
}

// Predicate returns the authz.Predicate backed by this counter.
func (c *CountingPredicate) Predicate() authz.Predicate {
	return func(_ context.Context, _, _ any) (bool, error) {
		c.calls.Add(1)
		return c.Result, c.Err
	}
}

// Calls returns the number of evaluations so far.
func (c *CountingPredicate) Calls() int {
	return int(c.calls.Load())
}

// FailingPredicate returns a predicate that always fails with err.
func FailingPredicate(err error) authz.Predicate {
	return func(_ context.Context, _, _ any) (bool, error) {
		return false, err
	}
}
