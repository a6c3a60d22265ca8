// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolecall/rolecall/pkg/authz"
	"github.com/rolecall/rolecall/pkg/authz/authztest"
)

func userRecord(id string, admin bool) authz.Record {
	return authz.Record{Kind: "user", Attrs: map[string]any{"id": id, "admin": admin}}
}

func isAdmin(_ context.Context, user, _ any) (bool, error) {
	attrs := authz.AttrsOf(user)
	return attrs != nil && attrs["admin"] == true, nil
}

func isOwner(_ context.Context, user, target any) (bool, error) {
	u, tgt := authz.AttrsOf(user), authz.AttrsOf(target)
	if u == nil || tgt == nil {
		return false, nil
	}
	return u["id"] != nil && u["id"] == tgt["id"], nil
}

// newUserPolicy builds the representative admin/owner/anyone policy:
// admins edit and delete users, owners edit themselves, anyone reads.
func newUserPolicy(t *testing.T) *authz.Registry {
	t.Helper()
	reg := authz.NewRegistry()

	_, err := reg.Define("admin", func(r *authz.RoleBuilder) {
		r.Detect(isAdmin)
		r.Can("user", "edit", "delete")
	})
	require.NoError(t, err)

	_, err = reg.Define("owner", func(r *authz.RoleBuilder) {
		r.Detect(isOwner)
		r.Can("user", "edit")
	})
	require.NoError(t, err)

	_, err = reg.Define("anyone", func(r *authz.RoleBuilder) {
		r.Can("user", "read")
	})
	require.NoError(t, err)

	return reg
}

func TestAuthorizer_RepresentativePolicy(t *testing.T) {
	ctx := context.Background()
	auth := authz.NewAuthorizer(newUserPolicy(t))

	admin := userRecord("a1", true)
	userA := userRecord("u1", false)
	userB := userRecord("u2", false)

	cases := []struct {
		name   string
		user   any
		action authz.Action
		target any
		want   bool
	}{
		{"admin reads via anyone", admin, "read", userA, true},
		{"admin edits", admin, "edit", userA, true},
		{"admin deletes", admin, "delete", userA, true},
		{"owner edits self", userA, "edit", userA, true},
		{"owner cannot delete self", userA, "delete", userA, false},
		{"unrelated user cannot edit", userA, "edit", userB, false},
		{"absent user reads via anyone", nil, "read", userA, true},
		{"absent user cannot edit", nil, "edit", userA, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := auth.CanAs(ctx, tc.user, tc.action, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAuthorizer_NoRolesAlwaysDenies(t *testing.T) {
	auth := authz.NewAuthorizer(authz.NewRegistry())
	ctx := context.Background()

	ok, err := auth.CanAs(ctx, userRecord("u1", true), "read", userRecord("u2", false))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = auth.CanAs(ctx, nil, "anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizer_OrAcrossRoles(t *testing.T) {
	// An earlier denying role must not short-circuit a later granting one.
	reg := authz.NewRegistry()

	_, err := reg.Define("denier", func(r *authz.RoleBuilder) {
		r.Detect(func(_ context.Context, _, _ any) (bool, error) { return false, nil })
		r.Can("user", "read")
	})
	require.NoError(t, err)

	_, err = reg.Define("granter", func(r *authz.RoleBuilder) {
		r.Can("user", "read")
	})
	require.NoError(t, err)

	auth := authz.NewAuthorizer(reg)
	ok, err := auth.CanAs(context.Background(), nil, "read", userRecord("u1", false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizer_MemberRoleWithoutPermissionFallsThrough(t *testing.T) {
	reg := authz.NewRegistry()

	// Member of this role, but it has no grants at all.
	_, err := reg.Define("hollow", nil)
	require.NoError(t, err)

	_, err = reg.Define("granter", func(r *authz.RoleBuilder) {
		r.Can("user", "read")
	})
	require.NoError(t, err)

	auth := authz.NewAuthorizer(reg)
	ok, err := auth.CanAs(context.Background(), nil, "read", userRecord("u1", false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizer_AmbientUserFromProvider(t *testing.T) {
	auth := authz.NewAuthorizer(newUserPolicy(t),
		authz.WithCurrentUserProvider(authztest.StaticProvider{User: userRecord("a1", true)}))

	ok, err := auth.Can(context.Background(), "delete", userRecord("u1", false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizer_NoProviderMeansAbsentUser(t *testing.T) {
	auth := authz.NewAuthorizer(newUserPolicy(t))

	ok, err := auth.Can(context.Background(), "edit", userRecord("u1", false))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = auth.Can(context.Background(), "read", userRecord("u1", false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizer_ExplicitUserOverridesAmbient(t *testing.T) {
	// Provider supplies an admin, but the explicit caller is a plain user.
	auth := authz.NewAuthorizer(newUserPolicy(t),
		authz.WithCurrentUserProvider(authztest.StaticProvider{User: userRecord("a1", true)}))

	ok, err := auth.CanAs(context.Background(), userRecord("u1", false), "delete", userRecord("u2", false))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizer_MembershipErrorPropagatesUnmodified(t *testing.T) {
	boom := errors.New("membership exploded")
	reg := authz.NewRegistry()

	_, err := reg.Define("fragile", func(r *authz.RoleBuilder) {
		r.Detect(authztest.FailingPredicate(boom))
		r.Can("user", "read")
	})
	require.NoError(t, err)

	auth := authz.NewAuthorizer(reg)
	ok, err := auth.CanAs(context.Background(), nil, "read", userRecord("u1", false))
	assert.False(t, ok)
	assert.Same(t, boom, err)
}

func TestAuthorizer_NonMemberPredicatesNeverRun(t *testing.T) {
	counter := &authztest.CountingPredicate{Result: true}
	reg := authz.NewRegistry()

	_, err := reg.Define("locked", func(r *authz.RoleBuilder) {
		r.Detect(func(_ context.Context, _, _ any) (bool, error) { return false, nil })
		r.CanWhen("user", counter.Predicate(), "read")
	})
	require.NoError(t, err)

	auth := authz.NewAuthorizer(reg)
	ok, err := auth.CanAs(context.Background(), nil, "read", userRecord("u1", false))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, counter.Calls())
}
