// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolecall/rolecall/pkg/authz"
)

func TestRegistry_DefineAppendsInOrder(t *testing.T) {
	reg := authz.NewRegistry()

	_, err := reg.Define("first", func(r *authz.RoleBuilder) {
		r.Can("document", "read")
	})
	require.NoError(t, err)

	_, err = reg.Define("second", func(r *authz.RoleBuilder) {
		r.Can("document", "edit")
	})
	require.NoError(t, err)

	roles := reg.Roles()
	require.Len(t, roles, 2)
	assert.Equal(t, "first", roles[0].Name())
	assert.Equal(t, "second", roles[1].Name())
}

func TestRegistry_DefineErrorAppendsNothing(t *testing.T) {
	reg := authz.NewRegistry()

	_, err := reg.Define("broken", func(r *authz.RoleBuilder) {
		r.Can("document") // no actions
	})
	require.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestRegistry_DuplicateNamesAreIndependent(t *testing.T) {
	reg := authz.NewRegistry()

	for range 2 {
		_, err := reg.Define("twin", func(r *authz.RoleBuilder) {
			r.Can("document", "read")
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_RolesReturnsSnapshot(t *testing.T) {
	reg := authz.NewRegistry()
	_, err := reg.Define("only", func(r *authz.RoleBuilder) {
		r.Can("document", "read")
	})
	require.NoError(t, err)

	roles := reg.Roles()
	roles[0] = nil

	require.Len(t, reg.Roles(), 1)
	assert.NotNil(t, reg.Roles()[0])
}

func TestRegistry_Reset(t *testing.T) {
	reg := authz.NewRegistry()
	_, err := reg.Define("ephemeral", func(r *authz.RoleBuilder) {
		r.Can("document", "read")
	})
	require.NoError(t, err)

	reg.Reset()
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.Roles())
}

func TestRegistry_ConcurrentDefineAndRead(t *testing.T) {
	reg := authz.NewRegistry()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := reg.Define(fmt.Sprintf("role-%d", i), func(r *authz.RoleBuilder) {
				r.Can("document", "read")
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_ = reg.Roles()
			_ = reg.Len()
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, reg.Len())
}
