package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/authz"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/memory"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

func setup(t *testing.T) (*authz.Enforcer, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(ctx)
	en, err := authz.NewEnforcer(ctx, memory.NewRoleRepository(store), logger.Nop())
	require.NoError(t, err)
	return en, store
}

func allowed(t *testing.T, en *authz.Enforcer, role, resource, action string) bool {
	t.Helper()
	ok, err := en.Enforce(role, resource, action)
	require.NoError(t, err)
	return ok
}

func TestEnforce_AdminTieneTodo(t *testing.T) {
	en, _ := setup(t)
	assert.True(t, allowed(t, en, entity.RoleAdmin, "roles", "write"))
	assert.True(t, allowed(t, en, "admin", "cualquier-cosa", "delete"))
}

func TestEnforce_OperadorSoloEscaneaYLee(t *testing.T) {
	en, _ := setup(t)
	assert.True(t, allowed(t, en, entity.RoleOperator, "scans", "write"))
	assert.True(t, allowed(t, en, entity.RoleOperator, "batches", "read"))
	assert.False(t, allowed(t, en, entity.RoleOperator, "batches", "write"))
	assert.False(t, allowed(t, en, entity.RoleOperator, "users", "read"))
}

func TestEnforce_RolDesconocido(t *testing.T) {
	en, _ := setup(t)
	assert.False(t, allowed(t, en, "VISITANTE", "batches", "read"))
}

func TestReload_AplicaCambiosDePermisos(t *testing.T) {
	en, store := setup(t)
	ctx := context.Background()
	roles := memory.NewRoleRepository(store)
	perms := memory.NewPermissionRepository(store)

	operator, err := roles.GetByName(ctx, entity.RoleOperator)
	require.NoError(t, err)
	all, err := perms.List(ctx)
	require.NoError(t, err)

	var ids []string
	for _, p := range all {
		if p.Name == "batches:write" {
			ids = append(ids, p.ID)
		}
	}
	require.Len(t, ids, 1)
	require.NoError(t, roles.SetPermissions(ctx, operator.ID, ids))

	assert.True(t, allowed(t, en, entity.RoleOperator, "scans", "write"), "antes de Reload rige la política anterior")

	require.NoError(t, en.Reload(ctx))
	assert.True(t, allowed(t, en, entity.RoleOperator, "batches", "write"))
	assert.False(t, allowed(t, en, entity.RoleOperator, "scans", "write"))
}

func TestPoliciesFor_PermisoSinAccion(t *testing.T) {
	policies := authz.PoliciesFor([]*entity.Role{{
		Name:        "auditor",
		Permissions: []*entity.Permission{{Name: "reports"}},
	}})
	assert.Contains(t, policies, authz.Policy{Role: "AUDITOR", Resource: "reports", Action: "*"})
	assert.Contains(t, policies, authz.Policy{Role: entity.RoleAdmin, Resource: "*", Action: "*"})
}
