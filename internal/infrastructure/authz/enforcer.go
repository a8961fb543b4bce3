// Package authz autorización por rol con casbin. Las políticas salen de las tablas de roles y permisos.
package authz

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy regla rol → recurso/acción.
type Policy struct {
	Role     string
	Resource string
	Action   string
}

// Enforcer decide si un rol puede ejecutar una acción sobre un recurso.
// Reload reconstruye el enforcer completo y lo reemplaza, así una consulta nunca ve políticas a medio cargar.
type Enforcer struct {
	mu    sync.RWMutex
	e     *casbin.SyncedEnforcer
	roles repository.RoleRepository
	log   *logger.Logger
}

// NewEnforcer construye el enforcer y carga las políticas.
func NewEnforcer(ctx context.Context, roles repository.RoleRepository, log *logger.Logger) (*Enforcer, error) {
	en := &Enforcer{roles: roles, log: log}
	if err := en.Reload(ctx); err != nil {
		return nil, err
	}
	return en, nil
}

// Reload vuelve a leer roles y permisos.
func (en *Enforcer) Reload(ctx context.Context) error {
	roles, err := en.roles.List(ctx)
	if err != nil {
		return fmt.Errorf("authz: listar roles: %w", err)
	}
	policies := PoliciesFor(roles)
	e, err := build(policies)
	if err != nil {
		return err
	}
	en.mu.Lock()
	en.e = e
	en.mu.Unlock()
	en.log.Debug().Int("roles", len(roles)).Int("policies", len(policies)).Msg("políticas de autorización cargadas")
	return nil
}

// Enforce evalúa (rol, recurso, acción).
func (en *Enforcer) Enforce(role, resource, action string) (bool, error) {
	en.mu.RLock()
	e := en.e
	en.mu.RUnlock()
	if e == nil {
		return false, fmt.Errorf("authz: enforcer no inicializado")
	}
	return e.Enforce(strings.ToUpper(strings.TrimSpace(role)), normalize(resource), normalize(action))
}

// PoliciesFor traduce roles con permisos a políticas. ADMIN recibe todo.
func PoliciesFor(roles []*entity.Role) []Policy {
	out := []Policy{{Role: entity.RoleAdmin, Resource: "*", Action: "*"}}
	for _, role := range roles {
		if role.Name == entity.RoleAdmin {
			continue
		}
		for _, p := range role.Permissions {
			resource, action := p.ResourceAction()
			out = append(out, Policy{Role: strings.ToUpper(role.Name), Resource: normalize(resource), Action: normalize(action)})
		}
	}
	return out
}

func build(policies []Policy) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: cargar modelo: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: crear enforcer: %w", err)
	}
	e.AddFunction("keyMatch", util.KeyMatchFunc)
	for _, p := range policies {
		if _, err := e.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return nil, fmt.Errorf("authz: agregar política %s %s:%s: %w", p.Role, p.Resource, p.Action, err)
		}
	}
	return e, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
