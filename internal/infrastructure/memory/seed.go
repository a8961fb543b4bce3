package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

var seedZoneColors = []struct{ name, color string }{
	{entity.ZoneReceiving, "#4CAF50"},
	{entity.ZoneStorage, "#2196F3"},
	{entity.ZoneShipment, "#FF9800"},
}

// Seed carga los mismos datos que la migración de semilla: zonas, permisos y roles por defecto.
// Es idempotente.
func (s *Store) Seed(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()

	zoneNames := make(map[string]bool, len(s.zones))
	for _, z := range s.zones {
		zoneNames[z.Name] = true
	}
	for _, z := range seedZoneColors {
		if zoneNames[z.name] {
			continue
		}
		id := uuid.New().String()
		s.zones[id] = &entity.Zone{ID: id, Name: z.name, Color: z.color, CreatedAt: now}
		s.track(id)
	}

	permByName := make(map[string]string, len(s.permissions))
	for _, p := range s.permissions {
		permByName[p.Name] = p.ID
	}
	for _, def := range entity.DefaultPermissions {
		if _, ok := permByName[def.Name]; ok {
			continue
		}
		p := def
		p.ID = uuid.New().String()
		p.CreatedAt = now
		s.permissions[p.ID] = &p
		s.track(p.ID)
		permByName[p.Name] = p.ID
	}

	roleNames := make(map[string]bool, len(s.roles))
	for _, r := range s.roles {
		roleNames[r.Name] = true
	}
	for _, name := range []string{entity.RoleAdmin, entity.RoleManager, entity.RoleOperator} {
		if roleNames[name] {
			continue
		}
		id := uuid.New().String()
		s.roles[id] = &entity.Role{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
		s.track(id)
		for _, pname := range entity.DefaultRolePermissions[name] {
			s.rolePerms[id] = append(s.rolePerms[id], permByName[pname])
		}
	}
}
