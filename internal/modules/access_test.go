package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAccess(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name     string
		module   string
		features FeatureSet
		role     Role
		want     bool
	}{
		{"feature enabled, unrestricted", ModuleAgenda, NewFeatureSet("agenda"), RoleFrontDesk, true},
		{"feature missing", ModuleAgenda, NewFeatureSet("pacientes"), RoleAdmin, false},
		{"role not allowed", ModuleRecetas, NewFeatureSet("recetas"), RoleFrontDesk, false},
		{"role allowed", ModuleRecetas, NewFeatureSet("recetas"), RoleClinician, true},
		{"core without features", ModuleDashboard, nil, RoleFrontDesk, true},
		{"core with role restriction", ModuleConfiguracion, nil, RoleClinician, false},
		{"core with role restriction, admin", ModuleConfiguracion, nil, RoleAdmin, true},
		{"unknown module", "teleport", NewFeatureSet("teleport"), RoleAdmin, false},
		{"empty module id", "", NewFeatureSet(), RoleAdmin, false},
		{"unknown role", ModuleAgenda, NewFeatureSet("agenda"), Role("intruder"), true},
		{"unknown role on restricted module", ModuleUsuarios, NewFeatureSet("usuarios"), Role("intruder"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.HasAccess(tt.module, tt.features, tt.role))
		})
	}
}

func TestHasAccess_Total(t *testing.T) {
	r := DefaultRegistry()
	ids := []string{"", "unknown", ModuleDashboard, ModuleInventario, ModuleConfiguracion}
	sets := []FeatureSet{nil, NewFeatureSet(), NewFeatureSet("inventario", "agenda")}
	roles := append([]Role{"", "nobody"}, Roles...)

	for _, id := range ids {
		for _, fs := range sets {
			for _, role := range roles {
				assert.NotPanics(t, func() { r.HasAccess(id, fs, role) })
			}
		}
	}

	var nilRegistry *Registry
	assert.False(t, nilRegistry.HasAccess(ModuleDashboard, nil, RoleAdmin))
}

func TestHasAccess_CoreBypassesFeatures(t *testing.T) {
	r := DefaultRegistry()
	for _, role := range Roles {
		assert.True(t, r.HasAccess(ModuleDashboard, nil, role), role)
		assert.True(t, r.HasAccess(ModuleDashboard, NewFeatureSet("anything"), role), role)
	}
}

// clinic-a lacks inventario; enabling it flips clinic-a only.
func TestHasAccess_FeatureToggleIsPerTenant(t *testing.T) {
	r := DefaultRegistry()
	clinicA := NewFeatureSet("agenda", "pacientes")
	clinicB := NewFeatureSet("agenda", "pacientes")

	assert.False(t, r.HasAccess(ModuleInventario, clinicA, RoleClinician))

	clinicA.Add("inventario")

	assert.True(t, r.HasAccess(ModuleInventario, clinicA, RoleClinician))
	assert.False(t, r.HasAccess(ModuleInventario, clinicB, RoleClinician))
}

func TestAvailable(t *testing.T) {
	r := DefaultRegistry()

	got := r.Available(NewFeatureSet("agenda", "pacientes", "usuarios"), RoleClinician)
	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{ModuleDashboard, ModuleAgenda, ModulePacientes}, ids)

	admin := r.Available(NewFeatureSet("agenda", "usuarios"), RoleAdmin)
	ids = ids[:0]
	for _, d := range admin {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{ModuleDashboard, ModuleAgenda, ModuleUsuarios, ModuleConfiguracion}, ids)
}
