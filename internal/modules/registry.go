package modules

import (
	"fmt"
	"sort"
)

// Descriptor describes one functional area of the application.
type Descriptor struct {
	ID      string
	Name    string
	Feature string // flag that unlocks the module; unused for core modules
	Roles   []Role // empty means every role
	Core    bool   // visible regardless of feature flags
	Order   int
	Path    string
}

// AllowsRole reports whether the descriptor admits role.
func (d Descriptor) AllowsRole(role Role) bool {
	if len(d.Roles) == 0 {
		return true
	}
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Registry is the immutable set of module descriptors. Safe for concurrent use.
type Registry struct {
	ordered []Descriptor
	byID    map[string]Descriptor
}

// NewRegistry validates descs and builds a registry ordered by Order, then ID.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		ordered: make([]Descriptor, 0, len(descs)),
		byID:    make(map[string]Descriptor, len(descs)),
	}
	for _, d := range descs {
		if d.ID == "" {
			return nil, fmt.Errorf("module descriptor without id")
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate module %q", d.ID)
		}
		if !d.Core && d.Feature == "" {
			return nil, fmt.Errorf("module %q is not core and has no feature flag", d.ID)
		}
		d.Roles = append([]Role(nil), d.Roles...)
		r.byID[d.ID] = d
		r.ordered = append(r.ordered, d)
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		if r.ordered[i].Order != r.ordered[j].Order {
			return r.ordered[i].Order < r.ordered[j].Order
		}
		return r.ordered[i].ID < r.ordered[j].ID
	})
	return r, nil
}

// MustRegistry is NewRegistry that panics on invalid input, for static tables.
func MustRegistry(descs ...Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns the descriptors in ascending display order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Module identifiers of the default registry.
const (
	ModuleDashboard     = "dashboard"
	ModuleAgenda        = "agenda"
	ModulePacientes     = "pacientes"
	ModuleFacturacion   = "facturacion"
	ModulePresupuestos  = "presupuestos"
	ModuleRecetas       = "recetas"
	ModuleLaboratorio   = "laboratorio"
	ModuleInventario    = "inventario"
	ModuleGastos        = "gastos"
	ModuleCRM           = "crm"
	ModuleReportes      = "reportes"
	ModuleWhatsApp      = "whatsapp"
	ModuleUsuarios      = "usuarios"
	ModuleConfiguracion = "configuracion"
)

var clinicalRoles = []Role{RoleAdmin, RoleClinician}
var officeRoles = []Role{RoleAdmin, RoleFrontDesk}

// DefaultRegistry returns the modules of the practice-management application.
func DefaultRegistry() *Registry {
	return MustRegistry(
		Descriptor{ID: ModuleDashboard, Name: "Dashboard", Core: true, Order: 0, Path: "/dashboard"},
		Descriptor{ID: ModuleAgenda, Name: "Agenda", Feature: "agenda", Order: 10, Path: "/agenda"},
		Descriptor{ID: ModulePacientes, Name: "Pacientes", Feature: "pacientes", Order: 20, Path: "/pacientes"},
		Descriptor{ID: ModuleFacturacion, Name: "Facturación", Feature: "facturacion", Roles: officeRoles, Order: 30, Path: "/facturacion"},
		Descriptor{ID: ModulePresupuestos, Name: "Presupuestos", Feature: "presupuestos", Order: 40, Path: "/presupuestos"},
		Descriptor{ID: ModuleRecetas, Name: "Recetas", Feature: "recetas", Roles: clinicalRoles, Order: 50, Path: "/recetas"},
		Descriptor{ID: ModuleLaboratorio, Name: "Laboratorio", Feature: "laboratorio", Roles: clinicalRoles, Order: 60, Path: "/laboratorio"},
		Descriptor{ID: ModuleInventario, Name: "Inventario", Feature: "inventario", Order: 70, Path: "/inventario"},
		Descriptor{ID: ModuleGastos, Name: "Gastos", Feature: "gastos", Roles: officeRoles, Order: 80, Path: "/gastos"},
		Descriptor{ID: ModuleCRM, Name: "CRM", Feature: "crm", Roles: officeRoles, Order: 90, Path: "/crm"},
		Descriptor{ID: ModuleReportes, Name: "Reportes", Feature: "reportes", Roles: []Role{RoleAdmin}, Order: 100, Path: "/reportes"},
		Descriptor{ID: ModuleWhatsApp, Name: "WhatsApp", Feature: "whatsapp", Roles: officeRoles, Order: 110, Path: "/whatsapp"},
		Descriptor{ID: ModuleUsuarios, Name: "Usuarios", Feature: "usuarios", Roles: []Role{RoleAdmin}, Order: 900, Path: "/usuarios"},
		Descriptor{ID: ModuleConfiguracion, Name: "Configuración", Core: true, Roles: []Role{RoleAdmin}, Order: 1000, Path: "/configuracion"},
	)
}
