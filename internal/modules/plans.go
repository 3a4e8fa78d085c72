package modules

import "fmt"

// Unlimited marks a limit without a ceiling.
const Unlimited = -1

// Plan is a subscription tier: which features it enables and its limits.
type Plan struct {
	ID          string
	Name        string
	Features    []string
	MaxUsers    int
	MaxPatients int
}

// Plan identifiers.
const (
	PlanBasic        = "basic"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

var plans = map[string]Plan{
	PlanBasic: {
		ID:          PlanBasic,
		Name:        "Básico",
		Features:    []string{"agenda", "pacientes", "usuarios"},
		MaxUsers:    3,
		MaxPatients: 500,
	},
	PlanProfessional: {
		ID:          PlanProfessional,
		Name:        "Profesional",
		Features:    []string{"agenda", "pacientes", "usuarios", "facturacion", "presupuestos", "recetas", "gastos"},
		MaxUsers:    10,
		MaxPatients: 5000,
	},
	PlanEnterprise: {
		ID:   PlanEnterprise,
		Name: "Empresarial",
		Features: []string{"agenda", "pacientes", "usuarios", "facturacion", "presupuestos", "recetas",
			"gastos", "laboratorio", "inventario", "crm", "reportes", "whatsapp"},
		MaxUsers:    Unlimited,
		MaxPatients: Unlimited,
	},
}

// GetPlan returns the plan with id.
func GetPlan(id string) (Plan, error) {
	p, ok := plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("unknown plan %q", id)
	}
	return p, nil
}

// FeatureSet returns the plan's features as a new set.
func (p Plan) FeatureSet() FeatureSet {
	return NewFeatureSet(p.Features...)
}

// WithinLimit reports whether one more item fits under limit given current usage.
func WithinLimit(limit int, current int64) bool {
	return limit == Unlimited || current < int64(limit)
}
