// Package model holds the persistent records of the practice-management
// domain and the store schema describing them.
package model

import (
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
)

// TenantColumn partitions every tenant-owned table.
const TenantColumn = "organization_id"

// Entity names
const (
	EntityOrganizations  = "organizations"
	EntityUsers          = "users"
	EntityPatients       = "patients"
	EntityAppointments   = "appointments"
	EntityInvoices       = "invoices"
	EntityBudgets        = "budgets"
	EntityPrescriptions  = "prescriptions"
	EntityLabOrders      = "lab_orders"
	EntityExpenses       = "expenses"
	EntityInventoryItems = "inventory_items"
	EntityLeads          = "leads"
)

// TenantOwned lists the entities whose rows belong to one organization.
// Organizations themselves are not tenant-owned.
var TenantOwned = []string{
	EntityUsers,
	EntityPatients,
	EntityAppointments,
	EntityInvoices,
	EntityBudgets,
	EntityPrescriptions,
	EntityLabOrders,
	EntityExpenses,
	EntityInventoryItems,
	EntityLeads,
}

// column kind shorthands for the table below
const (
	text    = store.KindString
	integer = store.KindInt
	number  = store.KindFloat
	stamp   = store.KindTime
	list    = store.KindStrings
)

var entities = []store.Entity{
	{
		Name:  EntityOrganizations,
		Model: &Organization{},
		Columns: map[string]store.Kind{
			"name": text, "email": text, "phone": text, "address": text, "plan": text, "status": text,
			"features": list, "max_users": integer, "max_patients": integer,
		},
		Writable: []string{"name", "email", "phone", "address"},
	},
	{
		Name:  EntityUsers,
		Model: &User{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "email": text, "password_hash": text, "name": text, "role": text, "status": text,
			"permissions": list, "last_login_at": stamp,
		},
		Writable: []string{"email", "name", "role", "permissions"},
	},
	{
		Name:  EntityPatients,
		Model: &Patient{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "first_name": text, "last_name": text, "email": text, "phone": text, "birth_date": stamp,
			"gender": text, "address": text, "allergies": list, "notes": text, "status": text,
		},
		Writable: []string{"first_name", "last_name", "email", "phone", "birth_date", "gender", "address", "allergies", "notes", "status"},
	},
	{
		Name:  EntityAppointments,
		Model: &Appointment{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "patient_id": text, "doctor_id": text, "starts_at": stamp, "ends_at": stamp,
			"treatment": text, "status": text, "notes": text,
		},
		Writable: []string{"patient_id", "doctor_id", "starts_at", "ends_at", "treatment", "status", "notes"},
	},
	{
		Name:  EntityInvoices,
		Model: &Invoice{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "patient_id": text, "folio": text, "issued_at": stamp, "subtotal": number, "tax": number,
			"total": number, "payment_method": text, "status": text,
		},
		Writable: []string{"patient_id", "folio", "issued_at", "subtotal", "tax", "total", "payment_method", "status"},
	},
	{
		Name:  EntityBudgets,
		Model: &Budget{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "patient_id": text, "doctor_id": text, "title": text, "total": number, "valid_until": stamp,
			"status": text, "notes": text,
		},
		Writable: []string{"patient_id", "doctor_id", "title", "total", "valid_until", "status", "notes"},
	},
	{
		Name:  EntityPrescriptions,
		Model: &Prescription{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "patient_id": text, "doctor_id": text, "medications": list, "instructions": text, "issued_at": stamp,
		},
		Writable: []string{"patient_id", "doctor_id", "medications", "instructions", "issued_at"},
	},
	{
		Name:  EntityLabOrders,
		Model: &LabOrder{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "patient_id": text, "doctor_id": text, "laboratory": text, "work_type": text, "due_date": stamp,
			"cost": number, "status": text, "notes": text,
		},
		Writable: []string{"patient_id", "doctor_id", "laboratory", "work_type", "due_date", "cost", "status", "notes"},
	},
	{
		Name:  EntityExpenses,
		Model: &Expense{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "category": text, "description": text, "amount": number, "spent_at": stamp,
			"payment_method": text, "supplier": text,
		},
		Writable: []string{"category", "description", "amount", "spent_at", "payment_method", "supplier"},
	},
	{
		Name:  EntityInventoryItems,
		Model: &InventoryItem{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "name": text, "sku": text, "category": text, "unit": text, "quantity": integer, "min_stock": integer, "unit_cost": number,
		},
		Writable: []string{"name", "sku", "category", "unit", "quantity", "min_stock", "unit_cost"},
	},
	{
		Name:  EntityLeads,
		Model: &Lead{},
		Columns: map[string]store.Kind{
			TenantColumn: text, "name": text, "email": text, "phone": text, "source": text, "status": text, "notes": text,
		},
		Writable: []string{"name", "email", "phone", "source", "status", "notes"},
	},
}

// Schema returns the store schema of every persisted entity.
func Schema() *store.Schema {
	out := make([]store.Entity, len(entities))
	for idx, e := range entities {
		e.Table = e.Name
		out[idx] = e
	}
	return store.NewSchema(out...)
}

// All returns the gorm models to migrate.
func All() []interface{} {
	return []interface{}{
		&Organization{},
		&User{},
		&Patient{},
		&Appointment{},
		&Invoice{},
		&Budget{},
		&Prescription{},
		&LabOrder{},
		&Expense{},
		&InventoryItem{},
		&Lead{},
	}
}
