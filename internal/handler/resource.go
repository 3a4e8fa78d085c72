package handler

import (
	"net/http"
	"strconv"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/internal/tenancy"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Resource mounts CRUD routes for one tenant-owned entity.
type Resource struct {
	Path       string
	Module     string
	Entity     string
	Required   []string
	References map[string]string // column -> entity the value must identify within the tenant
	Filters    []string          // columns accepted as list query parameters
	LimitField string            // organization column capping the number of records
}

// DefaultResources are the tenant-owned records served by the API.
func DefaultResources() []Resource {
	patientRef := map[string]string{"patient_id": model.EntityPatients, "doctor_id": model.EntityUsers}
	return []Resource{
		{
			Path: "/patients", Module: modules.ModulePacientes, Entity: model.EntityPatients,
			Required: []string{"first_name"}, Filters: []string{"status", "last_name"}, LimitField: "max_patients",
		},
		{
			Path: "/appointments", Module: modules.ModuleAgenda, Entity: model.EntityAppointments,
			Required: []string{"patient_id", "starts_at"}, References: patientRef, Filters: []string{"patient_id", "doctor_id", "status"},
		},
		{
			Path: "/invoices", Module: modules.ModuleFacturacion, Entity: model.EntityInvoices,
			Required: []string{"patient_id", "total"}, References: map[string]string{"patient_id": model.EntityPatients},
			Filters: []string{"patient_id", "status"},
		},
		{
			Path: "/budgets", Module: modules.ModulePresupuestos, Entity: model.EntityBudgets,
			Required: []string{"patient_id", "title"}, References: patientRef, Filters: []string{"patient_id", "status"},
		},
		{
			Path: "/prescriptions", Module: modules.ModuleRecetas, Entity: model.EntityPrescriptions,
			Required: []string{"patient_id", "medications"}, References: patientRef, Filters: []string{"patient_id", "doctor_id"},
		},
		{
			Path: "/lab-orders", Module: modules.ModuleLaboratorio, Entity: model.EntityLabOrders,
			Required: []string{"patient_id", "work_type"}, References: patientRef, Filters: []string{"patient_id", "status"},
		},
		{
			Path: "/expenses", Module: modules.ModuleGastos, Entity: model.EntityExpenses,
			Required: []string{"category", "amount"}, Filters: []string{"category"},
		},
		{
			Path: "/inventory", Module: modules.ModuleInventario, Entity: model.EntityInventoryItems,
			Required: []string{"name"}, Filters: []string{"category", "sku"},
		},
		{
			Path: "/leads", Module: modules.ModuleCRM, Entity: model.EntityLeads,
			Required: []string{"name"}, Filters: []string{"status", "source"},
		},
	}
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type resourceHandler struct {
	*Handler
	res    Resource
	entity store.Entity
}

func (r *resourceHandler) byID(c echo.Context) (store.Filter, error) {
	id, err := pathID(c, r.res.Entity)
	if err != nil {
		return nil, err
	}
	return store.Filter{store.ColumnID: id}, nil
}

// List returns the tenant's records, filtered by the accepted query parameters
func (r *resourceHandler) List(c echo.Context) error {
	_, acc, err := r.tenant(c)
	if err != nil {
		return respondError(c, err)
	}

	where := store.Filter{}
	for _, col := range r.res.Filters {
		if v := c.QueryParam(col); v != "" {
			where[col] = v
		}
	}
	limit := defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	offset := 0
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}

	rows, err := acc.Find(c.Request().Context(), store.Query{
		Entity:  r.res.Entity,
		Where:   where,
		OrderBy: store.ColumnCreatedAt + " desc",
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Get returns one record of the tenant
func (r *resourceHandler) Get(c echo.Context) error {
	_, acc, err := r.tenant(c)
	if err != nil {
		return respondError(c, err)
	}
	where, err := r.byID(c)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := acc.First(c.Request().Context(), store.Query{Entity: r.res.Entity, Where: where})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Create inserts a record for the tenant
func (r *resourceHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	_, acc, err := r.tenant(c)
	if err != nil {
		return respondError(c, err)
	}
	data, err := r.input(c)
	if err != nil {
		return respondError(c, err)
	}
	for _, col := range r.res.Required {
		if v, ok := data[col]; !ok || v == nil || v == "" {
			return respondError(c, apperr.New(apperr.CodeInvalid, "%s is required", col))
		}
	}
	if err := r.checkReferences(c, acc, data); err != nil {
		return respondError(c, err)
	}
	if err := r.checkLimit(c, acc); err != nil {
		return respondError(c, err)
	}

	rec, err := acc.Create(ctx, store.Query{Entity: r.res.Entity, Data: data})
	if err != nil {
		return respondError(c, err)
	}
	log.Info("Record created", zap.String("entity", r.res.Entity), zap.Any("id", rec[store.ColumnID]))
	return c.JSON(http.StatusCreated, rec)
}

// Update patches a record of the tenant. A record of another tenant is
// reported as not found.
func (r *resourceHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	_, acc, err := r.tenant(c)
	if err != nil {
		return respondError(c, err)
	}
	where, err := r.byID(c)
	if err != nil {
		return respondError(c, err)
	}
	data, err := r.input(c)
	if err != nil {
		return respondError(c, err)
	}
	if len(data) == 0 {
		return respondError(c, apperr.New(apperr.CodeInvalid, "nothing to update"))
	}
	if err := r.checkReferences(c, acc, data); err != nil {
		return respondError(c, err)
	}

	n, err := acc.Update(ctx, store.Query{Entity: r.res.Entity, Where: where, Data: data})
	if err != nil {
		return respondError(c, err)
	}
	if n == 0 {
		return respondError(c, apperr.New(apperr.CodeNotFound, "%s not found", r.res.Entity))
	}

	rec, err := acc.First(ctx, store.Query{Entity: r.res.Entity, Where: where})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Delete removes a record of the tenant
func (r *resourceHandler) Delete(c echo.Context) error {
	_, acc, err := r.tenant(c)
	if err != nil {
		return respondError(c, err)
	}
	where, err := r.byID(c)
	if err != nil {
		return respondError(c, err)
	}
	n, err := acc.Delete(c.Request().Context(), store.Query{Entity: r.res.Entity, Where: where})
	if err != nil {
		return respondError(c, err)
	}
	if n == 0 {
		return respondError(c, apperr.New(apperr.CodeNotFound, "%s not found", r.res.Entity))
	}
	logger.FromEcho(c).Info("Record deleted", zap.String("entity", r.res.Entity), zap.String("id", c.Param("id")))
	return c.NoContent(http.StatusNoContent)
}

func (r *resourceHandler) input(c echo.Context) (store.Record, error) {
	body, err := decodeBody(c)
	if err != nil {
		return nil, err
	}
	data, err := r.entity.Normalize(body)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalid, "%v", err)
	}
	return data, nil
}

// checkReferences verifies that referenced records exist within the tenant
// and rewrites each reference in canonical uuid form.
func (r *resourceHandler) checkReferences(c echo.Context, acc *tenancy.Accessor, data store.Record) error {
	for col, entity := range r.res.References {
		v, ok := data[col]
		if !ok || v == nil || v == "" {
			continue
		}
		ref, err := uuid.Parse(stringValue(v))
		if err != nil {
			return apperr.New(apperr.CodeInvalid, "%s does not identify an existing record", col)
		}
		data[col] = ref.String()
		n, err := acc.Count(c.Request().Context(), store.Query{Entity: entity, Where: store.Filter{store.ColumnID: data[col]}})
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.New(apperr.CodeInvalid, "%s does not identify an existing record", col)
		}
	}
	return nil
}

func (r *resourceHandler) checkLimit(c echo.Context, acc *tenancy.Accessor) error {
	if r.res.LimitField == "" {
		return nil
	}
	org, err := organization(c, acc)
	if err != nil {
		return err
	}
	current, err := acc.Count(c.Request().Context(), store.Query{Entity: r.res.Entity})
	if err != nil {
		return err
	}
	if limit := intValue(org[r.res.LimitField]); !modules.WithinLimit(limit, current) {
		return apperr.New(apperr.CodeLimitExceeded, "your plan allows at most %d %s", limit, r.res.Entity)
	}
	return nil
}
