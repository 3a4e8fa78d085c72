package tenancy

import (
	"context"
	"errors"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"go.uber.org/zap"
)

// Accessor runs store queries on behalf of exactly one organization.
type Accessor struct {
	tenantID string
	store    store.Store
	policy   *Policy
	log      *zap.Logger
}

// NewAccessor binds s to tenantID. An empty tenantID is rejected before any
// store call can happen.
func NewAccessor(tenantID string, s store.Store, policy *Policy, log *zap.Logger) (*Accessor, error) {
	if tenantID == "" {
		return nil, &apperr.Error{Code: apperr.CodeNoTenant, Op: "tenancy.NewAccessor", Msg: "organization id is required"}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Accessor{
		tenantID: tenantID,
		store:    s,
		policy:   policy,
		log:      log.With(zap.String("organization_id", tenantID)),
	}, nil
}

// TenantID returns the organization the accessor is bound to.
func (a *Accessor) TenantID() string {
	return a.tenantID
}

func (a *Accessor) scope(ctx context.Context, op Operation, q store.Query) (store.Query, error) {
	scoped, err := a.policy.Scope(op, q, a.tenantID)
	if err != nil && apperr.Is(err, apperr.CodeTenantMismatch) {
		metrics.RecordTenantMismatch(q.Entity)
		logger.FromContext(ctx).Error("Cross-tenant write rejected",
			zap.String("organization_id", a.tenantID),
			zap.String("entity", q.Entity),
			zap.String("operation", op.String()),
			zap.Any("conflicting_value", q.Data[a.policy.Column()]),
			zap.Error(err))
	}
	return scoped, err
}

// storeError classifies errors coming back from the store.
func storeError(err error, op string, entity string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &apperr.Error{Code: apperr.CodeNotFound, Op: op, Msg: entity + " not found", Err: err}
	}
	return apperr.Wrap(err, op)
}

// Find returns the tenant's records matching q.
func (a *Accessor) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	scoped, err := a.scope(ctx, OpRead, q)
	if err != nil {
		return nil, err
	}
	rows, err := a.store.Find(ctx, scoped)
	if err != nil {
		return nil, storeError(err, "tenancy.Find", q.Entity)
	}
	return rows, nil
}

// First returns the tenant's first record matching q. A record owned by
// another tenant is reported exactly like a missing one.
func (a *Accessor) First(ctx context.Context, q store.Query) (store.Record, error) {
	scoped, err := a.scope(ctx, OpRead, q)
	if err != nil {
		return nil, err
	}
	rec, err := a.store.First(ctx, scoped)
	if err != nil {
		return nil, storeError(err, "tenancy.First", q.Entity)
	}
	return rec, nil
}

// Count counts the tenant's records matching q.
func (a *Accessor) Count(ctx context.Context, q store.Query) (int64, error) {
	scoped, err := a.scope(ctx, OpRead, q)
	if err != nil {
		return 0, err
	}
	n, err := a.store.Count(ctx, scoped)
	if err != nil {
		return 0, storeError(err, "tenancy.Count", q.Entity)
	}
	return n, nil
}

// Create inserts q.Data stamped with the tenant id.
func (a *Accessor) Create(ctx context.Context, q store.Query) (store.Record, error) {
	scoped, err := a.scope(ctx, OpCreate, q)
	if err != nil {
		return nil, err
	}
	rec, err := a.store.Create(ctx, scoped)
	if err != nil {
		return nil, storeError(err, "tenancy.Create", q.Entity)
	}
	a.log.Debug("Record created", zap.String("entity", q.Entity), zap.Any("id", rec[store.ColumnID]))
	return rec, nil
}

// Update applies q.Data to the tenant's records matching q.Where and returns
// the number of rows changed.
func (a *Accessor) Update(ctx context.Context, q store.Query) (int64, error) {
	scoped, err := a.scope(ctx, OpUpdate, q)
	if err != nil {
		return 0, err
	}
	n, err := a.store.Update(ctx, scoped)
	if err != nil {
		return 0, storeError(err, "tenancy.Update", q.Entity)
	}
	return n, nil
}

// Delete removes the tenant's records matching q.Where.
func (a *Accessor) Delete(ctx context.Context, q store.Query) (int64, error) {
	scoped, err := a.scope(ctx, OpDelete, q)
	if err != nil {
		return 0, err
	}
	n, err := a.store.Delete(ctx, scoped)
	if err != nil {
		return 0, storeError(err, "tenancy.Delete", q.Entity)
	}
	return n, nil
}
