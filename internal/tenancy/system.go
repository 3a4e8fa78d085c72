package tenancy

import (
	"context"

	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"go.uber.org/zap"
)

// SystemAccessor runs queries without tenant scoping. Only code paths that
// legitimately span organizations hold one: registration, login lookup and
// billing-provider webhooks.
type SystemAccessor struct {
	store store.Store
	log   *zap.Logger
}

// NewSystemAccessor wraps s without any tenant binding.
func NewSystemAccessor(s store.Store, log *zap.Logger) *SystemAccessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &SystemAccessor{store: s, log: log.With(zap.Bool("system_accessor", true))}
}

func (s *SystemAccessor) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	rows, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, storeError(err, "system.Find", q.Entity)
	}
	return rows, nil
}

func (s *SystemAccessor) First(ctx context.Context, q store.Query) (store.Record, error) {
	rec, err := s.store.First(ctx, q)
	if err != nil {
		return nil, storeError(err, "system.First", q.Entity)
	}
	return rec, nil
}

func (s *SystemAccessor) Count(ctx context.Context, q store.Query) (int64, error) {
	n, err := s.store.Count(ctx, q)
	if err != nil {
		return 0, storeError(err, "system.Count", q.Entity)
	}
	return n, nil
}

func (s *SystemAccessor) Create(ctx context.Context, q store.Query) (store.Record, error) {
	rec, err := s.store.Create(ctx, q)
	if err != nil {
		return nil, storeError(err, "system.Create", q.Entity)
	}
	s.log.Info("System record created", zap.String("entity", q.Entity), zap.Any("id", rec[store.ColumnID]))
	return rec, nil
}

func (s *SystemAccessor) Update(ctx context.Context, q store.Query) (int64, error) {
	n, err := s.store.Update(ctx, q)
	if err != nil {
		return 0, storeError(err, "system.Update", q.Entity)
	}
	s.log.Info("System records updated", zap.String("entity", q.Entity), zap.Int64("rows", n))
	return n, nil
}
