package store

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore executes queries through gorm. Entities must declare their Model.
type GormStore struct {
	db     *gorm.DB
	schema *Schema
	close  func() error
}

// NewGormStore wraps db. closeFn releases the connection pool on Close.
func NewGormStore(db *gorm.DB, schema *Schema, closeFn func() error) *GormStore {
	return &GormStore{db: db, schema: schema, close: closeFn}
}

func newModel(e Entity) (any, error) {
	if e.Model == nil {
		return nil, fmt.Errorf("entity %s has no model", e.Name)
	}
	t := reflect.TypeOf(e.Model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface(), nil
}

func (s *GormStore) prepare(ctx context.Context, q Query) (*gorm.DB, Entity, error) {
	e, err := s.schema.Validate(q)
	if err != nil {
		return nil, e, err
	}
	model, err := newModel(e)
	if err != nil {
		return nil, e, err
	}
	tx := s.db.WithContext(ctx).Model(model)
	if len(q.Where) > 0 {
		tx = tx.Where(map[string]interface{}(q.Where)) // slice values become IN
	}
	return tx, e, nil
}

// encode converts values into forms the postgres driver accepts.
func encode[M ~map[string]any](in M) M {
	out := make(M, len(in))
	for k, v := range in {
		if ss, ok := v.([]string); ok {
			v = pq.StringArray(ss)
		}
		out[k] = v
	}
	return out
}

func decode(e Entity, row map[string]any) (Record, error) {
	rec := make(Record, len(row))
	for col, v := range row {
		kind, ok := e.Columns[col]
		if !ok {
			continue // deleted_at and other gorm bookkeeping columns
		}
		cv, err := Coerce(kind, v)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", e.Name, col, err)
		}
		rec[col] = cv
	}
	return rec, nil
}

func applyWindow(tx *gorm.DB, q Query) *gorm.DB {
	col, desc := parseOrder(q.OrderBy)
	if col == "" {
		col = ColumnCreatedAt
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	return tx
}

// Find returns the matching rows.
func (s *GormStore) Find(ctx context.Context, q Query) ([]Record, error) {
	defer metrics.TrackDBOperation("find", q.Entity)(time.Now())

	tx, e, err := s.prepare(ctx, q)
	if err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	if err := applyWindow(tx, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := decode(e, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// First returns the first matching row or ErrNotFound.
func (s *GormStore) First(ctx context.Context, q Query) (Record, error) {
	q.Limit = 1
	rows, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Count returns the number of matching rows.
func (s *GormStore) Count(ctx context.Context, q Query) (int64, error) {
	defer metrics.TrackDBOperation("count", q.Entity)(time.Now())

	tx, _, err := s.prepare(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	err = tx.Count(&n).Error
	return n, err
}

// Create inserts q.Data, assigning an id and timestamps when absent.
func (s *GormStore) Create(ctx context.Context, q Query) (Record, error) {
	defer metrics.TrackDBOperation("create", q.Entity)(time.Now())

	e, err := s.schema.Validate(q)
	if err != nil {
		return nil, err
	}
	model, err := newModel(e)
	if err != nil {
		return nil, err
	}

	rec := q.Data.Clone()
	if rec == nil {
		rec = Record{}
	}
	if id, _ := rec[ColumnID].(string); id == "" {
		rec[ColumnID] = uuid.New().String()
	}
	now := time.Now().UTC()
	if _, ok := rec[ColumnCreatedAt]; !ok {
		rec[ColumnCreatedAt] = now
	}
	rec[ColumnUpdatedAt] = now

	values := map[string]interface{}(encode(rec))
	if err := s.db.WithContext(ctx).Model(model).Create(values).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies q.Data to every matching row.
func (s *GormStore) Update(ctx context.Context, q Query) (int64, error) {
	defer metrics.TrackDBOperation("update", q.Entity)(time.Now())

	tx, _, err := s.prepare(ctx, q)
	if err != nil {
		return 0, err
	}
	values := encode(q.Data)
	delete(values, ColumnID)
	values[ColumnUpdatedAt] = time.Now().UTC()

	res := tx.Updates(map[string]interface{}(values))
	return res.RowsAffected, res.Error
}

// Delete soft-deletes every matching row.
func (s *GormStore) Delete(ctx context.Context, q Query) (int64, error) {
	defer metrics.TrackDBOperation("delete", q.Entity)(time.Now())

	tx, e, err := s.prepare(ctx, q)
	if err != nil {
		return 0, err
	}
	model, err := newModel(e)
	if err != nil {
		return 0, err
	}
	// gorm refuses a delete without conditions
	res := tx.Delete(model)
	return res.RowsAffected, res.Error
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
