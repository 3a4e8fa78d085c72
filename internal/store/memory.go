package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store is closed")

// MemoryStore is an in-process Store. Rows are copied on the way in and out,
// so callers never share maps with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	schema *Schema
	// Structure: [entity][id]record
	tables map[string]map[string]Record
	closed bool
	now    func() time.Time
}

// NewMemoryStore creates an empty store for schema.
func NewMemoryStore(schema *Schema) *MemoryStore {
	return &MemoryStore{
		schema: schema,
		tables: make(map[string]map[string]Record),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) selectRows(q Query) []Record {
	var rows []Record
	for _, rec := range m.tables[q.Entity] {
		if rowMatches(rec, q.Where) {
			rows = append(rows, rec)
		}
	}
	sortRows(rows, q.OrderBy)
	return rows
}

func rowMatches(rec Record, where Filter) bool {
	for col, want := range where {
		if !matches(rec[col], want) {
			return false
		}
	}
	return true
}

func sortRows(rows []Record, orderBy string) {
	col, desc := parseOrder(orderBy)
	if col == "" {
		col = ColumnCreatedAt
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i][col], rows[j][col])
		if c == 0 {
			c = strings.Compare(asString(rows[i][ColumnID]), asString(rows[j][ColumnID]))
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(asString(a), asString(b))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func window(rows []Record, offset, limit int) []Record {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (m *MemoryStore) check(q Query) error {
	if m.closed {
		return ErrClosed
	}
	_, err := m.schema.Validate(q)
	return err
}

// Find returns the matching rows.
func (m *MemoryStore) Find(ctx context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(q); err != nil {
		return nil, err
	}

	rows := window(m.selectRows(q), q.Offset, q.Limit)
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	return out, nil
}

// First returns the first matching row or ErrNotFound.
func (m *MemoryStore) First(ctx context.Context, q Query) (Record, error) {
	q.Limit = 1
	rows, err := m.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Count returns the number of matching rows.
func (m *MemoryStore) Count(ctx context.Context, q Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(q); err != nil {
		return 0, err
	}
	return int64(len(m.selectRows(q))), nil
}

// Create inserts q.Data, assigning an id and timestamps when absent.
func (m *MemoryStore) Create(ctx context.Context, q Query) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(q); err != nil {
		return nil, err
	}

	rec := q.Data.Clone()
	if rec == nil {
		rec = Record{}
	}
	id, _ := rec[ColumnID].(string)
	if id == "" {
		id = uuid.New().String()
		rec[ColumnID] = id
	}
	now := m.now()
	if _, ok := rec[ColumnCreatedAt]; !ok {
		rec[ColumnCreatedAt] = now
	}
	rec[ColumnUpdatedAt] = now

	table := m.tables[q.Entity]
	if table == nil {
		table = make(map[string]Record)
		m.tables[q.Entity] = table
	}
	if _, dup := table[id]; dup {
		return nil, errors.New("duplicate id " + id)
	}
	table[id] = rec
	return rec.Clone(), nil
}

// Update applies q.Data to every matching row.
func (m *MemoryStore) Update(ctx context.Context, q Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(q); err != nil {
		return 0, err
	}

	now := m.now()
	var n int64
	for _, rec := range m.selectRows(q) {
		for col, v := range q.Data {
			if col == ColumnID {
				continue
			}
			rec[col] = v
		}
		rec[ColumnUpdatedAt] = now
		n++
	}
	return n, nil
}

// Delete removes every matching row.
func (m *MemoryStore) Delete(ctx context.Context, q Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(q); err != nil {
		return 0, err
	}

	var n int64
	for _, rec := range m.selectRows(q) {
		delete(m.tables[q.Entity], asString(rec[ColumnID]))
		n++
	}
	return n, nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
