package store

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Kind is the value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindStrings
)

// Entity declares one record type: its table, columns and writable columns.
type Entity struct {
	Name     string
	Table    string
	Model    any // pointer to the gorm model, used by GormStore
	Columns  map[string]Kind
	Writable []string
}

// HasColumn reports whether col is declared.
func (e Entity) HasColumn(col string) bool {
	_, ok := e.Columns[col]
	return ok
}

// Normalize keeps the writable columns of in and coerces JSON-decoded values
// to their column kind. Unknown or read-only columns are rejected.
func (e Entity) Normalize(in map[string]any) (Record, error) {
	writable := make(map[string]bool, len(e.Writable))
	for _, c := range e.Writable {
		writable[c] = true
	}

	out := make(Record, len(in))
	for col, v := range in {
		if !writable[col] {
			return nil, fmt.Errorf("field %q is not writable on %s", col, e.Name)
		}
		cv, err := Coerce(e.Columns[col], v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", col, err)
		}
		out[col] = cv
	}
	return out, nil
}

// Coerce converts v to the Go type used for kind. nil stays nil.
func Coerce(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindString:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("expected integer, got %v", n)
			}
			return int64(n), nil
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number: %w", err)
			}
			return f, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return nil, fmt.Errorf("expected RFC3339 time: %w", err)
			}
			return parsed.UTC(), nil
		}
	case KindStrings:
		switch s := v.(type) {
		case []string:
			return append([]string{}, s...), nil
		case pq.StringArray:
			return []string(s), nil
		case []any:
			out := make([]string, 0, len(s))
			for _, item := range s {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected list of strings")
				}
				out = append(out, str)
			}
			return out, nil
		case string, []byte:
			var arr pq.StringArray
			if err := arr.Scan(s); err != nil {
				return nil, err
			}
			return []string(arr), nil
		}
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

// Schema is the immutable set of entities known to a store.
type Schema struct {
	entities map[string]Entity
}

// NewSchema indexes entities by name. Every entity gains the id and
// timestamp columns.
func NewSchema(entities ...Entity) *Schema {
	s := &Schema{entities: make(map[string]Entity, len(entities))}
	for _, e := range entities {
		cols := make(map[string]Kind, len(e.Columns)+3)
		for k, v := range e.Columns {
			cols[k] = v
		}
		cols[ColumnID] = KindString
		cols[ColumnCreatedAt] = KindTime
		cols[ColumnUpdatedAt] = KindTime
		e.Columns = cols
		s.entities[e.Name] = e
	}
	return s
}

// Entity returns the entity named name.
func (s *Schema) Entity(name string) (Entity, error) {
	e, ok := s.entities[name]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	return e, nil
}

// Validate checks that every column q refers to is declared on its entity.
func (s *Schema) Validate(q Query) (Entity, error) {
	e, err := s.Entity(q.Entity)
	if err != nil {
		return e, err
	}
	for col := range q.Where {
		if !e.HasColumn(col) {
			return e, fmt.Errorf("unknown column %q on %s", col, e.Name)
		}
	}
	for col := range q.Data {
		if !e.HasColumn(col) {
			return e, fmt.Errorf("unknown column %q on %s", col, e.Name)
		}
	}
	if q.OrderBy != "" {
		col, _ := parseOrder(q.OrderBy)
		if !e.HasColumn(col) {
			return e, fmt.Errorf("unknown order column %q on %s", col, e.Name)
		}
	}
	return e, nil
}

func parseOrder(orderBy string) (col string, desc bool) {
	fields := strings.Fields(orderBy)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], len(fields) > 1 && strings.EqualFold(fields[1], "desc")
}

// matches reports whether value satisfies the filter value want.
func matches(value, want any) bool {
	rv := reflect.ValueOf(want)
	if want != nil && rv.Kind() == reflect.Slice {
		if _, isStrings := value.([]string); !isStrings {
			for i := 0; i < rv.Len(); i++ {
				if equal(value, rv.Index(i).Interface()) {
					return true
				}
			}
			return false
		}
	}
	return equal(value, want)
}

func equal(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
