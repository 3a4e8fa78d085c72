// Package tenancy confines store queries to one organization.
//
// Scope is the pure rewrite applied to every query against a tenant-owned
// entity; Accessor applies it in front of a store for one organization;
// Cache hands out accessors keyed by organization id. SystemAccessor is the
// explicit, unscoped path for cross-tenant work such as registration.
package tenancy

import (
	"fmt"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
)

// Operation is the kind of store call being scoped.
type Operation int

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// Policy names the tenant column and the entities partitioned by it.
type Policy struct {
	column string
	owned  map[string]struct{}
}

// NewPolicy returns a policy for the given tenant column and owned entities.
func NewPolicy(column string, owned ...string) *Policy {
	p := &Policy{column: column, owned: make(map[string]struct{}, len(owned))}
	for _, e := range owned {
		p.owned[e] = struct{}{}
	}
	return p
}

// Column returns the tenant column name.
func (p *Policy) Column() string {
	return p.column
}

// Owns reports whether entity is tenant-owned.
func (p *Policy) Owns(entity string) bool {
	_, ok := p.owned[entity]
	return ok
}

// Scope returns q confined to tenantID. It never mutates q.
//
// Reads, updates and deletes get the tenant column forced into Where,
// replacing any caller value. Creates get the tenant column stamped into
// Data; a different value already present is a TenantMismatch. Updates may
// not move a record to another tenant either. Entities outside the policy
// pass through unchanged.
func (p *Policy) Scope(op Operation, q store.Query, tenantID string) (store.Query, error) {
	if tenantID == "" {
		return q, &apperr.Error{Code: apperr.CodeNoTenant, Op: "tenancy.Scope", Msg: "no organization bound to accessor"}
	}
	if !p.Owns(q.Entity) {
		return q, nil
	}

	out := q
	switch op {
	case OpCreate:
		data := q.Data.Clone()
		if data == nil {
			data = store.Record{}
		}
		if err := p.checkTenantValue(op, q.Entity, data[p.column], tenantID); err != nil {
			return q, err
		}
		data[p.column] = tenantID
		out.Data = data
	case OpUpdate:
		if v, ok := q.Data[p.column]; ok {
			if err := p.checkTenantValue(op, q.Entity, v, tenantID); err != nil {
				return q, err
			}
			data := q.Data.Clone()
			delete(data, p.column)
			out.Data = data
		}
		fallthrough
	case OpRead, OpDelete:
		where := store.Filter{}
		if q.Where != nil {
			where = q.Where.Clone()
		}
		where[p.column] = tenantID
		out.Where = where
	default:
		return q, apperr.New(apperr.CodeInternal, "unknown operation %v", op)
	}
	return out, nil
}

func (p *Policy) checkTenantValue(op Operation, entity string, v any, tenantID string) error {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && (s == "" || s == tenantID) {
		return nil
	}
	return &apperr.Error{
		Code: apperr.CodeTenantMismatch,
		Op:   "tenancy.Scope",
		Msg:  fmt.Sprintf("%s on %s carries %s=%v, accessor is bound to %s", op, entity, p.column, v, tenantID),
	}
}
