package tenancy

import (
	"testing"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *Policy {
	return NewPolicy("organization_id", "patients", "appointments")
}

func TestScope_ReadInjectsTenant(t *testing.T) {
	q := store.Query{Entity: "patients", Where: store.Filter{"last_name": "Pérez"}}

	got, err := testPolicy().Scope(OpRead, q, "clinic-a")
	require.NoError(t, err)

	assert.Equal(t, store.Filter{"last_name": "Pérez", "organization_id": "clinic-a"}, got.Where)
	assert.Equal(t, store.Filter{"last_name": "Pérez"}, q.Where, "caller query must not be mutated")
}

func TestScope_ReadWithoutWhere(t *testing.T) {
	got, err := testPolicy().Scope(OpRead, store.Query{Entity: "patients"}, "clinic-a")
	require.NoError(t, err)
	assert.Equal(t, store.Filter{"organization_id": "clinic-a"}, got.Where)
}

func TestScope_CallerCannotOverrideTenant(t *testing.T) {
	for _, op := range []Operation{OpRead, OpUpdate, OpDelete} {
		t.Run(op.String(), func(t *testing.T) {
			q := store.Query{Entity: "patients", Where: store.Filter{"organization_id": "clinic-b"}}

			got, err := testPolicy().Scope(op, q, "clinic-a")
			require.NoError(t, err)
			assert.Equal(t, "clinic-a", got.Where["organization_id"])
			assert.Equal(t, "clinic-b", q.Where["organization_id"])
		})
	}
}

// An update by id alone runs as update by id and organization.
func TestScope_UpdateByID(t *testing.T) {
	q := store.Query{
		Entity: "appointments",
		Where:  store.Filter{"id": "X"},
		Data:   store.Record{"status": "cancelled"},
	}

	got, err := testPolicy().Scope(OpUpdate, q, "T")
	require.NoError(t, err)
	assert.Equal(t, store.Filter{"id": "X", "organization_id": "T"}, got.Where)
	assert.Equal(t, store.Record{"status": "cancelled"}, got.Data)
}

func TestScope_UpdateCannotMoveTenant(t *testing.T) {
	q := store.Query{
		Entity: "appointments",
		Where:  store.Filter{"id": "X"},
		Data:   store.Record{"status": "done", "organization_id": "clinic-b"},
	}
	_, err := testPolicy().Scope(OpUpdate, q, "clinic-a")
	assert.Equal(t, apperr.CodeTenantMismatch, apperr.CodeOf(err))

	q.Data["organization_id"] = "clinic-a"
	got, err := testPolicy().Scope(OpUpdate, q, "clinic-a")
	require.NoError(t, err)
	assert.NotContains(t, got.Data, "organization_id")
	assert.Contains(t, q.Data, "organization_id")
}

func TestScope_CreateStamps(t *testing.T) {
	q := store.Query{Entity: "patients", Data: store.Record{"first_name": "Ana"}}

	got, err := testPolicy().Scope(OpCreate, q, "clinic-a")
	require.NoError(t, err)
	assert.Equal(t, "clinic-a", got.Data["organization_id"])
	assert.NotContains(t, q.Data, "organization_id")

	got, err = testPolicy().Scope(OpCreate, store.Query{Entity: "patients"}, "clinic-a")
	require.NoError(t, err)
	assert.Equal(t, store.Record{"organization_id": "clinic-a"}, got.Data)
}

func TestScope_CreateSameTenantAccepted(t *testing.T) {
	for _, v := range []any{"clinic-a", ""} {
		q := store.Query{Entity: "patients", Data: store.Record{"organization_id": v}}
		got, err := testPolicy().Scope(OpCreate, q, "clinic-a")
		require.NoError(t, err)
		assert.Equal(t, "clinic-a", got.Data["organization_id"])
	}
}

func TestScope_CreateMismatch(t *testing.T) {
	for _, v := range []any{"clinic-b", 42} {
		q := store.Query{Entity: "patients", Data: store.Record{"organization_id": v}}
		_, err := testPolicy().Scope(OpCreate, q, "clinic-a")
		assert.Equal(t, apperr.CodeTenantMismatch, apperr.CodeOf(err), "%v", v)
	}
}

func TestScope_UnownedPassesThrough(t *testing.T) {
	q := store.Query{Entity: "organizations", Where: store.Filter{"id": "clinic-b"}}
	for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete} {
		got, err := testPolicy().Scope(op, q, "clinic-a")
		require.NoError(t, err)
		assert.Equal(t, q, got)
	}
}

func TestScope_NoTenant(t *testing.T) {
	_, err := testPolicy().Scope(OpRead, store.Query{Entity: "patients"}, "")
	assert.Equal(t, apperr.CodeNoTenant, apperr.CodeOf(err))
}

func TestScope_UnknownOperation(t *testing.T) {
	_, err := testPolicy().Scope(Operation(99), store.Query{Entity: "patients"}, "clinic-a")
	assert.Error(t, err)
	assert.Equal(t, "Operation(99)", Operation(99).String())
}
