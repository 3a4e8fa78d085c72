package tenancy

import (
	"context"
	"testing"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSchema() *store.Schema {
	cols := map[string]store.Kind{"organization_id": store.KindString, "name": store.KindString, "status": store.KindString}
	return store.NewSchema(
		store.Entity{Name: "patients", Columns: cols},
		store.Entity{Name: "appointments", Columns: cols},
		store.Entity{Name: "organizations", Columns: map[string]store.Kind{"name": store.KindString}},
	)
}

func newAccessors(t *testing.T) (*store.MemoryStore, *Accessor, *Accessor) {
	t.Helper()
	s := store.NewMemoryStore(testSchema())
	a, err := NewAccessor("clinic-a", s, testPolicy(), zap.NewNop())
	require.NoError(t, err)
	b, err := NewAccessor("clinic-b", s, testPolicy(), zap.NewNop())
	require.NoError(t, err)
	return s, a, b
}

func TestNewAccessor_RequiresTenant(t *testing.T) {
	_, err := NewAccessor("", store.NewMemoryStore(testSchema()), testPolicy(), nil)
	assert.Equal(t, apperr.CodeNoTenant, apperr.CodeOf(err))
}

func TestAccessor_Isolation(t *testing.T) {
	ctx := context.Background()
	_, a, b := newAccessors(t)

	for _, entity := range []string{"patients", "appointments"} {
		rec, err := a.Create(ctx, store.Query{Entity: entity, Data: store.Record{"name": "secret"}})
		require.NoError(t, err)
		id := rec["id"]

		rows, err := b.Find(ctx, store.Query{Entity: entity})
		require.NoError(t, err)
		assert.Empty(t, rows, entity)

		_, err = b.First(ctx, store.Query{Entity: entity, Where: store.Filter{"id": id}})
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err), entity)

		_, err = b.First(ctx, store.Query{Entity: entity, Where: store.Filter{"id": id, "organization_id": "clinic-a"}})
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err), "explicit foreign tenant filter is overridden")

		n, err := b.Count(ctx, store.Query{Entity: entity})
		require.NoError(t, err)
		assert.Zero(t, n)

		rows, err = a.Find(ctx, store.Query{Entity: entity})
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	}
}

func TestAccessor_CreateStampsTenant(t *testing.T) {
	ctx := context.Background()
	s, a, _ := newAccessors(t)

	rec, err := a.Create(ctx, store.Query{Entity: "patients", Data: store.Record{"name": "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "clinic-a", rec["organization_id"])

	stored, err := s.First(ctx, store.Query{Entity: "patients", Where: store.Filter{"id": rec["id"]}})
	require.NoError(t, err)
	assert.Equal(t, "clinic-a", stored["organization_id"])
}

func TestAccessor_CreateMismatchWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, a, _ := newAccessors(t)

	_, err := a.Create(ctx, store.Query{Entity: "patients", Data: store.Record{"name": "Ana", "organization_id": "clinic-b"}})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeTenantMismatch, apperr.CodeOf(err))

	n, err := s.Count(ctx, store.Query{Entity: "patients"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

// Updating another tenant's record by id affects nothing.
func TestAccessor_UpdateForeignRecord(t *testing.T) {
	ctx := context.Background()
	s, a, b := newAccessors(t)

	rec, err := b.Create(ctx, store.Query{Entity: "appointments", Data: store.Record{"status": "scheduled"}})
	require.NoError(t, err)

	n, err := a.Update(ctx, store.Query{Entity: "appointments", Where: store.Filter{"id": rec["id"]}, Data: store.Record{"status": "cancelled"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := s.First(ctx, store.Query{Entity: "appointments", Where: store.Filter{"id": rec["id"]}})
	require.NoError(t, err)
	assert.Equal(t, "scheduled", stored["status"])

	n, err = b.Update(ctx, store.Query{Entity: "appointments", Where: store.Filter{"id": rec["id"]}, Data: store.Record{"status": "cancelled"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAccessor_DeleteForeignRecord(t *testing.T) {
	ctx := context.Background()
	_, a, b := newAccessors(t)

	rec, err := b.Create(ctx, store.Query{Entity: "patients", Data: store.Record{"name": "Luis"}})
	require.NoError(t, err)

	n, err := a.Delete(ctx, store.Query{Entity: "patients"})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = b.First(ctx, store.Query{Entity: "patients", Where: store.Filter{"id": rec["id"]}})
	assert.NoError(t, err)
}

func TestAccessor_UnownedEntityPassesThrough(t *testing.T) {
	ctx := context.Background()
	s, a, _ := newAccessors(t)

	_, err := s.Create(ctx, store.Query{Entity: "organizations", Data: store.Record{"id": "clinic-b", "name": "B"}})
	require.NoError(t, err)

	rows, err := a.Find(ctx, store.Query{Entity: "organizations"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAccessor_StoreErrorIsInternal(t *testing.T) {
	ctx := context.Background()
	s, a, _ := newAccessors(t)
	require.NoError(t, s.Close())

	_, err := a.Find(ctx, store.Query{Entity: "patients"})
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestSystemAccessor_SpansTenants(t *testing.T) {
	ctx := context.Background()
	s, a, b := newAccessors(t)
	sys := NewSystemAccessor(s, nil)

	_, err := a.Create(ctx, store.Query{Entity: "patients", Data: store.Record{"name": "A"}})
	require.NoError(t, err)
	_, err = b.Create(ctx, store.Query{Entity: "patients", Data: store.Record{"name": "B"}})
	require.NoError(t, err)

	rows, err := sys.Find(ctx, store.Query{Entity: "patients"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = sys.First(ctx, store.Query{Entity: "patients", Where: store.Filter{"name": "C"}})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
