package handler

import (
	"net/http"
	"testing"

	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moduleIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	var ids []string
	for _, m := range body["modules"].([]any) {
		ids = append(ids, m.(map[string]any)["id"].(string))
	}
	return ids
}

func TestListModules(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "Sonrisa", "admin@sonrisa.mx", "basic")
	app.addUser(t, admin, "doc@sonrisa.mx", modules.RoleClinician)
	doc := app.login(t, "doc@sonrisa.mx")

	rec := app.call(t, http.MethodGet, "/api/modules", admin.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"dashboard", "agenda", "pacientes", "usuarios", "configuracion"}, moduleIDs(t, decodeMap(t, rec)))

	rec = app.call(t, http.MethodGet, "/api/modules", doc.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"dashboard", "agenda", "pacientes"}, moduleIDs(t, decodeMap(t, rec)))
}

func TestGetOrganization(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "Sonrisa", "admin@sonrisa.mx", "basic")

	rec := app.call(t, http.MethodPost, "/api/patients", admin.token, echo.Map{"first_name": "Ana"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.call(t, http.MethodGet, "/api/organization", admin.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, admin.orgID, body["organization"].(map[string]any)["id"])
	usage := body["usage"].(map[string]any)
	assert.Equal(t, float64(1), usage["users"])
	assert.Equal(t, float64(3), usage["max_users"])
	assert.Equal(t, float64(1), usage["patients"])
	assert.Equal(t, float64(500), usage["max_patients"])
}

// Enabling a feature for one clinic flips its decision without touching another clinic.
func TestToggleModule_PerTenant(t *testing.T) {
	app := newTestApp(t)
	clinicA := app.register(t, "clinic-a", "admin@clinic-a.mx", "basic")
	clinicB := app.register(t, "clinic-b", "admin@clinic-b.mx", "basic")
	app.addUser(t, clinicA, "doc@clinic-a.mx", modules.RoleClinician)

	doc := app.login(t, "doc@clinic-a.mx")
	rec := app.call(t, http.MethodGet, "/api/inventory", doc.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["error"], "Inventario")

	rec = app.call(t, http.MethodPut, "/api/organization/modules/inventario", clinicA.token, echo.Map{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Contains(t, body["features"], "inventario")

	// the reissued token already carries the feature
	rec = app.call(t, http.MethodGet, "/api/inventory", body["token"].(string), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	doc = app.login(t, "doc@clinic-a.mx")
	rec = app.call(t, http.MethodGet, "/api/inventory", doc.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.call(t, http.MethodGet, "/api/inventory", app.login(t, "admin@clinic-b.mx").token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.call(t, http.MethodGet, "/api/inventory", clinicB.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.call(t, http.MethodPut, "/api/organization/modules/inventario", clinicA.token, echo.Map{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeMap(t, rec)["features"], "inventario")
}

func TestToggleModule_AdminOnly(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "Sonrisa", "admin@sonrisa.mx", "basic")
	app.addUser(t, admin, "front@sonrisa.mx", modules.RoleFrontDesk)
	front := app.login(t, "front@sonrisa.mx")

	rec := app.call(t, http.MethodPut, "/api/organization/modules/crm", front.token, echo.Map{"enabled": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.call(t, http.MethodGet, "/api/organization", admin.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeMap(t, rec)["organization"].(map[string]any)["features"], "crm")
}

func TestToggleModule_Validation(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "Sonrisa", "admin@sonrisa.mx", "basic")

	tests := []struct {
		name   string
		module string
		body   any
		status int
	}{
		{"core module", "dashboard", echo.Map{"enabled": false}, http.StatusBadRequest},
		{"unknown module", "teleport", echo.Map{"enabled": true}, http.StatusNotFound},
		{"missing flag", "crm", echo.Map{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.call(t, http.MethodPut, "/api/organization/modules/"+tt.module, admin.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
