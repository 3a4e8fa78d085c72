package handler

import (
	"net/http"
	"testing"

	"github.com/DeXpertmx/Smile360-sub004/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	rec := app.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"smile360-test"}`, rec.Body.String())
}

func TestRegister(t *testing.T) {
	app := newTestApp(t)

	rec := app.call(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"organization_name": "Clínica Sonrisa", "email": "Admin@Sonrisa.mx", "password": testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin@sonrisa.mx", user["email"])
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "password_hash")
	assert.Equal(t, []any{}, user["permissions"])

	org := body["organization"].(map[string]any)
	assert.Equal(t, "basic", org["plan"])
	assert.Equal(t, org["id"], user["organization_id"])
	assert.ElementsMatch(t, []any{"agenda", "pacientes", "usuarios"}, org["features"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Sonrisa", "admin@sonrisa.mx", "")

	tests := []struct {
		name   string
		body   echo.Map
		status int
	}{
		{"missing organization", echo.Map{"email": "a@b.mx", "password": testPassword}, http.StatusBadRequest},
		{"short password", echo.Map{"organization_name": "X", "email": "a@b.mx", "password": "short"}, http.StatusBadRequest},
		{"unknown plan", echo.Map{"organization_name": "X", "email": "a@b.mx", "password": testPassword, "plan": "gold"}, http.StatusBadRequest},
		{"email taken", echo.Map{"organization_name": "X", "email": "ADMIN@sonrisa.mx", "password": testPassword}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.call(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeMap(t, rec)["error"])
		})
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	reg := app.register(t, "Sonrisa", "admin@sonrisa.mx", "professional")

	acct := app.login(t, "admin@sonrisa.mx")
	assert.Equal(t, reg.orgID, acct.orgID)
	assert.Equal(t, reg.userID, acct.userID)

	rec := app.call(t, http.MethodPost, "/api/auth/login", "", echo.Map{"email": "admin@sonrisa.mx", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/auth/login", "", echo.Map{"email": "nobody@sonrisa.mx", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeMap(t, rec)["error"])
}

func TestCurrentSession(t *testing.T) {
	app := newTestApp(t)
	acct := app.register(t, "Sonrisa", "admin@sonrisa.mx", "basic")

	rec := app.call(t, http.MethodGet, "/api/auth/session", acct.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, acct.orgID, body["organization_id"])
	assert.Equal(t, acct.userID, body["user_id"])
	assert.Equal(t, "Sonrisa", body["organization_name"])
	assert.Equal(t, "admin", body["role"])

	rec = app.call(t, http.MethodGet, "/api/auth/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
