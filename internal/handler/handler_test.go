package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DeXpertmx/Smile360-sub004/internal/middleware"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/internal/tenancy"
	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPassword  = "sonrisa-2024"
	webhookSecret = "whsec-test"
)

type testApp struct {
	e      *echo.Echo
	system *tenancy.SystemAccessor
	cache  *tenancy.Cache
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	base := store.NewMemoryStore(model.Schema())
	cache := tenancy.NewCache(base, tenancy.NewPolicy(model.TenantColumn, model.TenantOwned...), zap.NewNop())
	t.Cleanup(func() { _ = cache.Close() })
	system := tenancy.NewSystemAccessor(base, zap.NewNop())

	registry := modules.DefaultRegistry()
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	e := echo.New()
	gate := middleware.NewGate(tokens, middleware.GateConfig{LoginURL: "/login"})
	e.Use(middleware.Chain(gate, metrics.NewHTTPMetrics("handler-test"))...)

	h := New(Deps{
		ServiceName:   "smile360-test",
		Cache:         cache,
		System:        system,
		Registry:      registry,
		Schema:        model.Schema(),
		Tokens:        tokens,
		Guard:         middleware.NewGuard(registry, "/login", "/dashboard"),
		WebhookSecret: webhookSecret,
	})
	require.NoError(t, h.Routes(e, DefaultResources()))

	return &testApp{e: e, system: system, cache: cache}
}

func (a *testApp) call(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type account struct {
	token  string
	orgID  string
	userID string
}

func (a *testApp) register(t *testing.T, org, email, plan string) account {
	t.Helper()
	rec := a.call(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"organization_name": org,
		"plan":              plan,
		"name":              "Admin " + org,
		"email":             email,
		"password":          testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	return account{
		token:  body["token"].(string),
		orgID:  body["organization"].(map[string]any)["id"].(string),
		userID: body["user"].(map[string]any)["id"].(string),
	}
}

func (a *testApp) login(t *testing.T, email string) account {
	t.Helper()
	rec := a.call(t, http.MethodPost, "/api/auth/login", "", echo.Map{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	return account{
		token:  body["token"].(string),
		orgID:  body["organization"].(map[string]any)["id"].(string),
		userID: body["user"].(map[string]any)["id"].(string),
	}
}

func (a *testApp) addUser(t *testing.T, admin account, email string, role modules.Role) string {
	t.Helper()
	rec := a.call(t, http.MethodPost, "/api/users", admin.token, echo.Map{
		"email": email, "name": email, "password": testPassword, "role": string(role),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeMap(t, rec)["id"].(string)
}
