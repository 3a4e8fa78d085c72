// Package handler serves the HTTP API of the practice-management core.
package handler

import (
	"fmt"
	"net/http"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/middleware"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/session"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/internal/tenancy"
	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	ServiceName   string
	Cache         *tenancy.Cache
	System        *tenancy.SystemAccessor
	Registry      *modules.Registry
	Schema        *store.Schema
	Tokens        *jwtutil.JWTUtil
	Guard         *middleware.Guard
	WebhookSecret string
}

// Handler holds the HTTP handlers.
type Handler struct {
	Deps
}

// New creates the handlers over deps.
func New(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// Routes registers every route on e. Resources are mounted under /api,
// each behind the guard of its module.
func (h *Handler) Routes(e *echo.Echo, resources []Resource) error {
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", MetricsHandler)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.RegisterOrganization)
	auth.POST("/login", h.Login)
	auth.GET("/session", h.CurrentSession)

	api.GET("/modules", h.ListModules)
	api.GET("/organization", h.GetOrganization)
	api.PUT("/organization/modules/:id", h.ToggleModule, h.Guard.Module(modules.ModuleConfiguracion))

	users := api.Group("/users", h.Guard.Module(modules.ModuleUsuarios))
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser, h.Guard.Role(modules.RoleAdmin))
	users.PATCH("/:id/status", h.UpdateUserStatus, h.Guard.Role(modules.RoleAdmin))

	for _, r := range resources {
		entity, err := h.Schema.Entity(r.Entity)
		if err != nil {
			return fmt.Errorf("resource %s: %w", r.Path, err)
		}
		rh := &resourceHandler{Handler: h, res: r, entity: entity}
		g := api.Group(r.Path, h.Guard.Module(r.Module))
		g.GET("", rh.List)
		g.POST("", rh.Create)
		g.GET("/:id", rh.Get)
		g.PATCH("/:id", rh.Update)
		g.DELETE("/:id", rh.Delete)
	}

	api.POST("/webhooks/billing", h.BillingWebhook)
	return nil
}

// tenant returns the request session and the accessor bound to its
// organization. Tokens outlive a suspension, so the organization status is
// checked on every request rather than only at login.
func (h *Handler) tenant(c echo.Context) (*session.Session, *tenancy.Accessor, error) {
	sess, err := session.FromEcho(c)
	if err != nil {
		return nil, nil, &apperr.Error{Code: apperr.CodeUnauthenticated, Msg: "authentication required", Err: err}
	}
	acc, err := h.Cache.For(sess.OrganizationID)
	if err != nil {
		return nil, nil, err
	}
	org, err := organization(c, acc)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, nil, apperr.New(apperr.CodeNoTenant, "organization no longer exists")
	}
	if err != nil {
		return nil, nil, err
	}
	if stringValue(org["status"]) != model.OrgStatusActive {
		return nil, nil, apperr.New(apperr.CodeNoTenant, "organization is suspended")
	}
	return sess, acc, nil
}

// organization loads the record of the organization acc is bound to.
func organization(c echo.Context, acc *tenancy.Accessor) (store.Record, error) {
	return acc.First(c.Request().Context(), store.Query{
		Entity: model.EntityOrganizations,
		Where:  store.Filter{store.ColumnID: acc.TenantID()},
	})
}

// respondError writes err as a JSON error body.
func respondError(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	log := logger.FromEcho(c)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Info("Request refused", zap.Int("status", status), zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": apperr.PublicMessage(err)})
}

// decodeBody reads a JSON object body without binding path or query values.
func decodeBody(c echo.Context) (map[string]any, error) {
	var body map[string]any
	if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
		return nil, apperr.New(apperr.CodeInvalid, "invalid request body")
	}
	if body == nil {
		return nil, apperr.New(apperr.CodeInvalid, "request body must be a JSON object")
	}
	return body, nil
}

func (h *Handler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
}

// pathID returns the :id parameter in canonical uuid form, so comparisons
// agree with the database. Anything that is not a uuid cannot exist and is
// reported as not found.
func pathID(c echo.Context, entity string) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", apperr.New(apperr.CodeNotFound, "%s not found", entity)
	}
	return id.String(), nil
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func stringsValue(v any) []string {
	ss, _ := v.([]string)
	return ss
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
