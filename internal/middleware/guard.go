package middleware

import (
	"net/http"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/session"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Decision is the outcome of a route-level check. RedirectURL is set when
// access is refused and a page route should navigate elsewhere.
type Decision struct {
	HasAccess   bool
	Session     *session.Session
	RedirectURL string
	Err         error
}

// Guard authorizes a request for one module or action. The gate has
// already proved the request is authenticated and tenanted; the guard
// decides whether that session may use what the route serves.
type Guard struct {
	registry  *modules.Registry
	loginURL  string
	deniedURL string
}

// NewGuard creates a guard over registry.
func NewGuard(registry *modules.Registry, loginURL, deniedURL string) *Guard {
	if loginURL == "" {
		loginURL = "/login"
	}
	if deniedURL == "" {
		deniedURL = "/dashboard"
	}
	return &Guard{registry: registry, loginURL: loginURL, deniedURL: deniedURL}
}

func (g *Guard) noSession() Decision {
	return Decision{
		RedirectURL: g.loginURL,
		Err:         &apperr.Error{Code: apperr.CodeUnauthenticated, Msg: "authentication required"},
	}
}

// Check decides whether the request's session may use moduleID.
func (g *Guard) Check(c echo.Context, moduleID string) Decision {
	sess, err := session.FromEcho(c)
	if err != nil {
		return g.noSession()
	}
	if g.registry.HasAccess(moduleID, sess.Features, sess.Role) {
		return Decision{HasAccess: true, Session: sess}
	}

	name := moduleID
	if d, ok := g.registry.Get(moduleID); ok {
		name = d.Name
	}
	return Decision{
		Session:     sess,
		RedirectURL: g.deniedURL,
		Err:         apperr.New(apperr.CodeModuleAccessDenied, "access to module %s is not enabled for your role or plan", name),
	}
}

// RequireRole decides whether the session role is exactly one of roles.
func (g *Guard) RequireRole(c echo.Context, roles ...modules.Role) Decision {
	sess, err := session.FromEcho(c)
	if err != nil {
		return g.noSession()
	}
	for _, r := range roles {
		if sess.Role == r {
			return Decision{HasAccess: true, Session: sess}
		}
	}
	return Decision{
		Session:     sess,
		RedirectURL: g.deniedURL,
		Err:         apperr.New(apperr.CodeRoleForbidden, "this action requires the %s role", roleList(roles)),
	}
}

func roleList(roles []modules.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}

// Deny writes the refusal for d: a redirect for page routes, a JSON error
// for API routes.
func (g *Guard) Deny(c echo.Context, d Decision, module string) error {
	if apperr.Is(d.Err, apperr.CodeModuleAccessDenied) || apperr.Is(d.Err, apperr.CodeRoleForbidden) {
		metrics.RecordModuleDenied(module)
	}
	fields := []zap.Field{zap.String("module", module), zap.Error(d.Err)}
	if d.Session != nil {
		fields = append(fields, zap.String("role", string(d.Session.Role)))
	}
	logger.FromEcho(c).Info("Route access denied", fields...)

	if !IsAPI(c.Request().URL.Path) && d.RedirectURL != "" {
		return c.Redirect(http.StatusFound, d.RedirectURL)
	}
	return c.JSON(apperr.HTTPStatus(d.Err), echo.Map{"error": apperr.PublicMessage(d.Err)})
}

// Module returns a route middleware refusing requests that may not use moduleID.
func (g *Guard) Module(moduleID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if d := g.Check(c, moduleID); !d.HasAccess {
				return g.Deny(c, d, moduleID)
			}
			return next(c)
		}
	}
}

// Role returns a route middleware refusing requests whose role is not one of roles.
func (g *Guard) Role(roles ...modules.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if d := g.RequireRole(c, roles...); !d.HasAccess {
				return g.Deny(c, d, c.Path())
			}
			return next(c)
		}
	}
}
