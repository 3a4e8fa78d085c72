package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/session"
	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Headers attached by the gate for downstream handlers. Inbound copies are
// always removed so a client cannot forge them.
const (
	HeaderOrganizationID = "X-Organization-Id"
	HeaderUserID         = "X-User-Id"
	HeaderUserRole       = "X-User-Role"
)

// SessionCookie is the cookie carrying the session token for page routes.
const SessionCookie = "session_token"

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	ValidateToken(token string) (*jwtutil.UserClaims, error)
}

// GateConfig configures the request gate.
type GateConfig struct {
	LoginURL       string
	TenantSetupURL string
	PublicPaths    []string // exact matches
	PublicPrefixes []string
}

// DefaultPublicPaths are reachable without a session.
var DefaultPublicPaths = []string{"/", "/health", "/metrics", "/login", "/register", "/api/auth/login", "/api/auth/register"}

// DefaultPublicPrefixes are path prefixes reachable without a session.
var DefaultPublicPrefixes = []string{"/api/webhooks/"}

// Gate authenticates every non-public request and binds it to a tenant.
type Gate struct {
	tokens TokenVerifier
	cfg    GateConfig
	public map[string]struct{}
}

// NewGate creates a gate verifying tokens with tokens.
func NewGate(tokens TokenVerifier, cfg GateConfig) *Gate {
	if cfg.PublicPaths == nil {
		cfg.PublicPaths = DefaultPublicPaths
	}
	if cfg.PublicPrefixes == nil {
		cfg.PublicPrefixes = DefaultPublicPrefixes
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/login"
	}
	public := make(map[string]struct{}, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}
	return &Gate{tokens: tokens, cfg: cfg, public: public}
}

// IsPublic reports whether path skips the gate.
func (g *Gate) IsPublic(path string) bool {
	if _, ok := g.public[path]; ok {
		return true
	}
	for _, prefix := range g.cfg.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAPI reports whether path is an API route (JSON errors) rather than a
// page route (redirects).
func IsAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// bearerToken returns the session token from the Authorization header or,
// failing that, the session cookie.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware returns the gate as an echo middleware.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			req.Header.Del(HeaderOrganizationID)
			req.Header.Del(HeaderUserID)
			req.Header.Del(HeaderUserRole)

			path := req.URL.Path
			if g.IsPublic(path) {
				return next(c)
			}

			log := logger.FromEcho(c)

			token := bearerToken(req)
			if token == "" {
				log.Debug("Missing session token", zap.String("path", path))
				return g.reject(c, "missing_token", &apperr.Error{Code: apperr.CodeUnauthenticated, Msg: "authentication required"})
			}

			claims, err := g.tokens.ValidateToken(token)
			if err != nil {
				log.Warn("Invalid or expired session token", zap.Error(err))
				return g.reject(c, "invalid_token", &apperr.Error{Code: apperr.CodeUnauthenticated, Msg: "invalid or expired session"})
			}

			sess, err := session.FromClaims(claims)
			if err != nil {
				reason := "invalid_session"
				if apperr.Is(err, apperr.CodeNoTenant) {
					reason = "no_tenant"
				}
				log.Warn("Session rejected", zap.String("user_id", claims.UserID), zap.Error(err))
				return g.reject(c, reason, err)
			}

			session.SetEcho(c, sess)
			req = c.Request()
			req.Header.Set(HeaderOrganizationID, sess.OrganizationID)
			req.Header.Set(HeaderUserID, sess.UserID)
			req.Header.Set(HeaderUserRole, string(sess.Role))

			logger.SetEcho(c, log.With(
				zap.String("organization_id", sess.OrganizationID),
				zap.String("user_id", sess.UserID),
				zap.String("role", string(sess.Role)),
			))

			return next(c)
		}
	}
}

func (g *Gate) reject(c echo.Context, reason string, err error) error {
	metrics.RecordGateRejection(reason)
	path := c.Request().URL.Path

	if IsAPI(path) {
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.PublicMessage(err)})
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Code == apperr.CodeNoTenant && g.cfg.TenantSetupURL != "" {
		return c.Redirect(http.StatusFound, g.cfg.TenantSetupURL)
	}
	return c.Redirect(http.StatusFound, g.cfg.LoginURL+"?callbackUrl="+url.QueryEscape(c.Request().URL.RequestURI()))
}
