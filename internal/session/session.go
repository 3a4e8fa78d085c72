// Package session carries the verified identity of a request.
package session

import (
	"context"
	"errors"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/labstack/echo/v4"
)

// Session is the identity established by the request gate. Every field is
// set; a Session without an organization is never constructed.
type Session struct {
	UserID           string             `json:"user_id"`
	Email            string             `json:"email"`
	OrganizationID   string             `json:"organization_id"`
	OrganizationName string             `json:"organization_name"`
	Role             modules.Role       `json:"role"`
	Features         modules.FeatureSet `json:"-"`
}

// FromClaims validates token claims into a Session. A token without an
// organization yields a NoTenant error; a malformed identity is
// Unauthenticated.
func FromClaims(claims *jwtutil.UserClaims) (*Session, error) {
	if claims == nil || claims.UserID == "" {
		return nil, &apperr.Error{Code: apperr.CodeUnauthenticated, Op: "session.FromClaims", Msg: "token has no subject"}
	}
	if claims.OrganizationID == "" {
		return nil, &apperr.Error{Code: apperr.CodeNoTenant, Op: "session.FromClaims", Msg: "user is not attached to an organization"}
	}
	role, err := modules.ParseRole(claims.Role)
	if err != nil {
		return nil, &apperr.Error{Code: apperr.CodeUnauthenticated, Op: "session.FromClaims", Msg: "token carries an unknown role", Err: err}
	}
	return &Session{
		UserID:           claims.UserID,
		Email:            claims.Email,
		OrganizationID:   claims.OrganizationID,
		OrganizationName: claims.OrganizationName,
		Role:             role,
		Features:         modules.NewFeatureSet(claims.Features...),
	}, nil
}

// TokenInput returns the token fields describing s.
func (s *Session) TokenInput() jwtutil.TokenInput {
	return jwtutil.TokenInput{
		Email:            s.Email,
		UserID:           s.UserID,
		OrganizationID:   s.OrganizationID,
		OrganizationName: s.OrganizationName,
		Role:             string(s.Role),
		Features:         s.Features.Slice(),
	}
}

// IsAdmin reports whether the session has the admin role.
func (s *Session) IsAdmin() bool {
	return s.Role == modules.RoleAdmin
}

type contextKey string

const sessionKey contextKey = "session"

// echoKey is the echo.Context key holding the session
const echoKey = "session"

// ErrNoSession is returned when no session was attached to the request.
var ErrNoSession = errors.New("no session in context")

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session attached to ctx.
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// SetEcho stores s on both the Echo context and the request context.
func SetEcho(c echo.Context, s *Session) {
	c.Set(echoKey, s)
	req := c.Request()
	c.SetRequest(req.WithContext(WithSession(req.Context(), s)))
}

// FromEcho returns the session stored by SetEcho.
func FromEcho(c echo.Context) (*Session, error) {
	if s, ok := c.Get(echoKey).(*Session); ok && s != nil {
		return s, nil
	}
	return FromContext(c.Request().Context())
}
