package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) ValidateToken(token string) (*jwtutil.UserClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwtutil.UserClaims)
	return claims, args.Error(1)
}

func serveGate(v TokenVerifier, method, path, auth string) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	reached := false
	h := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusNoContent)
	}
	e.Use(NewGate(v, GateConfig{}).Middleware())
	e.Add(method, path, h)

	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, reached
}

func TestGate_PublicRouteSkipsVerification(t *testing.T) {
	v := new(mockVerifier)

	rec, reached := serveGate(v, http.MethodPost, "/api/auth/login", "Bearer anything")
	assert.True(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	v.AssertNotCalled(t, "ValidateToken", mock.Anything)
}

func TestGate_VerifierFailure(t *testing.T) {
	v := new(mockVerifier)
	v.On("ValidateToken", "expired").Return(nil, errors.New("token is expired")).Once()

	rec, reached := serveGate(v, http.MethodGet, "/api/patients", "Bearer expired")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	v.AssertExpectations(t)
}

func TestGate_VerifiedClaims(t *testing.T) {
	v := new(mockVerifier)
	v.On("ValidateToken", "good").Return(&jwtutil.UserClaims{
		UserID: "u1", OrganizationID: "clinic-a", Role: "front_desk",
	}, nil).Once()

	rec, reached := serveGate(v, http.MethodGet, "/api/patients", "bearer good")
	assert.True(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	v.AssertExpectations(t)
}
