package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/session"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// RegisterRequest creates an organization and its first administrator
type RegisterRequest struct {
	OrganizationName string `json:"organization_name"`
	Plan             string `json:"plan"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// LoginRequest carries user credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// publicUser drops credentials from a user record.
func publicUser(rec store.Record) store.Record {
	out := rec.Clone()
	delete(out, "password_hash")
	return out
}

// emailTaken reports whether any organization already has a user with email.
func (h *Handler) emailTaken(c echo.Context, email string) (bool, error) {
	n, err := h.System.Count(c.Request().Context(), store.Query{
		Entity: model.EntityUsers,
		Where:  store.Filter{"email": email},
	})
	return n > 0, err
}

// RegisterOrganization creates a tenant from a plan and its administrator
func (h *Handler) RegisterOrganization(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Email = normalizeEmail(req.Email)
	req.OrganizationName = strings.TrimSpace(req.OrganizationName)

	if req.OrganizationName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization_name, email and password are required"})
	}
	if len(req.Password) < minPasswordLength {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must have at least 8 characters"})
	}
	if req.Plan == "" {
		req.Plan = modules.PlanBasic
	}
	plan, err := modules.GetPlan(req.Plan)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	taken, err := h.emailTaken(c, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if taken {
		log.Warn("Email already registered", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	org, err := h.System.Create(ctx, store.Query{
		Entity: model.EntityOrganizations,
		Data: store.Record{
			"name":         req.OrganizationName,
			"email":        req.Email,
			"plan":         plan.ID,
			"status":       model.OrgStatusActive,
			"features":     plan.FeatureSet().Slice(),
			"max_users":    int64(plan.MaxUsers),
			"max_patients": int64(plan.MaxPatients),
		},
	})
	if err != nil {
		return respondError(c, err)
	}
	orgID := stringValue(org[store.ColumnID])

	acc, err := h.Cache.For(orgID)
	if err != nil {
		return respondError(c, err)
	}
	user, err := acc.Create(ctx, store.Query{
		Entity: model.EntityUsers,
		Data: store.Record{
			"email":         req.Email,
			"password_hash": string(hash),
			"name":          strings.TrimSpace(req.Name),
			"role":          string(modules.RoleAdmin),
			"status":        model.UserStatusActive,
			"permissions":   []string{},
		},
	})
	if err != nil {
		log.Error("Organization created without administrator", zap.String("organization_id", orgID), zap.Error(err))
		return respondError(c, err)
	}

	token, err := h.Tokens.GenerateToken(jwtutil.TokenInput{
		Email:            req.Email,
		UserID:           stringValue(user[store.ColumnID]),
		OrganizationID:   orgID,
		OrganizationName: req.OrganizationName,
		Role:             string(modules.RoleAdmin),
		Features:         stringsValue(org["features"]),
	})
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	h.setSessionCookie(c, token)

	log.Info("Organization registered",
		zap.String("organization_id", orgID),
		zap.String("plan", plan.ID),
		zap.String("email", req.Email))

	return c.JSON(http.StatusCreated, echo.Map{
		"token":        token,
		"user":         publicUser(user),
		"organization": org,
	})
}

// Login verifies credentials and issues a session token bound to the
// user's organization
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Email = normalizeEmail(req.Email)

	user, err := h.System.First(ctx, store.Query{
		Entity: model.EntityUsers,
		Where:  store.Filter{"email": req.Email},
	})
	if apperr.Is(err, apperr.CodeNotFound) {
		log.Warn("Login for unknown email", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return respondError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stringValue(user["password_hash"])), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if stringValue(user["status"]) != model.UserStatusActive {
		log.Warn("Login for inactive user", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is inactive"})
	}

	orgID := stringValue(user[model.TenantColumn])
	if orgID == "" {
		return respondError(c, apperr.New(apperr.CodeNoTenant, "user is not attached to an organization"))
	}
	acc, err := h.Cache.For(orgID)
	if err != nil {
		return respondError(c, err)
	}
	org, err := organization(c, acc)
	if err != nil {
		return respondError(c, err)
	}
	if stringValue(org["status"]) != model.OrgStatusActive {
		log.Warn("Login for suspended organization", zap.String("organization_id", orgID))
		return respondError(c, apperr.New(apperr.CodeNoTenant, "organization is suspended"))
	}

	role, err := modules.ParseRole(stringValue(user["role"]))
	if err != nil {
		return respondError(c, apperr.Wrap(err, "handler.Login"))
	}

	userID := stringValue(user[store.ColumnID])
	token, err := h.Tokens.GenerateToken(jwtutil.TokenInput{
		Email:            req.Email,
		UserID:           userID,
		OrganizationID:   orgID,
		OrganizationName: stringValue(org["name"]),
		Role:             string(role),
		Features:         stringsValue(org["features"]),
	})
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	if _, err := acc.Update(ctx, store.Query{
		Entity: model.EntityUsers,
		Where:  store.Filter{store.ColumnID: userID},
		Data:   store.Record{"last_login_at": time.Now().UTC()},
	}); err != nil {
		log.Warn("Failed to record last login", zap.Error(err))
	}
	h.setSessionCookie(c, token)

	log.Info("User logged in",
		zap.String("email", req.Email),
		zap.String("organization_id", orgID),
		zap.String("role", string(role)))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  publicUser(user),
		"organization": echo.Map{
			"id":       orgID,
			"name":     org["name"],
			"plan":     org["plan"],
			"features": stringsValue(org["features"]),
		},
	})
}

// CurrentSession returns the verified session of the request
func (h *Handler) CurrentSession(c echo.Context) error {
	sess, err := session.FromEcho(c)
	if err != nil {
		return respondError(c, &apperr.Error{Code: apperr.CodeUnauthenticated, Msg: "authentication required", Err: err})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":           sess.UserID,
		"email":             sess.Email,
		"organization_id":   sess.OrganizationID,
		"organization_name": sess.OrganizationName,
		"role":              sess.Role,
		"features":          sess.Features.Slice(),
	})
}
