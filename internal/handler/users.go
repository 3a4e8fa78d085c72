package handler

import (
	"net/http"
	"strings"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserRequest adds a member to the caller's organization
type CreateUserRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// UpdateStatusRequest activates or deactivates a user
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListUsers lists the members of the caller's organization
func (h *Handler) ListUsers(c echo.Context) error {
	_, acc, err := h.tenant(c)
	if err != nil {
		return respondError(c, err)
	}

	rows, err := acc.Find(c.Request().Context(), store.Query{Entity: model.EntityUsers, OrderBy: "name"})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]store.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, publicUser(r))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateUser adds a user within the plan's user limit
func (h *Handler) CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	_, acc, err := h.tenant(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if len(req.Password) < minPasswordLength {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must have at least 8 characters"})
	}
	role, err := modules.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	org, err := organization(c, acc)
	if err != nil {
		return respondError(c, err)
	}
	current, err := acc.Count(ctx, store.Query{Entity: model.EntityUsers})
	if err != nil {
		return respondError(c, err)
	}
	if limit := intValue(org["max_users"]); !modules.WithinLimit(limit, current) {
		return respondError(c, apperr.New(apperr.CodeLimitExceeded, "your plan allows at most %d users", limit))
	}

	taken, err := h.emailTaken(c, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}
	permissions := req.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	user, err := acc.Create(ctx, store.Query{
		Entity: model.EntityUsers,
		Data: store.Record{
			"email":         req.Email,
			"password_hash": string(hash),
			"name":          strings.TrimSpace(req.Name),
			"role":          string(role),
			"status":        model.UserStatusActive,
			"permissions":   permissions,
		},
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User created", zap.Any("user_id", user[store.ColumnID]), zap.String("role", string(role)))
	return c.JSON(http.StatusCreated, publicUser(user))
}

// UpdateUserStatus activates or deactivates another member of the organization.
// Nobody may change their own status.
func (h *Handler) UpdateUserStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	sess, acc, err := h.tenant(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := pathID(c, "user")
	if err != nil {
		return respondError(c, err)
	}
	if id == sess.UserID {
		log.Warn("Attempt to change own status")
		return respondError(c, apperr.New(apperr.CodeInvalid, "you cannot change your own status"))
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Status != model.UserStatusActive && req.Status != model.UserStatusInactive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or inactive"})
	}

	n, err := acc.Update(ctx, store.Query{
		Entity: model.EntityUsers,
		Where:  store.Filter{store.ColumnID: id},
		Data:   store.Record{"status": req.Status},
	})
	if err != nil {
		return respondError(c, err)
	}
	if n == 0 {
		return respondError(c, apperr.New(apperr.CodeNotFound, "user not found"))
	}

	user, err := acc.First(ctx, store.Query{Entity: model.EntityUsers, Where: store.Filter{store.ColumnID: id}})
	if err != nil {
		return respondError(c, err)
	}
	log.Info("User status changed", zap.String("target_user_id", id), zap.String("status", req.Status))
	return c.JSON(http.StatusOK, publicUser(user))
}
