package handler

import (
	"net/http"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ModuleResponse describes one module available to the caller
type ModuleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Core bool   `json:"core"`
}

// ListModules returns, in navigation order, the modules the session may use
func (h *Handler) ListModules(c echo.Context) error {
	sess, _, err := h.tenant(c)
	if err != nil {
		return respondError(c, err)
	}

	available := h.Registry.Available(sess.Features, sess.Role)
	out := make([]ModuleResponse, 0, len(available))
	for _, d := range available {
		out = append(out, ModuleResponse{ID: d.ID, Name: d.Name, Path: d.Path, Core: d.Core})
	}
	return c.JSON(http.StatusOK, echo.Map{"modules": out})
}

// GetOrganization returns the caller's organization with its usage against plan limits
func (h *Handler) GetOrganization(c echo.Context) error {
	_, acc, err := h.tenant(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()

	org, err := organization(c, acc)
	if err != nil {
		return respondError(c, err)
	}
	users, err := acc.Count(ctx, store.Query{Entity: model.EntityUsers})
	if err != nil {
		return respondError(c, err)
	}
	patients, err := acc.Count(ctx, store.Query{Entity: model.EntityPatients})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"organization": org,
		"usage": echo.Map{
			"users":        users,
			"max_users":    intValue(org["max_users"]),
			"patients":     patients,
			"max_patients": intValue(org["max_patients"]),
		},
	})
}

// ToggleModuleRequest enables or disables a module's feature flag
type ToggleModuleRequest struct {
	Enabled *bool `json:"enabled"`
}

// ToggleModule adds or removes a feature flag from the organization. Only
// administrators may do so; the session token is reissued with the new
// feature set.
func (h *Handler) ToggleModule(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	if d := h.Guard.RequireRole(c, modules.RoleAdmin); !d.HasAccess {
		return h.Guard.Deny(c, d, modules.ModuleConfiguracion)
	}
	sess, acc, err := h.tenant(c)
	if err != nil {
		return respondError(c, err)
	}

	moduleID := c.Param("id")
	desc, ok := h.Registry.Get(moduleID)
	if !ok {
		return respondError(c, apperr.New(apperr.CodeNotFound, "module %s not found", moduleID))
	}
	if desc.Core {
		return respondError(c, apperr.New(apperr.CodeInvalid, "module %s is always enabled", desc.Name))
	}

	var req ToggleModuleRequest
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enabled is required"})
	}

	org, err := organization(c, acc)
	if err != nil {
		return respondError(c, err)
	}
	features := modules.NewFeatureSet(stringsValue(org["features"])...)
	if *req.Enabled {
		features.Add(desc.Feature)
	} else {
		features.Remove(desc.Feature)
	}

	n, err := acc.Update(ctx, store.Query{
		Entity: model.EntityOrganizations,
		Where:  store.Filter{store.ColumnID: sess.OrganizationID},
		Data:   store.Record{"features": features.Slice()},
	})
	if err != nil {
		return respondError(c, err)
	}
	if n == 0 {
		return respondError(c, apperr.New(apperr.CodeNotFound, "organization not found"))
	}

	refreshed := *sess
	refreshed.Features = features
	token, err := h.Tokens.GenerateToken(refreshed.TokenInput())
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	h.setSessionCookie(c, token)

	log.Info("Module toggled",
		zap.String("module", desc.ID),
		zap.Bool("enabled", *req.Enabled))

	return c.JSON(http.StatusOK, echo.Map{
		"module":   desc.ID,
		"enabled":  *req.Enabled,
		"features": features.Slice(),
		"token":    token,
	})
}
