package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/DeXpertmx/Smile360-sub004/internal/apperr"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderWebhookSignature carries the hex HMAC-SHA256 of the request body.
const HeaderWebhookSignature = "X-Webhook-Signature"

const maxWebhookBody = 1 << 20

// BillingEvent is a subscription change sent by the billing provider
type BillingEvent struct {
	OrganizationID string `json:"organization_id"`
	Plan           string `json:"plan"`
	Status         string `json:"status"`
}

// Sign returns the signature of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(secret string, body []byte, header string) bool {
	got, err := hex.DecodeString(strings.TrimPrefix(header, "sha256="))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	return hmac.Equal(got, want)
}

// BillingWebhook applies a plan or status change to an organization. It is
// public to the gate and authenticated by its signature instead; changes
// run through the system accessor because no session is bound.
func (h *Handler) BillingWebhook(c echo.Context) error {
	log := logger.FromEcho(c)

	if h.WebhookSecret == "" {
		log.Error("Billing webhook received but no secret is configured")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "webhook not configured"})
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !validSignature(h.WebhookSecret, body, c.Request().Header.Get(HeaderWebhookSignature)) {
		log.Warn("Billing webhook with invalid signature")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
	}

	var ev BillingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	orgID, err := uuid.Parse(ev.OrganizationID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization_id must be a uuid"})
	}
	ev.OrganizationID = orgID.String()

	data := store.Record{}
	if ev.Plan != "" {
		plan, err := modules.GetPlan(ev.Plan)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		data["plan"] = plan.ID
		data["features"] = plan.FeatureSet().Slice()
		data["max_users"] = int64(plan.MaxUsers)
		data["max_patients"] = int64(plan.MaxPatients)
	}
	if ev.Status != "" {
		if ev.Status != model.OrgStatusActive && ev.Status != model.OrgStatusSuspended {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or suspended"})
		}
		data["status"] = ev.Status
	}
	if len(data) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to apply"})
	}

	n, err := h.System.Update(c.Request().Context(), store.Query{
		Entity: model.EntityOrganizations,
		Where:  store.Filter{store.ColumnID: ev.OrganizationID},
		Data:   data,
	})
	if err != nil {
		return respondError(c, err)
	}
	if n == 0 {
		return respondError(c, apperr.New(apperr.CodeNotFound, "organization not found"))
	}

	log.Info("Billing change applied",
		zap.String("organization_id", ev.OrganizationID),
		zap.String("plan", ev.Plan),
		zap.String("status", ev.Status))
	return c.JSON(http.StatusOK, echo.Map{"status": "applied"})
}
