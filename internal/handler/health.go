package handler

import (
	"net/http"

	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// HealthCheck handles the health check endpoint
func (h *Handler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": h.ServiceName,
	})
}

// MetricsHandler exposes the Prometheus registry
func MetricsHandler(c echo.Context) error {
	handler := metrics.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
