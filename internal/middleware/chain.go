package middleware

import (
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Chain returns the request stages in the order they must run: panic
// recovery, request id, request logging, HTTP metrics, then the gate.
// Handlers and route guards run after the last stage.
func Chain(gate *Gate, httpMetrics *metrics.HTTPMetrics) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echomiddleware.Recover(),
		RequestIDMiddleware(),
		logger.Middleware(),
		httpMetrics.Middleware(),
		gate.Middleware(),
	}
}
