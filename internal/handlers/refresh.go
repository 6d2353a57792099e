package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/middleware"
)

// Runner runs one refresh cycle.
type Runner interface {
	Run(ctx context.Context) error
}

// RefreshHandler triggers a manual refresh cycle.
type RefreshHandler struct {
	cycle Runner
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(cycle Runner) *RefreshHandler {
	return &RefreshHandler{cycle: cycle}
}

// Post runs a cycle and waits for it. Failures are logged only; the failed
// webhook calls have already been notified.
func (h *RefreshHandler) Post(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	start := time.Now()
	if err := h.cycle.Run(ctx); err != nil {
		middleware.FromContext(ctx).Error("Manual refresh failed", "error", err, "duration", time.Since(start))
		return c.NoContent(http.StatusBadGateway)
	}
	return c.NoContent(http.StatusNoContent)
}
