package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Uptime    string         `json:"uptime"`
	Clients   map[string]int `json:"clients"`
	CheckedAt time.Time      `json:"checkedAt"`
}

// ClientCounter reports connected websocket clients by kind.
type ClientCounter interface {
	ClientCounts() map[string]int
}

// HealthHandler reports liveness.
type HealthHandler struct {
	started time.Time
	clients ClientCounter
}

// NewHealthHandler creates a new HealthHandler. clients may be nil.
func NewHealthHandler(clients ClientCounter) *HealthHandler {
	return &HealthHandler{started: time.Now(), clients: clients}
}

// Get answers 200 while the process is serving.
func (h *HealthHandler) Get(c echo.Context) error {
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Clients:   map[string]int{},
		CheckedAt: time.Now().UTC(),
	}
	if h.clients != nil {
		resp.Clients = h.clients.ClientCounts()
	}
	return c.JSON(http.StatusOK, resp)
}
