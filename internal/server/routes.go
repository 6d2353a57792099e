package server

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/handlers"
	"github.com/nfrund/applydash/internal/websocket"
	"github.com/nfrund/applydash/web"
)

// registerRoutes mounts the routes owned by the server itself.
func (s *Server) registerRoutes() {
	s.E.StaticFS("/static", echo.MustSubFS(web.FS, "static"))
	s.E.GET("/ws/html", s.bridge.Handler(websocket.ConnectionTypeHTML))
	s.E.GET("/ws/data", s.bridge.Handler(websocket.ConnectionTypeData))
	s.E.GET("/health", handlers.NewHealthHandler(s.bridge).Get)
}
