package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/applydash/internal/board"
	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/domain"
	appmiddleware "github.com/nfrund/applydash/internal/middleware"
	"github.com/nfrund/applydash/internal/module"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/pubsub"
	"github.com/nfrund/applydash/internal/registry"
	"github.com/nfrund/applydash/internal/rendering"
	"github.com/nfrund/applydash/internal/tracing"
	"github.com/nfrund/applydash/internal/websocket"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
)

// Server holds the HTTP server and the core services shared by modules.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Registry *registry.Registry

	modules         []module.Module
	bus             *pubsub.WatermillBridge
	bridge          *websocket.Bridge
	fs              afero.Fs
	shutdownTracing func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithFs sets the filesystem the endpoints file is read from.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.fs = fs }
}

// New creates the core services, the echo instance and registers every module.
func New(cfg config.Provider, modules []module.Module, opts ...Option) (*Server, error) {
	s := &Server{
		Cfg:     cfg,
		modules: modules,
		fs:      afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(s)
	}

	tracer, shutdownTracing, err := tracing.Setup(context.Background(), cfg.GetTracing())
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	s.shutdownTracing = shutdownTracing

	s.bus = pubsub.NewWatermillBridge(pubsub.WithTracer(tracer))
	renderer := rendering.NewUniversalRenderer()
	b := board.New(renderer, s.bus)
	center := notify.NewCenter(s.bus)
	s.bridge = websocket.NewBridge(s.bus, websocket.WithSnapshot(func(t websocket.ConnectionType) [][]byte {
		if t != websocket.ConnectionTypeHTML {
			return nil
		}
		return b.Fragments(domain.RegionStats, domain.RegionCampaigns, domain.RegionApplications)
	}))

	s.E = newEcho(cfg, renderer)

	s.Registry = registry.New(cfg)
	registerCore(s.Registry, s.bus, renderer, tracer, b, s.bridge, center)

	for _, m := range s.modules {
		if err := m.Register(s.Registry); err != nil {
			return nil, fmt.Errorf("register module %s: %w", m.Name(), err)
		}
		slog.Debug("Module registered", "module", m.Name())
	}
	return s, nil
}

func newEcho(cfg config.Provider, renderer *rendering.UniversalRenderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	setupErrorHandling(e)
	return e
}

func registerCore(reg *registry.Registry, bus *pubsub.WatermillBridge, renderer rendering.Renderer, tracer trace.Tracer, b *board.Board, bridge *websocket.Bridge, center *notify.Center) {
	registry.Set[pubsub.Publisher](reg, registry.PublisherKey, bus)
	registry.Set[pubsub.Subscriber](reg, registry.SubscriberKey, bus)
	registry.Set(reg, registry.RendererKey, renderer)
	registry.Set(reg, registry.TracerKey, tracer)
	registry.Set(reg, registry.BoardKey, b)
	registry.Set(reg, registry.BridgeKey, bridge)
	registry.Set(reg, registry.NotifierKey, center)
}
