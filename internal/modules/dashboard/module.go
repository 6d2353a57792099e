// Package dashboard wires the job-application dashboard: the refresh loop,
// user actions and toast notifications.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/actions"
	"github.com/nfrund/applydash/internal/board"
	"github.com/nfrund/applydash/internal/handlers"
	"github.com/nfrund/applydash/internal/middleware"
	"github.com/nfrund/applydash/internal/module"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/pubsub"
	"github.com/nfrund/applydash/internal/refresh"
	"github.com/nfrund/applydash/internal/registry"
	"github.com/nfrund/applydash/internal/rendering"
	"github.com/nfrund/applydash/internal/view"
	"github.com/nfrund/applydash/internal/view/components"
	"github.com/nfrund/applydash/internal/webhook"
)

// Services the dashboard publishes for other modules and the CLI.
var (
	CycleKey   = registry.Key[*refresh.Cycle]("dashboard.cycle")
	ActionsKey = registry.Key[*actions.Service]("dashboard.actions")
	WebhookKey = registry.Key[*webhook.Client]("dashboard.webhook")
)

// Module implements module.Module for the dashboard.
type Module struct {
	module.BaseModule

	interval  time.Duration
	presenter *board.Presenter
	cycle     *refresh.Cycle
	service   *actions.Service

	loop     *refresh.Loop
	stopLoop context.CancelFunc
	loopDone chan struct{}
}

// Option configures the Module.
type Option func(*Module)

// WithInterval overrides the refresh period.
func WithInterval(d time.Duration) Option {
	return func(m *Module) { m.interval = d }
}

// New creates the dashboard module.
func New(opts ...Option) *Module {
	m := &Module{interval: refresh.DefaultInterval}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the unique name for the module.
func (m *Module) Name() string {
	return "dashboard"
}

// Register builds the webhook client, refresh cycle and action service.
func (m *Module) Register(reg *registry.Registry) error {
	cfg := reg.Config()
	tracer := registry.MustGet(reg, registry.TracerKey)
	center := registry.MustGet(reg, registry.NotifierKey)
	b := registry.MustGet(reg, registry.BoardKey)

	policy, err := refresh.ParsePolicy(cfg.GetRefreshPolicy())
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	client := webhook.NewClient(cfg.Endpoints(), center,
		webhook.WithTimeout(cfg.GetWebhookTimeout()),
		webhook.WithTracer(tracer),
	)
	m.presenter = board.NewPresenter(b, view.NewFormatter(cfg.GetLocale()))
	m.cycle = refresh.NewCycle(client, m.presenter, policy, refresh.WithTracer(tracer))
	m.service = actions.NewService(client, center, m.cycle, cfg.Endpoints(), actions.WithTracer(tracer))

	registry.Set(reg, WebhookKey, client)
	registry.Set(reg, CycleKey, m.cycle)
	registry.Set(reg, ActionsKey, m.service)

	slog.Info("Dashboard registered", "policy", policy, "locale", cfg.GetLocale())
	return nil
}

// Boot mounts the dashboard routes and starts the refresh loop and the
// toast subscriber.
func (m *Module) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	sub := registry.MustGet(reg, registry.SubscriberKey)
	pub := registry.MustGet(reg, registry.PublisherKey)
	renderer := registry.MustGet(reg, registry.RendererKey)
	center := registry.MustGet(reg, registry.NotifierKey)
	b := registry.MustGet(reg, registry.BoardKey)

	if err := m.presenter.SeedPlaceholders(ctx); err != nil {
		return fmt.Errorf("dashboard: seed regions: %w", err)
	}

	toasts := NewToastSubscriber(sub, pub, renderer)
	if err := toasts.Start(ctx); err != nil {
		return fmt.Errorf("dashboard: start toast subscriber: %w", err)
	}

	page := handlers.NewPageHandler(b, center, reg.Config().Endpoints(), renderer)
	act := handlers.NewActionHandler(m.service, renderer)
	ref := handlers.NewRefreshHandler(m.cycle)

	g.GET("/", page.Get)
	g.POST("/actions/:action", act.Post, middleware.ActionRateLimiter())
	g.POST("/refresh", ref.Post)

	loopCtx, cancel := context.WithCancel(ctx)
	m.stopLoop = cancel
	m.loopDone = make(chan struct{})
	m.loop = refresh.NewLoop(m.cycle, m.interval)
	go func() {
		defer close(m.loopDone)
		_ = m.loop.Run(loopCtx)
	}()

	slog.Info("Dashboard booted", "interval", m.interval)
	return nil
}

// Shutdown stops the refresh loop and waits for an in-flight cycle.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.stopLoop == nil {
		return nil
	}
	m.stopLoop()

	finished := make(chan struct{})
	go func() {
		<-m.loopDone
		m.loop.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dashboard: refresh still running: %w", ctx.Err())
	}
}

// ToastSubscriber renders every new notification and broadcasts it to HTML clients.
type ToastSubscriber struct {
	subscriber pubsub.Subscriber
	publisher  pubsub.Publisher
	renderer   rendering.Renderer
}

// NewToastSubscriber creates a ToastSubscriber.
func NewToastSubscriber(sub pubsub.Subscriber, pub pubsub.Publisher, renderer rendering.Renderer) *ToastSubscriber {
	return &ToastSubscriber{subscriber: sub, publisher: pub, renderer: renderer}
}

// Start subscribes to notification events until ctx is done.
func (t *ToastSubscriber) Start(ctx context.Context) error {
	return pubsub.Subscribe(ctx, t.subscriber, notify.TopicCreated, t.handle)
}

func (t *ToastSubscriber) handle(ctx context.Context, n notify.Notification) error {
	html, err := t.renderer.RenderComponent(ctx, components.Toast(n))
	if err != nil {
		return err
	}
	return t.publisher.Publish(ctx, pubsub.Message{
		Topic:    pubsub.TopicHTMLBroadcast,
		Source:   "dashboard.toasts",
		Payload:  html,
		Metadata: map[string]string{"notification_id": n.ID, "level": string(n.Level)},
	})
}
