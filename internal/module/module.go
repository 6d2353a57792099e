package module

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/registry"
)

// Module is a self-contained application feature.
type Module interface {
	// Name returns a unique identifier for the module.
	Name() string

	// Register creates the module's services and publishes them in the registry.
	Register(reg *registry.Registry) error

	// Boot runs after every module has registered. It mounts routes on router
	// and starts background work that lives until ctx is done.
	Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error

	// Shutdown stops background work and releases resources.
	Shutdown(ctx context.Context) error
}

// BaseModule provides no-op implementations for modules to embed.
type BaseModule struct{}

func (m *BaseModule) Register(reg *registry.Registry) error { return nil }
func (m *BaseModule) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	return nil
}
func (m *BaseModule) Shutdown(ctx context.Context) error { return nil }
