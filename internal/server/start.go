package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfrund/applydash/internal/config"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Boot starts the websocket bridge, loads the endpoints file and boots every
// module. Background work stops when ctx is done.
func (s *Server) Boot(ctx context.Context) error {
	if err := s.bridge.Start(ctx); err != nil {
		return fmt.Errorf("start websocket bridge: %w", err)
	}

	if path := s.Cfg.GetEndpointsFile(); path != "" {
		if err := s.Cfg.Endpoints().LoadFile(s.fs, path); err != nil {
			return fmt.Errorf("load endpoints file: %w", err)
		}
		if err := config.WatchEndpointsFile(ctx, s.fs, path, s.Cfg.Endpoints()); err != nil {
			slog.Warn("Endpoints file will not be reloaded", "path", path, "error", err)
		}
	}

	s.registerRoutes()
	root := s.E.Group("")
	for _, m := range s.modules {
		if err := m.Boot(ctx, root, s.Registry); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		slog.Info("Module booted", "module", m.Name())
	}
	return nil
}

// Start boots the server and serves HTTP until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Boot(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.Cfg.GetServerAddr())
		if err := s.E.Start(s.Cfg.GetServerAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server, the modules (in reverse order) and the bus.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down")
	var errs []error
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", s.modules[i].Name(), err))
		}
	}
	if err := s.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("pubsub: %w", err))
	}
	if err := s.shutdownTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	return errors.Join(errs...)
}
