package app

import (
	"time"

	"github.com/nfrund/applydash/internal/module"
	"github.com/nfrund/applydash/internal/modules/dashboard"
)

// Settings tune the modules at startup.
type Settings struct {
	// RefreshInterval overrides the dashboard refresh period when non-zero.
	RefreshInterval time.Duration
}

// NewModules returns every module the application runs, in boot order.
func NewModules(s Settings) []module.Module {
	var opts []dashboard.Option
	if s.RefreshInterval > 0 {
		opts = append(opts, dashboard.WithInterval(s.RefreshInterval))
	}
	return []module.Module{
		dashboard.New(opts...),
	}
}
