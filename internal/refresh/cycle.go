// Package refresh keeps the dashboard regions in sync with the workflow
// engine: one cycle fetches stats, applications and campaigns concurrently
// and renders each into its region.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Policy decides how the three fetches of a cycle are joined.
type Policy string

const (
	// PolicyAllOrNothing renders nothing unless every fetch succeeds.
	PolicyAllOrNothing Policy = "all-or-nothing"
	// PolicyIsolated renders each region from its own fetch, showing a
	// failure state only in the regions whose fetch failed.
	PolicyIsolated Policy = "isolated"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyAllOrNothing, PolicyIsolated:
		return p, nil
	}
	return "", fmt.Errorf("unknown refresh policy %q (want %q or %q)", s, PolicyAllOrNothing, PolicyIsolated)
}

// Invoker calls a named webhook and decodes its JSON response into out.
type Invoker interface {
	Do(ctx context.Context, key domain.EndpointKey, method string, payload any, out any) error
}

// Presenter applies fetched data, or a fetch failure, to dashboard regions.
type Presenter interface {
	ShowStats(ctx context.Context, stats domain.DashboardStats) error
	ShowApplications(ctx context.Context, apps []domain.Application) error
	ShowCampaigns(ctx context.Context, campaigns []domain.Campaign) error
	ShowRegionError(ctx context.Context, region domain.Region, err error) error
}

// Cycle performs refresh cycles. Concurrent Run calls are allowed; the
// regions they write are last-write-wins.
type Cycle struct {
	invoker   Invoker
	presenter Presenter
	policy    Policy
	tracer    trace.Tracer
}

// CycleOption configures a Cycle.
type CycleOption func(*Cycle)

// WithTracer records a span per cycle.
func WithTracer(t trace.Tracer) CycleOption {
	return func(c *Cycle) { c.tracer = t }
}

// NewCycle creates a Cycle. An empty policy means PolicyIsolated.
func NewCycle(invoker Invoker, presenter Presenter, policy Policy, opts ...CycleOption) *Cycle {
	if policy == "" {
		policy = PolicyIsolated
	}
	c := &Cycle{
		invoker:   invoker,
		presenter: presenter,
		policy:    policy,
		tracer:    tracing.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the join policy in use.
func (c *Cycle) Policy() Policy {
	return c.policy
}

// Snapshot is the data gathered by one cycle. Fields of regions whose fetch
// failed are left empty and the failure is in Errors.
type Snapshot struct {
	Stats        domain.DashboardStats
	Applications []domain.Application
	Campaigns    []domain.Campaign
	Errors       map[domain.Region]error
}

// Err joins the failures of the snapshot, in region order.
func (s Snapshot) Err() error {
	var errs []error
	for _, r := range []domain.Region{domain.RegionStats, domain.RegionApplications, domain.RegionCampaigns} {
		if err, ok := s.Errors[r]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
		}
	}
	return errors.Join(errs...)
}

// Run fetches stats, applications and campaigns concurrently and renders them.
func (c *Cycle) Run(ctx context.Context) (err error) {
	ctx, span := c.tracer.Start(ctx, "refresh.cycle", trace.WithAttributes(
		attribute.String("refresh.policy", string(c.policy)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "refresh failed")
		}
		span.End()
	}()

	if c.policy == PolicyAllOrNothing {
		return c.runAllOrNothing(ctx)
	}
	return c.runIsolated(ctx)
}

// runAllOrNothing waits for every fetch and renders only when all succeeded.
// A failed fetch does not cancel the others.
func (c *Cycle) runAllOrNothing(ctx context.Context) error {
	var snap Snapshot
	var g errgroup.Group
	g.Go(func() (err error) {
		snap.Stats, err = fetch[domain.DashboardStats](ctx, c.invoker, domain.EndpointGetStats)
		return wrapRegion(domain.RegionStats, err)
	})
	g.Go(func() (err error) {
		snap.Applications, err = fetch[[]domain.Application](ctx, c.invoker, domain.EndpointGetApplications)
		return wrapRegion(domain.RegionApplications, err)
	})
	g.Go(func() (err error) {
		snap.Campaigns, err = fetch[[]domain.Campaign](ctx, c.invoker, domain.EndpointGetCampaigns)
		return wrapRegion(domain.RegionCampaigns, err)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return errors.Join(
		c.presenter.ShowStats(ctx, snap.Stats),
		c.presenter.ShowApplications(ctx, snap.Applications),
		c.presenter.ShowCampaigns(ctx, snap.Campaigns),
	)
}

// runIsolated settles every fetch independently; each one renders its own
// region, with data or with its failure.
func (c *Cycle) runIsolated(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 3)
	wg.Go(func() {
		stats, err := fetch[domain.DashboardStats](ctx, c.invoker, domain.EndpointGetStats)
		errs[0] = c.settle(ctx, domain.RegionStats, err, func() error { return c.presenter.ShowStats(ctx, stats) })
	})
	wg.Go(func() {
		apps, err := fetch[[]domain.Application](ctx, c.invoker, domain.EndpointGetApplications)
		errs[1] = c.settle(ctx, domain.RegionApplications, err, func() error { return c.presenter.ShowApplications(ctx, apps) })
	})
	wg.Go(func() {
		campaigns, err := fetch[[]domain.Campaign](ctx, c.invoker, domain.EndpointGetCampaigns)
		errs[2] = c.settle(ctx, domain.RegionCampaigns, err, func() error { return c.presenter.ShowCampaigns(ctx, campaigns) })
	})
	wg.Wait()
	return errors.Join(errs...)
}

func (c *Cycle) settle(ctx context.Context, region domain.Region, fetchErr error, show func() error) error {
	if fetchErr == nil {
		return wrapRegion(region, show())
	}
	if err := c.presenter.ShowRegionError(ctx, region, fetchErr); err != nil {
		return errors.Join(wrapRegion(region, fetchErr), err)
	}
	return wrapRegion(region, fetchErr)
}

// RefreshCampaigns reloads only the campaigns region.
func (c *Cycle) RefreshCampaigns(ctx context.Context) error {
	campaigns, err := fetch[[]domain.Campaign](ctx, c.invoker, domain.EndpointGetCampaigns)
	if err != nil && c.policy == PolicyAllOrNothing {
		return wrapRegion(domain.RegionCampaigns, err)
	}
	return c.settle(ctx, domain.RegionCampaigns, err, func() error { return c.presenter.ShowCampaigns(ctx, campaigns) })
}

// Collect runs the three fetches without rendering anything.
func (c *Cycle) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{Errors: map[domain.Region]error{}}
	var wg sync.WaitGroup
	var errs [3]error
	wg.Go(func() {
		snap.Stats, errs[0] = fetch[domain.DashboardStats](ctx, c.invoker, domain.EndpointGetStats)
	})
	wg.Go(func() {
		snap.Applications, errs[1] = fetch[[]domain.Application](ctx, c.invoker, domain.EndpointGetApplications)
	})
	wg.Go(func() {
		snap.Campaigns, errs[2] = fetch[[]domain.Campaign](ctx, c.invoker, domain.EndpointGetCampaigns)
	})
	wg.Wait()
	for i, r := range []domain.Region{domain.RegionStats, domain.RegionApplications, domain.RegionCampaigns} {
		if errs[i] != nil {
			snap.Errors[r] = errs[i]
		}
	}
	return snap
}

func fetch[T any](ctx context.Context, inv Invoker, key domain.EndpointKey) (T, error) {
	var out T
	err := inv.Do(ctx, key, http.MethodGet, nil, &out)
	return out, err
}

func wrapRegion(region domain.Region, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", region, err)
}
