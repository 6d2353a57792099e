package board

import (
	"context"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/view"
	"github.com/nfrund/applydash/internal/view/components"
)

// Presenter renders dashboard view models into board regions.
type Presenter struct {
	board  *Board
	format *view.Formatter
}

// NewPresenter creates a Presenter writing to b.
func NewPresenter(b *Board, f *view.Formatter) *Presenter {
	return &Presenter{board: b, format: f}
}

// SeedPlaceholders fills every data region with its loading state.
func (p *Presenter) SeedPlaceholders(ctx context.Context) error {
	for _, r := range []domain.Region{domain.RegionStats, domain.RegionCampaigns, domain.RegionApplications} {
		if err := p.board.Seed(ctx, r, components.LoadingRegion(r)); err != nil {
			return err
		}
	}
	return p.board.Seed(ctx, domain.RegionSettings, components.SettingsHint())
}

func (p *Presenter) ShowStats(ctx context.Context, stats domain.DashboardStats) error {
	return p.board.Update(ctx, domain.RegionStats, components.Stats(p.format, stats), stats)
}

func (p *Presenter) ShowApplications(ctx context.Context, apps []domain.Application) error {
	return p.board.Update(ctx, domain.RegionApplications, components.Applications(p.format, apps), apps)
}

func (p *Presenter) ShowCampaigns(ctx context.Context, campaigns []domain.Campaign) error {
	return p.board.Update(ctx, domain.RegionCampaigns, components.Campaigns(p.format, campaigns), campaigns)
}

func (p *Presenter) ShowRegionError(ctx context.Context, region domain.Region, err error) error {
	return p.board.Fail(ctx, region, components.RegionError(region, err), err)
}
