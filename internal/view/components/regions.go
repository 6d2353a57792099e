// Package components holds the HTML fragments of the dashboard. Every region
// is rendered with hx-swap-oob so the same fragment works for the first page
// load and for websocket pushes.
package components

import (
	"fmt"

	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/view"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

var regionTitles = map[domain.Region]string{
	domain.RegionStats:         "Overview",
	domain.RegionApplications:  "Recent Applications",
	domain.RegionCampaigns:     "Campaigns",
	domain.RegionSettings:      "Settings",
	domain.RegionNotifications: "Notifications",
}

func region(r domain.Region, children ...g.Node) g.Node {
	return Section(
		ID(string(r)),
		Class("region region-"+string(r)),
		hx.SwapOOB("true"),
		H2(g.Text(regionTitles[r])),
		g.Group(children),
	)
}

// LoadingRegion is shown before the first refresh completes.
func LoadingRegion(r domain.Region) g.Node {
	return region(r, P(Class("muted"), g.Text("Loading...")))
}

// RegionError replaces a region's content with its failure state.
func RegionError(r domain.Region, err error) g.Node {
	return region(r,
		Div(Class("region-error"), g.Attr("role", "alert"),
			g.Textf("Could not load %s: %v", regionTitles[r], err),
		),
	)
}

// Stats renders the aggregate counters.
func Stats(f *view.Formatter, stats domain.DashboardStats) g.Node {
	return region(domain.RegionStats,
		Div(Class("stat-grid"),
			statCard("Total Applications", f.Number(stats.TotalApplications)),
			statCard("Active Campaigns", f.Number(stats.ActiveCampaigns)),
			statCard("Response Rate", f.Percent(stats.ResponseRate)),
			statCard("Interviews", f.Number(stats.Interviews)),
		),
	)
}

func statCard(label, value string) g.Node {
	return Div(Class("stat-card"),
		Span(Class("stat-value"), g.Text(value)),
		Span(Class("stat-label"), g.Text(label)),
	)
}

// Campaigns renders one card per campaign.
func Campaigns(f *view.Formatter, campaigns []domain.Campaign) g.Node {
	if len(campaigns) == 0 {
		return region(domain.RegionCampaigns, P(Class("muted"), g.Text("No campaigns yet.")))
	}
	return region(domain.RegionCampaigns,
		Div(Class("campaign-list"),
			g.Map(campaigns, func(c domain.Campaign) g.Node {
				return campaignCard(f, c)
			}),
		),
	)
}

func campaignCard(f *view.Formatter, c domain.Campaign) g.Node {
	pct := c.ProgressPercent()
	return Div(Class("campaign-card"),
		Div(Class("campaign-header"),
			H3(g.Text(c.Name)),
			Span(Class("badge badge-"+string(c.Status)), g.Text(f.Label(string(c.Status)))),
		),
		Div(Class("campaign-counts"),
			countCell("Applied", f.Number(c.Applied)),
			countCell("Responses", f.Number(c.Responses)),
			countCell("Interviews", f.Number(c.Interviews)),
		),
		Div(Class("progress"), g.Attr("role", "progressbar"), g.Attr("aria-valuenow", fmt.Sprint(pct)),
			Div(Class("progress-bar"), Style(fmt.Sprintf("width: %d%%", pct))),
		),
		Small(g.Textf("%d%% complete", pct)),
	)
}

func countCell(label, value string) g.Node {
	return Div(Class("count"),
		Strong(g.Text(value)),
		Span(g.Text(" "+label)),
	)
}

// Applications renders the recent applications table.
func Applications(f *view.Formatter, apps []domain.Application) g.Node {
	if len(apps) == 0 {
		return region(domain.RegionApplications, P(Class("muted"), g.Text("No applications yet.")))
	}
	return region(domain.RegionApplications,
		Table(Class("applications"),
			THead(Tr(
				Th(g.Text("Position")),
				Th(g.Text("Company")),
				Th(g.Text("Location")),
				Th(g.Text("Applied")),
				Th(g.Text("Status")),
			)),
			TBody(g.Map(apps, func(a domain.Application) g.Node {
				return Tr(
					Td(g.Text(a.JobTitle)),
					Td(g.Text(a.Company)),
					Td(g.Text(a.Location)),
					Td(g.Attr("title", f.Date(a.AppliedDate.Time)), g.Text(f.RelativeDate(a.AppliedDate.Time))),
					Td(Span(Class("status"), g.Text(f.Label(a.Status)))),
				)
			})),
		),
	)
}

// Settings renders the resolved webhook endpoint table.
func Settings(endpoints []config.Endpoint) g.Node {
	return region(domain.RegionSettings,
		Table(Class("endpoints"),
			THead(Tr(
				Th(g.Text("Webhook")),
				Th(g.Text("URL")),
				Th(g.Text("Source")),
			)),
			TBody(g.Map(endpoints, func(e config.Endpoint) g.Node {
				return Tr(
					Td(Code(g.Text(string(e.Key)))),
					Td(g.Text(e.URL)),
					Td(g.Text(e.Source)),
				)
			})),
		),
	)
}

// SettingsHint is the collapsed settings region shown until the user opens it.
func SettingsHint() g.Node {
	return region(domain.RegionSettings, P(Class("muted"), g.Text("Open settings to see the webhook endpoints.")))
}
