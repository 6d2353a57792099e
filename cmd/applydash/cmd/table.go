package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/view"
	"github.com/olekukonko/tablewriter"
)

// tablePresenter prints each dashboard region as a table.
type tablePresenter struct {
	mu  sync.Mutex
	w   io.Writer
	fmt *view.Formatter
}

func newTablePresenter(w io.Writer, locale string) *tablePresenter {
	return &tablePresenter{w: w, fmt: view.NewFormatter(locale)}
}

func (p *tablePresenter) ShowStats(_ context.Context, s domain.DashboardStats) error {
	p.print("Statistics", []string{"Total applications", "Active campaigns", "Response rate", "Interviews"}, [][]string{{
		p.fmt.Number(s.TotalApplications),
		p.fmt.Number(s.ActiveCampaigns),
		p.fmt.Percent(s.ResponseRate),
		p.fmt.Number(s.Interviews),
	}})
	return nil
}

func (p *tablePresenter) ShowApplications(_ context.Context, apps []domain.Application) error {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{a.JobTitle, a.Company, a.Location, p.fmt.RelativeDate(a.AppliedDate.Time), p.fmt.Label(a.Status)})
	}
	p.print("Recent applications", []string{"Position", "Company", "Location", "Applied", "Status"}, rows)
	return nil
}

func (p *tablePresenter) ShowCampaigns(_ context.Context, campaigns []domain.Campaign) error {
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			c.Name,
			p.fmt.Label(string(c.Status)),
			p.fmt.Number(c.Applied),
			p.fmt.Number(c.Responses),
			p.fmt.Number(c.Interviews),
			strconv.Itoa(c.ProgressPercent()) + "%",
		})
	}
	p.print("Campaigns", []string{"Name", "Status", "Applied", "Responses", "Interviews", "Progress"}, rows)
	return nil
}

func (p *tablePresenter) ShowRegionError(_ context.Context, region domain.Region, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: unavailable: %v\n\n", region, err)
	return nil
}

func (p *tablePresenter) print(title string, header []string, rows [][]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, title)
	if len(rows) == 0 {
		fmt.Fprint(p.w, "  (none)\n\n")
		return
	}
	renderTable(p.w, header, rows)
	fmt.Fprintln(p.w)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.AppendBulk(rows)
	t.Render()
}

func endpointRows(endpoints []config.Endpoint) [][]string {
	rows := make([][]string, 0, len(endpoints))
	for _, e := range endpoints {
		rows = append(rows, []string{string(e.Key), e.URL, e.Source})
	}
	return rows
}
