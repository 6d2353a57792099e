package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/rendering"
	"github.com/nfrund/applydash/internal/view"
	"github.com/nfrund/applydash/internal/view/components"
)

// FragmentSource provides the current HTML of dashboard regions.
type FragmentSource interface {
	Fragments(regions ...domain.Region) [][]byte
}

// NotificationSource lists the toasts still on screen.
type NotificationSource interface {
	Active() []notify.Notification
}

// EndpointLister exposes the resolved endpoint table.
type EndpointLister interface {
	Snapshot() []config.Endpoint
}

// PageHandler serves the dashboard page.
type PageHandler struct {
	board         FragmentSource
	notifications NotificationSource
	endpoints     EndpointLister
	renderer      rendering.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(board FragmentSource, notifications NotificationSource, endpoints EndpointLister, renderer rendering.Renderer) *PageHandler {
	return &PageHandler{
		board:         board,
		notifications: notifications,
		endpoints:     endpoints,
		renderer:      renderer,
	}
}

// Get renders the page from the latest region fragments. With
// ?settings=open the settings region shows the endpoint table.
func (h *PageHandler) Get(c echo.Context) error {
	regions := h.board.Fragments(domain.RegionStats, domain.RegionCampaigns, domain.RegionApplications)
	if c.QueryParam("settings") == "open" {
		settings, err := h.renderer.RenderComponent(c.Request().Context(), components.Settings(h.endpoints.Snapshot()))
		if err != nil {
			return err
		}
		regions = append(regions, settings)
	} else {
		regions = append(regions, h.board.Fragments(domain.RegionSettings)...)
	}

	return h.renderer.RenderPage(c, http.StatusOK, components.Page(components.PageData{
		Flash:         view.GetFlashData(c),
		Regions:       regions,
		Notifications: components.Notifications(h.notifications.Active()),
	}))
}
