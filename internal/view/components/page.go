package components

import (
	"github.com/nfrund/applydash/internal/view"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// PageData is everything the dashboard page shows on first load.
type PageData struct {
	Title string
	Flash view.FlashData
	// Regions are the current region fragments, already rendered.
	Regions [][]byte
	// Notifications is the rendered toast container.
	Notifications g.Node
}

// toastScript removes toasts once their time to live has passed.
const toastScript = `document.body.addEventListener("htmx:oobAfterSwap", sweep);
document.addEventListener("DOMContentLoaded", sweep);
function sweep() {
  document.querySelectorAll(".toast:not([data-armed])").forEach(function (el) {
    el.setAttribute("data-armed", "1");
    setTimeout(function () { el.remove(); }, parseInt(el.dataset.ttlMs || "5000", 10));
  });
}`

// Page renders the full dashboard document.
func Page(data PageData) g.Node {
	title := data.Title
	if title == "" {
		title = "ApplyDash"
	}
	return Doctype(
		HTML(Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(g.Text(title)),
				Link(Rel("stylesheet"), Href("/static/dashboard.css")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
				Script(Src("https://unpkg.com/htmx-ext-ws@2.0.2/ws.js")),
			),
			Body(
				hx.Ext("ws"),
				g.Attr("ws-connect", "/ws/html"),
				Header(Class("topbar"),
					H1(g.Text(title)),
				),
				flash(data.Flash),
				data.Notifications,
				Main(Class("dashboard"),
					ActionPanel(),
					g.Map(data.Regions, func(fragment []byte) g.Node {
						return g.Raw(string(fragment))
					}),
				),
				Script(g.Raw(toastScript)),
			),
		),
	)
}

func flash(f view.FlashData) g.Node {
	if f.Empty() {
		return nil
	}
	return Div(Class("flash"),
		g.Map(f.Success, func(m string) g.Node { return Div(Class("flash-success"), g.Text(m)) }),
		g.Map(f.Error, func(m string) g.Node { return Div(Class("flash-error"), g.Text(m)) }),
	)
}
