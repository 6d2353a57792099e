package components

import (
	"github.com/nfrund/applydash/internal/domain"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// ActionPanel renders one form per action. Each form posts to the action's
// identifier; htmx posts swap nothing because results arrive over the websocket,
// except open-settings whose response carries the settings region.
func ActionPanel() g.Node {
	return Div(Class("actions"),
		actionForm(domain.ActionCreateCampaign, false,
			textField("campaignName", "Campaign name"),
			textField("jobTitle", "Job title"),
			textField("platforms", "Platforms (comma separated)"),
		),
		actionForm(domain.ActionUploadResume, true,
			Input(Type("file"), Name("resume"), Accept(".pdf,.doc,.docx,.txt"), g.Attr("required")),
		),
		actionForm(domain.ActionFindJobs, false,
			textField("jobTitle", "Job title"),
			textField("location", "Location"),
			textField("platforms", "Platforms (comma separated)"),
		),
		actionForm(domain.ActionOpenSettings, false),
	)
}

func actionForm(a domain.Action, multipart bool, fields ...g.Node) g.Node {
	path := "/actions/" + string(a)
	return g.El("form",
		Class("action-form"),
		g.Attr("data-action", string(a)),
		Method("post"),
		Action(path),
		hx.Post(path),
		hx.Swap("none"),
		g.Attr("hx-disabled-elt", "find button"),
		g.If(multipart, g.Group{hx.Encoding("multipart/form-data"), g.Attr("enctype", "multipart/form-data")}),
		g.Group(fields),
		Button(Type("submit"), Class("btn btn-"+string(a)), g.Text(a.Label())),
	)
}

func textField(name, label string) g.Node {
	return g.El("label",
		Span(g.Text(label)),
		Input(Type("text"), Name(name), Placeholder(label)),
	)
}
