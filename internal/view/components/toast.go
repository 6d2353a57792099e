package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/view"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

var toastList = string(domain.RegionNotifications) + "-list"

// Toast renders one notification appended to the notifications region.
func Toast(n notify.Notification) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div hx-swap-oob="beforeend:#%s">`, toastList); err != nil {
			return err
		}
		if err := toastItem(n).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func toastItem(n notify.Notification) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div id="toast-%s" class="toast toast-%s" role="status" data-ttl-ms="%d">%s</div>`,
			templ.EscapeString(n.ID),
			templ.EscapeString(string(n.Level)),
			n.ExpiresAt.Sub(n.CreatedAt).Milliseconds(),
			templ.EscapeString(n.Message),
		)
		return err
	})
}

// Notifications renders the toast container with the toasts still active.
func Notifications(active []notify.Notification) g.Node {
	return Div(
		ID(string(domain.RegionNotifications)),
		Class("region-notifications"),
		g.Attr("aria-live", "polite"),
		Div(ID(toastList),
			g.Map(active, func(n notify.Notification) g.Node {
				return view.TemplToNode(toastItem(n))
			}),
		),
	)
}
