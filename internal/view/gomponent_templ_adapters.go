package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

type templNode struct {
	component templ.Component
}

// Render has no request context to pass on, so templ sees context.Background().
func (t templNode) Render(w io.Writer) error {
	return t.component.Render(context.Background(), w)
}

// TemplToNode lets a templ component be embedded in a gomponents tree.
func TemplToNode(component templ.Component) g.Node {
	return templNode{component: component}
}
