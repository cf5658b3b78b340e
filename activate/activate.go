// Package activate re-binds the behaviors of a freshly swapped fragment.
// Every step is a no-op when its elements are absent.
package activate

import (
	"context"

	"github.com/foomo/portfolio-mcp/blog"
	"github.com/foomo/portfolio-mcp/contact"
	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const (
	ExpandableSelector = ".experience-block"
	ExpandedClass      = "expanded"
)

type Activator struct {
	blog *blog.Activator
}

func New(win *window.Window, fetcher blog.Fetcher, logger *zap.Logger) *Activator {
	return &Activator{blog: blog.New(win, fetcher, logger)}
}

func (a *Activator) Activate(ctx context.Context, gen window.Generation, doc *dom.Document) {
	BindExpandables(doc)
	a.blog.Activate(ctx, gen, doc)
	contact.BindReset(doc)
}

// BindExpandables makes every experience block toggle its expanded state on
// click. Blocks expand independently.
func BindExpandables(doc *dom.Document) {
	for _, block := range doc.QueryAll(ExpandableSelector) {
		block.AddEventListener("click", func(ev *dom.Event) {
			block.ToggleClass(ExpandedClass)
		})
	}
}
