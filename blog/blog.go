package blog

import (
	"context"
	"errors"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const (
	DataPath    = "blogs.json"
	DatesID     = "blog-dates"
	ContentID   = "blog-content"
	ActiveClass = "active-date"

	InvalidDataMessage = "<p>Error: Invalid blog data.</p>"
	LoadFailedMessage  = "<p>Error loading blog data. Please try again later.</p>"
)

type Fetcher interface {
	JSON(ctx context.Context, path string) ([]byte, error)
}

// Activator fills the blog date list and content pane of a fragment.
type Activator struct {
	win     *window.Window
	fetcher Fetcher
	logger  *zap.Logger
}

func New(win *window.Window, fetcher Fetcher, logger *zap.Logger) *Activator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activator{
		win:     win,
		fetcher: fetcher,
		logger:  logger.Named("blog"),
	}
}

// Activate is a no-op unless both blog containers exist. The entries are
// fetched after the document is released.
func (a *Activator) Activate(ctx context.Context, gen window.Generation, doc *dom.Document) {
	dates := doc.GetElementByID(DatesID)
	content := doc.GetElementByID(ContentID)
	if dates == nil || content == nil {
		return
	}

	a.win.Enqueue(func(ctx context.Context) {
		data, err := a.fetcher.JSON(ctx, DataPath)
		var entries []vo.BlogEntry
		if err == nil {
			entries, err = vo.ParseBlogEntries(data)
		}
		a.win.Apply(ctx, gen, func(doc *dom.Document) {
			switch {
			case errors.Is(err, vo.ErrInvalidPayload):
				a.logger.Warn("invalid blog data", zap.Error(err))
				content.SetInnerHTML(InvalidDataMessage)
				a.win.Emit(window.ChangeBlogFailed, map[string]any{"error": err.Error()})
			case err != nil:
				a.logger.Warn("failed to load blog data", zap.Error(err))
				content.SetInnerHTML(LoadFailedMessage)
				a.win.Emit(window.ChangeBlogFailed, map[string]any{"error": err.Error()})
			default:
				a.render(dates, content, entries)
			}
		})
	})
}

func (a *Activator) render(dates, content *dom.Element, entries []vo.BlogEntry) {
	dates.SetInnerHTML("")
	for _, entry := range entries {
		li := dates.Document().CreateElement("li")
		li.SetText(entry.Date)
		li.AddEventListener("click", func(ev *dom.Event) {
			show(dates, content, entry)
		})
		dates.Append(li)
	}
	if len(entries) == 0 {
		content.SetInnerHTML(LoadFailedMessage)
		a.win.Emit(window.ChangeBlogFailed, map[string]any{"error": "no blog entries"})
		return
	}
	show(dates, content, entries[0])
	a.win.Emit(window.ChangeBlogLoaded, map[string]any{"entries": len(entries)})
}

// show renders entry and moves the active marker to the first date item whose
// text equals the entry date.
func show(dates, content *dom.Element, entry vo.BlogEntry) {
	content.SetInnerHTML("<h2>" + entry.Title + "</h2>" + entry.Content)
	items := dates.Children()
	for _, li := range items {
		li.RemoveClass(ActiveClass)
	}
	for _, li := range items {
		if li.Text() == entry.Date {
			li.AddClass(ActiveClass)
			break
		}
	}
}
