package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const (
	ContentID      = "content"
	LinkSelector   = "nav a"
	FailureMessage = "<p>Loading failed, please try again later.</p>"
)

var (
	// ErrSuperseded is returned when a newer navigation started before the
	// fragment arrived. The fragment is dropped.
	ErrSuperseded = errors.New("navigation superseded")
	ErrNoContent  = errors.New("content region not found")
)

type Fetcher interface {
	Text(ctx context.Context, path string) (string, error)
}

type Activator interface {
	Activate(ctx context.Context, gen window.Generation, doc *dom.Document)
}

// Hook binds behavior specific to one section. It runs with the document
// held, after the generic activation.
type Hook func(ctx context.Context, gen window.Generation, doc *dom.Document)

type Router struct {
	win       *window.Window
	fetcher   Fetcher
	activator Activator
	hooks     map[vo.Section]Hook
	logger    *zap.Logger
}

func New(win *window.Window, fetcher Fetcher, activator Activator, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		win:       win,
		fetcher:   fetcher,
		activator: activator,
		hooks:     map[vo.Section]Hook{},
		logger:    logger.Named("router"),
	}
}

// Handle registers hook for section. Not safe for use once navigation has
// started.
func (r *Router) Handle(section vo.Section, hook Hook) {
	r.hooks[section] = hook
}

func FragmentPath(section vo.Section) string {
	return "sections/" + string(section) + ".html"
}

// Navigate fetches the fragment of section and swaps it into the content
// region. On failure the region shows a fixed message and the location is
// left alone.
func (r *Router) Navigate(ctx context.Context, section vo.Section) error {
	gen := r.win.Begin()
	logger := r.logger.With(zap.String("section", string(section)), zap.Uint64("generation", uint64(gen)))

	markup, err := r.fetcher.Text(ctx, FragmentPath(section))
	if err != nil {
		logger.Warn("failed to load section", zap.Error(err))
		if !r.win.Apply(ctx, gen, func(doc *dom.Document) {
			if content := doc.GetElementByID(ContentID); content != nil {
				content.SetInnerHTML(FailureMessage)
			}
			r.win.Emit(window.ChangeSectionFailed, map[string]any{
				"section": string(section),
				"error":   err.Error(),
			})
		}) {
			return ErrSuperseded
		}
		return fmt.Errorf("failed to load section %q: %w", section, err)
	}

	var swapErr error
	applied := r.win.Apply(ctx, gen, func(doc *dom.Document) {
		content := doc.GetElementByID(ContentID)
		if content == nil {
			swapErr = ErrNoContent
			return
		}
		content.SetInnerHTML(markup)
		r.win.PushState("#" + string(section))
		r.activator.Activate(ctx, gen, doc)
		if hook, ok := r.hooks[section]; ok {
			hook(ctx, gen, doc)
		}
		r.win.Emit(window.ChangeSectionLoaded, map[string]any{"section": string(section)})
	})
	if !applied {
		logger.Debug("dropping superseded section")
		return ErrSuperseded
	}
	if swapErr != nil {
		logger.Error("failed to swap section", zap.Error(swapErr))
		return swapErr
	}
	logger.Debug("section loaded")
	return nil
}

// BindLinks intercepts clicks on navigation links and routes them to the
// section named by the link target.
func (r *Router) BindLinks(doc *dom.Document) {
	for _, link := range doc.QueryAll(LinkSelector) {
		link.AddEventListener("click", func(ev *dom.Event) {
			ev.PreventDefault()
			section := LinkSection(link.Attr("href"))
			ev.Defer(func(ctx context.Context) {
				_ = r.Navigate(ctx, section)
			})
		})
	}
}

// Start navigates to the section named by the current location or the
// default section.
func (r *Router) Start(ctx context.Context) error {
	return r.Navigate(ctx, InitialSection(r.win.Location()))
}

// LinkSection drops the leading character of a link target, so "#about"
// names the about section.
func LinkSection(href string) vo.Section {
	_, size := utf8.DecodeRuneInString(href)
	return vo.Section(href[size:])
}

func InitialSection(location string) vo.Section {
	if section := strings.TrimPrefix(location, "#"); section != "" {
		return vo.Section(section)
	}
	return vo.DefaultSection
}

// Sections lists the sections reachable from the navigation links of doc in
// document order, without duplicates.
func Sections(doc *dom.Document) []vo.Section {
	seen := map[vo.Section]bool{}
	sections := []vo.Section{}
	for _, link := range doc.QueryAll(LinkSelector) {
		section := LinkSection(link.Attr("href"))
		if section == "" || seen[section] {
			continue
		}
		seen[section] = true
		sections = append(sections, section)
	}
	return sections
}
