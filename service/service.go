package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/foomo/portfolio-mcp/activate"
	"github.com/foomo/portfolio-mcp/blog"
	"github.com/foomo/portfolio-mcp/contact"
	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/gallery"
	"github.com/foomo/portfolio-mcp/router"
	"github.com/foomo/portfolio-mcp/scrape"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/site"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const ContentSelector = "#" + router.ContentID

var ErrNotFound = errors.New("element not found")

// Service drives a single page session. Every mutating call returns the
// snapshot taken right after the interaction settled.
type Service interface {
	Navigate(ctx context.Context, section vo.Section) (*vo.Snapshot, error)
	Snapshot(ctx context.Context) (*vo.Snapshot, error)
	Click(ctx context.Context, selector string, index int) (*vo.Snapshot, error)
	SelectBlogDate(ctx context.Context, date string) (*vo.Snapshot, error)
	Scroll(ctx context.Context, scroll dom.Scroll) (*vo.Snapshot, error)
	SubmitContact(ctx context.Context, fields map[string]string) (*vo.Snapshot, error)
	Sections(ctx context.Context) ([]vo.Section, error)
	Preview(ctx context.Context, section vo.Section) (vo.ContentSummary, vo.Markdown, error)
	Subscribe(fn func(window.Change)) (unsubscribe func())
}

type service struct {
	site       *site.Site
	openMu     sync.Mutex
	interactMu sync.Mutex
	logger     *zap.Logger
}

func NewService(s *site.Site, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		site:   s,
		logger: logger.Named("service"),
	}
}

// ensureOpen loads the shell page on first use.
func (s *service) ensureOpen(ctx context.Context) error {
	s.openMu.Lock()
	defer s.openMu.Unlock()
	if s.site.Opened() {
		return nil
	}
	if err := s.site.Open(ctx); err != nil {
		return fmt.Errorf("%w: %w", site.ErrNotOpen, err)
	}
	return nil
}

// interact runs fn after the session is open and returns the resulting
// snapshot together with the alerts raised meanwhile. Interactions are
// serialized, so a snapshot only carries the alerts of its own interaction.
// Alerts raised outside of any interaction are not attached to a snapshot;
// use Subscribe to observe them.
func (s *service) interact(ctx context.Context, fn func() error) (*vo.Snapshot, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}
	s.interactMu.Lock()
	defer s.interactMu.Unlock()
	var (
		mu     sync.Mutex
		alerts []string
	)
	unsubscribe := s.site.Window().Subscribe(func(c window.Change) {
		if c.Kind != window.ChangeAlert {
			return
		}
		if message, ok := c.Data["message"].(string); ok {
			mu.Lock()
			alerts = append(alerts, message)
			mu.Unlock()
		}
	})
	err := fn()
	unsubscribe()

	snapshot, snapErr := s.snapshot(ctx)
	if snapErr != nil {
		return nil, snapErr
	}
	mu.Lock()
	snapshot.Alerts = alerts
	mu.Unlock()
	return snapshot, err
}

func (s *service) Navigate(ctx context.Context, section vo.Section) (*vo.Snapshot, error) {
	return s.interact(ctx, func() error {
		return s.site.Router().Navigate(ctx, section)
	})
}

func (s *service) Snapshot(ctx context.Context) (*vo.Snapshot, error) {
	return s.interact(ctx, func() error { return nil })
}

func (s *service) dispatch(ctx context.Context, typ string, pick func(doc *dom.Document) *dom.Element) error {
	dispatched, _ := s.site.Window().Dispatch(ctx, typ, pick)
	if !dispatched {
		return ErrNotFound
	}
	return nil
}

func (s *service) Click(ctx context.Context, selector string, index int) (*vo.Snapshot, error) {
	return s.interact(ctx, func() error {
		err := s.dispatch(ctx, "click", func(doc *dom.Document) *dom.Element {
			elements := doc.QueryAll(selector)
			if index < 0 || index >= len(elements) {
				return nil
			}
			return elements[index]
		})
		if err != nil {
			return fmt.Errorf("%w: %s[%d]", err, selector, index)
		}
		return nil
	})
}

func (s *service) SelectBlogDate(ctx context.Context, date string) (*vo.Snapshot, error) {
	return s.interact(ctx, func() error {
		err := s.dispatch(ctx, "click", func(doc *dom.Document) *dom.Element {
			for _, li := range doc.QueryAll("#" + blog.DatesID + " li") {
				if li.Text() == date {
					return li
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: blog date %q", err, date)
		}
		return nil
	})
}

func (s *service) Scroll(ctx context.Context, scroll dom.Scroll) (*vo.Snapshot, error) {
	return s.interact(ctx, func() error {
		err := s.dispatch(ctx, "scroll", func(doc *dom.Document) *dom.Element {
			mainElement := doc.Query("main")
			if mainElement != nil {
				mainElement.SetScroll(scroll)
			}
			return mainElement
		})
		if err != nil {
			return fmt.Errorf("%w: main", err)
		}
		return nil
	})
}

// SubmitContact fills the named controls of the contact form and submits it.
// Unknown names are rejected before anything is changed.
func (s *service) SubmitContact(ctx context.Context, fields map[string]string) (*vo.Snapshot, error) {
	return s.interact(ctx, func() error {
		var fillErr error
		err := s.dispatch(ctx, "submit", func(doc *dom.Document) *dom.Element {
			form := doc.GetElementByID(contact.FormID)
			if form == nil {
				return nil
			}
			controls := map[string]*dom.Element{}
			for name := range fields {
				control := form.Query(fmt.Sprintf("[name=%q]", name))
				if control == nil {
					fillErr = fmt.Errorf("%w: form field %q", ErrNotFound, name)
					return nil
				}
				controls[name] = control
			}
			for name, control := range controls {
				control.SetValue(fields[name])
			}
			return form
		})
		if fillErr != nil {
			return fillErr
		}
		if err != nil {
			return fmt.Errorf("%w: #%s", err, contact.FormID)
		}
		return nil
	})
}

func (s *service) Sections(ctx context.Context) ([]vo.Section, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}
	var sections []vo.Section
	s.site.Window().Do(ctx, func(doc *dom.Document) {
		sections = router.Sections(doc)
	})
	return sections, nil
}

// Preview renders a section fragment without navigating to it.
func (s *service) Preview(ctx context.Context, section vo.Section) (vo.ContentSummary, vo.Markdown, error) {
	return scrape.Page(ctx, s.site.Client(), router.FragmentPath(section), "body")
}

func (s *service) Subscribe(fn func(window.Change)) func() {
	return s.site.Window().Subscribe(fn)
}

func (s *service) snapshot(ctx context.Context) (*vo.Snapshot, error) {
	win := s.site.Window()
	snapshot := &vo.Snapshot{
		Location:   win.Location(),
		Section:    router.InitialSection(win.Location()),
		Generation: uint64(win.Current()),
	}
	var err error
	win.Do(ctx, func(doc *dom.Document) {
		snapshot.Summary, snapshot.Markdown, err = scrape.Scrape(doc, ContentSelector)
		if err != nil {
			return
		}
		for i, block := range doc.QueryAll(activate.ExpandableSelector) {
			if block.HasClass(activate.ExpandedClass) {
				snapshot.Expanded = append(snapshot.Expanded, i)
			}
		}
		snapshot.Blog = blogView(doc)
		snapshot.Gallery = galleryView(doc)
		snapshot.Lightbox = lightboxView(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}
	return snapshot, nil
}

func blogView(doc *dom.Document) *vo.BlogView {
	dates := doc.GetElementByID(blog.DatesID)
	if dates == nil {
		return nil
	}
	view := &vo.BlogView{Dates: []string{}}
	for _, li := range dates.QueryAll("li") {
		view.Dates = append(view.Dates, li.Text())
		if li.HasClass(blog.ActiveClass) && view.Active == "" {
			view.Active = li.Text()
		}
	}
	return view
}

func galleryView(doc *dom.Document) *vo.GalleryView {
	athletics := doc.GetElementByID(gallery.GridID(vo.CategoryAthletics))
	events := doc.GetElementByID(gallery.GridID(vo.CategoryEvents))
	if athletics == nil || events == nil {
		return nil
	}
	view := &vo.GalleryView{
		Athletics: len(athletics.QueryAll("img.thumbnail")),
		Events:    len(events.QueryAll("img.thumbnail")),
	}
	for _, img := range doc.QueryAll("img.thumbnail") {
		if img.Hidden() {
			view.Hidden++
		}
	}
	if spinner := doc.GetElementByID(gallery.SpinnerID); spinner != nil {
		view.SpinnerVisible = spinner.Display() == "block"
	}
	if banner := doc.GetElementByID(gallery.BannerID); banner != nil {
		view.BannerVisible = banner.Display() == "block"
	}
	return view
}

func lightboxView(doc *dom.Document) *vo.LightboxView {
	overlay := doc.GetElementByID(gallery.LightboxID)
	if overlay == nil {
		return nil
	}
	view := &vo.LightboxView{Open: overlay.Display() == "flex"}
	if view.Open {
		if img := doc.GetElementByID(gallery.LightboxImageID); img != nil {
			view.Src = img.Attr("src")
		}
	}
	return view
}
