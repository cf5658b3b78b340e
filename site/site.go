// Package site wires a headless page session against a static portfolio
// host: shell page, navigation, activation and the section specific
// behaviors.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/foomo/portfolio-mcp/activate"
	"github.com/foomo/portfolio-mcp/contact"
	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/fetch"
	"github.com/foomo/portfolio-mcp/gallery"
	"github.com/foomo/portfolio-mcp/router"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const (
	DefaultShell = "index.html"

	SectionContact     = "contact"
	SectionPhotography = "photography"
)

var ErrNotOpen = errors.New("site not opened")

type Options struct {
	BaseURL         string
	Shell           string
	InitialHash     string
	ContactEndpoint string
	Gallery         gallery.Options
	ProbeImages     bool

	HTTPClient *http.Client
	Notifier   window.Notifier
	Timers     window.Timers
	Logger     *zap.Logger
}

type Site struct {
	opts   Options
	win    *window.Window
	client *fetch.Client
	router *router.Router
	opened atomic.Bool
	logger *zap.Logger
}

func New(opts Options) (*Site, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	client, err := fetch.New(opts.BaseURL, opts.HTTPClient, opts.Logger)
	if err != nil {
		return nil, err
	}

	winOpts := []window.Option{
		window.WithLocation(opts.InitialHash),
		window.WithLogger(opts.Logger),
	}
	if opts.Notifier != nil {
		winOpts = append(winOpts, window.WithNotifier(opts.Notifier))
	}
	if opts.Timers != nil {
		winOpts = append(winOpts, window.WithTimers(opts.Timers))
	}
	win := window.New(winOpts...)

	galleryOpts := opts.Gallery
	if opts.ProbeImages {
		galleryOpts.Prober = client
	}

	r := router.New(win, client, activate.New(win, client, opts.Logger), opts.Logger)
	r.Handle(SectionContact, contact.NewSubmitter(win, client, opts.ContactEndpoint, opts.Logger).Bind)
	r.Handle(SectionPhotography, gallery.NewBinder(win, client, galleryOpts, opts.Logger).Bind)

	return &Site{
		opts:   opts,
		win:    win,
		client: client,
		router: r,
		logger: opts.Logger.Named("site"),
	}, nil
}

// Open loads the shell page, binds its navigation links and navigates to the
// initial section. A failing initial section leaves the shell loaded and
// shows the failure message in place.
func (s *Site) Open(ctx context.Context) error {
	markup, err := s.client.Text(ctx, s.opts.Shell)
	if err != nil {
		return fmt.Errorf("failed to load shell: %w", err)
	}
	doc, err := dom.ParseString(markup)
	if err != nil {
		return fmt.Errorf("failed to parse shell: %w", err)
	}
	s.win.Load(doc)
	s.win.Do(ctx, s.router.BindLinks)
	s.opened.Store(true)
	s.logger.Info("site opened", zap.String("base", s.opts.BaseURL), zap.String("location", s.win.Location()))

	if err := s.router.Start(ctx); err != nil {
		s.logger.Warn("initial section failed", zap.Error(err))
	}
	return nil
}

func (s *Site) Opened() bool { return s.opened.Load() }

func (s *Site) Window() *window.Window { return s.win }

func (s *Site) Router() *router.Router { return s.router }

func (s *Site) Client() *fetch.Client { return s.client }
