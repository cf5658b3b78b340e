package gallery

import (
	"context"
	"time"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const (
	ManifestPath           = "images.json"
	DefaultScrollThreshold = 50
	DefaultBannerDelay     = 3 * time.Second

	SpinnerID = "loading-spinner"
	BannerID  = "finished-banner"
)

var gridIDs = map[vo.Category]string{
	vo.CategoryAthletics: "athletics-grid",
	vo.CategoryEvents:    "events-grid",
}

func GridID(c vo.Category) string { return gridIDs[c] }

type Fetcher interface {
	JSON(ctx context.Context, path string) ([]byte, error)
}

// Prober checks whether an image can be loaded.
type Prober interface {
	Probe(ctx context.Context, src string) error
}

type Options struct {
	BatchSize       int
	ScrollThreshold int
	BannerDelay     time.Duration
	Prober          Prober // nil disables image probing
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.ScrollThreshold <= 0 {
		o.ScrollThreshold = DefaultScrollThreshold
	}
	if o.BannerDelay <= 0 {
		o.BannerDelay = DefaultBannerDelay
	}
	return o
}

// Binder activates the photo gallery of a freshly inserted fragment.
type Binder struct {
	win     *window.Window
	fetcher Fetcher
	opts    Options
	logger  *zap.Logger
}

func NewBinder(win *window.Window, fetcher Fetcher, opts Options, logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{
		win:     win,
		fetcher: fetcher,
		opts:    opts.withDefaults(),
		logger:  logger.Named("gallery"),
	}
}

// Bind runs with the document held, right after the fragment swap. The image
// manifest is fetched afterwards and applied only if gen is still current.
func (b *Binder) Bind(ctx context.Context, gen window.Generation, doc *dom.Document) {
	lightbox := FindLightbox(b.win, doc)
	if lightbox == nil {
		b.logger.Error("lightbox elements not found")
		return
	}

	b.win.Enqueue(func(ctx context.Context) {
		data, err := b.fetcher.JSON(ctx, ManifestPath)
		if err != nil {
			b.logger.Error("failed to load images.json", zap.Error(err))
			return
		}
		manifest, err := vo.ParseImageManifest(data)
		if err != nil {
			b.logger.Error("failed to load images.json", zap.Error(err))
			return
		}
		b.win.Apply(ctx, gen, func(doc *dom.Document) {
			b.setup(gen, doc, lightbox, manifest)
		})
	})
}

func (b *Binder) setup(gen window.Generation, doc *dom.Document, lightbox *Lightbox, manifest vo.ImageManifest) {
	l := &Loader{
		win:      b.win,
		gen:      gen,
		manifest: manifest,
		grids:    map[vo.Category]*dom.Element{},
		spinner:  doc.GetElementByID(SpinnerID),
		banner:   doc.GetElementByID(BannerID),
		lightbox: lightbox,
		opts:     b.opts,
		logger:   b.logger,
	}
	for _, c := range vo.Categories {
		grid := doc.GetElementByID(GridID(c))
		if grid == nil {
			b.logger.Error("photography grids not found", zap.String("category", string(c)))
			return
		}
		l.grids[c] = grid
	}
	lightbox.Bind()

	l.LoadAll()

	mainElement := doc.Query("main")
	if mainElement == nil {
		b.logger.Error("main element not found")
		return
	}
	// main outlives the fragment, so the listener retires itself once the
	// section has been replaced
	var remove func()
	remove = mainElement.AddEventListener("scroll", func(ev *dom.Event) {
		if l.stale() {
			remove()
			return
		}
		b.logger.Debug("scrolling inside main", zap.Any("scroll", mainElement.Scroll()))
		if mainElement.Scroll().NearBottom(b.opts.ScrollThreshold) {
			l.LoadAll()
		}
	})
}

// Loader appends batches of images to the category grids. All methods run
// with the document held.
type Loader struct {
	win      *window.Window
	gen      window.Generation
	manifest vo.ImageManifest
	state    State
	grids    map[vo.Category]*dom.Element
	spinner  *dom.Element
	banner   *dom.Element
	lightbox *Lightbox
	opts     Options
	logger   *zap.Logger
}

func (l *Loader) State() State { return l.state }

// stale reports whether the fragment the loader was bound to has been
// replaced.
func (l *Loader) stale() bool {
	return l.win.Current() != l.gen
}

func (l *Loader) LoadAll() {
	for _, c := range vo.Categories {
		l.LoadMore(c)
	}
}

func (l *Loader) LoadMore(c vo.Category) {
	items := l.manifest.Items(c)
	if l.state.Exhausted(c, len(items)) {
		l.checkAllLoaded()
		return
	}

	l.setSpinner("block")
	next, batch := Next(l.state, c, items, l.opts.BatchSize)
	grid := l.grids[c]
	for _, item := range batch {
		grid.Append(l.thumbnail(grid.Document(), item))
	}
	l.state = next
	l.setSpinner("none")

	l.win.Emit(window.ChangeGalleryBatch, map[string]any{
		"category": string(c),
		"added":    len(batch),
		"cursor":   l.state.Cursor(c),
	})
	l.checkAllLoaded()
}

func (l *Loader) thumbnail(doc *dom.Document, item vo.ImageDescriptor) *dom.Element {
	img := doc.CreateElement("img")
	img.SetAttr("src", item.Src)
	img.SetAttr("alt", item.Alt)
	img.SetAttr("class", "thumbnail")

	img.AddEventListener("error", func(ev *dom.Event) {
		l.logger.Warn("image failed to load", zap.String("src", img.Attr("src")))
		img.SetDisplay("none")
	})
	img.AddEventListener("click", func(ev *dom.Event) {
		l.lightbox.Open(img.Attr("src"))
	})

	if l.opts.Prober != nil {
		src := item.Src
		l.win.Enqueue(func(ctx context.Context) {
			if l.stale() {
				return
			}
			if err := l.opts.Prober.Probe(ctx, src); err != nil {
				l.win.Dispatch(ctx, "error", func(doc *dom.Document) *dom.Element {
					if !img.Connected() {
						return nil
					}
					return img
				})
			}
		})
	}
	return img
}

func (l *Loader) setSpinner(display string) {
	if l.spinner != nil {
		l.spinner.SetDisplay(display)
	}
}

func (l *Loader) checkAllLoaded() {
	if l.state.Finished || !l.state.Complete(l.manifest) {
		return
	}
	l.state.Finished = true
	l.win.Emit(window.ChangeGalleryComplete, map[string]any{
		"athletics": len(l.manifest.Athletics),
		"events":    len(l.manifest.Events),
	})
	if l.banner == nil {
		return
	}
	banner := l.banner
	banner.SetDisplay("block")
	l.win.After(l.opts.BannerDelay, func(doc *dom.Document) {
		if l.stale() || !banner.Connected() {
			return
		}
		banner.SetDisplay("none")
		l.win.Emit(window.ChangeBannerHidden, nil)
	})
}
