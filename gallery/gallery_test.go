package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const photography = `<html><body><main>
<div id="content">
	<div id="athletics-grid"></div>
	<div id="events-grid"></div>
	<div id="loading-spinner" style="display: none"></div>
	<div id="finished-banner" style="display: none">All photos loaded</div>
	<div id="photography-lightbox" style="display: none">
		<span class="photography-close">&times;</span>
		<img id="photography-lightbox-img" src="">
	</div>
</div>
</main></body></html>`

type stubFetcher struct {
	body    string
	err     error
	calls   int
	onFetch func()
}

func (f *stubFetcher) JSON(ctx context.Context, path string) ([]byte, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

type stubProber struct {
	broken map[string]bool
}

func (p stubProber) Probe(ctx context.Context, src string) error {
	if p.broken[src] {
		return errors.New("not found")
	}
	return nil
}

func manifestJSON(athletics, events int) string {
	item := func(prefix string, i int) string {
		return fmt.Sprintf(`{"src": "img/%s-%d.jpg", "alt": "%s %d"}`, prefix, i, prefix, i)
	}
	var a, e []string
	for i := 0; i < athletics; i++ {
		a = append(a, item("a", i))
	}
	for i := 0; i < events; i++ {
		e = append(e, item("e", i))
	}
	return fmt.Sprintf(`{"athletics": [%s], "events": [%s]}`, strings.Join(a, ","), strings.Join(e, ","))
}

type fixture struct {
	win     *window.Window
	timers  *window.ManualTimers
	fetcher *stubFetcher
	binder  *Binder
	changes []string
}

func newFixture(t *testing.T, markup, manifest string, opts Options) *fixture {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	f := &fixture{
		timers:  &window.ManualTimers{},
		fetcher: &stubFetcher{body: manifest},
	}
	f.win = window.New(window.WithTimers(f.timers))
	f.win.Load(doc)
	f.win.Subscribe(func(c window.Change) { f.changes = append(f.changes, c.Kind) })
	f.binder = NewBinder(f.win, f.fetcher, opts, zaptest.NewLogger(t))
	return f
}

func (f *fixture) activate(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	gen := f.win.Begin()
	require.True(t, f.win.Apply(ctx, gen, func(doc *dom.Document) {
		f.binder.Bind(ctx, gen, doc)
	}))
}

func (f *fixture) count(selector string) (n int) {
	f.win.Do(context.Background(), func(doc *dom.Document) {
		n = len(doc.QueryAll(selector))
	})
	return n
}

func (f *fixture) display(id string) (display string) {
	f.win.Do(context.Background(), func(doc *dom.Document) {
		display = doc.GetElementByID(id).Display()
	})
	return display
}

func (f *fixture) scroll(t *testing.T, s dom.Scroll) {
	t.Helper()
	dispatched, _ := f.win.Dispatch(context.Background(), "scroll", func(doc *dom.Document) *dom.Element {
		m := doc.Query("main")
		m.SetScroll(s)
		return m
	})
	require.True(t, dispatched)
}

func (f *fixture) click(t *testing.T, selector string) {
	t.Helper()
	dispatched, _ := f.win.Dispatch(context.Background(), "click", func(doc *dom.Document) *dom.Element {
		return doc.Query(selector)
	})
	require.True(t, dispatched, selector)
}

func (f *fixture) kinds(kind string) (n int) {
	for _, k := range f.changes {
		if k == kind {
			n++
		}
	}
	return n
}

func TestNextCursorMonotonic(t *testing.T) {
	for _, n := range []int{0, 1, 5, 6, 7, 12, 13, 20} {
		items := make([]vo.ImageDescriptor, n)
		s := State{}
		batches := (n + DefaultBatchSize - 1) / DefaultBatchSize
		for k := 1; k <= batches+2; k++ {
			s, _ = Next(s, vo.CategoryEvents, items, DefaultBatchSize)
			assert.Equal(t, min(6*k, batches*6), s.Events, "n=%d k=%d", n, k)
			if k >= batches {
				assert.True(t, s.Exhausted(vo.CategoryEvents, n), "n=%d k=%d", n, k)
			}
		}
		assert.Equal(t, 0, s.Athletics)
	}
}

func TestNextSlices(t *testing.T) {
	items := make([]vo.ImageDescriptor, 8)
	for i := range items {
		items[i].Src = fmt.Sprint(i)
	}
	s, batch := Next(State{}, vo.CategoryAthletics, items, 6)
	assert.Len(t, batch, 6)
	s, batch = Next(s, vo.CategoryAthletics, items, 6)
	require.Len(t, batch, 2)
	assert.Equal(t, "6", batch[0].Src)
	assert.Equal(t, 12, s.Athletics)
	s2, batch := Next(s, vo.CategoryAthletics, items, 6)
	assert.Nil(t, batch)
	assert.Equal(t, s, s2)
}

func TestActivateLoadsFirstBatchAndCompletes(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(6, 3), Options{})
	f.activate(t)

	assert.Equal(t, 1, f.fetcher.calls)
	assert.Equal(t, 6, f.count("#athletics-grid img.thumbnail"))
	assert.Equal(t, 3, f.count("#events-grid img.thumbnail"))
	assert.Equal(t, "block", f.display(BannerID))
	assert.Equal(t, "none", f.display(SpinnerID))
	assert.Equal(t, 1, f.kinds(window.ChangeGalleryComplete))

	f.timers.Advance(2 * time.Second)
	assert.Equal(t, "block", f.display(BannerID))
	f.timers.Advance(time.Second)
	assert.Equal(t, "none", f.display(BannerID))
	assert.Equal(t, 1, f.kinds(window.ChangeBannerHidden))
}

func TestReplacedFragmentRetiresLoader(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(14, 7), Options{})
	f.activate(t)
	require.Equal(t, 2, f.kinds(window.ChangeGalleryBatch))

	f.win.Begin()
	f.scroll(t, dom.Scroll{Top: 950, ClientHeight: 100, ScrollHeight: 1000})

	assert.Equal(t, 6, f.count("#athletics-grid img.thumbnail"))
	assert.Equal(t, 6, f.count("#events-grid img.thumbnail"))
	assert.Equal(t, 2, f.kinds(window.ChangeGalleryBatch))
	var listeners int
	f.win.Do(context.Background(), func(doc *dom.Document) {
		listeners = doc.Query("main").ListenerCount("scroll")
	})
	assert.Zero(t, listeners)
}

func TestStaleBannerTimerIsIgnored(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(6, 3), Options{})
	f.activate(t)
	require.Equal(t, "block", f.display(BannerID))

	f.win.Begin()
	f.timers.Advance(3 * time.Second)
	assert.Zero(t, f.kinds(window.ChangeBannerHidden))
}

func TestScrollNearBottomLoadsMore(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(14, 7), Options{})
	f.activate(t)
	assert.Equal(t, 6, f.count("#athletics-grid img"))
	assert.Equal(t, 6, f.count("#events-grid img"))

	f.scroll(t, dom.Scroll{Top: 100, ClientHeight: 500, ScrollHeight: 1000})
	assert.Equal(t, 6, f.count("#athletics-grid img"))

	f.scroll(t, dom.Scroll{Top: 450, ClientHeight: 500, ScrollHeight: 1000})
	assert.Equal(t, 12, f.count("#athletics-grid img"))
	assert.Equal(t, 7, f.count("#events-grid img"))
	assert.Equal(t, "none", f.display(BannerID))

	f.scroll(t, dom.Scroll{Top: 1000, ClientHeight: 500, ScrollHeight: 1500})
	assert.Equal(t, 14, f.count("#athletics-grid img"))
	assert.Equal(t, "block", f.display(BannerID))

	for i := 0; i < 5; i++ {
		f.scroll(t, dom.Scroll{Top: 1000, ClientHeight: 500, ScrollHeight: 1500})
	}
	assert.Equal(t, 14, f.count("#athletics-grid img"))
	assert.Equal(t, 1, f.kinds(window.ChangeGalleryComplete))
	assert.Equal(t, 1, f.timers.Pending())
}

func TestMissingCategoryIsEmpty(t *testing.T) {
	f := newFixture(t, photography, `{"events": [{"src": "e.jpg", "alt": "e"}]}`, Options{})
	f.activate(t)
	assert.Equal(t, 0, f.count("#athletics-grid img"))
	assert.Equal(t, 1, f.count("#events-grid img"))
	assert.Equal(t, "block", f.display(BannerID))
}

func TestLightbox(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(2, 0), Options{})
	f.activate(t)

	f.click(t, "#athletics-grid img")
	assert.Equal(t, "flex", f.display(LightboxID))
	var src string
	f.win.Do(context.Background(), func(doc *dom.Document) {
		src = doc.GetElementByID(LightboxImageID).Attr("src")
	})
	assert.Equal(t, "img/a-0.jpg", src)

	f.click(t, "#"+LightboxImageID)
	assert.Equal(t, "flex", f.display(LightboxID))

	f.click(t, "#"+LightboxID)
	assert.Equal(t, "none", f.display(LightboxID))

	f.click(t, "#athletics-grid img:nth-child(2)")
	assert.Equal(t, "flex", f.display(LightboxID))
	f.click(t, CloseSelector)
	assert.Equal(t, "none", f.display(LightboxID))
}

func TestProbeHidesBrokenImages(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(3, 0), Options{
		Prober: stubProber{broken: map[string]bool{"img/a-1.jpg": true}},
	})
	f.activate(t)
	assert.Equal(t, 3, f.count("#athletics-grid img"))
	assert.Equal(t, 1, f.count(`#athletics-grid img[style="display: none"]`))
	assert.Equal(t, 1, f.count(`#athletics-grid img[src="img/a-1.jpg"][style="display: none"]`))
}

func TestMissingLightboxAbandonsSetup(t *testing.T) {
	markup := strings.Replace(photography, `id="photography-lightbox-img"`, `id="other"`, 1)
	f := newFixture(t, markup, manifestJSON(6, 3), Options{})
	f.activate(t)
	assert.Equal(t, 0, f.fetcher.calls)
	assert.Equal(t, 0, f.count("img.thumbnail"))
}

func TestManifestFailureAbandonsSetup(t *testing.T) {
	f := newFixture(t, photography, "", Options{})
	f.fetcher.err = errors.New("offline")
	f.activate(t)
	assert.Equal(t, 0, f.count("img.thumbnail"))

	g := newFixture(t, photography, `{"athletics": "nope"}`, Options{})
	g.activate(t)
	assert.Equal(t, 0, g.count("img.thumbnail"))
}

func TestMissingMainStillLoadsFirstBatch(t *testing.T) {
	markup := strings.NewReplacer("<main>", "<section>", "</main>", "</section>").Replace(photography)
	f := newFixture(t, markup, manifestJSON(8, 0), Options{})
	f.activate(t)
	assert.Equal(t, 6, f.count("#athletics-grid img"))
}

func TestStaleManifestIsDiscarded(t *testing.T) {
	f := newFixture(t, photography, manifestJSON(6, 3), Options{})
	f.fetcher.onFetch = func() {
		// a newer navigation starts while images.json is in flight
		f.win.Begin()
	}
	f.activate(t)
	assert.Equal(t, 1, f.fetcher.calls)
	assert.Equal(t, 0, f.count("img.thumbnail"))
}
