package router

import (
	"context"
	"errors"
	"testing"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/fetch"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const shell = `<html><body>
<nav>
	<a href="#home">Home</a>
	<a href="#about">About</a>
	<a href="#photography">Photos</a>
	<a href="#about">About again</a>
</nav>
<main><div id="content"><p>placeholder</p></div></main>
</body></html>`

type stubFetcher struct {
	fragments map[string]string
	onFetch   map[string]func()
	paths     []string
}

func (f *stubFetcher) Text(ctx context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	if fn, ok := f.onFetch[path]; ok {
		fn()
	}
	markup, ok := f.fragments[path]
	if !ok {
		return "", &fetch.StatusError{URL: path, StatusCode: 404}
	}
	return markup, nil
}

type countingActivator struct {
	gens []window.Generation
}

func (a *countingActivator) Activate(ctx context.Context, gen window.Generation, doc *dom.Document) {
	a.gens = append(a.gens, gen)
}

type fixture struct {
	win       *window.Window
	fetcher   *stubFetcher
	activator *countingActivator
	router    *Router
}

func newFixture(t *testing.T, opts ...window.Option) *fixture {
	t.Helper()
	doc, err := dom.ParseString(shell)
	require.NoError(t, err)
	f := &fixture{
		fetcher: &stubFetcher{
			fragments: map[string]string{
				"sections/home.html":        `<h1>Home</h1>`,
				"sections/about.html":       `<h1>About</h1>`,
				"sections/photography.html": `<h1>Photos</h1>`,
			},
			onFetch: map[string]func(){},
		},
		activator: &countingActivator{},
	}
	f.win = window.New(opts...)
	f.win.Load(doc)
	f.router = New(f.win, f.fetcher, f.activator, zaptest.NewLogger(t))
	return f
}

func (f *fixture) content(t *testing.T) (markup string) {
	t.Helper()
	f.win.Do(context.Background(), func(doc *dom.Document) {
		var err error
		markup, err = doc.GetElementByID(ContentID).InnerHTML()
		require.NoError(t, err)
	})
	return markup
}

func TestNavigateSuccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Navigate(context.Background(), "about"))

	assert.Equal(t, "<h1>About</h1>", f.content(t))
	assert.Equal(t, "#about", f.win.Location())
	assert.Len(t, f.activator.gens, 1)
}

func TestNavigateFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Navigate(context.Background(), "about"))

	err := f.router.Navigate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetch.ErrStatus))
	assert.Equal(t, FailureMessage, f.content(t))
	assert.Equal(t, "#about", f.win.Location())
	assert.Equal(t, []string{"", "#about"}, f.win.History().Entries())
	assert.Len(t, f.activator.gens, 1)
}

func TestNavigateIsAllOrNothing(t *testing.T) {
	for _, section := range []vo.Section{"home", "about", "nope", "", "../x"} {
		f := newFixture(t)
		err := f.router.Navigate(context.Background(), section)
		if err == nil {
			assert.Equal(t, "#"+string(section), f.win.Location())
			assert.Equal(t, f.fetcher.fragments[FragmentPath(section)], f.content(t))
		} else {
			assert.Equal(t, "", f.win.Location())
			assert.Equal(t, FailureMessage, f.content(t))
		}
	}
}

func TestNavigateRefetchesEveryTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.router.Navigate(ctx, "home"))
	require.NoError(t, f.router.Navigate(ctx, "home"))
	assert.Equal(t, []string{"sections/home.html", "sections/home.html"}, f.fetcher.paths)
}

func TestSupersededFragmentIsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetcher.onFetch["sections/about.html"] = func() {
		require.NoError(t, f.router.Navigate(ctx, "photography"))
	}

	err := f.router.Navigate(ctx, "about")
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, "<h1>Photos</h1>", f.content(t))
	assert.Equal(t, "#photography", f.win.Location())
	assert.Len(t, f.activator.gens, 1)
}

func TestHooksRunForTheirSection(t *testing.T) {
	f := newFixture(t)
	var ran []vo.Section
	f.router.Handle("photography", func(ctx context.Context, gen window.Generation, doc *dom.Document) {
		assert.Equal(t, f.activator.gens[len(f.activator.gens)-1], gen)
		ran = append(ran, "photography")
	})
	ctx := context.Background()
	require.NoError(t, f.router.Navigate(ctx, "about"))
	require.NoError(t, f.router.Navigate(ctx, "photography"))
	assert.Equal(t, []vo.Section{"photography"}, ran)
}

func TestBindLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.win.Do(ctx, f.router.BindLinks)

	dispatched, prevented := f.win.Dispatch(ctx, "click", func(doc *dom.Document) *dom.Element {
		return doc.Query(`nav a[href="#photography"]`)
	})
	require.True(t, dispatched)
	assert.True(t, prevented)
	assert.Equal(t, "<h1>Photos</h1>", f.content(t))
	assert.Equal(t, "#photography", f.win.Location())
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Start(context.Background()))
	assert.Equal(t, "#home", f.win.Location())

	g := newFixture(t, window.WithLocation("#about"))
	require.NoError(t, g.router.Start(context.Background()))
	assert.Equal(t, "<h1>About</h1>", g.content(t))
}

func TestSections(t *testing.T) {
	doc, err := dom.ParseString(shell)
	require.NoError(t, err)
	assert.Equal(t, []vo.Section{"home", "about", "photography"}, Sections(doc))
}

func TestLinkSection(t *testing.T) {
	assert.Equal(t, vo.Section("about"), LinkSection("#about"))
	assert.Equal(t, vo.Section("about"), LinkSection("/about"))
	assert.Equal(t, vo.Section(""), LinkSection(""))
	assert.Equal(t, vo.Section("fotos"), LinkSection("§fotos"))
	assert.Equal(t, vo.Section("über"), LinkSection("#über"))
	assert.Equal(t, vo.DefaultSection, InitialSection(""))
	assert.Equal(t, vo.DefaultSection, InitialSection("#"))
	assert.Equal(t, vo.Section("blog"), InitialSection("#blog"))
}
