package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><head><title>Portfolio</title></head><body>
<nav><a href="#home">Home</a><a href="#blog">Blog</a></nav>
<main><div id="content"></div></main>
</body></html>`

func parse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	require.NoError(t, err)
	return doc
}

func TestQueries(t *testing.T) {
	doc := parse(t, page)
	require.NotNil(t, doc.GetElementByID("content"))
	assert.Nil(t, doc.GetElementByID("missing"))
	assert.Len(t, doc.QueryAll("nav a"), 2)
	assert.Equal(t, "#blog", doc.QueryAll("nav a")[1].Attr("href"))
	assert.Equal(t, "main", doc.Query("main").Tag())
	assert.Nil(t, doc.Query("section"))
}

func TestSetInnerHTMLReplacesSubtree(t *testing.T) {
	doc := parse(t, page)
	content := doc.GetElementByID("content")
	content.SetInnerHTML(`<div class="experience-block">A</div>`)

	old := doc.Query(".experience-block")
	require.NotNil(t, old)
	old.AddEventListener("click", func(ev *Event) {})
	assert.Equal(t, 1, old.ListenerCount("click"))

	content.SetInnerHTML(`<h1>About</h1><p>hi</p>`)
	markup, err := content.InnerHTML()
	require.NoError(t, err)
	assert.Equal(t, `<h1>About</h1><p>hi</p>`, markup)
	assert.False(t, old.Connected())
	assert.Equal(t, 0, old.ListenerCount("click"))
	assert.True(t, content.Connected())
}

func TestClasses(t *testing.T) {
	doc := parse(t, page)
	a := doc.Query("nav a")
	assert.True(t, a.ToggleClass("expanded"))
	assert.True(t, a.HasClass("expanded"))
	assert.False(t, a.ToggleClass("expanded"))
	a.AddClass("active-date")
	a.RemoveClass("active-date")
	assert.False(t, a.HasClass("active-date"))
}

func TestDisplay(t *testing.T) {
	doc := parse(t, `<div id="box" style="color: red"></div>`)
	box := doc.GetElementByID("box")
	assert.Equal(t, "", box.Display())
	box.SetDisplay("flex")
	assert.Equal(t, "flex", box.Display())
	assert.Equal(t, "color: red; display: flex", box.Attr("style"))
	box.SetDisplay("none")
	assert.True(t, box.Hidden())
	box.SetDisplay("")
	assert.Equal(t, "color: red", box.Attr("style"))
}

func TestCreateAndAppend(t *testing.T) {
	doc := parse(t, page)
	content := doc.GetElementByID("content")
	img := doc.CreateElement("IMG")
	img.SetAttr("src", "a.jpg")
	assert.False(t, img.Connected())
	content.Append(img)
	assert.True(t, img.Connected())
	require.Len(t, content.Children(), 1)
	assert.True(t, content.Children()[0].Is(img))
	assert.True(t, img.Parent().Is(content))
}

func TestDispatchBubbles(t *testing.T) {
	doc := parse(t, `<div id="overlay"><img id="inner"></div>`)
	overlay := doc.GetElementByID("overlay")
	inner := doc.GetElementByID("inner")

	var targets []string
	overlay.AddEventListener("click", func(ev *Event) {
		targets = append(targets, ev.Target.ID()+"@"+ev.CurrentTarget.ID())
	})

	inner.Dispatch(NewEvent("click", inner))
	overlay.Dispatch(NewEvent("click", overlay))
	assert.Equal(t, []string{"inner@overlay", "overlay@overlay"}, targets)
}

func TestDispatchScrollDoesNotBubble(t *testing.T) {
	doc := parse(t, `<main id="main"><div id="inner"></div></main>`)
	calls := 0
	doc.GetElementByID("main").AddEventListener("scroll", func(ev *Event) { calls++ })
	inner := doc.GetElementByID("inner")
	inner.Dispatch(NewEvent("scroll", inner))
	assert.Equal(t, 0, calls)
}

func TestRemoveEventListener(t *testing.T) {
	doc := parse(t, `<main id="main"></main>`)
	main := doc.GetElementByID("main")
	var calls []string
	var removeFirst func()
	removeFirst = main.AddEventListener("scroll", func(ev *Event) {
		calls = append(calls, "first")
		removeFirst()
	})
	main.AddEventListener("scroll", func(ev *Event) { calls = append(calls, "second") })

	main.Dispatch(NewEvent("scroll", main))
	main.Dispatch(NewEvent("scroll", main))
	assert.Equal(t, []string{"first", "second", "second"}, calls)
	assert.Equal(t, 1, main.ListenerCount("scroll"))

	removeFirst()
	assert.Equal(t, 1, main.ListenerCount("scroll"))
}

func TestEventDefaults(t *testing.T) {
	doc := parse(t, page)
	a := doc.Query("nav a")
	a.AddEventListener("click", func(ev *Event) {
		ev.PreventDefault()
		ev.Defer(nil)
	})
	ev := NewEvent("click", a)
	a.Dispatch(ev)
	assert.True(t, ev.DefaultPrevented())
	assert.Len(t, ev.Deferred(), 1)
}

func TestScroll(t *testing.T) {
	assert.True(t, Scroll{Top: 450, ClientHeight: 500, ScrollHeight: 1000}.NearBottom(50))
	assert.False(t, Scroll{Top: 449, ClientHeight: 500, ScrollHeight: 1000}.NearBottom(50))
	assert.True(t, Scroll{}.NearBottom(50))
}

func TestFormFieldsAndReset(t *testing.T) {
	doc := parse(t, `<form id="f">
		<input name="name">
		<input name="email" value="me@example.com">
		<input type="checkbox" name="news" checked>
		<input type="checkbox" name="spam">
		<select name="topic"><option value="a">A</option><option value="b" selected>B</option></select>
		<textarea name="message">Hi</textarea>
		<button type="submit" class="contact-submit-button">Submit</button>
	</form>`)
	form := doc.GetElementByID("f")
	form.Query(`input[name="name"]`).SetValue("Ada")
	form.Query("textarea").SetValue("Hello there")

	assert.Equal(t, []Field{
		{Name: "name", Value: "Ada"},
		{Name: "email", Value: "me@example.com"},
		{Name: "news", Value: "on"},
		{Name: "topic", Value: "b"},
		{Name: "message", Value: "Hello there"},
	}, form.Fields())

	form.Reset()
	assert.Equal(t, "", form.Query(`input[name="name"]`).Value())
	assert.Equal(t, "Hi", form.Query("textarea").Value())
}
