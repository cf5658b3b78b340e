package contact

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/fetch"
	"github.com/foomo/portfolio-mcp/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fragment = `<html><body><div id="content">
<div class="contact-content-container">
	<form id="contact-form">
		<input name="name" value="">
		<input name="email" value="">
		<textarea name="message"></textarea>
		<button type="submit" class="contact-submit-button">Submit</button>
		<button class="contact-reset-button">Reset</button>
	</form>
</div>
</div></body></html>`

type stubPoster struct {
	status   int
	err      error
	endpoint string
	fields   []fetch.Field
	label    string
	win      *window.Window
}

func (p *stubPoster) PostForm(ctx context.Context, endpoint string, fields []fetch.Field) (int, error) {
	p.endpoint = endpoint
	p.fields = fields
	p.win.Do(ctx, func(doc *dom.Document) {
		p.label = doc.Query(SubmitSelector).Text()
	})
	return p.status, p.err
}

type fixture struct {
	win      *window.Window
	notifier *window.RecordingNotifier
	poster   *stubPoster
}

func newFixture(t *testing.T, poster *stubPoster) *fixture {
	t.Helper()
	doc, err := dom.ParseString(fragment)
	require.NoError(t, err)
	f := &fixture{notifier: &window.RecordingNotifier{}, poster: poster}
	f.win = window.New(window.WithNotifier(f.notifier))
	f.win.Load(doc)
	poster.win = f.win

	s := NewSubmitter(f.win, poster, "", zaptest.NewLogger(t))
	ctx := context.Background()
	gen := f.win.Begin()
	require.True(t, f.win.Apply(ctx, gen, func(doc *dom.Document) {
		BindReset(doc)
		s.Bind(ctx, gen, doc)
	}))
	return f
}

func (f *fixture) fill() {
	f.win.Do(context.Background(), func(doc *dom.Document) {
		doc.Query(`[name="name"]`).SetValue("Ada")
		doc.Query(`[name="email"]`).SetValue("ada@example.com")
		doc.Query(`[name="message"]`).SetValue("hello")
	})
}

func (f *fixture) values() (values []string) {
	f.win.Do(context.Background(), func(doc *dom.Document) {
		for _, field := range doc.GetElementByID(FormID).Fields() {
			values = append(values, field.Value)
		}
	})
	return values
}

func (f *fixture) label() (label string) {
	f.win.Do(context.Background(), func(doc *dom.Document) {
		label = doc.Query(SubmitSelector).Text()
	})
	return label
}

func (f *fixture) submit(t *testing.T) {
	t.Helper()
	dispatched, prevented := f.win.Dispatch(context.Background(), "submit", func(doc *dom.Document) *dom.Element {
		return doc.GetElementByID(FormID)
	})
	require.True(t, dispatched)
	assert.True(t, prevented)
}

func TestSubmitOutcomes(t *testing.T) {
	for _, tc := range []struct {
		status int
		err    error
		alert  string
		kept   bool
	}{
		{status: 200, alert: SuccessMessage},
		{status: 422, err: &fetch.StatusError{URL: DefaultEndpoint, StatusCode: 422}, alert: FailureMessage, kept: true},
		{err: errors.New("connection refused"), alert: NetworkFailMessage, kept: true},
	} {
		t.Run(fmt.Sprint(tc.status, tc.err), func(t *testing.T) {
			f := newFixture(t, &stubPoster{status: tc.status, err: tc.err})
			f.fill()
			f.submit(t)

			assert.Equal(t, DefaultEndpoint, f.poster.endpoint)
			assert.Equal(t, []fetch.Field{
				{Name: "name", Value: "Ada"},
				{Name: "email", Value: "ada@example.com"},
				{Name: "message", Value: "hello"},
			}, f.poster.fields)
			assert.Equal(t, SubmittingLabel, f.poster.label)
			assert.Equal(t, []string{tc.alert}, f.notifier.Messages())
			assert.Equal(t, SubmitLabel, f.label())
			if tc.kept {
				assert.Equal(t, []string{"Ada", "ada@example.com", "hello"}, f.values())
			} else {
				assert.Equal(t, []string{"", "", ""}, f.values())
			}
		})
	}
}

func TestResetClearsFields(t *testing.T) {
	f := newFixture(t, &stubPoster{status: 200})
	f.fill()
	dispatched, prevented := f.win.Dispatch(context.Background(), "click", func(doc *dom.Document) *dom.Element {
		return doc.Query(ResetSelector)
	})
	require.True(t, dispatched)
	assert.True(t, prevented)
	assert.Equal(t, []string{"", "", ""}, f.values())
	assert.Empty(t, f.notifier.Messages())
}
