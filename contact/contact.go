package contact

import (
	"context"
	"errors"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/fetch"
	"github.com/foomo/portfolio-mcp/window"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://formspree.io/f/xnnjzkqq"

	FormID             = "contact-form"
	SubmitSelector     = ".contact-submit-button"
	ResetSelector      = ".contact-reset-button"
	ResetFormSelector  = ".contact-content-container form"
	SubmitLabel        = "Submit"
	SubmittingLabel    = "Submitting..."
	SuccessMessage     = "Message sent successfully! ✅"
	FailureMessage     = "Oops! Something went wrong. Please try again."
	NetworkFailMessage = "Error submitting form. Please try again later."
)

type Poster interface {
	PostForm(ctx context.Context, endpoint string, fields []fetch.Field) (int, error)
}

// BindReset clears the contact form when its reset control is clicked.
func BindReset(doc *dom.Document) {
	button := doc.Query(ResetSelector)
	form := doc.Query(ResetFormSelector)
	if button == nil || form == nil {
		return
	}
	button.AddEventListener("click", func(ev *dom.Event) {
		ev.PreventDefault()
		form.Reset()
	})
}

// Submitter relays the contact form to an external form endpoint.
type Submitter struct {
	win      *window.Window
	poster   Poster
	endpoint string
	logger   *zap.Logger
}

func NewSubmitter(win *window.Window, poster Poster, endpoint string, logger *zap.Logger) *Submitter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{
		win:      win,
		poster:   poster,
		endpoint: endpoint,
		logger:   logger.Named("contact"),
	}
}

func (s *Submitter) Bind(ctx context.Context, gen window.Generation, doc *dom.Document) {
	form := doc.GetElementByID(FormID)
	if form == nil {
		return
	}
	form.AddEventListener("submit", func(ev *dom.Event) {
		ev.PreventDefault()
		button := form.Query(SubmitSelector)
		setLabel(button, SubmittingLabel)
		fields := formFields(form)

		ev.Defer(func(ctx context.Context) {
			status, err := s.poster.PostForm(ctx, s.endpoint, fields)
			s.win.Do(ctx, func(doc *dom.Document) {
				defer setLabel(button, SubmitLabel)
				switch {
				case err != nil && !errors.Is(err, fetch.ErrStatus):
					s.logger.Error("form submission failed", zap.Error(err))
					s.win.Alert(NetworkFailMessage)
				case err == nil && status >= 200 && status < 300:
					s.win.Alert(SuccessMessage)
					form.Reset()
				default:
					s.logger.Warn("form submission rejected", zap.Int("status", status))
					s.win.Alert(FailureMessage)
				}
			})
		})
	})
}

func formFields(form *dom.Element) []fetch.Field {
	controls := form.Fields()
	fields := make([]fetch.Field, 0, len(controls))
	for _, f := range controls {
		fields = append(fields, fetch.Field{Name: f.Name, Value: f.Value})
	}
	return fields
}

func setLabel(button *dom.Element, label string) {
	if button != nil {
		button.SetText(label)
	}
}
