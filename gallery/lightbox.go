package gallery

import (
	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/window"
)

const (
	LightboxID      = "photography-lightbox"
	LightboxImageID = "photography-lightbox-img"
	CloseSelector   = ".photography-close"
)

// Lightbox shows a full size image over the page.
type Lightbox struct {
	win     *window.Window
	overlay *dom.Element
	image   *dom.Element
	close   *dom.Element
}

// FindLightbox returns nil unless the overlay, its image and the close
// control are all present.
func FindLightbox(win *window.Window, doc *dom.Document) *Lightbox {
	lb := &Lightbox{
		win:     win,
		overlay: doc.GetElementByID(LightboxID),
		image:   doc.GetElementByID(LightboxImageID),
		close:   doc.Query(CloseSelector),
	}
	if lb.overlay == nil || lb.image == nil || lb.close == nil {
		return nil
	}
	return lb
}

func (lb *Lightbox) Open(src string) {
	lb.overlay.SetDisplay("flex")
	lb.image.SetAttr("src", src)
	lb.win.Emit(window.ChangeLightbox, map[string]any{"open": true, "src": src})
}

func (lb *Lightbox) Close() {
	lb.overlay.SetDisplay("none")
	lb.win.Emit(window.ChangeLightbox, map[string]any{"open": false})
}

func (lb *Lightbox) IsOpen() bool {
	return lb.overlay.Display() == "flex"
}

// Bind closes the lightbox from the close control, or from a click on the
// backdrop itself. Clicks on the image bubble to the overlay and are ignored.
func (lb *Lightbox) Bind() {
	lb.close.AddEventListener("click", func(ev *dom.Event) {
		lb.Close()
	})
	lb.overlay.AddEventListener("click", func(ev *dom.Event) {
		if ev.Target.Is(lb.overlay) {
			lb.Close()
		}
	})
}
