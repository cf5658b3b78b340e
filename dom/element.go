package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is a handle on an element node. Handles are cheap; two handles on
// the same node compare equal with Is.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) Node() *html.Node { return e.node }

func (e *Element) Document() *Document { return e.doc }

func (e *Element) Is(other *Element) bool {
	return other != nil && e.node == other.node
}

func (e *Element) Tag() string { return e.node.Data }

func (e *Element) ID() string { return e.Attr("id") }

func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

func (e *Element) Attr(name string) string {
	v, _ := e.sel().Attr(name)
	return v
}

func (e *Element) HasAttr(name string) bool {
	_, ok := e.sel().Attr(name)
	return ok
}

func (e *Element) SetAttr(name, value string) {
	e.sel().SetAttr(name, value)
}

func (e *Element) RemoveAttr(name string) {
	e.sel().RemoveAttr(name)
}

func (e *Element) HasClass(class string) bool {
	return e.sel().HasClass(class)
}

func (e *Element) AddClass(class string) {
	e.sel().AddClass(class)
}

func (e *Element) RemoveClass(class string) {
	e.sel().RemoveClass(class)
}

// ToggleClass flips class and reports whether it is now present.
func (e *Element) ToggleClass(class string) bool {
	return e.sel().ToggleClass(class).HasClass(class)
}

func (e *Element) Text() string {
	return e.sel().Text()
}

func (e *Element) SetText(text string) {
	e.forgetChildren()
	e.sel().SetText(text)
}

func (e *Element) InnerHTML() (string, error) {
	markup, err := e.sel().Html()
	if err != nil {
		return "", fmt.Errorf("failed to render element: %w", err)
	}
	return markup, nil
}

// SetInnerHTML replaces the whole subtree of e with the parsed markup. State
// bound to the removed nodes is discarded.
func (e *Element) SetInnerHTML(markup string) {
	e.forgetChildren()
	e.sel().SetHtml(markup)
}

func (e *Element) forgetChildren() {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		e.doc.forget(c)
	}
}

// Append moves child to the end of e's children.
func (e *Element) Append(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

func (e *Element) Parent() *Element {
	if e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(e.node.Parent)
}

// Children returns the element children of e in document order.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, e.doc.wrap(c))
		}
	}
	return children
}

func (e *Element) Query(selector string) *Element {
	return e.doc.first(e.sel().Find(selector))
}

func (e *Element) QueryAll(selector string) []*Element {
	return e.doc.all(e.sel().Find(selector))
}

// Connected reports whether e is still part of its document.
func (e *Element) Connected() bool {
	root := e.doc.Root()
	for n := e.node; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// Display returns the inline display property, "" when unset.
func (e *Element) Display() string {
	for _, decl := range strings.Split(e.Attr("style"), ";") {
		prop, value, found := strings.Cut(decl, ":")
		if found && strings.TrimSpace(prop) == "display" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// SetDisplay sets the inline display property, keeping other declarations.
func (e *Element) SetDisplay(value string) {
	decls := []string{}
	for _, decl := range strings.Split(e.Attr("style"), ";") {
		prop, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(decl) == "" || strings.TrimSpace(prop) == "display" {
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if value != "" {
		decls = append(decls, "display: "+value)
	}
	if len(decls) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", strings.Join(decls, "; "))
}

// Hidden reports whether e carries an inline display of none.
func (e *Element) Hidden() bool {
	return e.Display() == "none"
}

func (e *Element) Scroll() Scroll {
	if s, ok := e.doc.state[e.node]; ok {
		return s.scroll
	}
	return Scroll{}
}

func (e *Element) SetScroll(scroll Scroll) {
	e.doc.nodeState(e.node).scroll = scroll
}

// AddEventListener registers l for events of type typ and returns a function
// that removes it again.
func (e *Element) AddEventListener(typ string, l Listener) (remove func()) {
	s := e.doc.nodeState(e.node)
	if s.listeners == nil {
		s.listeners = map[string][]*registration{}
	}
	r := &registration{fn: l}
	s.listeners[typ] = append(s.listeners[typ], r)
	return func() {
		registrations := s.listeners[typ]
		for i, other := range registrations {
			if other == r {
				s.listeners[typ] = append(registrations[:i:i], registrations[i+1:]...)
				return
			}
		}
	}
}

func (e *Element) ListenerCount(typ string) int {
	if s, ok := e.doc.state[e.node]; ok {
		return len(s.listeners[typ])
	}
	return 0
}
