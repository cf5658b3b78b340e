// Package dom is a small scene graph over golang.org/x/net/html. It carries the
// state a browser keeps beside the markup (listeners, form values, scroll
// metrics) so that page behaviors can be bound and driven without a browser.
//
// A Document is not safe for concurrent use; window.Window serializes access.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Document struct {
	doc   *goquery.Document
	state map[*html.Node]*nodeState
}

type nodeState struct {
	listeners map[string][]*registration
	value     *string
	scroll    Scroll
}

// Scroll holds the metrics of a scrollable element.
type Scroll struct {
	Top          int `json:"top"`
	ClientHeight int `json:"clientHeight"`
	ScrollHeight int `json:"scrollHeight"`
}

// NearBottom reports whether the visible area ends within threshold pixels
// of the scrollable height.
func (s Scroll) NearBottom(threshold int) bool {
	return s.Top+s.ClientHeight >= s.ScrollHeight-threshold
}

func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{
		doc:   doc,
		state: map[*html.Node]*nodeState{},
	}, nil
}

func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func (d *Document) Root() *html.Node {
	return d.doc.Get(0)
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	sel := d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	})
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Get(0))
}

// Query returns the first element matching selector, or nil.
func (d *Document) Query(selector string) *Element {
	return d.first(d.doc.Find(selector))
}

func (d *Document) QueryAll(selector string) []*Element {
	return d.all(d.doc.Find(selector))
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	var b strings.Builder
	if err := html.Render(&b, d.Root()); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return b.String(), nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) first(sel *goquery.Selection) *Element {
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Get(0))
}

func (d *Document) all(sel *goquery.Selection) []*Element {
	elements := make([]*Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		elements = append(elements, d.wrap(n))
	}
	return elements
}

func (d *Document) nodeState(n *html.Node) *nodeState {
	s, ok := d.state[n]
	if !ok {
		s = &nodeState{}
		d.state[n] = s
	}
	return s
}

// forget drops the state of n and its descendants once they leave the tree.
func (d *Document) forget(n *html.Node) {
	delete(d.state, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}
