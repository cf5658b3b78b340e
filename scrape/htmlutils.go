package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

var headings = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

// findFirst walks n depth first and returns the first element accepted by match
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the whitespace-collapsed text below n
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// extractTitle returns the text of the first heading below n
func extractTitle(n *html.Node) string {
	return textContent(findFirst(n, func(n *html.Node) bool {
		return headings[n.Data]
	}))
}

// extractDescription returns the text of the first non-empty paragraph below n
func extractDescription(n *html.Node) string {
	var description string
	findFirst(n, func(n *html.Node) bool {
		if n.Data != "p" {
			return false
		}
		description = textContent(n)
		return description != ""
	})
	return description
}

// extractMetaKeywords extracts the meta keywords from the HTML document
func extractMetaKeywords(doc *html.Node) []string {
	meta := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "name") == "keywords"
	})
	if meta == nil {
		return nil
	}
	var keywords []string
	for _, keyword := range strings.Split(attr(meta, "content"), ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
