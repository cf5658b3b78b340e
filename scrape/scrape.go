package scrape

import (
	"context"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service/vo"
	"golang.org/x/net/html"
)

type Fetcher interface {
	Text(ctx context.Context, path string) (string, error)
}

// Scrape summarizes the region of doc matched by selector and converts it to
// markdown. Keywords are taken from the document head.
func Scrape(doc *dom.Document, selector string) (vo.ContentSummary, vo.Markdown, error) {
	region := doc.Query(selector)
	if region == nil {
		return vo.ContentSummary{}, "", fmt.Errorf("element matching '%s' not found", selector)
	}
	summary := Summarize(doc.Root(), region.Node())
	md, err := Markdown(region.Node())
	if err != nil {
		return summary, "", err
	}
	return summary, md, nil
}

// Page fetches a document from the static host and scrapes it without
// running any of its behaviors.
func Page(ctx context.Context, fetcher Fetcher, path, selector string) (vo.ContentSummary, vo.Markdown, error) {
	markup, err := fetcher.Text(ctx, path)
	if err != nil {
		return vo.ContentSummary{}, "", fmt.Errorf("failed to download HTML: %w", err)
	}
	doc, err := dom.ParseString(markup)
	if err != nil {
		return vo.ContentSummary{}, "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Scrape(doc, selector)
}

func Summarize(doc, region *html.Node) vo.ContentSummary {
	return vo.ContentSummary{
		Title:       extractTitle(region),
		Description: extractDescription(region),
		Keywords:    extractMetaKeywords(doc),
	}
}

func Markdown(n *html.Node) (vo.Markdown, error) {
	markdownBytes, err := htmltomarkdown.ConvertNode(n)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return vo.Markdown(markdownBytes), nil
}
