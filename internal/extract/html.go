package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mara/pkg/blackboard"
)

// HTTPExtractor is the deterministic extraction strategy: fetch the page and
// walk its DOM for article cards. It recognizes two shapes: explicit
// containers (article elements, or class names containing "project" or
// "card") with a heading and a paragraph inside, and as a fallback any
// heading followed by a paragraph sibling.
type HTTPExtractor struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPExtractor builds the strategy. A nil client uses a default with a
// generous timeout; the acquisition worker's per-attempt context is the real
// deadline.
func NewHTTPExtractor(client *http.Client, logger *zap.Logger) *HTTPExtractor {
	if client == nil {
		client = defaultClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPExtractor{client: client, logger: logger.Named("extract.html")}
}

// Extract implements Extractor.
func (e *HTTPExtractor) Extract(ctx context.Context, sourceURL string) (*blackboard.RawData, error) {
	body, err := fetch(ctx, e.client, sourceURL)
	if err != nil {
		return nil, err
	}

	articles, err := parseArticles(body)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles found at %s", sourceURL)
	}

	e.logger.Debug("extracted articles",
		zap.String("source_url", sourceURL),
		zap.Int("count", len(articles)))

	return &blackboard.RawData{SourceURL: sourceURL, Articles: articles}, nil
}

func parseArticles(body []byte) ([]blackboard.RawArticle, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var articles []blackboard.RawArticle
	walk(doc, func(n *html.Node) bool {
		if !isArticleContainer(n) {
			return true
		}
		if a, ok := articleFromContainer(n); ok {
			articles = append(articles, a)
		}
		return false // containers do not nest
	})

	if len(articles) == 0 {
		articles = articlesFromHeadings(doc)
	}
	return articles, nil
}

// walk visits nodes depth-first; visit returning false skips the subtree.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func isArticleContainer(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "article" {
		return true
	}
	class := strings.ToLower(attr(n, "class"))
	return strings.Contains(class, "project") || strings.Contains(class, "card")
}

func articleFromContainer(n *html.Node) (blackboard.RawArticle, bool) {
	a := blackboard.RawArticle{
		Title:       textOfFirst(n, isHeading),
		Description: textOfFirst(n, isTag("p")),
		Author:      textOfFirst(n, hasClass("author")),
	}
	if a.Title == "" {
		return blackboard.RawArticle{}, false
	}
	return a, true
}

// articlesFromHeadings pairs each heading with its next paragraph sibling.
// Page-structure fallback for sources without card markup.
func articlesFromHeadings(doc *html.Node) []blackboard.RawArticle {
	var articles []blackboard.RawArticle
	walk(doc, func(n *html.Node) bool {
		if !isHeading(n) {
			return true
		}
		title := text(n)
		if title == "" {
			return false
		}
		var description string
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if s.Type != html.ElementNode {
				continue
			}
			if isTag("p")(s) {
				description = text(s)
			}
			break
		}
		if description == "" {
			return false
		}
		articles = append(articles, blackboard.RawArticle{Title: title, Description: description})
		return false
	})
	return articles
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func isTag(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode &&
			strings.Contains(strings.ToLower(attr(n, "class")), class)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOfFirst(n *html.Node, match func(*html.Node) bool) string {
	var found string
	walk(n, func(c *html.Node) bool {
		if found != "" {
			return false
		}
		if c != n && match(c) {
			found = text(c)
			return false
		}
		return true
	})
	return found
}

// text collects and normalizes the text content of a subtree.
func text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
