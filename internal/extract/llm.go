package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mara/internal/llm"
	"mara/pkg/blackboard"
)

const extractPrompt = `The following is the visible text of a web page listing articles or
projects. Extract every article as a JSON object with "title",
"description" and "author" fields ("author" may be an empty string when the
page does not name one). Answer with a single JSON object of the shape
{"articles": [...]}, nothing else.

Page text:
%s`

// LLMExtractor fetches the page and asks a model to pull the articles out of
// its visible text. Used for sources whose markup the deterministic parser
// cannot handle.
type LLMExtractor struct {
	client *http.Client
	gen    llm.Generator
	logger *zap.Logger
}

// NewLLMExtractor builds the strategy.
func NewLLMExtractor(client *http.Client, gen llm.Generator, logger *zap.Logger) *LLMExtractor {
	if client == nil {
		client = defaultClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMExtractor{client: client, gen: gen, logger: logger.Named("extract.llm")}
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, sourceURL string) (*blackboard.RawData, error) {
	body, err := fetch(ctx, e.client, sourceURL)
	if err != nil {
		return nil, err
	}

	pageText, err := visibleText(body)
	if err != nil {
		return nil, err
	}

	raw, err := e.gen.GenerateJSON(ctx, fmt.Sprintf(extractPrompt, pageText))
	if err != nil {
		return nil, fmt.Errorf("article extraction failed: %w", err)
	}

	var parsed struct {
		Articles []blackboard.RawArticle `json:"articles"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("model returned malformed article list: %w", err)
	}
	if len(parsed.Articles) == 0 {
		return nil, fmt.Errorf("model found no articles at %s", sourceURL)
	}

	e.logger.Debug("extracted articles",
		zap.String("source_url", sourceURL),
		zap.Int("count", len(parsed.Articles)))

	return &blackboard.RawData{SourceURL: sourceURL, Articles: parsed.Articles}, nil
}

// visibleText flattens the page to whitespace-normalized text, skipping
// script and style subtrees.
func visibleText(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb bytes.Buffer
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return false
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		return true
	})
	return sb.String(), nil
}
