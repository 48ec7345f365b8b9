// Package synthesis turns raw extracted articles into the knowledge graph.
// The transformation is deterministic: IDs depend only on input order and
// author names, so change detection can diff graphs built at different
// times.
package synthesis

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"mara/pkg/blackboard"
)

// DefaultPlaceholder is assigned to articles whose author is unknown.
const DefaultPlaceholder = "Unknown Author"

// Synthesizer builds knowledge graphs from raw data.
type Synthesizer struct {
	placeholder string
	now         func() time.Time
}

// New creates a Synthesizer. An empty placeholder falls back to
// DefaultPlaceholder.
func New(placeholder string) *Synthesizer {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Synthesizer{placeholder: placeholder, now: time.Now}
}

// Synthesize builds a graph from raw. Article IDs are article_1..article_N
// in input order; author IDs are author_<slug> derived from the name, with
// authors deduplicated case-insensitively. Every article gets exactly one
// AUTHORED_BY relationship, using the placeholder author when the source
// named none. The graph starts at age zero.
func (s *Synthesizer) Synthesize(raw *blackboard.RawData) (*blackboard.KnowledgeGraph, error) {
	if raw == nil || len(raw.Articles) == 0 {
		return nil, fmt.Errorf("no raw data to synthesize")
	}

	graph := &blackboard.KnowledgeGraph{SynthesizedAt: s.now()}
	authorIDs := make(map[string]string) // slug -> ID, dedups case-insensitively

	for i, article := range raw.Articles {
		title := strings.TrimSpace(article.Title)
		if title == "" {
			return nil, fmt.Errorf("article %d has no title", i+1)
		}

		articleID := fmt.Sprintf("article_%d", i+1)
		graph.Articles = append(graph.Articles, blackboard.ArticleNode{
			ID:          articleID,
			Title:       title,
			Description: strings.TrimSpace(article.Description),
		})

		name := strings.TrimSpace(article.Author)
		if name == "" {
			name = s.placeholder
		}
		slug := slugify(name)
		authorID, seen := authorIDs[slug]
		if !seen {
			authorID = "author_" + slug
			authorIDs[slug] = authorID
			graph.Authors = append(graph.Authors, blackboard.AuthorNode{ID: authorID, Name: name})
		}

		graph.Relationships = append(graph.Relationships, blackboard.Relationship{
			SourceID: articleID,
			Kind:     blackboard.RelationAuthoredBy,
			TargetID: authorID,
		})
	}

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("synthesized graph failed validation: %w", err)
	}
	return graph, nil
}

// slugify lowercases the name and collapses runs of non-alphanumerics into
// single underscores: "Marco Perini" becomes "marco_perini".
func slugify(name string) string {
	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if sb.Len() == 0 {
		return "unknown"
	}
	return sb.String()
}
