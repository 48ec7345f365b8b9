// Package report renders markdown reports from the knowledge graph. All
// renderers are pure string builders; the engine decides where the output
// goes.
package report

import (
	"fmt"
	"strings"
	"time"

	"mara/pkg/blackboard"
)

// Renderer builds markdown reports.
type Renderer struct {
	now func() time.Time
}

// New creates a Renderer stamped with wall-clock time.
func New() *Renderer {
	return &Renderer{now: time.Now}
}

func (r *Renderer) header(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "# %s\n\n", title)
	fmt.Fprintf(sb, "**Generated:** %s\n\n", r.now().Format(time.RFC3339))
}

func dataAge(sb *strings.Builder, graph *blackboard.KnowledgeGraph) {
	fmt.Fprintf(sb, "**Data age:** %d cycle(s)\n\n", graph.AgeCycles)
}

// Research renders the full research report produced at the end of a
// successful acquisition run.
func (r *Renderer) Research(graph *blackboard.KnowledgeGraph, result *blackboard.ValidationResult) string {
	var sb strings.Builder
	r.header(&sb, "Research Report")
	dataAge(&sb, graph)

	fmt.Fprintf(&sb, "## Articles (%d)\n\n", len(graph.Articles))
	for _, article := range graph.Articles {
		author := "unknown"
		if a, ok := graph.AuthorOf(article.ID); ok {
			author = a.Name
		}
		fmt.Fprintf(&sb, "- **%s** by %s", article.Title, author)
		if article.Description != "" {
			fmt.Fprintf(&sb, ": %s", article.Description)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n## Authors (%d)\n\n", len(graph.Authors))
	for _, count := range graph.Distribution() {
		fmt.Fprintf(&sb, "- %s (%d article(s))\n", count.Name, count.Articles)
	}

	fmt.Fprintf(&sb, "\n## Graph\n\n%d entities, %d relationships\n",
		len(graph.Articles)+len(graph.Authors), len(graph.Relationships))

	if result != nil {
		sb.WriteString("\n## Validation\n\n")
		if result.Valid {
			sb.WriteString("Data validated successfully.")
		} else {
			sb.WriteString("Validation raised issues.")
		}
		if result.Notes != "" {
			fmt.Fprintf(&sb, " %s", result.Notes)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary renders the key-findings summary.
func (r *Renderer) Summary(graph *blackboard.KnowledgeGraph) string {
	var sb strings.Builder
	r.header(&sb, "Key Findings")
	dataAge(&sb, graph)

	fmt.Fprintf(&sb, "The knowledge base holds %d article(s) by %d author(s).\n\n",
		len(graph.Articles), len(graph.Authors))

	if best, ok := graph.MostProlific(); ok {
		fmt.Fprintf(&sb, "Most prolific author: **%s** with %d article(s).\n\n", best.Name, best.Articles)
	}

	sb.WriteString("## Topics\n\n")
	for _, article := range graph.Articles {
		fmt.Fprintf(&sb, "- %s\n", article.Title)
	}
	return sb.String()
}

// Filter renders the list of one author's articles.
func (r *Renderer) Filter(graph *blackboard.KnowledgeGraph, author string) string {
	var sb strings.Builder
	r.header(&sb, fmt.Sprintf("Articles by %s", author))
	dataAge(&sb, graph)

	articles := graph.ArticlesBy(author)
	if len(articles) == 0 {
		fmt.Fprintf(&sb, "No articles found for author %q.\n", author)
		return sb.String()
	}
	for _, article := range articles {
		fmt.Fprintf(&sb, "- **%s**", article.Title)
		if article.Description != "" {
			fmt.Fprintf(&sb, ": %s", article.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Distribution renders an ASCII bar chart of articles per author.
func (r *Renderer) Distribution(graph *blackboard.KnowledgeGraph) string {
	var sb strings.Builder
	r.header(&sb, "Article Distribution by Author")
	dataAge(&sb, graph)

	counts := graph.Distribution()
	if len(counts) == 0 {
		sb.WriteString("No authors in the knowledge base.\n")
		return sb.String()
	}

	widest := 0
	for _, c := range counts {
		if len(c.Name) > widest {
			widest = len(c.Name)
		}
	}
	sb.WriteString("```\n")
	for _, c := range counts {
		fmt.Fprintf(&sb, "%-*s | %s (%d)\n", widest, c.Name, strings.Repeat("#", c.Articles), c.Articles)
	}
	sb.WriteString("```\n")
	return sb.String()
}

// Prolific renders the most-prolific-author answer.
func (r *Renderer) Prolific(graph *blackboard.KnowledgeGraph) string {
	var sb strings.Builder
	r.header(&sb, "Most Prolific Author")
	dataAge(&sb, graph)

	best, ok := graph.MostProlific()
	if !ok {
		sb.WriteString("No authors in the knowledge base.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "**%s** with %d article(s):\n\n", best.Name, best.Articles)
	for _, article := range graph.ArticlesBy(best.Name) {
		fmt.Fprintf(&sb, "- %s\n", article.Title)
	}
	return sb.String()
}

// Count renders the article-count answer for one author.
func (r *Renderer) Count(graph *blackboard.KnowledgeGraph, author string) string {
	var sb strings.Builder
	r.header(&sb, "Article Count")
	dataAge(&sb, graph)

	n, ok := graph.CountBy(author)
	if !ok {
		fmt.Fprintf(&sb, "Author %q is not in the knowledge base.\n", author)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s published %d article(s).\n", author, n)
	return sb.String()
}

// Keyword renders the keyword search results.
func (r *Renderer) Keyword(graph *blackboard.KnowledgeGraph, keyword string) string {
	var sb strings.Builder
	r.header(&sb, fmt.Sprintf("Articles matching %q", keyword))
	dataAge(&sb, graph)

	matches := graph.FindByKeyword(keyword)
	if len(matches) == 0 {
		fmt.Fprintf(&sb, "No articles match %q.\n", keyword)
		return sb.String()
	}
	for _, article := range matches {
		author := "unknown"
		if a, ok := graph.AuthorOf(article.ID); ok {
			author = a.Name
		}
		fmt.Fprintf(&sb, "- **%s** by %s\n", article.Title, author)
	}
	return sb.String()
}

// Change renders the source-comparison report.
func (r *Renderer) Change(added, removed []string) string {
	var sb strings.Builder
	r.header(&sb, "Change Detection")

	if len(added) == 0 && len(removed) == 0 {
		sb.WriteString("No changes detected. The knowledge base matches the source.\n")
		return sb.String()
	}

	if len(added) > 0 {
		fmt.Fprintf(&sb, "## New at the source (%d)\n\n", len(added))
		for _, title := range added {
			fmt.Fprintf(&sb, "- %s\n", title)
		}
		sb.WriteString("\n")
	}
	if len(removed) > 0 {
		fmt.Fprintf(&sb, "## No longer at the source (%d)\n\n", len(removed))
		for _, title := range removed {
			fmt.Fprintf(&sb, "- %s\n", title)
		}
	}
	return sb.String()
}

// Failure renders the failure report shown when a pipeline stage gives up.
func (r *Renderer) Failure(stage blackboard.Status, query, errMsg string) string {
	var sb strings.Builder
	r.header(&sb, "Research Failed")

	fmt.Fprintf(&sb, "**Query:** %s\n\n", query)
	fmt.Fprintf(&sb, "**Failed stage:** %s\n\n", stage)
	if errMsg != "" {
		fmt.Fprintf(&sb, "**Cause:** %s\n", errMsg)
	}
	return sb.String()
}

// Unsupported renders the answer for queries no strategy recognizes.
func (r *Renderer) Unsupported(query string) string {
	var sb strings.Builder
	r.header(&sb, "Unsupported Query")
	fmt.Fprintf(&sb, "The query %q does not match any supported research operation.\n", query)
	return sb.String()
}
