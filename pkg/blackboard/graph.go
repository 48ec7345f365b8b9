package blackboard

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RelationAuthoredBy links an article node to its author node. It is the
// only relation kind the synthesizer currently produces.
const RelationAuthoredBy = "AUTHORED_BY"

// RawArticle is one article as returned by the extractor, before synthesis.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// RawData is the extractor's output: the articles found at the source.
type RawData struct {
	SourceURL string       `json:"source_url"`
	Articles  []RawArticle `json:"articles"`
}

// ArticleNode is an article entity in the knowledge graph.
type ArticleNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"` // Truncated snippet, not the full text
}

// AuthorNode is an author entity in the knowledge graph.
type AuthorNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Relationship is a (source, kind, target) triple between two graph nodes.
type Relationship struct {
	SourceID string `json:"source_id"`
	Kind     string `json:"kind"`
	TargetID string `json:"target_id"`
}

// KnowledgeGraph is the derived artifact built by the synthesizer: article
// and author nodes plus the relationships between them. AgeCycles starts at
// zero on synthesis and is bumped by the staleness monitor each quiescent
// cycle; only re-synthesis resets it.
type KnowledgeGraph struct {
	Articles      []ArticleNode  `json:"articles"`
	Authors       []AuthorNode   `json:"authors"`
	Relationships []Relationship `json:"relationships"`
	AgeCycles     int            `json:"age_cycles"`
	SynthesizedAt time.Time      `json:"synthesized_at"`
}

// Validate checks the graph's structural invariants: every relationship must
// reference existing node IDs, and no article may carry more than one
// AUTHORED_BY relationship.
func (g *KnowledgeGraph) Validate() error {
	ids := make(map[string]bool, len(g.Articles)+len(g.Authors))
	for _, a := range g.Articles {
		if a.ID == "" {
			return fmt.Errorf("article %q has an empty ID", a.Title)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate node ID %q", a.ID)
		}
		ids[a.ID] = true
	}
	for _, a := range g.Authors {
		if a.ID == "" {
			return fmt.Errorf("author %q has an empty ID", a.Name)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate node ID %q", a.ID)
		}
		ids[a.ID] = true
	}

	authored := make(map[string]bool, len(g.Articles))
	for _, rel := range g.Relationships {
		if !ids[rel.SourceID] {
			return fmt.Errorf("relationship references unknown source %q", rel.SourceID)
		}
		if !ids[rel.TargetID] {
			return fmt.Errorf("relationship references unknown target %q", rel.TargetID)
		}
		if rel.Kind == RelationAuthoredBy {
			if authored[rel.SourceID] {
				return fmt.Errorf("article %q has more than one %s relationship", rel.SourceID, RelationAuthoredBy)
			}
			authored[rel.SourceID] = true
		}
	}

	return nil
}

// Clone returns a deep copy of the graph. The board uses this for
// copy-on-write age increments so earlier readers keep their snapshot.
func (g *KnowledgeGraph) Clone() *KnowledgeGraph {
	c := &KnowledgeGraph{
		Articles:      make([]ArticleNode, len(g.Articles)),
		Authors:       make([]AuthorNode, len(g.Authors)),
		Relationships: make([]Relationship, len(g.Relationships)),
		AgeCycles:     g.AgeCycles,
		SynthesizedAt: g.SynthesizedAt,
	}
	copy(c.Articles, g.Articles)
	copy(c.Authors, g.Authors)
	copy(c.Relationships, g.Relationships)
	return c
}

// AuthorOf returns the author node for an article ID, following the
// AUTHORED_BY relationship. The second return is false when the article has
// no author relationship.
func (g *KnowledgeGraph) AuthorOf(articleID string) (AuthorNode, bool) {
	for _, rel := range g.Relationships {
		if rel.Kind != RelationAuthoredBy || rel.SourceID != articleID {
			continue
		}
		for _, a := range g.Authors {
			if a.ID == rel.TargetID {
				return a, true
			}
		}
	}
	return AuthorNode{}, false
}

// ArticlesBy returns the articles authored by the named author
// (case-insensitive match on the author node name).
func (g *KnowledgeGraph) ArticlesBy(name string) []ArticleNode {
	var authorID string
	for _, a := range g.Authors {
		if strings.EqualFold(a.Name, name) {
			authorID = a.ID
			break
		}
	}
	if authorID == "" {
		return nil
	}

	var found []ArticleNode
	for _, rel := range g.Relationships {
		if rel.Kind != RelationAuthoredBy || rel.TargetID != authorID {
			continue
		}
		for _, art := range g.Articles {
			if art.ID == rel.SourceID {
				found = append(found, art)
			}
		}
	}
	return found
}

// CountBy returns the number of articles authored by the named author, and
// whether the author exists in the graph at all.
func (g *KnowledgeGraph) CountBy(name string) (int, bool) {
	var authorID string
	for _, a := range g.Authors {
		if strings.EqualFold(a.Name, name) {
			authorID = a.ID
			break
		}
	}
	if authorID == "" {
		return 0, false
	}

	count := 0
	for _, rel := range g.Relationships {
		if rel.Kind == RelationAuthoredBy && rel.TargetID == authorID {
			count++
		}
	}
	return count, true
}

// FindByKeyword returns the articles whose title or description contains the
// keyword (case-insensitive).
func (g *KnowledgeGraph) FindByKeyword(keyword string) []ArticleNode {
	needle := strings.ToLower(keyword)
	var found []ArticleNode
	for _, art := range g.Articles {
		if strings.Contains(strings.ToLower(art.Title), needle) ||
			strings.Contains(strings.ToLower(art.Description), needle) {
			found = append(found, art)
		}
	}
	return found
}

// Distribution returns the article count per author name, sorted by author
// name for deterministic rendering.
func (g *KnowledgeGraph) Distribution() []AuthorCount {
	byID := make(map[string]string, len(g.Authors))
	for _, a := range g.Authors {
		byID[a.ID] = a.Name
	}

	counts := make(map[string]int)
	for _, rel := range g.Relationships {
		if rel.Kind != RelationAuthoredBy {
			continue
		}
		name, ok := byID[rel.TargetID]
		if !ok {
			continue
		}
		counts[name]++
	}

	out := make([]AuthorCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, AuthorCount{Name: name, Articles: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MostProlific returns the author with the most articles. Ties break
// alphabetically so the result is deterministic. Returns false when the
// graph has no authored articles.
func (g *KnowledgeGraph) MostProlific() (AuthorCount, bool) {
	dist := g.Distribution()
	if len(dist) == 0 {
		return AuthorCount{}, false
	}
	best := dist[0]
	for _, ac := range dist[1:] {
		if ac.Articles > best.Articles {
			best = ac
		}
	}
	return best, true
}

// TitleSet returns the lower-cased article titles as a set. Change detection
// diffs two of these to find new articles.
func (g *KnowledgeGraph) TitleSet() map[string]bool {
	set := make(map[string]bool, len(g.Articles))
	for _, art := range g.Articles {
		set[strings.ToLower(art.Title)] = true
	}
	return set
}

// AuthorCount pairs an author name with their article count.
type AuthorCount struct {
	Name     string
	Articles int
}
