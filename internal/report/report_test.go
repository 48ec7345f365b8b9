package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mara/pkg/blackboard"
)

func fixedRenderer() *Renderer {
	r := New()
	r.now = func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func sampleGraph() *blackboard.KnowledgeGraph {
	return &blackboard.KnowledgeGraph{
		Articles: []blackboard.ArticleNode{
			{ID: "article_1", Title: "Rise of the Machines", Description: "Training a DQN agent"},
			{ID: "article_2", Title: "Graph Attention Networks", Description: "Attention over graphs"},
			{ID: "article_3", Title: "Chatbots Everywhere", Description: "A survey"},
		},
		Authors: []blackboard.AuthorNode{
			{ID: "author_marco_perini", Name: "Marco Perini"},
			{ID: "author_jane_doe", Name: "Jane Doe"},
		},
		Relationships: []blackboard.Relationship{
			{SourceID: "article_1", Kind: blackboard.RelationAuthoredBy, TargetID: "author_marco_perini"},
			{SourceID: "article_2", Kind: blackboard.RelationAuthoredBy, TargetID: "author_marco_perini"},
			{SourceID: "article_3", Kind: blackboard.RelationAuthoredBy, TargetID: "author_jane_doe"},
		},
		AgeCycles: 1,
	}
}

func TestResearch(t *testing.T) {
	out := fixedRenderer().Research(sampleGraph(), &blackboard.ValidationResult{Valid: true, Notes: "3 articles checked"})

	assert.Contains(t, out, "# Research Report")
	assert.Contains(t, out, "**Generated:** 2026-08-25T12:00:00Z")
	assert.Contains(t, out, "**Data age:** 1 cycle(s)")
	assert.Contains(t, out, "## Articles (3)")
	assert.Contains(t, out, "**Rise of the Machines** by Marco Perini: Training a DQN agent")
	assert.Contains(t, out, "## Authors (2)")
	assert.Contains(t, out, "5 entities, 3 relationships")
	assert.Contains(t, out, "Data validated successfully. 3 articles checked")
}

func TestSummary(t *testing.T) {
	out := fixedRenderer().Summary(sampleGraph())

	assert.Contains(t, out, "# Key Findings")
	assert.Contains(t, out, "3 article(s) by 2 author(s)")
	assert.Contains(t, out, "Most prolific author: **Marco Perini** with 2 article(s)")
	assert.Contains(t, out, "- Chatbots Everywhere")
}

func TestFilter(t *testing.T) {
	r := fixedRenderer()

	out := r.Filter(sampleGraph(), "Jane Doe")
	assert.Contains(t, out, "# Articles by Jane Doe")
	assert.Contains(t, out, "**Chatbots Everywhere**: A survey")
	assert.NotContains(t, out, "Rise of the Machines")

	out = r.Filter(sampleGraph(), "Nobody")
	assert.Contains(t, out, `No articles found for author "Nobody"`)
}

func TestDistribution(t *testing.T) {
	out := fixedRenderer().Distribution(sampleGraph())

	assert.Contains(t, out, "# Article Distribution by Author")
	assert.Contains(t, out, "Jane Doe     | # (1)")
	assert.Contains(t, out, "Marco Perini | ## (2)")

	empty := fixedRenderer().Distribution(&blackboard.KnowledgeGraph{})
	assert.Contains(t, empty, "No authors")
}

func TestProlific(t *testing.T) {
	out := fixedRenderer().Prolific(sampleGraph())

	assert.Contains(t, out, "**Marco Perini** with 2 article(s)")
	assert.Contains(t, out, "- Rise of the Machines")
	assert.NotContains(t, out, "- Chatbots Everywhere")
}

func TestCount(t *testing.T) {
	r := fixedRenderer()

	assert.Contains(t, r.Count(sampleGraph(), "Marco Perini"), "Marco Perini published 2 article(s).")
	assert.Contains(t, r.Count(sampleGraph(), "Nobody"), `Author "Nobody" is not in the knowledge base.`)
}

func TestKeyword(t *testing.T) {
	r := fixedRenderer()

	out := r.Keyword(sampleGraph(), "dqn")
	assert.Contains(t, out, "**Rise of the Machines** by Marco Perini")

	out = r.Keyword(sampleGraph(), "blockchain")
	assert.Contains(t, out, `No articles match "blockchain".`)
}

func TestChange(t *testing.T) {
	r := fixedRenderer()

	out := r.Change([]string{"Fresh Article"}, []string{"Gone Article"})
	assert.Contains(t, out, "## New at the source (1)")
	assert.Contains(t, out, "- Fresh Article")
	assert.Contains(t, out, "## No longer at the source (1)")
	assert.Contains(t, out, "- Gone Article")

	out = r.Change(nil, nil)
	assert.Contains(t, out, "No changes detected")
}

func TestFailure(t *testing.T) {
	out := fixedRenderer().Failure(blackboard.StatusAcquisitionFailed, "list articles", "all 3 attempts failed: HTTP 503")

	assert.Contains(t, out, "# Research Failed")
	assert.Contains(t, out, "**Query:** list articles")
	assert.Contains(t, out, "**Failed stage:** acquisition_failed")
	assert.Contains(t, out, "HTTP 503")
}

func TestUnsupported(t *testing.T) {
	out := fixedRenderer().Unsupported("what's for lunch?")
	require.Contains(t, out, "# Unsupported Query")
	assert.Contains(t, out, `"what's for lunch?"`)
}
