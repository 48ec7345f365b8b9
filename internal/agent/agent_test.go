package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mara/internal/report"
	"mara/internal/retry"
	"mara/pkg/blackboard"
)

// Shared scripted collaborators for the worker tests. Workers are registered
// individually so each test drives exactly one status handler.

type stubDecomposer struct {
	task  *blackboard.Task
	err   error
	calls int
}

func (s *stubDecomposer) Decompose(context.Context, string) (*blackboard.Task, error) {
	s.calls++
	return s.task, s.err
}

type stubExtractor struct {
	raw   *blackboard.RawData
	err   error
	calls int
}

func (s *stubExtractor) Extract(context.Context, string) (*blackboard.RawData, error) {
	s.calls++
	return s.raw, s.err
}

type scriptedFeedback struct {
	answers []string // empty string means decline
	asked   []blackboard.Status
	reports []string
}

func (s *scriptedFeedback) Ask(_ context.Context, status blackboard.Status, report string) (string, bool) {
	s.asked = append(s.asked, status)
	s.reports = append(s.reports, report)
	if len(s.answers) == 0 {
		return "", false
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, answer != ""
}

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts:    attempts,
		Delay:          time.Millisecond,
		AttemptTimeout: 200 * time.Millisecond,
	}
}

func testRawData() *blackboard.RawData {
	return &blackboard.RawData{
		SourceURL: "https://example.com/projects",
		Articles: []blackboard.RawArticle{
			{Title: "Rise of the Machines", Description: "Training a DQN agent", Author: "Marco Perini"},
			{Title: "Chatbots Everywhere", Description: "A survey", Author: "Jane Doe"},
		},
	}
}

func testGraph(t *testing.T) *blackboard.KnowledgeGraph {
	t.Helper()
	graph := &blackboard.KnowledgeGraph{
		Articles: []blackboard.ArticleNode{
			{ID: "article_1", Title: "Rise of the Machines", Description: "Training a DQN agent"},
			{ID: "article_2", Title: "Chatbots Everywhere", Description: "A survey"},
		},
		Authors: []blackboard.AuthorNode{
			{ID: "author_marco_perini", Name: "Marco Perini"},
			{ID: "author_jane_doe", Name: "Jane Doe"},
		},
		Relationships: []blackboard.Relationship{
			{SourceID: "article_1", Kind: blackboard.RelationAuthoredBy, TargetID: "author_marco_perini"},
			{SourceID: "article_2", Kind: blackboard.RelationAuthoredBy, TargetID: "author_jane_doe"},
		},
	}
	require.NoError(t, graph.Validate())
	return graph
}

func newBoard() *blackboard.Board {
	return blackboard.NewBoard(zap.NewNop())
}

func newRenderer() *report.Renderer {
	return report.New()
}
