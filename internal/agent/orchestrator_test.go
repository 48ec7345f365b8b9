package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mara/internal/decompose"
	"mara/pkg/blackboard"
)

const testSourceURL = "https://example.com/projects"

func newOrchestrator(board *blackboard.Board, d decompose.Decomposer) *Orchestrator {
	return NewOrchestrator(board, d, newRenderer(), testSourceURL, zap.NewNop())
}

func TestOrchestratorDelegate(t *testing.T) {
	tests := []struct {
		name       string
		kind       blackboard.TaskKind
		wantStatus blackboard.Status
	}{
		{"acquire", blackboard.TaskAcquire, blackboard.StatusTaskDelegated},
		{"summarize", blackboard.TaskSummarize, blackboard.StatusSummarizeRequested},
		{"filter", blackboard.TaskFilterByAuthor, blackboard.StatusFilterRequested},
		{"visualize", blackboard.TaskVisualize, blackboard.StatusVisualizeRequested},
		{"count", blackboard.TaskCountByAuthor, blackboard.StatusQueryRequested},
		{"find", blackboard.TaskFindByKeyword, blackboard.StatusQueryRequested},
		{"prolific", blackboard.TaskProlificAuthor, blackboard.StatusProlificAuthorRequested},
		{"changes", blackboard.TaskCheckForChanges, blackboard.StatusCheckForChangesRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newBoard()
			task := blackboard.NewTask(tt.kind, "the query")
			o := newOrchestrator(board, &stubDecomposer{task: task})

			o.Delegate(context.Background(), "the query")

			assert.Equal(t, tt.wantStatus, board.Status())

			v, ok := board.Get(blackboard.KeyUserQuery)
			require.True(t, ok)
			assert.Equal(t, "the query", v)

			got, ok := currentTask(board)
			require.True(t, ok)
			assert.Same(t, task, got)
		})
	}
}

func TestOrchestratorDelegateUnsupported(t *testing.T) {
	board := newBoard()
	o := newOrchestrator(board, &stubDecomposer{err: decompose.ErrUnsupported})

	o.Delegate(context.Background(), "what's for lunch?")

	assert.Equal(t, blackboard.StatusUnsupportedQuery, board.Status())
	assert.Contains(t, errorMessage(board), "unsupported query")

	v, ok := board.Get(blackboard.KeyFinalReport)
	require.True(t, ok)
	assert.Contains(t, v.(string), "Unsupported Query")
}

func TestOrchestratorRefresh(t *testing.T) {
	board := newBoard()
	o := newOrchestrator(board, &stubDecomposer{})
	o.Register(context.Background())

	board.Put(blackboard.KeyRefreshRequested, true)
	board.SetStatus(blackboard.StatusRefreshRequested)

	assert.Equal(t, blackboard.StatusTaskDelegated, board.Status())

	task, ok := currentTask(board)
	require.True(t, ok)
	assert.Equal(t, blackboard.TaskAcquire, task.Kind)
	assert.Equal(t, testSourceURL, task.SourceURL)

	// The standing signal is consumed.
	v, ok := board.Get(blackboard.KeyRefreshRequested)
	require.True(t, ok)
	assert.Equal(t, false, v)
}

func TestOrchestratorRedecompose(t *testing.T) {
	t.Run("actionable feedback", func(t *testing.T) {
		board := newBoard()
		task := blackboard.NewTask(blackboard.TaskSummarize, "summarize")
		o := newOrchestrator(board, &stubDecomposer{task: task})
		o.Register(context.Background())

		board.Put(blackboard.KeyHumanFeedback, "summarize the key findings")
		board.SetStatus(blackboard.StatusAwaitingRedecomposition)

		assert.Equal(t, blackboard.StatusSummarizeRequested, board.Status())
	})

	t.Run("unrecognized feedback ends the session", func(t *testing.T) {
		board := newBoard()
		o := newOrchestrator(board, &stubDecomposer{err: decompose.ErrUnsupported})
		o.Register(context.Background())

		board.Put(blackboard.KeyHumanFeedback, "thanks, that was great")
		board.SetStatus(blackboard.StatusAwaitingRedecomposition)

		assert.Equal(t, blackboard.StatusCompleteWithFeedback, board.Status())
	})

	t.Run("missing feedback ends the session", func(t *testing.T) {
		board := newBoard()
		d := &stubDecomposer{}
		o := newOrchestrator(board, d)
		o.Register(context.Background())

		board.SetStatus(blackboard.StatusAwaitingRedecomposition)

		assert.Equal(t, blackboard.StatusCompleteWithFeedback, board.Status())
		assert.Zero(t, d.calls)
	})
}

func TestOrchestratorDecompositionFailure(t *testing.T) {
	board := newBoard()
	o := newOrchestrator(board, &stubDecomposer{err: assert.AnError})

	o.Delegate(context.Background(), "the query")

	assert.Equal(t, blackboard.StatusFailed, board.Status())
	assert.NotEmpty(t, errorMessage(board))

	v, ok := board.Get(blackboard.KeyFinalReport)
	require.True(t, ok)
	assert.Contains(t, v.(string), "Research Failed")
}
