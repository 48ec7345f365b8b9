package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mara/pkg/blackboard"
)

func delegateAcquire(board *blackboard.Board, sourceURL string) *blackboard.Task {
	task := blackboard.NewTask(blackboard.TaskAcquire, "list articles")
	task.SourceURL = sourceURL
	board.Put(blackboard.KeyCurrentTask, task)
	return task
}

func TestAcquisitionSuccess(t *testing.T) {
	board := newBoard()
	extractor := &stubExtractor{raw: testRawData()}
	NewAcquisition(board, extractor, fastPolicy(3), zap.NewNop()).Register(context.Background())

	delegateAcquire(board, "https://example.com/projects")
	board.SetStatus(blackboard.StatusTaskDelegated)

	assert.Equal(t, blackboard.StatusRawDataAcquired, board.Status())
	assert.Equal(t, 1, extractor.calls, "first success short-circuits retries")

	v, ok := board.Get(blackboard.KeyRawData)
	require.True(t, ok)
	assert.Same(t, extractor.raw, v)
}

func TestAcquisitionExhaustion(t *testing.T) {
	board := newBoard()
	extractor := &stubExtractor{err: errors.New("connection refused")}
	NewAcquisition(board, extractor, fastPolicy(3), zap.NewNop()).Register(context.Background())

	delegateAcquire(board, "https://example.com/projects")
	board.SetStatus(blackboard.StatusTaskDelegated)

	assert.Equal(t, blackboard.StatusAcquisitionFailed, board.Status())
	assert.Equal(t, 3, extractor.calls)
	assert.Contains(t, errorMessage(board), "all 3 attempts failed")
	assert.Contains(t, errorMessage(board), "connection refused")
}

func TestAcquisitionMalformedTaskNotRetried(t *testing.T) {
	board := newBoard()
	extractor := &stubExtractor{raw: testRawData()}
	NewAcquisition(board, extractor, fastPolicy(3), zap.NewNop()).Register(context.Background())

	// Acquire task without a source URL.
	board.Put(blackboard.KeyCurrentTask, blackboard.NewTask(blackboard.TaskAcquire, "q"))
	board.SetStatus(blackboard.StatusTaskDelegated)

	assert.Equal(t, blackboard.StatusFailed, board.Status())
	assert.Zero(t, extractor.calls)
	assert.Contains(t, errorMessage(board), "malformed acquire task")
}

func TestAcquisitionMissingTask(t *testing.T) {
	board := newBoard()
	extractor := &stubExtractor{}
	NewAcquisition(board, extractor, fastPolicy(3), zap.NewNop()).Register(context.Background())

	board.SetStatus(blackboard.StatusTaskDelegated)

	assert.Equal(t, blackboard.StatusFailed, board.Status())
	assert.Zero(t, extractor.calls)
}

func TestAcquisitionCancelledContextLeavesBoardUntouched(t *testing.T) {
	board := newBoard()
	extractor := &stubExtractor{err: errors.New("boom")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewAcquisition(board, extractor, fastPolicy(3), zap.NewNop()).Register(ctx)

	delegateAcquire(board, "https://example.com/projects")
	board.SetStatus(blackboard.StatusTaskDelegated)

	assert.Equal(t, blackboard.StatusTaskDelegated, board.Status())
}
