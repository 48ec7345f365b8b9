package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mara/pkg/blackboard"
)

func TestFeedbackAnswerTriggersRedecomposition(t *testing.T) {
	board := newBoard()
	source := &scriptedFeedback{answers: []string{"summarize the key findings"}}
	NewFeedback(board, source, zap.NewNop()).Register(context.Background())

	board.Put(blackboard.KeyFinalReport, "# Research Report")
	board.SetStatus(blackboard.StatusComplete)

	assert.Equal(t, blackboard.StatusAwaitingRedecomposition, board.Status())

	v, ok := board.Get(blackboard.KeyHumanFeedback)
	require.True(t, ok)
	assert.Equal(t, "summarize the key findings", v)

	require.Len(t, source.asked, 1)
	assert.Equal(t, blackboard.StatusComplete, source.asked[0])
	assert.Equal(t, "# Research Report", source.reports[0])
}

func TestFeedbackDeclineEndsSession(t *testing.T) {
	board := newBoard()
	NewFeedback(board, &scriptedFeedback{}, zap.NewNop()).Register(context.Background())

	board.SetStatus(blackboard.StatusFailed)

	assert.Equal(t, blackboard.StatusFailed, board.Status())
	assert.True(t, sessionEnded(board))
}

func TestFeedbackPresentsChangeReportForChangeStatuses(t *testing.T) {
	board := newBoard()
	source := &scriptedFeedback{}
	NewFeedback(board, source, zap.NewNop()).Register(context.Background())

	board.Put(blackboard.KeyFinalReport, "stale final report")
	board.Put(blackboard.KeyChangeReport, "# Change Detection")
	board.SetStatus(blackboard.StatusChangesDetected)

	require.Len(t, source.reports, 1)
	assert.Equal(t, "# Change Detection", source.reports[0])
}

func TestFeedbackFallsBackToErrorMessage(t *testing.T) {
	board := newBoard()
	source := &scriptedFeedback{}
	NewFeedback(board, source, zap.NewNop()).Register(context.Background())

	board.Put(blackboard.KeyErrorMessage, "malformed acquire task")
	board.SetStatus(blackboard.StatusFailed)

	require.Len(t, source.reports, 1)
	assert.Equal(t, "malformed acquire task", source.reports[0])
}

func TestFeedbackSkipsOnceSessionEnded(t *testing.T) {
	board := newBoard()
	source := &scriptedFeedback{}
	NewFeedback(board, source, zap.NewNop()).Register(context.Background())

	board.Put(blackboard.KeyUserExit, true)
	board.SetStatus(blackboard.StatusComplete)

	assert.Empty(t, source.asked)
}

func TestCLIFeedback(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantText string
	}{
		{"answer", "show me articles by Jane Doe\n", true, "show me articles by Jane Doe"},
		{"empty line declines", "\n", false, ""},
		{"no declines", "no\n", false, ""},
		{"exit declines", "Exit\n", false, ""},
		{"eof declines", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCLIFeedback(strings.NewReader(tt.input))
			text, ok := c.Ask(context.Background(), blackboard.StatusComplete, "")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestAutoExitAlwaysDeclines(t *testing.T) {
	_, ok := AutoExit{}.Ask(context.Background(), blackboard.StatusComplete, "report")
	assert.False(t, ok)
}
