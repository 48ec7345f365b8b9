package agent

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"mara/internal/printer"
	"mara/pkg/blackboard"
)

// FeedbackSource answers the human-in-the-loop question: given the state the
// pipeline settled in and the report it produced, what next? The second
// return is false when the user declines to continue.
type FeedbackSource interface {
	Ask(ctx context.Context, status blackboard.Status, report string) (string, bool)
}

// Feedback is the human-in-the-loop worker. On every quiescent state it
// presents the report through its source; an answer is posted as feedback
// for re-decomposition, a decline ends the session.
type Feedback struct {
	board  *blackboard.Board
	source FeedbackSource
	logger *zap.Logger
}

// NewFeedback builds the worker.
func NewFeedback(board *blackboard.Board, source FeedbackSource, logger *zap.Logger) *Feedback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feedback{board: board, source: source, logger: logger.Named("feedback")}
}

// Register subscribes the worker to the quiescent statuses.
func (f *Feedback) Register(ctx context.Context) {
	onStatus(f.board, f.logger, func(s blackboard.Status) { f.interact(ctx, s) },
		blackboard.StatusComplete,
		blackboard.StatusFailed,
		blackboard.StatusUnsupportedQuery,
		blackboard.StatusChangesDetected,
		blackboard.StatusNoChangesDetected,
	)
}

func (f *Feedback) interact(ctx context.Context, s blackboard.Status) {
	answer, cont := f.source.Ask(ctx, s, f.reportFor(s))
	answer = strings.TrimSpace(answer)
	if !cont || answer == "" {
		f.logger.Info("session ended by user", zap.String("at_status", string(s)))
		f.board.Put(blackboard.KeyUserExit, true)
		return
	}

	f.logger.Info("feedback received", zap.String("feedback", answer))
	f.board.Put(blackboard.KeyHumanFeedback, answer)
	f.board.SetStatus(blackboard.StatusAwaitingRedecomposition)
}

// reportFor picks the report slot matching the status, falling back to the
// error message when no report was produced.
func (f *Feedback) reportFor(s blackboard.Status) string {
	key := blackboard.KeyFinalReport
	switch s {
	case blackboard.StatusChangesDetected, blackboard.StatusNoChangesDetected:
		key = blackboard.KeyChangeReport
	}

	if v, ok := f.board.Get(key); ok {
		if md, ok := v.(string); ok && md != "" {
			return md
		}
	}
	return errorMessage(f.board)
}

// CLIFeedback is the interactive FeedbackSource: it prints the report and
// reads the follow-up from the terminal.
type CLIFeedback struct {
	scanner *bufio.Scanner
}

// NewCLIFeedback builds a source reading answers from r (stdin in
// production).
func NewCLIFeedback(r io.Reader) *CLIFeedback {
	return &CLIFeedback{scanner: bufio.NewScanner(r)}
}

// Ask implements FeedbackSource.
func (c *CLIFeedback) Ask(_ context.Context, status blackboard.Status, report string) (string, bool) {
	if report != "" {
		printer.Report(report)
	}
	printer.Printf("\n")
	printer.Step("pipeline settled at %q\n", status)
	printer.Prompt("Ask a follow-up question, or press Enter to exit: ")

	if !c.scanner.Scan() {
		printer.Println()
		return "", false
	}
	answer := strings.TrimSpace(c.scanner.Text())
	switch strings.ToLower(answer) {
	case "", "n", "no", "exit", "quit":
		return "", false
	}
	return answer, true
}

// AutoExit is the non-interactive FeedbackSource: it declines every prompt,
// so the pipeline ends at its first quiescent state.
type AutoExit struct{}

// Ask implements FeedbackSource.
func (AutoExit) Ask(context.Context, blackboard.Status, string) (string, bool) {
	return "", false
}
