package workflow

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"mara/internal/agent"
	"mara/internal/decompose"
	"mara/internal/extract"
	"mara/internal/report"
	"mara/internal/retry"
	"mara/internal/synthesis"
	"mara/pkg/blackboard"
)

// Options carries every collaborator the engine wires into the workers.
// All construction is explicit: nothing reaches for globals, so tests can
// run engines side by side with scripted collaborators.
type Options struct {
	Decomposer     decompose.Decomposer
	Extractor      extract.Extractor
	Synthesizer    *synthesis.Synthesizer
	Renderer       *report.Renderer
	Feedback       agent.FeedbackSource
	RetryPolicy    retry.Policy
	StaleThreshold int
	SourceURL      string
	Logger         *zap.Logger
}

func (o *Options) validate() error {
	if o.Decomposer == nil {
		return fmt.Errorf("decomposer is required")
	}
	if o.Extractor == nil {
		return fmt.Errorf("extractor is required")
	}
	if o.Synthesizer == nil {
		return fmt.Errorf("synthesizer is required")
	}
	if o.Renderer == nil {
		return fmt.Errorf("renderer is required")
	}
	if o.Feedback == nil {
		return fmt.Errorf("feedback source is required")
	}
	if err := o.RetryPolicy.Validate(); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}
	if o.StaleThreshold < 1 {
		return fmt.Errorf("stale threshold must be >= 1, got %d", o.StaleThreshold)
	}
	if o.SourceURL == "" {
		return fmt.Errorf("source URL is required")
	}
	return nil
}

// Result summarizes the state the session ended in.
type Result struct {
	Status       blackboard.Status
	Report       string
	ErrorMessage string
	UserExited   bool
}

// Failed reports whether the session ended in the generic failure state.
func (r *Result) Failed() bool {
	return r.Status == blackboard.StatusFailed
}

// Engine owns the board and the workers and runs one research session. The
// session ends when a terminal status is reached or the user exits; the
// engine blocks on that signal rather than polling the board.
type Engine struct {
	board  *blackboard.Board
	opts   Options
	logger *zap.Logger

	orchestrator *agent.Orchestrator
	acquisition  *agent.Acquisition
	synthesis    *agent.Synthesis
	validation   *agent.Validation
	reporting    *agent.Reporting
	query        *agent.Query
	changes      *agent.ChangeDetection
	staleness    *agent.StalenessMonitor
	feedback     *agent.Feedback

	lastStatus blackboard.Status
	done       chan struct{}
	doneOnce   sync.Once
}

// New builds an engine and its workers. Workers subscribe when Run starts.
func New(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	board := blackboard.NewBoard(logger)
	e := &Engine{
		board:      board,
		opts:       opts,
		logger:     logger.Named("engine"),
		lastStatus: blackboard.StatusIdle,
		done:       make(chan struct{}),
	}

	e.orchestrator = agent.NewOrchestrator(board, opts.Decomposer, opts.Renderer, opts.SourceURL, logger)
	e.acquisition = agent.NewAcquisition(board, opts.Extractor, opts.RetryPolicy, logger)
	e.synthesis = agent.NewSynthesis(board, opts.Synthesizer, logger)
	e.validation = agent.NewValidation(board, logger)
	e.reporting = agent.NewReporting(board, opts.Renderer, logger)
	e.query = agent.NewQuery(board, opts.Renderer, logger)
	e.changes = agent.NewChangeDetection(board, opts.Extractor, opts.Synthesizer, opts.Renderer,
		opts.SourceURL, opts.RetryPolicy.AttemptTimeout, logger)
	e.staleness = agent.NewStalenessMonitor(board, opts.StaleThreshold, logger)
	e.feedback = agent.NewFeedback(board, opts.Feedback, logger)

	return e, nil
}

// Board exposes the engine's blackboard for inspection.
func (e *Engine) Board() *blackboard.Board {
	return e.board
}

// Run executes one research session for the query and blocks until a
// terminal condition or ctx cancellation. Run must be called once per
// engine.
func (e *Engine) Run(ctx context.Context, query string) (*Result, error) {
	e.register(ctx)
	e.orchestrator.Delegate(ctx, query)

	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return e.result(), nil
}

// register wires the subscriptions. Order matters twice: the transition
// validator observes every status write before any worker acts on it, and
// the staleness monitor precedes the feedback worker so a stale "complete"
// triggers a refresh instead of a prompt about outdated knowledge.
func (e *Engine) register(ctx context.Context) {
	e.board.Subscribe(blackboard.KeyStatus, e.validateTransition)

	e.staleness.Register(ctx)
	e.orchestrator.Register(ctx)
	e.acquisition.Register(ctx)
	e.synthesis.Register(ctx)
	e.validation.Register(ctx)
	e.reporting.Register(ctx)
	e.query.Register(ctx)
	e.changes.Register(ctx)
	e.feedback.Register(ctx)

	e.board.Subscribe(blackboard.KeyStatus, func(_ string, value any) {
		if s, ok := value.(blackboard.Status); ok && Terminal(s) {
			e.signalDone()
		}
	})
	e.board.Subscribe(blackboard.KeyUserExit, func(string, any) {
		e.signalDone()
	})
}

// validateTransition checks every observed status change against the
// transition table. All writers go through the table-derived workers, so an
// illegal transition is a programming error; it is logged and the session
// continues.
func (e *Engine) validateTransition(_ string, value any) {
	next, ok := value.(blackboard.Status)
	if !ok {
		return
	}
	from := e.lastStatus
	e.lastStatus = next

	if !Allowed(from, next) {
		e.logger.Error("illegal status transition",
			zap.String("from", string(from)),
			zap.String("to", string(next)))
	}
}

func (e *Engine) signalDone() {
	e.doneOnce.Do(func() { close(e.done) })
}

func (e *Engine) result() *Result {
	status := e.board.Status()
	res := &Result{
		Status:       status,
		ErrorMessage: boardString(e.board, blackboard.KeyErrorMessage),
		UserExited:   userExited(e.board),
	}

	reportKey := blackboard.KeyFinalReport
	switch status {
	case blackboard.StatusChangesDetected, blackboard.StatusNoChangesDetected:
		reportKey = blackboard.KeyChangeReport
	}
	res.Report = boardString(e.board, reportKey)
	if res.Report == "" {
		res.Report = boardString(e.board, blackboard.KeyFinalReport)
	}
	return res
}

func boardString(board *blackboard.Board, key string) string {
	v, ok := board.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func userExited(board *blackboard.Board) bool {
	v, ok := board.Get(blackboard.KeyUserExit)
	if !ok {
		return false
	}
	exited, _ := v.(bool)
	return exited
}
