package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mara/internal/decompose"
	"mara/internal/report"
	"mara/pkg/blackboard"
)

// Orchestrator is the decomposition worker. It turns the initial user query,
// refresh requests, and human feedback into delegated tasks.
type Orchestrator struct {
	board      *blackboard.Board
	decomposer decompose.Decomposer
	renderer   *report.Renderer
	sourceURL  string
	logger     *zap.Logger
}

// NewOrchestrator builds the worker.
func NewOrchestrator(board *blackboard.Board, decomposer decompose.Decomposer, renderer *report.Renderer, sourceURL string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		board:      board,
		decomposer: decomposer,
		renderer:   renderer,
		sourceURL:  sourceURL,
		logger:     logger.Named("orchestrator"),
	}
}

// Register subscribes the worker to its authorized statuses.
func (o *Orchestrator) Register(ctx context.Context) {
	onStatus(o.board, o.logger, func(blackboard.Status) { o.refresh() },
		blackboard.StatusRefreshRequested)
	onStatus(o.board, o.logger, func(blackboard.Status) { o.redecompose(ctx) },
		blackboard.StatusAwaitingRedecomposition)
}

// Delegate is the pipeline entry point: it records the user query and
// dispatches the task decomposed from it. All downstream work happens inside
// this call through the board's synchronous notification cascade.
func (o *Orchestrator) Delegate(ctx context.Context, query string) {
	o.logger.Info("delegating user query", zap.String("query", query))
	o.board.Put(blackboard.KeyUserQuery, query)
	o.dispatch(ctx, query, false)
}

// refresh acts on the staleness monitor's signal: it consumes the standing
// pending flag and re-delegates a full acquisition.
func (o *Orchestrator) refresh() {
	o.board.Put(blackboard.KeyRefreshRequested, false)

	task := blackboard.NewTask(blackboard.TaskAcquire, "refresh stale knowledge")
	task.SourceURL = o.sourceURL

	o.logger.Info("re-acquiring stale knowledge", zap.String("task_id", task.ID))
	o.board.Put(blackboard.KeyCurrentTask, task)
	o.board.SetStatus(blackboard.StatusTaskDelegated)
}

// redecompose treats the captured human feedback as a new query. Feedback
// that no strategy recognizes ends the session.
func (o *Orchestrator) redecompose(ctx context.Context) {
	v, _ := o.board.Get(blackboard.KeyHumanFeedback)
	feedback, _ := v.(string)
	if strings.TrimSpace(feedback) == "" {
		o.board.SetStatus(blackboard.StatusCompleteWithFeedback)
		return
	}
	o.dispatch(ctx, feedback, true)
}

func (o *Orchestrator) dispatch(ctx context.Context, query string, fromFeedback bool) {
	task, err := o.decomposer.Decompose(ctx, query)
	if err != nil {
		o.dispatchFailed(query, err, fromFeedback)
		return
	}

	o.logger.Info("task delegated",
		zap.String("task_id", task.ID),
		zap.String("kind", string(task.Kind)))
	o.board.Put(blackboard.KeyCurrentTask, task)
	o.board.SetStatus(statusForKind(task.Kind))
}

func (o *Orchestrator) dispatchFailed(query string, err error, fromFeedback bool) {
	if errors.Is(err, decompose.ErrUnsupported) {
		if fromFeedback {
			o.logger.Info("feedback not actionable, ending session", zap.String("feedback", query))
			o.board.SetStatus(blackboard.StatusCompleteWithFeedback)
			return
		}
		o.board.Put(blackboard.KeyErrorMessage, fmt.Sprintf("unsupported query: %q", query))
		o.board.Put(blackboard.KeyFinalReport, o.renderer.Unsupported(query))
		o.board.SetStatus(blackboard.StatusUnsupportedQuery)
		return
	}

	o.logger.Error("decomposition failed", zap.Error(err))
	o.board.Put(blackboard.KeyErrorMessage, err.Error())
	o.board.Put(blackboard.KeyFinalReport, o.renderer.Failure(o.board.Status(), query, err.Error()))
	o.board.SetStatus(blackboard.StatusFailed)
}

// statusForKind maps a decomposed task onto the status that dispatches its
// worker.
func statusForKind(kind blackboard.TaskKind) blackboard.Status {
	switch kind {
	case blackboard.TaskAcquire:
		return blackboard.StatusTaskDelegated
	case blackboard.TaskSummarize:
		return blackboard.StatusSummarizeRequested
	case blackboard.TaskFilterByAuthor:
		return blackboard.StatusFilterRequested
	case blackboard.TaskVisualize:
		return blackboard.StatusVisualizeRequested
	case blackboard.TaskCountByAuthor, blackboard.TaskFindByKeyword:
		return blackboard.StatusQueryRequested
	case blackboard.TaskProlificAuthor:
		return blackboard.StatusProlificAuthorRequested
	case blackboard.TaskCheckForChanges:
		return blackboard.StatusCheckForChangesRequested
	}
	return blackboard.StatusUnsupportedQuery
}
