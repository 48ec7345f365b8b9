package agent

import (
	"context"

	"go.uber.org/zap"

	"mara/internal/report"
	"mara/pkg/blackboard"
)

// Reporting renders the report that closes out each request: the full
// research report after validation, the follow-up reports, and the failure
// report for every failed stage.
type Reporting struct {
	board    *blackboard.Board
	renderer *report.Renderer
	logger   *zap.Logger
}

// NewReporting builds the worker.
func NewReporting(board *blackboard.Board, renderer *report.Renderer, logger *zap.Logger) *Reporting {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporting{board: board, renderer: renderer, logger: logger.Named("reporting")}
}

// Register subscribes the worker to its authorized statuses.
func (r *Reporting) Register(context.Context) {
	onStatus(r.board, r.logger, r.handle,
		blackboard.StatusDataValidated,
		blackboard.StatusSummarizeRequested,
		blackboard.StatusFilterRequested,
		blackboard.StatusVisualizeRequested,
		blackboard.StatusProlificAuthorRequested,
		blackboard.StatusAcquisitionFailed,
		blackboard.StatusSynthesisFailed,
		blackboard.StatusValidationFailed,
	)
}

func (r *Reporting) handle(s blackboard.Status) {
	switch s {
	case blackboard.StatusAcquisitionFailed,
		blackboard.StatusSynthesisFailed,
		blackboard.StatusValidationFailed:
		r.failureReport(s)
		return
	}

	graph, ok := currentGraph(r.board)
	if !ok {
		r.fail("no knowledge graph on the blackboard; acquire data first")
		return
	}

	var md string
	switch s {
	case blackboard.StatusDataValidated:
		md = r.renderer.Research(graph, validationResult(r.board))
	case blackboard.StatusSummarizeRequested:
		md = r.renderer.Summary(graph)
	case blackboard.StatusFilterRequested:
		task, ok := currentTask(r.board)
		if !ok || task.Author == "" {
			r.fail("filter request without an author")
			return
		}
		md = r.renderer.Filter(graph, task.Author)
	case blackboard.StatusVisualizeRequested:
		md = r.renderer.Distribution(graph)
	case blackboard.StatusProlificAuthorRequested:
		md = r.renderer.Prolific(graph)
	}

	r.logger.Info("report generated", zap.String("for_status", string(s)))
	r.board.Put(blackboard.KeyFinalReport, md)
	r.board.SetStatus(blackboard.StatusComplete)
}

// failureReport converts a stage failure into the generic failed state with
// a human-readable report attached.
func (r *Reporting) failureReport(stage blackboard.Status) {
	md := r.renderer.Failure(stage, userQuery(r.board), errorMessage(r.board))
	r.logger.Info("failure report generated", zap.String("stage", string(stage)))
	r.board.Put(blackboard.KeyFinalReport, md)
	r.board.SetStatus(blackboard.StatusFailed)
}

// fail handles reporting's own precondition failures.
func (r *Reporting) fail(msg string) {
	r.logger.Error("reporting failed", zap.String("reason", msg))
	r.board.Put(blackboard.KeyErrorMessage, msg)
	r.board.Put(blackboard.KeyFinalReport, r.renderer.Failure(r.board.Status(), userQuery(r.board), msg))
	r.board.SetStatus(blackboard.StatusFailed)
}

func validationResult(board *blackboard.Board) *blackboard.ValidationResult {
	v, ok := board.Get(blackboard.KeyValidationResult)
	if !ok {
		return nil
	}
	result, _ := v.(*blackboard.ValidationResult)
	return result
}
