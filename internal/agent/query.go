package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mara/internal/report"
	"mara/pkg/blackboard"
)

// Query answers the read-only questions over the existing knowledge graph:
// per-author article counts and keyword searches.
type Query struct {
	board    *blackboard.Board
	renderer *report.Renderer
	logger   *zap.Logger
}

// NewQuery builds the worker.
func NewQuery(board *blackboard.Board, renderer *report.Renderer, logger *zap.Logger) *Query {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Query{board: board, renderer: renderer, logger: logger.Named("query")}
}

// Register subscribes the worker to its authorized status.
func (q *Query) Register(context.Context) {
	onStatus(q.board, q.logger, func(blackboard.Status) { q.answer() },
		blackboard.StatusQueryRequested)
}

func (q *Query) answer() {
	task, ok := currentTask(q.board)
	if !ok {
		q.fail("no query task on the blackboard")
		return
	}
	graph, ok := currentGraph(q.board)
	if !ok {
		q.fail("no knowledge graph on the blackboard; acquire data first")
		return
	}

	var md string
	switch task.Kind {
	case blackboard.TaskCountByAuthor:
		md = q.renderer.Count(graph, task.Author)
	case blackboard.TaskFindByKeyword:
		md = q.renderer.Keyword(graph, task.Keyword)
	default:
		q.fail(fmt.Sprintf("task kind %q is not a query", task.Kind))
		return
	}

	q.logger.Info("query answered", zap.String("kind", string(task.Kind)))
	q.board.Put(blackboard.KeyFinalReport, md)
	q.board.SetStatus(blackboard.StatusComplete)
}

func (q *Query) fail(msg string) {
	q.logger.Error("query failed", zap.String("reason", msg))
	q.board.Put(blackboard.KeyErrorMessage, msg)
	q.board.Put(blackboard.KeyFinalReport, q.renderer.Failure(q.board.Status(), userQuery(q.board), msg))
	q.board.SetStatus(blackboard.StatusFailed)
}
