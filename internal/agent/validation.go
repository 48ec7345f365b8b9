package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mara/pkg/blackboard"
)

// Validation runs the structural checks over a freshly synthesized graph:
// non-empty node sets, every relationship referencing existing nodes, and at
// most one author per article.
type Validation struct {
	board  *blackboard.Board
	logger *zap.Logger
}

// NewValidation builds the worker.
func NewValidation(board *blackboard.Board, logger *zap.Logger) *Validation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validation{board: board, logger: logger.Named("validation")}
}

// Register subscribes the worker to its authorized status.
func (v *Validation) Register(context.Context) {
	onStatus(v.board, v.logger, func(blackboard.Status) { v.validate() },
		blackboard.StatusKnowledgeSynthesized)
}

func (v *Validation) validate() {
	graph, ok := currentGraph(v.board)
	if !ok {
		v.fail("no knowledge graph on the blackboard")
		return
	}

	if err := check(graph); err != nil {
		v.board.Put(blackboard.KeyValidationResult, &blackboard.ValidationResult{
			Valid: false,
			Notes: err.Error(),
		})
		v.fail(err.Error())
		return
	}

	result := &blackboard.ValidationResult{
		Valid: true,
		Notes: fmt.Sprintf("checked %d articles, %d authors, %d relationships",
			len(graph.Articles), len(graph.Authors), len(graph.Relationships)),
	}
	v.logger.Info("data validated", zap.String("notes", result.Notes))
	v.board.Put(blackboard.KeyValidationResult, result)
	v.board.SetStatus(blackboard.StatusDataValidated)
}

func check(graph *blackboard.KnowledgeGraph) error {
	if len(graph.Articles) == 0 {
		return fmt.Errorf("graph has no article nodes")
	}
	if len(graph.Authors) == 0 {
		return fmt.Errorf("graph has no author nodes")
	}
	return graph.Validate()
}

func (v *Validation) fail(msg string) {
	v.logger.Error("validation failed", zap.String("reason", msg))
	v.board.Put(blackboard.KeyErrorMessage, msg)
	v.board.SetStatus(blackboard.StatusValidationFailed)
}
