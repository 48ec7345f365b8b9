package agent

import (
	"context"

	"go.uber.org/zap"

	"mara/internal/extract"
	"mara/internal/retry"
	"mara/pkg/blackboard"
)

// Acquisition fetches raw article data for delegated acquire tasks, wrapping
// the extractor in the configured retry policy.
type Acquisition struct {
	board     *blackboard.Board
	extractor extract.Extractor
	policy    retry.Policy
	logger    *zap.Logger
}

// NewAcquisition builds the worker.
func NewAcquisition(board *blackboard.Board, extractor extract.Extractor, policy retry.Policy, logger *zap.Logger) *Acquisition {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquisition{
		board:     board,
		extractor: extractor,
		policy:    policy,
		logger:    logger.Named("acquisition"),
	}
}

// Register subscribes the worker to its authorized status.
func (a *Acquisition) Register(ctx context.Context) {
	onStatus(a.board, a.logger, func(blackboard.Status) { a.acquire(ctx) },
		blackboard.StatusTaskDelegated)
}

func (a *Acquisition) acquire(ctx context.Context) {
	task, ok := currentTask(a.board)
	if !ok || task.Kind != blackboard.TaskAcquire {
		a.logger.Error("no acquire task on the blackboard")
		a.board.Put(blackboard.KeyErrorMessage, "no acquire task on the blackboard")
		a.board.SetStatus(blackboard.StatusFailed)
		return
	}
	if err := task.Validate(); err != nil {
		// Malformed input is not retried.
		a.logger.Error("malformed acquire task", zap.Error(err))
		a.board.Put(blackboard.KeyErrorMessage, "malformed acquire task: "+err.Error())
		a.board.SetStatus(blackboard.StatusFailed)
		return
	}

	a.logger.Info("acquiring raw data",
		zap.String("task_id", task.ID),
		zap.String("source_url", task.SourceURL))

	raw, err := retry.Do(ctx, a.policy, a.logger, func(attemptCtx context.Context) (*blackboard.RawData, error) {
		return a.extractor.Extract(attemptCtx, task.SourceURL)
	})
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; leave the board as it is.
			a.logger.Warn("acquisition interrupted", zap.Error(ctx.Err()))
			return
		}
		a.logger.Error("acquisition exhausted", zap.Error(err))
		a.board.Put(blackboard.KeyErrorMessage, err.Error())
		a.board.SetStatus(blackboard.StatusAcquisitionFailed)
		return
	}

	a.logger.Info("raw data acquired", zap.Int("articles", len(raw.Articles)))
	a.board.Put(blackboard.KeyRawData, raw)
	a.board.SetStatus(blackboard.StatusRawDataAcquired)
}
