// Package decompose turns natural-language research queries into blackboard
// tasks. Two strategies exist: an LLM planner and a deterministic keyword
// matcher used as its fallback (and on its own when no API key is
// configured).
package decompose

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"mara/pkg/blackboard"
)

// ErrUnsupported reports that a query matches no known task kind. It is the
// one decomposition failure that should not be retried with another
// strategy's output discarded: the pipeline surfaces it to the user.
var ErrUnsupported = errors.New("unsupported query")

// Decomposer turns a user query into a single delegatable task.
type Decomposer interface {
	Decompose(ctx context.Context, query string) (*blackboard.Task, error)
}

// Chain tries a primary decomposer and falls back to a secondary one when
// the primary fails for any reason other than caller cancellation. The
// fallback is expected to be total, though it may still answer
// ErrUnsupported.
type Chain struct {
	primary  Decomposer
	fallback Decomposer
	logger   *zap.Logger
}

// NewChain builds a chain. A nil primary means the fallback runs directly.
func NewChain(primary, fallback Decomposer, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		primary:  primary,
		fallback: fallback,
		logger:   logger.Named("decompose"),
	}
}

// Decompose implements Decomposer.
func (c *Chain) Decompose(ctx context.Context, query string) (*blackboard.Task, error) {
	if c.primary != nil {
		task, err := c.primary.Decompose(ctx, query)
		if err == nil {
			return task, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("primary decomposition failed, using fallback", zap.Error(err))
	}
	return c.fallback.Decompose(ctx, query)
}
