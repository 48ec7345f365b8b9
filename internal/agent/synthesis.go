package agent

import (
	"context"

	"go.uber.org/zap"

	"mara/internal/synthesis"
	"mara/pkg/blackboard"
)

// Synthesis turns acquired raw data into the knowledge graph.
type Synthesis struct {
	board  *blackboard.Board
	synth  *synthesis.Synthesizer
	logger *zap.Logger
}

// NewSynthesis builds the worker.
func NewSynthesis(board *blackboard.Board, synth *synthesis.Synthesizer, logger *zap.Logger) *Synthesis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesis{board: board, synth: synth, logger: logger.Named("synthesis")}
}

// Register subscribes the worker to its authorized status.
func (s *Synthesis) Register(context.Context) {
	onStatus(s.board, s.logger, func(blackboard.Status) { s.synthesize() },
		blackboard.StatusRawDataAcquired)
}

func (s *Synthesis) synthesize() {
	v, _ := s.board.Get(blackboard.KeyRawData)
	raw, ok := v.(*blackboard.RawData)
	if !ok || raw == nil {
		s.fail("no raw data on the blackboard")
		return
	}

	graph, err := s.synth.Synthesize(raw)
	if err != nil {
		s.fail(err.Error())
		return
	}

	s.logger.Info("knowledge synthesized",
		zap.Int("articles", len(graph.Articles)),
		zap.Int("authors", len(graph.Authors)))
	s.board.Put(blackboard.KeySynthesizedKnowledge, graph)
	s.board.SetStatus(blackboard.StatusKnowledgeSynthesized)
}

func (s *Synthesis) fail(msg string) {
	s.logger.Error("synthesis failed", zap.String("reason", msg))
	s.board.Put(blackboard.KeyErrorMessage, msg)
	s.board.SetStatus(blackboard.StatusSynthesisFailed)
}
