package agent

import (
	"context"

	"go.uber.org/zap"

	"mara/pkg/blackboard"
)

// StalenessMonitor tracks the age of the knowledge graph. One completed
// workflow cycle is one age unit: the monitor bumps the stored graph's age
// each time the workflow enters "complete". When a graph change shows the
// age at or past the threshold it raises a standing refresh signal, which
// stays pending until the decomposition worker consumes it, so repeated
// threshold crossings do not queue duplicate refreshes.
type StalenessMonitor struct {
	board     *blackboard.Board
	threshold int
	logger    *zap.Logger
}

// NewStalenessMonitor builds the monitor. threshold is the age, in cycles,
// at which a refresh is requested.
func NewStalenessMonitor(board *blackboard.Board, threshold int, logger *zap.Logger) *StalenessMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StalenessMonitor{
		board:     board,
		threshold: threshold,
		logger:    logger.Named("staleness"),
	}
}

// Register subscribes the monitor. It must be registered before the
// feedback worker so a stale "complete" is refreshed instead of prompting
// the user about outdated knowledge.
func (m *StalenessMonitor) Register(context.Context) {
	onStatus(m.board, m.logger, func(blackboard.Status) { m.bump() },
		blackboard.StatusComplete)
	m.board.Subscribe(blackboard.KeySynthesizedKnowledge, m.check)
}

func (m *StalenessMonitor) bump() {
	if age, ok := m.board.IncrementAge(blackboard.KeySynthesizedKnowledge); ok {
		m.logger.Debug("knowledge aged", zap.Int("age_cycles", age))
	}
}

func (m *StalenessMonitor) check(_ string, value any) {
	graph, ok := value.(*blackboard.KnowledgeGraph)
	if !ok || graph == nil {
		return
	}
	if sessionEnded(m.board) {
		return
	}
	if graph.AgeCycles < m.threshold {
		return
	}
	if m.refreshPending() {
		return
	}

	m.logger.Info("knowledge is stale, requesting refresh",
		zap.Int("age_cycles", graph.AgeCycles),
		zap.Int("threshold", m.threshold))
	m.board.Put(blackboard.KeyRefreshRequested, true)
	m.board.SetStatus(blackboard.StatusRefreshRequested)
}

func (m *StalenessMonitor) refreshPending() bool {
	v, ok := m.board.Get(blackboard.KeyRefreshRequested)
	if !ok {
		return false
	}
	pending, _ := v.(bool)
	return pending
}
