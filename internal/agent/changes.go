package agent

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mara/internal/extract"
	"mara/internal/report"
	"mara/internal/synthesis"
	"mara/pkg/blackboard"
)

// ChangeDetection compares the live source against the current knowledge
// graph. It runs a single-attempt extraction (no retries: the comparison is
// advisory) and synthesizes a throwaway graph whose title set is diffed
// against the stored one. The stored graph is never replaced.
type ChangeDetection struct {
	board     *blackboard.Board
	extractor extract.Extractor
	synth     *synthesis.Synthesizer
	renderer  *report.Renderer
	sourceURL string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChangeDetection builds the worker. timeout bounds the single
// extraction attempt.
func NewChangeDetection(board *blackboard.Board, extractor extract.Extractor, synth *synthesis.Synthesizer, renderer *report.Renderer, sourceURL string, timeout time.Duration, logger *zap.Logger) *ChangeDetection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeDetection{
		board:     board,
		extractor: extractor,
		synth:     synth,
		renderer:  renderer,
		sourceURL: sourceURL,
		timeout:   timeout,
		logger:    logger.Named("change-detection"),
	}
}

// Register subscribes the worker to its authorized status.
func (c *ChangeDetection) Register(ctx context.Context) {
	onStatus(c.board, c.logger, func(blackboard.Status) { c.compare(ctx) },
		blackboard.StatusCheckForChangesRequested)
}

func (c *ChangeDetection) compare(ctx context.Context) {
	graph, ok := currentGraph(c.board)
	if !ok {
		c.fail("no knowledge graph to compare against; acquire data first")
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.extractor.Extract(attemptCtx, c.sourceURL)
	if err != nil {
		c.fail("source comparison fetch failed: " + err.Error())
		return
	}
	fresh, err := c.synth.Synthesize(raw)
	if err != nil {
		c.fail("source comparison synthesis failed: " + err.Error())
		return
	}

	added, removed := diffTitles(graph, fresh)
	c.logger.Info("source compared",
		zap.Int("added", len(added)),
		zap.Int("removed", len(removed)))

	c.board.Put(blackboard.KeyChangeReport, c.renderer.Change(added, removed))
	if len(added) > 0 || len(removed) > 0 {
		c.board.SetStatus(blackboard.StatusChangesDetected)
	} else {
		c.board.SetStatus(blackboard.StatusNoChangesDetected)
	}
}

// diffTitles returns the titles present only at the source (added) and only
// in the stored graph (removed), in their original casing and order.
func diffTitles(stored, fresh *blackboard.KnowledgeGraph) (added, removed []string) {
	storedSet := stored.TitleSet()
	freshSet := fresh.TitleSet()

	for _, article := range fresh.Articles {
		if !storedSet[strings.ToLower(article.Title)] {
			added = append(added, article.Title)
		}
	}
	for _, article := range stored.Articles {
		if !freshSet[strings.ToLower(article.Title)] {
			removed = append(removed, article.Title)
		}
	}
	return added, removed
}

func (c *ChangeDetection) fail(msg string) {
	c.logger.Error("change detection failed", zap.String("reason", msg))
	c.board.Put(blackboard.KeyErrorMessage, msg)
	c.board.Put(blackboard.KeyFinalReport, c.renderer.Failure(c.board.Status(), userQuery(c.board), msg))
	c.board.SetStatus(blackboard.StatusFailed)
}
