package decompose

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mara/internal/llm"
	"mara/pkg/blackboard"
)

// Action names the planner model is allowed to answer with.
const (
	actionWebScrape       = "web_scrape"
	actionSummarize       = "summarize_findings"
	actionFilterByAuthor  = "filter_by_author"
	actionVisualize       = "visualize_author_distribution"
	actionCountByAuthor   = "count_articles_by_author"
	actionFindByKeyword   = "find_articles_by_keyword"
	actionProlificAuthor  = "identify_prolific_author"
	actionCheckForChanges = "check_for_changes"
	actionRefreshData     = "refresh_data"
	actionUnsupported     = "unsupported_query"
)

const planPrompt = `You are the planning stage of a research pipeline. Map the user's query to
exactly one action from this list and answer with a single JSON object,
nothing else.

Actions:
- "web_scrape": acquire the article catalogue from the configured source
- "summarize_findings": summarize key findings of the current knowledge
- "filter_by_author": list articles by one author (set "author")
- "visualize_author_distribution": chart articles per author
- "count_articles_by_author": count one author's articles (set "author")
- "find_articles_by_keyword": search titles and descriptions (set "keyword")
- "identify_prolific_author": name the author with the most articles
- "check_for_changes": compare the live source against current knowledge
- "refresh_data": re-acquire the source from scratch
- "unsupported_query": none of the above fits

JSON shape: {"action": "...", "author": "...", "keyword": "..."}
Omit "author" and "keyword" unless the action needs them.

User query: %q`

type actionPlan struct {
	Action  string `json:"action"`
	Author  string `json:"author,omitempty"`
	Keyword string `json:"keyword,omitempty"`
}

// LLM is the planner-model decomposition strategy.
type LLM struct {
	gen       llm.Generator
	sourceURL string
	logger    *zap.Logger
}

// NewLLM builds the LLM decomposer on top of a generator.
func NewLLM(gen llm.Generator, sourceURL string, logger *zap.Logger) *LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{gen: gen, sourceURL: sourceURL, logger: logger.Named("decompose.llm")}
}

// Decompose implements Decomposer.
func (d *LLM) Decompose(ctx context.Context, query string) (*blackboard.Task, error) {
	raw, err := d.gen.GenerateJSON(ctx, fmt.Sprintf(planPrompt, query))
	if err != nil {
		return nil, fmt.Errorf("plan generation failed: %w", err)
	}

	var plan actionPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("model returned malformed plan: %w", err)
	}
	d.logger.Debug("model plan", zap.String("action", plan.Action))

	var task *blackboard.Task
	switch plan.Action {
	case actionWebScrape, actionRefreshData:
		task = blackboard.NewTask(blackboard.TaskAcquire, query)
		task.SourceURL = d.sourceURL
	case actionSummarize:
		task = blackboard.NewTask(blackboard.TaskSummarize, query)
	case actionFilterByAuthor:
		task = blackboard.NewTask(blackboard.TaskFilterByAuthor, query)
		task.Author = plan.Author
	case actionVisualize:
		task = blackboard.NewTask(blackboard.TaskVisualize, query)
	case actionCountByAuthor:
		task = blackboard.NewTask(blackboard.TaskCountByAuthor, query)
		task.Author = plan.Author
	case actionFindByKeyword:
		task = blackboard.NewTask(blackboard.TaskFindByKeyword, query)
		task.Keyword = plan.Keyword
	case actionProlificAuthor:
		task = blackboard.NewTask(blackboard.TaskProlificAuthor, query)
	case actionCheckForChanges:
		task = blackboard.NewTask(blackboard.TaskCheckForChanges, query)
	case actionUnsupported:
		return nil, ErrUnsupported
	default:
		return nil, fmt.Errorf("model returned unknown action %q", plan.Action)
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("model plan produced an invalid task: %w", err)
	}
	return task, nil
}
