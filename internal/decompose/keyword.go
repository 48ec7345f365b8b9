package decompose

import (
	"context"
	"regexp"
	"strings"

	"mara/pkg/blackboard"
)

// Keyword is the deterministic fallback decomposer. It matches a fixed
// phrase table in priority order, most specific first, so counting queries
// are never misread as author filters.
type Keyword struct {
	sourceURL string
}

// NewKeyword builds the keyword decomposer. Acquire and refresh tasks it
// produces point at sourceURL.
func NewKeyword(sourceURL string) *Keyword {
	return &Keyword{sourceURL: sourceURL}
}

var (
	countPublishRe = regexp.MustCompile(`(?i)how many articles (?:did|has|have)\s+(.+?)\s+(?:publish|published|write|written)`)
	countByRe      = regexp.MustCompile(`(?i)how many articles (?:by|from)\s+(.+)`)
	findAboutRe    = regexp.MustCompile(`(?i)find articles about\s+(.+)`)
	byAuthorRe     = regexp.MustCompile(`(?i)articles (?:written by|by|from)\s+(.+)`)
)

// Decompose implements Decomposer. It never returns an error other than
// ErrUnsupported.
func (k *Keyword) Decompose(_ context.Context, query string) (*blackboard.Task, error) {
	q := strings.ToLower(query)

	if m := countPublishRe.FindStringSubmatch(query); m != nil {
		task := blackboard.NewTask(blackboard.TaskCountByAuthor, query)
		task.Author = cleanParam(m[1])
		return task, nil
	}
	if m := countByRe.FindStringSubmatch(query); m != nil {
		task := blackboard.NewTask(blackboard.TaskCountByAuthor, query)
		task.Author = cleanParam(m[1])
		return task, nil
	}

	if strings.Contains(q, "summarize") {
		return blackboard.NewTask(blackboard.TaskSummarize, query), nil
	}
	if strings.Contains(q, "most prolific author") || strings.Contains(q, "prolific author") {
		return blackboard.NewTask(blackboard.TaskProlificAuthor, query), nil
	}
	if strings.Contains(q, "distribution") {
		return blackboard.NewTask(blackboard.TaskVisualize, query), nil
	}
	if strings.Contains(q, "check for new articles") || strings.Contains(q, "detect changes") ||
		strings.Contains(q, "check for changes") {
		return blackboard.NewTask(blackboard.TaskCheckForChanges, query), nil
	}
	if strings.Contains(q, "refresh") {
		task := blackboard.NewTask(blackboard.TaskAcquire, query)
		task.SourceURL = k.sourceURL
		return task, nil
	}

	if m := findAboutRe.FindStringSubmatch(query); m != nil {
		task := blackboard.NewTask(blackboard.TaskFindByKeyword, query)
		task.Keyword = cleanParam(m[1])
		return task, nil
	}
	if m := byAuthorRe.FindStringSubmatch(query); m != nil {
		task := blackboard.NewTask(blackboard.TaskFilterByAuthor, query)
		task.Author = cleanParam(m[1])
		return task, nil
	}

	// Initial research request, e.g. "List me all the articles with their
	// descriptions".
	if strings.Contains(q, "articles") && strings.Contains(q, "description") {
		task := blackboard.NewTask(blackboard.TaskAcquire, query)
		task.SourceURL = k.sourceURL
		return task, nil
	}

	return nil, ErrUnsupported
}

// cleanParam trims whitespace, surrounding quotes, and trailing punctuation
// from an extracted author or keyword.
func cleanParam(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".?!,;:")
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
