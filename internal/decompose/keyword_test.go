package decompose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mara/pkg/blackboard"
)

const testSourceURL = "https://example.com/projects"

func TestKeywordDecompose(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantKind    blackboard.TaskKind
		wantAuthor  string
		wantKeyword string
		wantURL     string
	}{
		{
			name:     "initial research request",
			query:    "List me all the articles in the page with their description",
			wantKind: blackboard.TaskAcquire,
			wantURL:  testSourceURL,
		},
		{
			name:     "summarize findings",
			query:    "Summarize the key findings",
			wantKind: blackboard.TaskSummarize,
		},
		{
			name:       "filter by author",
			query:      "Show me articles by Jane Doe",
			wantKind:   blackboard.TaskFilterByAuthor,
			wantAuthor: "Jane Doe",
		},
		{
			name:     "distribution chart",
			query:    "Show article distribution by author",
			wantKind: blackboard.TaskVisualize,
		},
		{
			name:       "count with publish phrasing",
			query:      "How many articles did Marco Perini publish?",
			wantKind:   blackboard.TaskCountByAuthor,
			wantAuthor: "Marco Perini",
		},
		{
			name:       "count with by phrasing",
			query:      "How many articles by Jane Doe?",
			wantKind:   blackboard.TaskCountByAuthor,
			wantAuthor: "Jane Doe",
		},
		{
			name:        "keyword search",
			query:       "Find articles about reinforcement learning",
			wantKind:    blackboard.TaskFindByKeyword,
			wantKeyword: "reinforcement learning",
		},
		{
			name:     "prolific author",
			query:    "Who is the most prolific author?",
			wantKind: blackboard.TaskProlificAuthor,
		},
		{
			name:     "change detection",
			query:    "Check for new articles",
			wantKind: blackboard.TaskCheckForChanges,
		},
		{
			name:     "change detection alternate phrasing",
			query:    "Please detect changes in the source",
			wantKind: blackboard.TaskCheckForChanges,
		},
		{
			name:     "refresh",
			query:    "Refresh the data",
			wantKind: blackboard.TaskAcquire,
			wantURL:  testSourceURL,
		},
	}

	k := NewKeyword(testSourceURL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := k.Decompose(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, task.Kind)
			assert.Equal(t, tt.wantAuthor, task.Author)
			assert.Equal(t, tt.wantKeyword, task.Keyword)
			assert.Equal(t, tt.wantURL, task.SourceURL)
			assert.Equal(t, tt.query, task.OriginalQuery)
			assert.NoError(t, task.Validate())
		})
	}
}

func TestKeywordCountOutranksFilter(t *testing.T) {
	// "how many articles by X" contains the filter phrase "articles by X";
	// the counting rule must win.
	k := NewKeyword(testSourceURL)

	task, err := k.Decompose(context.Background(), "How many articles by Marco Perini?")
	require.NoError(t, err)
	assert.Equal(t, blackboard.TaskCountByAuthor, task.Kind)
	assert.Equal(t, "Marco Perini", task.Author)
}

func TestKeywordUnsupported(t *testing.T) {
	k := NewKeyword(testSourceURL)

	for _, query := range []string{
		"What's the weather like today?",
		"",
		"Delete everything",
	} {
		_, err := k.Decompose(context.Background(), query)
		assert.ErrorIs(t, err, ErrUnsupported, "query %q", query)
	}
}

func TestCleanParam(t *testing.T) {
	assert.Equal(t, "Marco Perini", cleanParam("  Marco Perini?  "))
	assert.Equal(t, "DQN", cleanParam(`"DQN"`))
	assert.Equal(t, "Jane Doe", cleanParam("Jane Doe."))
}
