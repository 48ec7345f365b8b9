package blackboard

import (
	"fmt"

	"github.com/google/uuid"
)

// Status is the distinguished blackboard value that drives workflow
// sequencing. Exactly one status is active at a time; each worker acts only
// on the statuses it is authorized for and ignores everything else.
type Status string

const (
	// StatusIdle is the initial state before any query has been delegated.
	StatusIdle Status = "idle"

	// StatusTaskDelegated indicates the decomposition step has posted an
	// acquire task for the acquisition worker.
	StatusTaskDelegated Status = "task_delegated"

	// StatusRawDataAcquired indicates extraction succeeded and raw data is
	// on the blackboard.
	StatusRawDataAcquired Status = "raw_data_acquired"

	// StatusKnowledgeSynthesized indicates the knowledge graph has been
	// built from the raw data.
	StatusKnowledgeSynthesized Status = "knowledge_synthesized"

	// StatusDataValidated indicates the graph passed structural validation.
	StatusDataValidated Status = "data_validated"

	// StatusComplete indicates a report has been produced for the current
	// request. Not terminal: the feedback worker may continue the session.
	StatusComplete Status = "complete"

	// Failure statuses for the individual pipeline stages. Each is consumed
	// by the reporting worker's failure path, which produces StatusFailed.
	StatusAcquisitionFailed Status = "acquisition_failed"
	StatusSynthesisFailed   Status = "synthesis_failed"
	StatusValidationFailed  Status = "validation_failed"

	// StatusFailed is the generic failure state, reached after a failure
	// report has been generated.
	StatusFailed Status = "failed"

	// StatusUnsupportedQuery indicates decomposition could not map the
	// query onto any supported task kind.
	StatusUnsupportedQuery Status = "unsupported_query"

	// Follow-up request statuses, produced by the decomposition step when
	// it recognizes a feedback action.
	StatusSummarizeRequested       Status = "summarize_requested"
	StatusFilterRequested          Status = "filter_requested"
	StatusVisualizeRequested       Status = "visualize_requested"
	StatusQueryRequested           Status = "query_requested"
	StatusProlificAuthorRequested  Status = "prolific_author_requested"
	StatusCheckForChangesRequested Status = "check_for_changes_requested"

	// Change detection outcomes.
	StatusChangesDetected   Status = "changes_detected"
	StatusNoChangesDetected Status = "no_changes_detected"

	// StatusRefreshRequested is the staleness monitor's standing signal that
	// the knowledge graph has aged past the configured threshold.
	StatusRefreshRequested Status = "refresh_requested"

	// StatusAwaitingRedecomposition indicates human feedback is on the
	// blackboard waiting for the decomposition step to turn it into a task.
	StatusAwaitingRedecomposition Status = "awaiting_re_decomposition"

	// StatusCompleteWithFeedback is terminal: feedback was received but no
	// follow-up action could be identified for it.
	StatusCompleteWithFeedback Status = "complete_with_feedback"
)

// Validate checks that the status belongs to the known vocabulary.
func (s Status) Validate() error {
	switch s {
	case StatusIdle, StatusTaskDelegated, StatusRawDataAcquired,
		StatusKnowledgeSynthesized, StatusDataValidated, StatusComplete,
		StatusAcquisitionFailed, StatusSynthesisFailed, StatusValidationFailed,
		StatusFailed, StatusUnsupportedQuery,
		StatusSummarizeRequested, StatusFilterRequested, StatusVisualizeRequested,
		StatusQueryRequested, StatusProlificAuthorRequested,
		StatusCheckForChangesRequested, StatusChangesDetected,
		StatusNoChangesDetected, StatusRefreshRequested,
		StatusAwaitingRedecomposition, StatusCompleteWithFeedback:
		return nil
	default:
		return fmt.Errorf("unknown status: %q", s)
	}
}

// TaskKind discriminates the unit of work a Task describes.
type TaskKind string

const (
	// TaskAcquire requests a full data acquisition from a source URL.
	TaskAcquire TaskKind = "acquire"

	// TaskSummarize requests a key-findings summary of the current graph.
	TaskSummarize TaskKind = "summarize"

	// TaskFilterByAuthor requests the articles authored by Task.Author.
	TaskFilterByAuthor TaskKind = "filter-by-author"

	// TaskVisualize requests the author-distribution bar chart.
	TaskVisualize TaskKind = "visualize"

	// TaskCountByAuthor requests the number of articles by Task.Author.
	TaskCountByAuthor TaskKind = "count-articles-by-author"

	// TaskFindByKeyword requests the articles mentioning Task.Keyword.
	TaskFindByKeyword TaskKind = "find-articles-by-keyword"

	// TaskProlificAuthor requests identification of the most prolific author.
	TaskProlificAuthor TaskKind = "prolific-author"

	// TaskCheckForChanges requests a comparison of the source against the
	// current knowledge graph.
	TaskCheckForChanges TaskKind = "check-for-changes"
)

// Validate checks that the kind is a known enum value.
func (k TaskKind) Validate() error {
	switch k {
	case TaskAcquire, TaskSummarize, TaskFilterByAuthor, TaskVisualize,
		TaskCountByAuthor, TaskFindByKeyword, TaskProlificAuthor,
		TaskCheckForChanges:
		return nil
	default:
		return fmt.Errorf("unknown task kind: %q", k)
	}
}

// Task describes the unit of work currently requested. Exactly one task is
// current at a time; it is produced by the decomposition step and consumed
// by exactly one worker.
type Task struct {
	ID            string   `json:"id"`             // UUID
	Kind          TaskKind `json:"kind"`           // Discriminator
	SourceURL     string   `json:"source_url"`     // For acquire / check-for-changes
	Author        string   `json:"author"`         // For filter-by-author / count-articles-by-author
	Keyword       string   `json:"keyword"`        // For find-articles-by-keyword
	OriginalQuery string   `json:"original_query"` // The user text this task was decomposed from
}

// NewTask creates a task of the given kind with a fresh ID.
func NewTask(kind TaskKind, originalQuery string) *Task {
	return &Task{
		ID:            uuid.New().String(),
		Kind:          kind,
		OriginalQuery: originalQuery,
	}
}

// Validate checks the task's field values, including the kind-specific
// required parameters.
func (t *Task) Validate() error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("invalid task ID: not a valid UUID")
	}

	if err := t.Kind.Validate(); err != nil {
		return err
	}

	switch t.Kind {
	case TaskAcquire:
		if t.SourceURL == "" {
			return fmt.Errorf("acquire task requires a source URL")
		}
	case TaskFilterByAuthor, TaskCountByAuthor:
		if t.Author == "" {
			return fmt.Errorf("%s task requires an author name", t.Kind)
		}
	case TaskFindByKeyword:
		if t.Keyword == "" {
			return fmt.Errorf("%s task requires a keyword", t.Kind)
		}
	}

	return nil
}

// ValidationResult records the outcome of the validation worker's structural
// checks over the knowledge graph.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Notes string `json:"notes"`
}
