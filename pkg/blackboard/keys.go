package blackboard

// Slot names used by the pipeline. Slots are created on first write and are
// never deleted during a run; each write fully replaces the previous value.
const (
	// KeyStatus is the reserved slot backing SetStatus/Status. Subscribing
	// to it is how workers learn about workflow transitions.
	KeyStatus = "status"

	// KeyUserQuery holds the original free-text user query.
	KeyUserQuery = "user_query"

	// KeyCurrentTask holds the *Task the decomposition step most recently
	// delegated. Exactly one task is current at a time.
	KeyCurrentTask = "current_task"

	// KeyRawData holds the *RawData posted by the acquisition worker.
	KeyRawData = "raw_data"

	// KeySynthesizedKnowledge holds the *KnowledgeGraph. The staleness
	// monitor watches this slot for age changes.
	KeySynthesizedKnowledge = "synthesized_knowledge"

	// KeyValidationResult holds the *ValidationResult from the validation
	// worker.
	KeyValidationResult = "validation_result"

	// KeyFinalReport holds the human-readable report accompanying every
	// terminal or quiescent state.
	KeyFinalReport = "final_report"

	// KeyErrorMessage holds the explanatory message a worker writes when it
	// converts a collaborator failure into a failure status.
	KeyErrorMessage = "error_message"

	// KeyChangeReport holds the change detection worker's comparison report.
	KeyChangeReport = "change_report"

	// KeyHumanFeedback holds the raw follow-up text captured by the
	// feedback worker, waiting for re-decomposition.
	KeyHumanFeedback = "human_feedback"

	// KeyRefreshRequested is the staleness monitor's standing signal slot
	// (bool). The decomposition step clears it when acting on the refresh.
	KeyRefreshRequested = "refresh_requested"

	// KeyUserExit is set (bool) when the user declines further feedback,
	// ending the session.
	KeyUserExit = "user_exit"
)
