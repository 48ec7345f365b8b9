// Package workflow wires the blackboard, the workers, and the transition
// rules into a runnable research pipeline.
package workflow

import (
	"mara/pkg/blackboard"
)

// Actor names used by the transition table. Each non-terminal status has
// exactly one actor authorized to move the workflow out of it. The staleness
// monitor is the one sanctioned exception: it may preempt the feedback step
// on a stale "complete" by writing "refresh_requested".
const (
	ActorDecomposition   = "decomposition"
	ActorAcquisition     = "acquisition"
	ActorSynthesis       = "synthesis"
	ActorValidation      = "validation"
	ActorReporting       = "reporting"
	ActorQuery           = "query"
	ActorChangeDetection = "change-detection"
	ActorFeedback        = "feedback"
)

// Rule names the worker authorized to act on a status and the statuses it
// may move the workflow to.
type Rule struct {
	Actor string
	Next  []blackboard.Status
}

// decompositionTargets are the statuses the decomposition step may produce
// from a fresh query or from human feedback.
var decompositionTargets = []blackboard.Status{
	blackboard.StatusTaskDelegated,
	blackboard.StatusSummarizeRequested,
	blackboard.StatusFilterRequested,
	blackboard.StatusVisualizeRequested,
	blackboard.StatusQueryRequested,
	blackboard.StatusProlificAuthorRequested,
	blackboard.StatusCheckForChangesRequested,
	blackboard.StatusUnsupportedQuery,
	blackboard.StatusFailed,
}

var rules = map[blackboard.Status]Rule{
	blackboard.StatusIdle: {
		Actor: ActorDecomposition,
		Next:  decompositionTargets,
	},
	blackboard.StatusTaskDelegated: {
		Actor: ActorAcquisition,
		Next: []blackboard.Status{
			blackboard.StatusRawDataAcquired,
			blackboard.StatusAcquisitionFailed,
			blackboard.StatusFailed, // malformed task, not retried
		},
	},
	blackboard.StatusRawDataAcquired: {
		Actor: ActorSynthesis,
		Next: []blackboard.Status{
			blackboard.StatusKnowledgeSynthesized,
			blackboard.StatusSynthesisFailed,
		},
	},
	blackboard.StatusKnowledgeSynthesized: {
		Actor: ActorValidation,
		Next: []blackboard.Status{
			blackboard.StatusDataValidated,
			blackboard.StatusValidationFailed,
		},
	},
	blackboard.StatusDataValidated: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusComplete},
	},
	blackboard.StatusSummarizeRequested: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusComplete, blackboard.StatusFailed},
	},
	blackboard.StatusFilterRequested: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusComplete, blackboard.StatusFailed},
	},
	blackboard.StatusVisualizeRequested: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusComplete, blackboard.StatusFailed},
	},
	blackboard.StatusProlificAuthorRequested: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusComplete, blackboard.StatusFailed},
	},
	blackboard.StatusQueryRequested: {
		Actor: ActorQuery,
		Next:  []blackboard.Status{blackboard.StatusComplete, blackboard.StatusFailed},
	},
	blackboard.StatusAcquisitionFailed: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusFailed},
	},
	blackboard.StatusSynthesisFailed: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusFailed},
	},
	blackboard.StatusValidationFailed: {
		Actor: ActorReporting,
		Next:  []blackboard.Status{blackboard.StatusFailed},
	},
	blackboard.StatusCheckForChangesRequested: {
		Actor: ActorChangeDetection,
		Next: []blackboard.Status{
			blackboard.StatusChangesDetected,
			blackboard.StatusNoChangesDetected,
			blackboard.StatusFailed,
		},
	},
	blackboard.StatusComplete: {
		Actor: ActorFeedback,
		Next: []blackboard.Status{
			blackboard.StatusAwaitingRedecomposition,
			blackboard.StatusRefreshRequested, // staleness monitor preemption
		},
	},
	blackboard.StatusFailed: {
		Actor: ActorFeedback,
		Next:  []blackboard.Status{blackboard.StatusAwaitingRedecomposition},
	},
	blackboard.StatusUnsupportedQuery: {
		Actor: ActorFeedback,
		Next:  []blackboard.Status{blackboard.StatusAwaitingRedecomposition},
	},
	blackboard.StatusChangesDetected: {
		Actor: ActorFeedback,
		Next:  []blackboard.Status{blackboard.StatusAwaitingRedecomposition},
	},
	blackboard.StatusNoChangesDetected: {
		Actor: ActorFeedback,
		Next:  []blackboard.Status{blackboard.StatusAwaitingRedecomposition},
	},
	blackboard.StatusRefreshRequested: {
		Actor: ActorDecomposition,
		Next:  []blackboard.Status{blackboard.StatusTaskDelegated},
	},
	blackboard.StatusAwaitingRedecomposition: {
		Actor: ActorDecomposition,
		Next:  append(decompositionTargets, blackboard.StatusCompleteWithFeedback),
	},

	// StatusCompleteWithFeedback is terminal and has no rule.
}

// ActorFor returns the worker authorized to act on the given status. The
// second return is false for terminal or unknown statuses.
func ActorFor(s blackboard.Status) (string, bool) {
	rule, ok := rules[s]
	return rule.Actor, ok
}

// Allowed reports whether the transition from one status to another is in
// the table.
func Allowed(from, to blackboard.Status) bool {
	rule, ok := rules[from]
	if !ok {
		return false
	}
	for _, next := range rule.Next {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the session.
func Terminal(s blackboard.Status) bool {
	return s == blackboard.StatusCompleteWithFeedback
}
