package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mara/pkg/blackboard"
)

func TestAllowed(t *testing.T) {
	allowed := [][2]blackboard.Status{
		{blackboard.StatusIdle, blackboard.StatusTaskDelegated},
		{blackboard.StatusIdle, blackboard.StatusUnsupportedQuery},
		{blackboard.StatusTaskDelegated, blackboard.StatusRawDataAcquired},
		{blackboard.StatusTaskDelegated, blackboard.StatusAcquisitionFailed},
		{blackboard.StatusRawDataAcquired, blackboard.StatusKnowledgeSynthesized},
		{blackboard.StatusKnowledgeSynthesized, blackboard.StatusDataValidated},
		{blackboard.StatusDataValidated, blackboard.StatusComplete},
		{blackboard.StatusAcquisitionFailed, blackboard.StatusFailed},
		{blackboard.StatusComplete, blackboard.StatusAwaitingRedecomposition},
		{blackboard.StatusComplete, blackboard.StatusRefreshRequested},
		{blackboard.StatusRefreshRequested, blackboard.StatusTaskDelegated},
		{blackboard.StatusAwaitingRedecomposition, blackboard.StatusSummarizeRequested},
		{blackboard.StatusAwaitingRedecomposition, blackboard.StatusCompleteWithFeedback},
		{blackboard.StatusCheckForChangesRequested, blackboard.StatusNoChangesDetected},
		{blackboard.StatusChangesDetected, blackboard.StatusAwaitingRedecomposition},
	}
	for _, pair := range allowed {
		assert.True(t, Allowed(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]blackboard.Status{
		{blackboard.StatusIdle, blackboard.StatusComplete},
		{blackboard.StatusIdle, blackboard.StatusRawDataAcquired},
		{blackboard.StatusTaskDelegated, blackboard.StatusComplete},
		{blackboard.StatusComplete, blackboard.StatusTaskDelegated},
		{blackboard.StatusFailed, blackboard.StatusRefreshRequested},
		{blackboard.StatusCompleteWithFeedback, blackboard.StatusIdle},
	}
	for _, pair := range denied {
		assert.False(t, Allowed(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestActorFor(t *testing.T) {
	actor, ok := ActorFor(blackboard.StatusTaskDelegated)
	require.True(t, ok)
	assert.Equal(t, ActorAcquisition, actor)

	actor, ok = ActorFor(blackboard.StatusComplete)
	require.True(t, ok)
	assert.Equal(t, ActorFeedback, actor)

	_, ok = ActorFor(blackboard.StatusCompleteWithFeedback)
	assert.False(t, ok, "terminal status has no actor")
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(blackboard.StatusCompleteWithFeedback))
	assert.False(t, Terminal(blackboard.StatusComplete))
	assert.False(t, Terminal(blackboard.StatusFailed))
}

// Every status in the vocabulary is either terminal or has exactly one
// authorized actor, and every transition target is itself a known status.
func TestTableIsClosed(t *testing.T) {
	for from, rule := range rules {
		assert.NoError(t, from.Validate(), "rule key %q", from)
		assert.NotEmpty(t, rule.Actor, "rule for %q has no actor", from)
		assert.NotEmpty(t, rule.Next, "rule for %q has no targets", from)

		for _, to := range rule.Next {
			require.NoError(t, to.Validate(), "target %q of %q", to, from)
			if !Terminal(to) {
				_, ok := rules[to]
				assert.True(t, ok, "target %q of %q is neither terminal nor ruled", to, from)
			}
		}
	}

	_, hasRule := rules[blackboard.StatusCompleteWithFeedback]
	assert.False(t, hasRule, "terminal status must not have a rule")
}
