// Package agent holds the workers of the research pipeline. Each worker is
// constructed with the board and its collaborators, subscribes to exactly
// the statuses it is authorized for, and converts every collaborator error
// into a failure status plus an explanatory slot write. Errors never escape
// a callback.
package agent

import (
	"go.uber.org/zap"

	"mara/pkg/blackboard"
)

// onStatus subscribes fn to status changes, filtered to the given statuses.
// Delivery is synchronous and cascading, so by the time a callback runs an
// earlier subscriber may already have moved the workflow on; such superseded
// notifications are dropped, as is everything after the user ended the
// session.
func onStatus(board *blackboard.Board, logger *zap.Logger, fn func(blackboard.Status), statuses ...blackboard.Status) {
	authorized := make(map[blackboard.Status]bool, len(statuses))
	for _, s := range statuses {
		authorized[s] = true
	}

	board.Subscribe(blackboard.KeyStatus, func(_ string, value any) {
		s, ok := value.(blackboard.Status)
		if !ok || !authorized[s] {
			return
		}
		if current := board.Status(); current != s {
			logger.Debug("dropping superseded status notification",
				zap.String("notified", string(s)),
				zap.String("current", string(current)))
			return
		}
		if sessionEnded(board) {
			return
		}
		fn(s)
	})
}

// sessionEnded reports whether the user has declined further interaction.
func sessionEnded(board *blackboard.Board) bool {
	v, ok := board.Get(blackboard.KeyUserExit)
	if !ok {
		return false
	}
	exited, _ := v.(bool)
	return exited
}

func currentTask(board *blackboard.Board) (*blackboard.Task, bool) {
	v, ok := board.Get(blackboard.KeyCurrentTask)
	if !ok {
		return nil, false
	}
	task, ok := v.(*blackboard.Task)
	return task, ok && task != nil
}

func currentGraph(board *blackboard.Board) (*blackboard.KnowledgeGraph, bool) {
	v, ok := board.Get(blackboard.KeySynthesizedKnowledge)
	if !ok {
		return nil, false
	}
	graph, ok := v.(*blackboard.KnowledgeGraph)
	return graph, ok && graph != nil
}

func userQuery(board *blackboard.Board) string {
	v, ok := board.Get(blackboard.KeyUserQuery)
	if !ok {
		return ""
	}
	q, _ := v.(string)
	return q
}

func errorMessage(board *blackboard.Board) string {
	v, ok := board.Get(blackboard.KeyErrorMessage)
	if !ok {
		return ""
	}
	msg, _ := v.(string)
	return msg
}
