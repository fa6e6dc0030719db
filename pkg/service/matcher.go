package service

import (
	"github.com/EdSoftcase/edson-sub001/pkg/models"
)

// Match selects the workflows eligible for an event: active, same trigger
// kind as the event, in the order the store returned them (creation order).
// Match is a pure filter: no side effects, no run-count mutation, and a
// workflow stored redundantly is matched at most once. Zero matches is a
// normal outcome, not an error.
func Match(event models.Event, workflows []models.Workflow) []models.Workflow {
	matched := []models.Workflow{}
	seen := make(map[int64]struct{}, len(workflows))
	for _, wf := range workflows {
		if !wf.Active || wf.Trigger != event.Kind {
			continue
		}
		if _, dup := seen[wf.ID]; dup {
			continue
		}
		seen[wf.ID] = struct{}{}
		matched = append(matched, wf)
	}
	return matched
}
