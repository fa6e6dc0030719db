package models

import "time"

// FailureType distinguishes why an action failed: a required config key
// that was empty after resolution, versus a downstream collaborator
// rejecting or being unreachable.
type FailureType string

const (
	FailureConfig   FailureType = "config"
	FailureDelivery FailureType = "delivery"
)

// ActionOutcome records the result of one pipeline step.
type ActionOutcome struct {
	ActionID    string      `json:"action_id" db:"action_id"`
	Kind        ActionKind  `json:"kind" db:"kind"`
	Position    int         `json:"position" db:"position"`
	OK          bool        `json:"ok" db:"ok"`
	FailureType FailureType `json:"failure_type,omitempty" db:"failure_type"`
	Reason      string      `json:"reason,omitempty" db:"reason"`
}

// ExecutionRecord is the per-match log of one workflow run: which event
// triggered it, what each action did, and whether the whole pipeline was
// attempted to the end. Completed is true once every action has been
// attempted, regardless of individual outcomes.
type ExecutionRecord struct {
	ID         string          `json:"id" db:"id"`
	WorkflowID int64           `json:"workflow_id" db:"workflow_id"`
	TenantID   string          `json:"tenant_id" db:"tenant_id"`
	EventKind  TriggerKind     `json:"event_kind" db:"event_kind"`
	Synthetic  bool            `json:"synthetic" db:"synthetic"`
	StartedAt  time.Time       `json:"started_at" db:"started_at"`
	Completed  bool            `json:"completed" db:"completed"`
	Actions    []ActionOutcome `json:"actions"`
}

// Failures counts the actions that did not succeed.
func (r ExecutionRecord) Failures() int {
	n := 0
	for _, a := range r.Actions {
		if !a.OK {
			n++
		}
	}
	return n
}

// Succeeded reports whether every attempted action succeeded.
func (r ExecutionRecord) Succeeded() bool {
	return r.Completed && r.Failures() == 0
}

// ExecutionStats is the per-workflow aggregate exposed for observability.
type ExecutionStats struct {
	WorkflowID int64 `json:"workflow_id"`
	Executions int   `json:"executions"`
	Successes  int   `json:"successes"`
	Failures   int   `json:"failures"`
}
