package models

import "time"

// TriggerKind is the closed set of business events a workflow can react to.
type TriggerKind string

const (
	TriggerLeadCreated   TriggerKind = "lead_created"
	TriggerDealWon       TriggerKind = "deal_won"
	TriggerDealLost      TriggerKind = "deal_lost"
	TriggerTicketCreated TriggerKind = "ticket_created"
	TriggerChurnRisk     TriggerKind = "churn_risk_detected"
)

// KnownTriggers lists every trigger kind the engine accepts.
func KnownTriggers() []TriggerKind {
	return []TriggerKind{
		TriggerLeadCreated,
		TriggerDealWon,
		TriggerDealLost,
		TriggerTicketCreated,
		TriggerChurnRisk,
	}
}

// Known reports whether t is a member of the closed trigger set.
func (t TriggerKind) Known() bool {
	switch t {
	case TriggerLeadCreated, TriggerDealWon, TriggerDealLost,
		TriggerTicketCreated, TriggerChurnRisk:
		return true
	}
	return false
}

// ActionKind is the closed set of effect types a workflow step can perform.
type ActionKind string

const (
	ActionCreateTask    ActionKind = "create_task"
	ActionSendEmail     ActionKind = "send_email"
	ActionNotifyChannel ActionKind = "notify_channel"
	ActionUpdateField   ActionKind = "update_field"
)

// WorkflowAction is one step of a workflow's pipeline. Config values may
// contain {field} placeholders which are resolved against the event payload
// before the action is dispatched.
type WorkflowAction struct {
	ID       string            `json:"id" db:"id"`
	Kind     ActionKind        `json:"kind" db:"kind"`
	Position int               `json:"position" db:"position"`
	Config   map[string]string `json:"config"`
}

// Workflow is a named automation rule: when an event of Trigger kind occurs
// for the owning tenant, the actions run in order.
type Workflow struct {
	ID        int64            `json:"id" db:"id"`
	TenantID  string           `json:"tenant_id" db:"tenant_id"`
	Name      string           `json:"name" db:"name"`
	Trigger   TriggerKind      `json:"trigger" db:"trigger_kind"`
	Active    bool             `json:"active" db:"active"`
	RunCount  int64            `json:"run_count" db:"run_count"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
	Actions   []WorkflowAction `json:"actions,omitempty"`
}
