package models

import "time"

// Event is a single occurrence of a business trigger, consumed exactly once
// by the engine. Payload is a flat field bag (string or numeric values).
// Synthetic marks events produced by the test-run harness; it is carried
// for observability only and must not change matching or execution.
type Event struct {
	ID         string                 `json:"id"`
	TenantID   string                 `json:"tenant_id"`
	Kind       TriggerKind            `json:"kind"`
	Payload    map[string]interface{} `json:"payload"`
	Synthetic  bool                   `json:"synthetic"`
	OccurredAt time.Time              `json:"occurred_at"`
}
