package models

import "time"

// Task is a follow-up activity produced by the create-task action.
type Task struct {
	ID         string    `json:"id" db:"id"`
	TenantID   string    `json:"tenant_id" db:"tenant_id"`
	Title      string    `json:"title" db:"title"`
	WorkflowID int64     `json:"workflow_id" db:"workflow_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Record is a tenant-scoped business record (lead, client, deal) whose
// fields the update-field action can mutate.
type Record struct {
	ID       string                 `json:"id" db:"id"`
	TenantID string                 `json:"tenant_id" db:"tenant_id"`
	Fields   map[string]interface{} `json:"fields"`
}
