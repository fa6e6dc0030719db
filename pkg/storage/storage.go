package storage

import (
	"github.com/pkg/errors"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the storage operations for the automation engine. The
// execution path only reads workflows and increments run counters; the
// remaining workflow operations serve the authoring boundary.
type Store interface {
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Workflow operations
	SaveWorkflow(w models.Workflow) (int64, error)
	GetWorkflow(id int64) (models.Workflow, error)
	ListWorkflows(tenantID string) ([]models.Workflow, error)
	SetWorkflowActive(id int64, active bool) error
	DeleteWorkflow(id int64) error
	// IncrementRunCount bumps the workflow's run counter by exactly one.
	// The increment must be atomic: concurrent events matching the same
	// workflow must not lose updates.
	IncrementRunCount(id int64) error

	// Execution records (observability)
	SaveExecution(rec models.ExecutionRecord) error
	ListExecutions(workflowID int64) ([]models.ExecutionRecord, error)

	// Collaborator sinks
	SaveTask(t models.Task) error
	ListTasks(tenantID string) ([]models.Task, error)
	SaveRecord(r models.Record) error
	GetRecord(tenantID, recordID string) (models.Record, error)
	UpdateRecordField(tenantID, recordID, field, value string) error
}
