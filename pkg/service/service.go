package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/storage"
)

// InvalidWorkflowError is a definition error: the workflow was rejected at
// the authoring boundary and never became matchable.
type InvalidWorkflowError struct {
	Reason string
}

func (e *InvalidWorkflowError) Error() string {
	return "invalid workflow: " + e.Reason
}

func invalidWorkflow(reason string) error {
	return &InvalidWorkflowError{Reason: reason}
}

// AutomationService is the entry point for both sides of the engine: the
// authoring boundary (create, list, activate, delete) and the event
// boundary (Submit, TestRun).
type AutomationService struct {
	store  storage.Store
	engine *Engine
	logger Logger
}

func NewAutomationService(store storage.Store, collabs Collaborators, logger Logger) *AutomationService {
	return &AutomationService{
		store:  store,
		engine: NewEngine(store, collabs, logger),
		logger: logger,
	}
}

// ValidateWorkflow enforces the definition contract before a workflow
// becomes matchable. Rejection has no side effects.
func ValidateWorkflow(wf models.Workflow) error {
	if wf.Name == "" {
		return invalidWorkflow("name required")
	}
	if len(wf.Actions) == 0 {
		return invalidWorkflow("at least one action required")
	}
	if !wf.Trigger.Known() {
		return invalidWorkflow("unknown trigger")
	}
	for _, action := range wf.Actions {
		if !KnownActionKind(action.Kind) {
			return invalidWorkflow("unknown action kind")
		}
	}
	return nil
}

// CreateWorkflow validates and persists a workflow definition. Action IDs
// and positions are assigned here; callers provide kind and config.
func (s *AutomationService) CreateWorkflow(wf models.Workflow) (id int64, err error) {
	if err := ValidateWorkflow(wf); err != nil {
		return 0, err
	}
	for i := range wf.Actions {
		if wf.Actions[i].ID == "" {
			wf.Actions[i].ID = uuid.NewString()
		}
		wf.Actions[i].Position = i
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	id, err = txStore.SaveWorkflow(wf)
	if err != nil {
		return 0, err
	}
	s.logger.Infof("Created workflow '%s' with ID %d for tenant %s", wf.Name, id, wf.TenantID)
	return id, nil
}

// Submit handles one live business event: match against the tenant's
// workflows, run every matched pipeline, return the execution records.
// An unknown event kind simply matches nothing. Downstream action failures
// never turn into a Submit error; only infrastructure problems (the store
// being unreachable) do.
func (s *AutomationService) Submit(ctx context.Context, event models.Event) ([]models.ExecutionRecord, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	workflows, err := s.store.ListWorkflows(event.TenantID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load workflows for tenant %s", event.TenantID)
	}
	matched := Match(event, workflows)
	if len(matched) == 0 {
		return []models.ExecutionRecord{}, nil
	}
	return s.engine.Execute(ctx, event, matched), nil
}

// TestRun synthesizes an event for the workflow's own trigger with the
// given sample fields and feeds it through the same matcher and engine
// used for live events. Side effects are real: this is a live trigger
// with test data, there is no sandbox.
func (s *AutomationService) TestRun(ctx context.Context, workflowID int64, sampleFields map[string]interface{}) ([]models.ExecutionRecord, error) {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return nil, errors.Wrapf(err, "workflow %d not found", workflowID)
	}
	event := models.Event{
		ID:         uuid.NewString(),
		TenantID:   wf.TenantID,
		Kind:       wf.Trigger,
		Payload:    sampleFields,
		Synthetic:  true,
		OccurredAt: time.Now(),
	}
	matched := Match(event, []models.Workflow{wf})
	if len(matched) == 0 {
		// The same filter live events go through: an inactive workflow
		// does not run, in test mode either.
		return []models.ExecutionRecord{}, nil
	}
	return s.engine.Execute(ctx, event, matched), nil
}

// GetWorkflow fetches a workflow with its actions.
func (s *AutomationService) GetWorkflow(workflowID int64) (models.Workflow, error) {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return models.Workflow{}, fmt.Errorf("failed to get workflow %d: %v", workflowID, err)
	}
	return wf, nil
}

// ListWorkflows returns the tenant's workflows in creation order.
func (s *AutomationService) ListWorkflows(tenantID string) ([]models.Workflow, error) {
	return s.store.ListWorkflows(tenantID)
}

// SetWorkflowActive flips the active flag; inactive workflows stay stored
// but are never matched against live events.
func (s *AutomationService) SetWorkflowActive(workflowID int64, active bool) error {
	if err := s.store.SetWorkflowActive(workflowID, active); err != nil {
		return errors.Wrapf(err, "failed to update workflow %d", workflowID)
	}
	s.logger.Infof("Set workflow %d active=%t", workflowID, active)
	return nil
}

// DeleteWorkflow removes a workflow definition.
func (s *AutomationService) DeleteWorkflow(workflowID int64) error {
	if err := s.store.DeleteWorkflow(workflowID); err != nil {
		return errors.Wrapf(err, "failed to delete workflow %d", workflowID)
	}
	s.logger.Infof("Deleted workflow %d", workflowID)
	return nil
}

// ListExecutions exposes the persisted execution records of a workflow.
func (s *AutomationService) ListExecutions(workflowID int64) ([]models.ExecutionRecord, error) {
	return s.store.ListExecutions(workflowID)
}

// WorkflowStats aggregates the persisted records into the "N executions,
// M successes, K failures" view backing the run-count display.
func (s *AutomationService) WorkflowStats(workflowID int64) (models.ExecutionStats, error) {
	recs, err := s.store.ListExecutions(workflowID)
	if err != nil {
		return models.ExecutionStats{}, err
	}
	stats := models.ExecutionStats{WorkflowID: workflowID, Executions: len(recs)}
	for _, rec := range recs {
		if rec.Succeeded() {
			stats.Successes++
		} else {
			stats.Failures++
		}
	}
	return stats, nil
}
