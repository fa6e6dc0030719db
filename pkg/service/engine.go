package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/storage"
)

// Logger defines the logging interface for the engine and service.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Engine runs matched workflows against an event. Each matched workflow's
// pipeline runs in its own goroutine so one slow collaborator cannot stall
// unrelated pipelines; the returned records keep the matcher's order.
type Engine struct {
	store   storage.Store
	collabs Collaborators
	logger  Logger
}

func NewEngine(store storage.Store, collabs Collaborators, logger Logger) *Engine {
	return &Engine{store: store, collabs: collabs, logger: logger}
}

// Execute runs every matched workflow's pipeline for the event and returns
// one ExecutionRecord per workflow. Individual action failures never abort
// sibling actions or sibling workflows; Execute itself only observes the
// event, it never fails because a downstream action failed.
func (e *Engine) Execute(ctx context.Context, event models.Event, matched []models.Workflow) []models.ExecutionRecord {
	records := make([]models.ExecutionRecord, len(matched))
	var wg sync.WaitGroup
	for i, wf := range matched {
		wg.Add(1)
		go func(i int, wf models.Workflow) {
			defer wg.Done()
			records[i] = e.runPipeline(ctx, event, wf)
		}(i, wf)
	}
	wg.Wait()
	return records
}

// runPipeline attempts every action of one workflow in order, recording a
// per-action outcome. The run counter is incremented exactly once per
// matched workflow per event, never per action, and the record is persisted
// for observability.
func (e *Engine) runPipeline(ctx context.Context, event models.Event, wf models.Workflow) models.ExecutionRecord {
	rec := models.ExecutionRecord{
		ID:         uuid.NewString(),
		WorkflowID: wf.ID,
		TenantID:   wf.TenantID,
		EventKind:  event.Kind,
		Synthetic:  event.Synthetic,
		StartedAt:  time.Now(),
		Actions:    []models.ActionOutcome{},
	}
	tenant := TenantContext{TenantID: wf.TenantID, WorkflowID: wf.ID}

	if len(wf.Actions) == 0 {
		// A workflow with zero actions should have been rejected at
		// creation; reaching this point is a data-integrity signal for
		// the owning application. The match still ran, so the run
		// counter still increments.
		e.logger.Errorf("workflow %d has no actions; definition slipped past validation", wf.ID)
		e.finishPipeline(&rec)
		return rec
	}

	for _, action := range wf.Actions {
		resolved := ResolveConfig(action.Config, event.Payload)
		outcome := models.ActionOutcome{
			ActionID: action.ID,
			Kind:     action.Kind,
			Position: action.Position,
			OK:       true,
		}
		if actErr := dispatchAction(ctx, e.collabs, action, resolved, event, tenant); actErr != nil {
			// Failure isolation: record and continue, later steps may be
			// independent of this one.
			outcome.OK = false
			outcome.FailureType = actErr.Type
			outcome.Reason = actErr.Reason
			e.logger.Errorf("workflow %d action %s (%s) failed: %s", wf.ID, action.ID, action.Kind, actErr.Reason)
		}
		rec.Actions = append(rec.Actions, outcome)
	}
	rec.Completed = true
	e.finishPipeline(&rec)

	e.logger.Infof("executed workflow %d for %s event (%d actions, %d failed, synthetic=%t)",
		wf.ID, event.Kind, len(rec.Actions), rec.Failures(), event.Synthetic)
	return rec
}

// finishPipeline does the run bookkeeping. Persistence problems are logged
// and swallowed: they must never surface into the event producer's call
// path.
func (e *Engine) finishPipeline(rec *models.ExecutionRecord) {
	if err := e.store.IncrementRunCount(rec.WorkflowID); err != nil {
		e.logger.Errorf("failed to increment run count for workflow %d: %v", rec.WorkflowID, err)
	}
	if err := e.store.SaveExecution(*rec); err != nil {
		e.logger.Errorf("failed to persist execution record for workflow %d: %v", rec.WorkflowID, err)
	}
}
