package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	internal_storage "github.com/EdSoftcase/edson-sub001/internal/storage"
	"github.com/EdSoftcase/edson-sub001/internal/testutil"
	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/storage"
)

func TestPostgresStore(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	defer testDB.Teardown(t)

	// Helper to create a transactional store; rollback keeps tests isolated
	newTxStore := func(t *testing.T) *internal_storage.PostgresStore {
		store, err := internal_storage.NewPostgresStore(testDB.ConnStr)
		assert.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		txStore, err := store.Begin()
		assert.NoError(t, err)
		t.Cleanup(func() { txStore.Rollback() })
		return txStore.(*internal_storage.PostgresStore)
	}

	sampleWorkflow := func() models.Workflow {
		return models.Workflow{
			TenantID: "t1",
			Name:     "lead follow-up",
			Trigger:  models.TriggerLeadCreated,
			Active:   true,
			Actions: []models.WorkflowAction{
				{ID: "a1", Kind: models.ActionCreateTask, Position: 0,
					Config: map[string]string{"template": "Follow up with {name}"}},
				{ID: "a2", Kind: models.ActionNotifyChannel, Position: 1,
					Config: map[string]string{"target": "#sales"}},
			},
		}
	}

	t.Run("SaveAndGetWorkflow", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(sampleWorkflow())
		assert.NoError(t, err)
		assert.Greater(t, wfID, int64(0))

		saved, err := store.GetWorkflow(wfID)
		assert.NoError(t, err)
		assert.Equal(t, "lead follow-up", saved.Name)
		assert.Equal(t, models.TriggerLeadCreated, saved.Trigger)
		assert.True(t, saved.Active)
		assert.Equal(t, int64(0), saved.RunCount)
		assert.Len(t, saved.Actions, 2)
		assert.Equal(t, "a1", saved.Actions[0].ID)
		assert.Equal(t, "Follow up with {name}", saved.Actions[0].Config["template"])
		assert.Equal(t, "a2", saved.Actions[1].ID)
	})

	t.Run("GetNonExistingWorkflow", func(t *testing.T) {
		store := newTxStore(t)
		_, err := store.GetWorkflow(12345)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListWorkflowsScopedAndOrdered", func(t *testing.T) {
		store := newTxStore(t)
		// action IDs are globally unique, so each fixture gets its own
		first := sampleWorkflow()
		first.Name = "first"
		second := sampleWorkflow()
		second.Name = "second"
		second.Actions = second.Actions[:1]
		second.Actions[0].ID = "s1"
		other := sampleWorkflow()
		other.TenantID = "t2"
		other.Actions[0].ID = "b1"
		other.Actions[1].ID = "b2"

		_, err := store.SaveWorkflow(first)
		assert.NoError(t, err)
		_, err = store.SaveWorkflow(second)
		assert.NoError(t, err)
		_, err = store.SaveWorkflow(other)
		assert.NoError(t, err)

		workflows, err := store.ListWorkflows("t1")
		assert.NoError(t, err)
		assert.Len(t, workflows, 2)
		assert.Equal(t, "first", workflows[0].Name)
		assert.Equal(t, "second", workflows[1].Name)
		assert.Len(t, workflows[0].Actions, 2)
		assert.Len(t, workflows[1].Actions, 1)
	})

	t.Run("SetWorkflowActive", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(sampleWorkflow())
		assert.NoError(t, err)

		assert.NoError(t, store.SetWorkflowActive(wfID, false))
		wf, err := store.GetWorkflow(wfID)
		assert.NoError(t, err)
		assert.False(t, wf.Active)

		assert.ErrorIs(t, store.SetWorkflowActive(99999, true), storage.ErrNotFound)
	})

	t.Run("IncrementRunCount", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(sampleWorkflow())
		assert.NoError(t, err)

		assert.NoError(t, store.IncrementRunCount(wfID))
		assert.NoError(t, store.IncrementRunCount(wfID))
		wf, err := store.GetWorkflow(wfID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), wf.RunCount)

		assert.ErrorIs(t, store.IncrementRunCount(99999), storage.ErrNotFound)
	})

	t.Run("DeleteWorkflowCascades", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(sampleWorkflow())
		assert.NoError(t, err)

		assert.NoError(t, store.DeleteWorkflow(wfID))
		_, err = store.GetWorkflow(wfID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SaveAndListExecutions", func(t *testing.T) {
		store := newTxStore(t)
		wfID, err := store.SaveWorkflow(sampleWorkflow())
		assert.NoError(t, err)

		rec := models.ExecutionRecord{
			ID:         "exec-1",
			WorkflowID: wfID,
			TenantID:   "t1",
			EventKind:  models.TriggerLeadCreated,
			Synthetic:  true,
			StartedAt:  time.Now(),
			Completed:  true,
			Actions: []models.ActionOutcome{
				{ActionID: "a1", Kind: models.ActionCreateTask, Position: 0, OK: true},
				{ActionID: "a2", Kind: models.ActionNotifyChannel, Position: 1, OK: false,
					FailureType: models.FailureDelivery, Reason: "channel unreachable"},
			},
		}
		assert.NoError(t, store.SaveExecution(rec))

		recs, err := store.ListExecutions(wfID)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.True(t, recs[0].Synthetic)
		assert.True(t, recs[0].Completed)
		assert.Len(t, recs[0].Actions, 2)
		assert.True(t, recs[0].Actions[0].OK)
		assert.Equal(t, models.FailureDelivery, recs[0].Actions[1].FailureType)
		assert.Equal(t, "channel unreachable", recs[0].Actions[1].Reason)
	})

	t.Run("Tasks", func(t *testing.T) {
		store := newTxStore(t)
		task := models.Task{
			ID:         "task-1",
			TenantID:   "t1",
			Title:      "Follow up with Acme Corp",
			WorkflowID: 1,
			CreatedAt:  time.Now(),
		}
		assert.NoError(t, store.SaveTask(task))

		tasks, err := store.ListTasks("t1")
		assert.NoError(t, err)
		assert.Len(t, tasks, 1)
		assert.Equal(t, "Follow up with Acme Corp", tasks[0].Title)
	})

	t.Run("RecordFieldUpdate", func(t *testing.T) {
		store := newTxStore(t)
		assert.NoError(t, store.SaveRecord(models.Record{
			ID: "lead-1", TenantID: "t1",
			Fields: map[string]interface{}{"status": "new", "owner": "ana"},
		}))

		assert.NoError(t, store.UpdateRecordField("t1", "lead-1", "status", "contacted"))
		rec, err := store.GetRecord("t1", "lead-1")
		assert.NoError(t, err)
		assert.Equal(t, "contacted", rec.Fields["status"])
		assert.Equal(t, "ana", rec.Fields["owner"])

		assert.ErrorIs(t, store.UpdateRecordField("t1", "ghost", "status", "x"), storage.ErrNotFound)
		_, err = store.GetRecord("t1", "ghost")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
