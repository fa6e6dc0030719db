package storage

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
)

// mockStore implements Store with in-memory storage, for unit tests and
// embedded use. All mutations are guarded by a single mutex so the
// run-count increment is safe under concurrent events.
type mockStore struct {
	mu         sync.Mutex
	workflows  []models.Workflow
	executions []models.ExecutionRecord
	tasks      []models.Task
	records    map[string]models.Record // key: tenantID + "/" + recordID
	nextID     int64
}

// NewMockStore returns an empty in-memory store.
func NewMockStore() Store {
	return &mockStore{records: make(map[string]models.Record)}
}

// Begin returns the store itself: the in-memory store has no real
// transactions, Commit and Rollback are no-ops.
func (m *mockStore) Begin() (Store, error) { return m, nil }
func (m *mockStore) Commit() error         { return nil }
func (m *mockStore) Rollback() error       { return nil }
func (m *mockStore) Close() error          { return nil }

func (m *mockStore) SaveWorkflow(wf models.Workflow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	wf.ID = m.nextID
	now := time.Now()
	wf.CreatedAt = now
	wf.UpdatedAt = now
	m.workflows = append(m.workflows, wf)
	return wf.ID, nil
}

func (m *mockStore) GetWorkflow(id int64) (models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wf := range m.workflows {
		if wf.ID == id {
			return wf, nil
		}
	}
	return models.Workflow{}, ErrNotFound
}

// ListWorkflows returns the tenant's workflows in creation order.
func (m *mockStore) ListWorkflows(tenantID string) ([]models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Workflow{}
	for _, wf := range m.workflows {
		if wf.TenantID == tenantID {
			out = append(out, wf)
		}
	}
	return out, nil
}

func (m *mockStore) SetWorkflowActive(id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, wf := range m.workflows {
		if wf.ID == id {
			m.workflows[i].Active = active
			m.workflows[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) DeleteWorkflow(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, wf := range m.workflows {
		if wf.ID == id {
			m.workflows = append(m.workflows[:i], m.workflows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) IncrementRunCount(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, wf := range m.workflows {
		if wf.ID == id {
			m.workflows[i].RunCount++
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) SaveExecution(rec models.ExecutionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executions = append(m.executions, rec)
	return nil
}

func (m *mockStore) ListExecutions(workflowID int64) ([]models.ExecutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ExecutionRecord{}
	for _, rec := range m.executions {
		if rec.WorkflowID == workflowID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockStore) SaveTask(t models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tasks {
		if existing.ID == t.ID {
			return errors.New("task already exists")
		}
	}
	m.tasks = append(m.tasks, t)
	return nil
}

func (m *mockStore) ListTasks(tenantID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Task{}
	for _, t := range m.tasks {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) SaveRecord(r models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.TenantID+"/"+r.ID] = r
	return nil
}

func (m *mockStore) GetRecord(tenantID, recordID string) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[tenantID+"/"+recordID]
	if !ok {
		return models.Record{}, ErrNotFound
	}
	return r, nil
}

func (m *mockStore) UpdateRecordField(tenantID, recordID, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tenantID + "/" + recordID
	r, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	if r.Fields == nil {
		r.Fields = make(map[string]interface{})
	}
	r.Fields[field] = value
	m.records[key] = r
	return nil
}
