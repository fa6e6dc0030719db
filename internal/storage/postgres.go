package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/storage"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// SaveWorkflow creates a workflow with its actions and returns its ID.
func (s *PostgresStore) SaveWorkflow(w models.Workflow) (int64, error) {
	var wfID int64
	err := s.db.QueryRowx(
		"INSERT INTO workflows (tenant_id, name, trigger_kind, active, run_count) VALUES ($1, $2, $3, $4, 0) RETURNING id",
		w.TenantID, w.Name, w.Trigger, w.Active).Scan(&wfID)
	if err != nil {
		return 0, fmt.Errorf("save workflow: %w", err)
	}
	for _, action := range w.Actions {
		cfg, err := json.Marshal(action.Config)
		if err != nil {
			return 0, fmt.Errorf("marshal action config: %w", err)
		}
		_, err = s.db.Exec(
			"INSERT INTO workflow_actions (id, workflow_id, position, kind, config) VALUES ($1, $2, $3, $4, $5)",
			action.ID, wfID, action.Position, action.Kind, cfg)
		if err != nil {
			return 0, fmt.Errorf("save workflow action: %w", err)
		}
	}
	return wfID, nil
}

// GetWorkflow retrieves a workflow by ID, including its ordered actions.
func (s *PostgresStore) GetWorkflow(id int64) (models.Workflow, error) {
	var wf models.Workflow
	err := s.db.Get(&wf,
		"SELECT id, tenant_id, name, trigger_kind, active, run_count, created_at, updated_at FROM workflows WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Workflow{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Workflow{}, err
	}
	actions, err := s.getActions(id)
	if err != nil {
		return models.Workflow{}, fmt.Errorf("get workflow %d: %w", id, err)
	}
	wf.Actions = actions
	return wf, nil
}

type actionRow struct {
	ID       string `db:"id"`
	Kind     string `db:"kind"`
	Position int    `db:"position"`
	Config   []byte `db:"config"`
}

func (s *PostgresStore) getActions(workflowID int64) ([]models.WorkflowAction, error) {
	var rows []actionRow
	err := s.db.Select(&rows,
		"SELECT id, kind, position, config FROM workflow_actions WHERE workflow_id = $1 ORDER BY position", workflowID)
	if err != nil {
		return nil, err
	}
	actions := make([]models.WorkflowAction, 0, len(rows))
	for _, r := range rows {
		cfg := map[string]string{}
		if len(r.Config) > 0 {
			if err := json.Unmarshal(r.Config, &cfg); err != nil {
				return nil, fmt.Errorf("unmarshal action config: %w", err)
			}
		}
		actions = append(actions, models.WorkflowAction{
			ID:       r.ID,
			Kind:     models.ActionKind(r.Kind),
			Position: r.Position,
			Config:   cfg,
		})
	}
	return actions, nil
}

// ListWorkflows returns a tenant's workflows with actions, in creation
// order. Creation order is the matcher's natural order.
func (s *PostgresStore) ListWorkflows(tenantID string) ([]models.Workflow, error) {
	workflows := []models.Workflow{}
	err := s.db.Select(&workflows,
		"SELECT id, tenant_id, name, trigger_kind, active, run_count, created_at, updated_at FROM workflows WHERE tenant_id = $1 ORDER BY id", tenantID)
	if err != nil {
		return nil, err
	}
	for i := range workflows {
		actions, err := s.getActions(workflows[i].ID)
		if err != nil {
			return nil, err
		}
		workflows[i].Actions = actions
	}
	return workflows, nil
}

func (s *PostgresStore) SetWorkflowActive(id int64, active bool) error {
	res, err := s.db.Exec(
		"UPDATE workflows SET active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2", active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteWorkflow(id int64) error {
	res, err := s.db.Exec("DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// IncrementRunCount bumps the run counter atomically in SQL, so concurrent
// events matching the same workflow cannot lose updates.
func (s *PostgresStore) IncrementRunCount(id int64) error {
	res, err := s.db.Exec(
		"UPDATE workflows SET run_count = run_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) SaveExecution(rec models.ExecutionRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO executions (id, workflow_id, tenant_id, event_kind, synthetic, started_at, completed) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		rec.ID, rec.WorkflowID, rec.TenantID, rec.EventKind, rec.Synthetic, rec.StartedAt, rec.Completed)
	if err != nil {
		return fmt.Errorf("save execution: %w", err)
	}
	for _, a := range rec.Actions {
		_, err := s.db.Exec(
			"INSERT INTO execution_actions (execution_id, action_id, kind, position, ok, failure_type, reason) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			rec.ID, a.ActionID, a.Kind, a.Position, a.OK, a.FailureType, a.Reason)
		if err != nil {
			return fmt.Errorf("save execution action: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListExecutions(workflowID int64) ([]models.ExecutionRecord, error) {
	recs := []models.ExecutionRecord{}
	err := s.db.Select(&recs,
		"SELECT id, workflow_id, tenant_id, event_kind, synthetic, started_at, completed FROM executions WHERE workflow_id = $1 ORDER BY started_at", workflowID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		outcomes := []models.ActionOutcome{}
		err := s.db.Select(&outcomes,
			"SELECT action_id, kind, position, ok, failure_type, reason FROM execution_actions WHERE execution_id = $1 ORDER BY position", recs[i].ID)
		if err != nil {
			return nil, err
		}
		recs[i].Actions = outcomes
	}
	return recs, nil
}

func (s *PostgresStore) SaveTask(t models.Task) error {
	_, err := s.db.Exec(
		"INSERT INTO tasks (id, tenant_id, title, workflow_id, created_at) VALUES ($1, $2, $3, $4, $5)",
		t.ID, t.TenantID, t.Title, t.WorkflowID, t.CreatedAt)
	return err
}

func (s *PostgresStore) ListTasks(tenantID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.Select(&tasks,
		"SELECT id, tenant_id, title, workflow_id, created_at FROM tasks WHERE tenant_id = $1 ORDER BY created_at", tenantID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *PostgresStore) SaveRecord(r models.Record) error {
	fields, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("marshal record fields: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO records (id, tenant_id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, id) DO UPDATE SET fields = EXCLUDED.fields`,
		r.ID, r.TenantID, fields)
	return err
}

func (s *PostgresStore) GetRecord(tenantID, recordID string) (models.Record, error) {
	var row struct {
		ID       string `db:"id"`
		TenantID string `db:"tenant_id"`
		Fields   []byte `db:"fields"`
	}
	err := s.db.Get(&row,
		"SELECT id, tenant_id, fields FROM records WHERE tenant_id = $1 AND id = $2", tenantID, recordID)
	if err == sql.ErrNoRows {
		return models.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Record{}, err
	}
	rec := models.Record{ID: row.ID, TenantID: row.TenantID, Fields: map[string]interface{}{}}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &rec.Fields); err != nil {
			return models.Record{}, fmt.Errorf("unmarshal record fields: %w", err)
		}
	}
	return rec, nil
}

// UpdateRecordField sets one field of a record's JSONB field bag.
func (s *PostgresStore) UpdateRecordField(tenantID, recordID, field, value string) error {
	res, err := s.db.Exec(
		"UPDATE records SET fields = jsonb_set(fields, ARRAY[$3::text], to_jsonb($4::text)) WHERE tenant_id = $1 AND id = $2",
		tenantID, recordID, field, value)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
