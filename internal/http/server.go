package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/EdSoftcase/edson-sub001/internal/log"
	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/service"
	"github.com/EdSoftcase/edson-sub001/pkg/storage"
	"github.com/pkg/errors"
)

// StartServer exposes the automation engine over HTTP: workflow authoring,
// event submission, test runs and execution observability.
func StartServer(port string, svc *service.AutomationService) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/workflows", WorkflowsHandler(svc))
	mux.HandleFunc("/workflows/", WorkflowByIDHandler(svc))
	mux.HandleFunc("/events", EventsHandler(svc))

	log.GetLogger().Infof("Starting automation server on :%s", port)
	return http.ListenAndServe(":"+port, mux)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Automation server is running")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// WorkflowsHandler serves GET /workflows?tenant= (list) and POST /workflows
// (create). Definition errors come back synchronously as 400s.
func WorkflowsHandler(svc *service.AutomationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			tenant := r.URL.Query().Get("tenant")
			if tenant == "" {
				writeError(w, http.StatusBadRequest, errors.New("missing 'tenant' parameter"))
				return
			}
			workflows, err := svc.ListWorkflows(tenant)
			if err != nil {
				log.GetLogger().Errorf("Failed to list workflows: %v", err)
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, workflows)
		case http.MethodPost:
			var wf models.Workflow
			if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
				writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
				return
			}
			id, err := svc.CreateWorkflow(wf)
			if err != nil {
				var invalid *service.InvalidWorkflowError
				if errors.As(err, &invalid) {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				log.GetLogger().Errorf("Failed to create workflow: %v", err)
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"id":      id,
				"message": fmt.Sprintf("Created workflow '%s' with ID %d", wf.Name, id),
			})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// WorkflowByIDHandler routes /workflows/{id} and its subresources:
// test-run, executions, stats, activate, deactivate.
func WorkflowByIDHandler(svc *service.AutomationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/workflows/")
		parts := strings.SplitN(rest, "/", 2)
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid workflow id"))
			return
		}
		sub := ""
		if len(parts) == 2 {
			sub = strings.TrimSuffix(parts[1], "/")
		}

		switch {
		case sub == "" && r.Method == http.MethodGet:
			getWorkflowHTTP(w, svc, id)
		case sub == "" && r.Method == http.MethodDelete:
			deleteWorkflowHTTP(w, svc, id)
		case sub == "test-run" && r.Method == http.MethodPost:
			testRunHTTP(w, r, svc, id)
		case sub == "executions" && r.Method == http.MethodGet:
			listExecutionsHTTP(w, svc, id)
		case sub == "stats" && r.Method == http.MethodGet:
			statsHTTP(w, svc, id)
		case sub == "activate" && r.Method == http.MethodPost:
			setActiveHTTP(w, svc, id, true)
		case sub == "deactivate" && r.Method == http.MethodPost:
			setActiveHTTP(w, svc, id, false)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getWorkflowHTTP(w http.ResponseWriter, svc *service.AutomationService, id int64) {
	wf, err := svc.GetWorkflow(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func deleteWorkflowHTTP(w http.ResponseWriter, svc *service.AutomationService, id int64) {
	if err := svc.DeleteWorkflow(id); err != nil {
		if errors.Is(errors.Cause(err), storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Deleted workflow %d", id)})
}

// testRunHTTP triggers a real execution with sample data. The caller is
// warned via the response: there is no sandbox, side effects are live.
func testRunHTTP(w http.ResponseWriter, r *http.Request, svc *service.AutomationService, id int64) {
	var body struct {
		SampleFields map[string]interface{} `json:"sample_fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}
	records, err := svc.TestRun(r.Context(), id, body.SampleFields)
	if err != nil {
		if errors.Is(errors.Cause(err), storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"warning": "test runs execute real actions with the provided sample data",
		"records": records,
	})
}

func listExecutionsHTTP(w http.ResponseWriter, svc *service.AutomationService, id int64) {
	records, err := svc.ListExecutions(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func statsHTTP(w http.ResponseWriter, svc *service.AutomationService, id int64) {
	stats, err := svc.WorkflowStats(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func setActiveHTTP(w http.ResponseWriter, svc *service.AutomationService, id int64, active bool) {
	if err := svc.SetWorkflowActive(id, active); err != nil {
		if errors.Is(errors.Cause(err), storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "active": active})
}

// EventsHandler accepts live business events. Downstream action failures
// never fail the submission: the response reports per-action outcomes for
// the caller to inspect asynchronously.
func EventsHandler(svc *service.AutomationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var event models.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
			return
		}
		records, err := svc.Submit(r.Context(), event)
		if err != nil {
			log.GetLogger().Errorf("Failed to handle event: %v", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"matched": len(records),
			"records": records,
		})
	}
}
