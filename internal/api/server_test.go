package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/adapter/fixture"
	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/scheduler"
	"github.com/tbenoit3/workflow-vigil/internal/target"
)

func setupTestServer(t *testing.T) (*Server, *scheduler.Scheduler) {
	t.Helper()

	tgt := &target.Target{
		APIVersion: "vigil/v1",
		Kind:       "WorkflowTarget",
		Metadata:   target.Metadata{ID: "release-main"},
		Spec: target.Spec{
			Owner:              "acme",
			Repo:               "widget",
			Workflow:           "release.yml",
			EvaluationInterval: "5m",
		},
	}

	started := time.Now().Add(-time.Hour)
	adapter := fixture.NewAdapter()
	adapter.SetFixture(fixture.Key(tgt.Query()), &fixture.RunFixture{
		Runs: []fixture.RunData{
			{ID: 1, StartedAt: &started, Conclusion: "failure"},
		},
	})

	sched := scheduler.NewScheduler(eval.NewEvaluator(adapter), "unused", "unused")
	sched.SetTargetsForTest([]target.TargetWithFile{{Target: tgt, File: "release.yaml"}})

	// Manually populate cache for testing
	sched.GetCache().Set("release-main", &scheduler.EvaluationState{
		Result: &eval.Result{
			HasPreviousFailure: true,
			Reason:             "1 run(s) within 7 days, none succeeded",
			TotalRuns:          1,
			WithinWindow:       1,
			Timestamp:          time.Now(),
		},
		UpdatedAt: time.Now(),
		TTL:       5 * time.Minute,
	})

	server := NewServer(sched, ":0")
	return server, sched
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status=ok, got %s", resp.Status)
	}
}

func TestReadyEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	server.handleReady(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Ready || resp.TargetsLoaded != 1 {
		t.Errorf("unexpected readiness: %+v", resp)
	}
}

func TestTargetListEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/v1/targets", nil)
	w := httptest.NewRecorder()

	server.handleTargetList(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp TargetListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(resp.Targets))
	}

	summary := resp.Targets[0]
	if summary.ID != "release-main" || summary.Owner != "acme" || summary.Branch != "main" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestTargetGetEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/v1/targets/release-main", nil)
	w := httptest.NewRecorder()

	server.handleTargetGet(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/v1/targets/missing", nil)
	w = httptest.NewRecorder()

	server.handleTargetGet(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for missing target, got %d", w.Code)
	}
}

func TestVerdictEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(VerdictRequest{TargetID: "release-main"})
	req := httptest.NewRequest("POST", "/v1/verdict", bytes.NewReader(body))
	w := httptest.NewRecorder()

	server.handleVerdict(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp VerdictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.HasPreviousFailure {
		t.Error("expected verdict true from cached state")
	}
	if resp.TTL != 300 {
		t.Errorf("expected ttl=300, got %d", resp.TTL)
	}
}

func TestVerdictEndpoint_ForceFresh(t *testing.T) {
	server, sched := setupTestServer(t)

	// Invalidate the cache entry; forceFresh must repopulate it from the
	// fixture history.
	sched.GetCache().Delete("release-main")

	body, _ := json.Marshal(VerdictRequest{TargetID: "release-main", ForceFresh: true})
	req := httptest.NewRequest("POST", "/v1/verdict", bytes.NewReader(body))
	w := httptest.NewRecorder()

	server.handleVerdict(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp VerdictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.HasPreviousFailure {
		t.Error("expected fresh evaluation to detect failure")
	}
}

func TestVerdictEndpoint_Errors(t *testing.T) {
	server, _ := setupTestServer(t)

	// Missing target ID
	body, _ := json.Marshal(VerdictRequest{})
	req := httptest.NewRequest("POST", "/v1/verdict", bytes.NewReader(body))
	w := httptest.NewRecorder()

	server.handleVerdict(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	// Unknown target
	body, _ = json.Marshal(VerdictRequest{TargetID: "missing"})
	req = httptest.NewRequest("POST", "/v1/verdict", bytes.NewReader(body))
	w = httptest.NewRecorder()

	server.handleVerdict(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	// Wrong method
	req = httptest.NewRequest("GET", "/v1/verdict", nil)
	w = httptest.NewRecorder()

	server.handleVerdict(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestAuditEndpoint_NotConfigured(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/v1/audit", nil)
	w := httptest.NewRecorder()

	server.handleAudit(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without audit storage, got %d", w.Code)
	}
}
