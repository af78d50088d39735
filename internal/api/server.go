package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/scheduler"
	"github.com/tbenoit3/workflow-vigil/internal/storage"
)

// Server is the HTTP API server
type Server struct {
	scheduler *scheduler.Scheduler
	server    *http.Server
}

// NewServer creates a new API server
func NewServer(sched *scheduler.Scheduler, addr string) *Server {
	s := &Server{
		scheduler: sched,
	}

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Target endpoints
	mux.HandleFunc("/v1/targets", s.handleTargetList)
	mux.HandleFunc("/v1/targets/", s.handleTargetGet)

	// Verdict endpoint
	mux.HandleFunc("/v1/verdict", s.handleVerdict)

	// Audit endpoint
	mux.HandleFunc("/v1/audit", s.handleAudit)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady handles GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	targets := s.scheduler.GetTargets()
	cacheSize := s.scheduler.GetCache().Size()

	ready := len(targets) > 0
	reasons := []string{}

	if len(targets) == 0 {
		reasons = append(reasons, "no targets loaded")
	}

	if cacheSize == 0 {
		reasons = append(reasons, "no evaluations cached yet")
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{
		Ready:         ready,
		TargetsLoaded: len(targets),
		Reasons:       reasons,
	})
}

// handleTargetList handles GET /v1/targets
func (s *Server) handleTargetList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	targets := s.scheduler.GetTargets()

	summaries := make([]TargetSummary, 0, len(targets))
	for _, tf := range targets {
		q := tf.Target.Query()
		summaries = append(summaries, TargetSummary{
			ID:       tf.Target.Metadata.ID,
			Owner:    q.Owner,
			Repo:     q.Repo,
			Workflow: q.Workflow,
			Branch:   q.Branch,
		})
	}

	respondJSON(w, http.StatusOK, TargetListResponse{Targets: summaries})
}

// handleTargetGet handles GET /v1/targets/{id}
func (s *Server) handleTargetGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/targets/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "target ID required")
		return
	}

	targets := s.scheduler.GetTargets()
	for _, tf := range targets {
		if tf.Target.Metadata.ID == id {
			respondJSON(w, http.StatusOK, tf.Target)
			return
		}
	}

	respondError(w, http.StatusNotFound, fmt.Sprintf("target not found: %s", id))
}

// handleVerdict handles POST /v1/verdict
func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req VerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.TargetID == "" {
		respondError(w, http.StatusBadRequest, "targetID required")
		return
	}

	// Force fresh evaluation if requested
	if req.ForceFresh {
		if err := s.scheduler.EvaluateNow(req.TargetID); err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("evaluation failed: %v", err))
			return
		}
	}

	cache := s.scheduler.GetCache()
	state, ok := cache.Get(req.TargetID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no evaluation found for target: %s", req.TargetID))
		return
	}

	respondJSON(w, http.StatusOK, VerdictResponse{
		TargetID:           req.TargetID,
		HasPreviousFailure: state.Result.HasPreviousFailure,
		Reason:             state.Result.Reason,
		TotalRuns:          state.Result.TotalRuns,
		WithinWindow:       state.Result.WithinWindow,
		UsedFallback:       state.Result.UsedFallback,
		Timestamp:          state.Result.Timestamp,
		TTL:                int(state.TTL.Seconds()),
	})
}

// handleAudit handles GET /v1/audit
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	auditStorage := s.scheduler.GetAuditStorage()
	if auditStorage == nil {
		respondError(w, http.StatusServiceUnavailable, "audit storage not configured")
		return
	}

	query := r.URL.Query()
	filter := storage.AuditFilter{
		TargetID: query.Get("targetID"),
		Owner:    query.Get("owner"),
		Repo:     query.Get("repo"),
		Verdict:  query.Get("verdict"),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	if startTimeStr := query.Get("startTime"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			filter.StartTime = &startTime
		}
	}

	if endTimeStr := query.Get("endTime"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			filter.EndTime = &endTime
		}
	}

	records, err := auditStorage.QueryAudit(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query audit: %v", err))
		return
	}

	responseRecords := make([]AuditRecordResponse, len(records))
	for i, record := range records {
		responseRecords[i] = AuditRecordResponse{
			ID:                 record.ID,
			TargetID:           record.TargetID,
			Owner:              record.Owner,
			Repo:               record.Repo,
			Workflow:           record.Workflow,
			HasPreviousFailure: record.HasPreviousFailure,
			Reason:             record.Reason,
			TotalRuns:          record.TotalRuns,
			WithinWindow:       record.WithinWindow,
			UsedFallback:       record.UsedFallback,
			Timestamp:          record.Timestamp,
			CreatedAt:          record.CreatedAt,
		}
	}

	respondJSON(w, http.StatusOK, AuditResponse{
		Records: responseRecords,
		Total:   len(responseRecords),
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
