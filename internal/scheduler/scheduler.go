package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/storage"
	"github.com/tbenoit3/workflow-vigil/internal/target"
)

// Scheduler manages periodic target evaluations
type Scheduler struct {
	evaluator  *eval.Evaluator
	cache      *StateCache
	targetDir  string
	schemaPath string
	targets    []target.TargetWithFile
	audit      storage.AuditStorage
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	running    bool
}

// NewScheduler creates a new scheduler
func NewScheduler(evaluator *eval.Evaluator, targetDir, schemaPath string) *Scheduler {
	return &Scheduler{
		evaluator:  evaluator,
		cache:      NewStateCache(),
		targetDir:  targetDir,
		schemaPath: schemaPath,
	}
}

// SetAuditStorage sets the audit storage backend (optional)
func (s *Scheduler) SetAuditStorage(audit storage.AuditStorage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = audit
}

// LoadTargets loads workflow targets from the configured directory
func (s *Scheduler) LoadTargets() error {
	targetFiles, errors := target.LoadFromDirectory(s.targetDir)
	if len(errors) > 0 {
		return fmt.Errorf("failed to load targets: %d errors", len(errors))
	}

	if len(targetFiles) == 0 {
		return fmt.Errorf("no targets found in %s", s.targetDir)
	}

	validator, err := target.NewValidator(s.schemaPath)
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	validationErrors := validator.ValidateDirectory(s.targetDir)
	if len(validationErrors) > 0 {
		return fmt.Errorf("target validation failed: %d errors", len(validationErrors))
	}

	s.mu.Lock()
	s.targets = targetFiles
	audit := s.audit
	s.mu.Unlock()

	// Persist target definitions to audit storage if available
	if audit != nil {
		for _, tf := range targetFiles {
			if err := audit.StoreTargetDefinition(tf.Target); err != nil {
				log.Printf("Warning: failed to store target definition %s: %v", tf.Target.Metadata.ID, err)
			}
		}
	}

	log.Printf("Loaded %d targets", len(targetFiles))
	return nil
}

// Start begins the evaluation scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}

	if len(s.targets) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no targets loaded, call LoadTargets() first")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	targets := s.targets
	s.mu.Unlock()

	// Start one goroutine per target
	for _, tf := range targets {
		s.wg.Add(1)
		go s.evaluateLoop(ctx, tf.Target)
	}

	log.Printf("Started scheduler for %d targets", len(targets))
	return nil
}

// Stop stops the scheduler and waits for all evaluations to complete
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	s.cancel()
	s.running = false
	s.mu.Unlock()

	log.Println("Stopping scheduler...")
	s.wg.Wait()
	log.Println("Scheduler stopped")
}

// evaluateLoop runs periodic evaluations for a single target
func (s *Scheduler) evaluateLoop(ctx context.Context, tgt *target.Target) {
	defer s.wg.Done()

	interval, err := target.ParseDuration(tgt.Spec.EvaluationInterval)
	if err != nil {
		log.Printf("Error parsing evaluation interval for target %s: %v", tgt.Metadata.ID, err)
		return
	}

	// Initial evaluation
	s.evaluateOnce(ctx, tgt, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluateOnce(ctx, tgt, interval)
		}
	}
}

// evaluateOnce performs a single evaluation of a target
func (s *Scheduler) evaluateOnce(ctx context.Context, tgt *target.Target, interval time.Duration) {
	now := time.Now()

	result, err := s.evaluator.Evaluate(ctx, tgt.Query(), tgt.Policy(), now)
	if err != nil {
		log.Printf("Error evaluating target %s: %v", tgt.Metadata.ID, err)
		return
	}

	state := &EvaluationState{
		Result:    result,
		UpdatedAt: now,
		TTL:       interval,
	}

	s.cache.Set(tgt.Metadata.ID, state)

	// Persist to audit storage if available
	s.mu.RLock()
	audit := s.audit
	s.mu.RUnlock()

	if audit != nil {
		if err := audit.StoreEvaluation(tgt.Metadata.ID, result); err != nil {
			log.Printf("Warning: failed to store evaluation for target %s: %v", tgt.Metadata.ID, err)
		}

		if err := audit.UpdateLatestState(tgt.Metadata.ID, result); err != nil {
			log.Printf("Warning: failed to update latest state for target %s: %v", tgt.Metadata.ID, err)
		}
	}

	log.Printf("Evaluated target %s: hasPreviousFailure=%v (%s)",
		tgt.Metadata.ID, result.HasPreviousFailure, result.Reason)
}

// GetCache returns the state cache
func (s *Scheduler) GetCache() *StateCache {
	return s.cache
}

// GetAuditStorage returns the audit storage backend
func (s *Scheduler) GetAuditStorage() storage.AuditStorage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audit
}

// GetTargets returns the loaded targets
func (s *Scheduler) GetTargets() []target.TargetWithFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy
	result := make([]target.TargetWithFile, len(s.targets))
	copy(result, s.targets)
	return result
}

// SetTargetsForTest sets targets directly (for testing only)
func (s *Scheduler) SetTargetsForTest(targets []target.TargetWithFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = targets
}

// EvaluateNow forces immediate evaluation of a specific target
func (s *Scheduler) EvaluateNow(targetID string) error {
	s.mu.RLock()
	var tgt *target.Target
	for _, tf := range s.targets {
		if tf.Target.Metadata.ID == targetID {
			tgt = tf.Target
			break
		}
	}
	s.mu.RUnlock()

	if tgt == nil {
		return fmt.Errorf("target not found: %s", targetID)
	}

	interval, err := target.ParseDuration(tgt.Spec.EvaluationInterval)
	if err != nil {
		return fmt.Errorf("invalid evaluation interval: %w", err)
	}

	s.evaluateOnce(context.Background(), tgt, interval)
	return nil
}
