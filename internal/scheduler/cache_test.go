package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/eval"
)

func TestStateCache_Basics(t *testing.T) {
	cache := NewStateCache()

	// Initially empty
	if cache.Size() != 0 {
		t.Errorf("expected empty cache, got size %d", cache.Size())
	}

	state := &EvaluationState{
		Result:    &eval.Result{HasPreviousFailure: true, Reason: "test"},
		UpdatedAt: time.Now(),
		TTL:       30 * time.Second,
	}

	cache.Set("release-main", state)

	if cache.Size() != 1 {
		t.Errorf("expected size 1, got %d", cache.Size())
	}

	retrieved, ok := cache.Get("release-main")
	if !ok {
		t.Fatal("expected to retrieve state")
	}

	if !retrieved.Result.HasPreviousFailure {
		t.Error("expected cached verdict to be true")
	}

	// Delete
	cache.Delete("release-main")
	if cache.Size() != 0 {
		t.Errorf("expected size 0 after delete, got %d", cache.Size())
	}

	if _, ok := cache.Get("release-main"); ok {
		t.Error("expected not to find deleted state")
	}
}

func TestStateCache_GetAll(t *testing.T) {
	cache := NewStateCache()

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("target-%d", i), &EvaluationState{
			Result:    &eval.Result{},
			UpdatedAt: time.Now(),
		})
	}

	all := cache.GetAll()
	if len(all) != 3 {
		t.Errorf("expected 3 states, got %d", len(all))
	}

	// Mutating the snapshot must not affect the cache
	delete(all, "target-0")
	if cache.Size() != 3 {
		t.Error("snapshot mutation leaked into cache")
	}
}

func TestStateCache_Concurrent(t *testing.T) {
	cache := NewStateCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("target-%d", n)
			cache.Set(id, &EvaluationState{Result: &eval.Result{}, UpdatedAt: time.Now()})
			cache.Get(id)
			cache.GetAll()
		}(i)
	}
	wg.Wait()

	if cache.Size() != 10 {
		t.Errorf("expected 10 states, got %d", cache.Size())
	}
}

func TestEvaluationState_IsStale(t *testing.T) {
	now := time.Now()

	state := &EvaluationState{
		UpdatedAt: now.Add(-time.Minute),
		TTL:       30 * time.Second,
	}

	if !state.IsStale(now) {
		t.Error("expected state older than TTL to be stale")
	}

	state.UpdatedAt = now.Add(-10 * time.Second)
	if state.IsStale(now) {
		t.Error("expected state within TTL to be fresh")
	}
}
