package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	config := JobConfig{
		Cities:     50,
		Iterations: 1000,
		Seed:       42,
	}

	job := jm.CreateJob(config)

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}

	if job.Config.Cities != 50 {
		t.Errorf("Config not set correctly")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	config := JobConfig{Cities: 50, Iterations: 1000}
	job := jm.CreateJob(config)

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}

	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	jm.CreateJob(JobConfig{Cities: 20})
	jm.CreateJob(JobConfig{Cities: 30})

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Cities: 50})

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Iterations = 10
		j.BestCost = 123.45
	})

	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Iterations != 10 {
		t.Error("Iterations should be updated")
	}
	if updated.BestCost != 123.45 {
		t.Error("BestCost should be updated")
	}

	err = jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Cities: 50})

	if jm.CancelJob(job.ID) {
		t.Error("Job without a registered worker should not be cancellable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jm.setCancel(job.ID, cancel)

	if !jm.CancelJob(job.ID) {
		t.Error("Job with a registered worker should be cancellable")
	}

	select {
	case <-ctx.Done():
	default:
		t.Error("Worker context should be cancelled")
	}

	if jm.CancelJob(job.ID) {
		t.Error("Second cancel should report no cancellable worker")
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Cities: 50})

	// Simulate concurrent updates
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(iteration int) {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Iterations = iteration
				time.Sleep(1 * time.Millisecond)
			})
			done <- true
		}(i)
	}

	// Wait for all updates
	for i := 0; i < 10; i++ {
		<-done
	}

	// Should not crash - actual value depends on race
	_, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should still exist after concurrent updates")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Cities: 5})
	jm.UpdateJob(job.ID, func(j *Job) {
		j.BestCost = 10.0
		j.BestTour = []int{0, 1, 2, 3, 4}
	})

	got, _ := jm.GetJob(job.ID)

	// Mutating the returned job must not affect the stored one.
	got.BestCost = -1
	got.BestTour[0] = 99

	stored, _ := jm.GetJob(job.ID)
	if stored.BestCost != 10.0 {
		t.Errorf("stored BestCost changed to %f", stored.BestCost)
	}
	if stored.BestTour[0] != 0 {
		t.Errorf("stored BestTour changed to %v", stored.BestTour)
	}

	for _, listed := range jm.ListJobs() {
		listed.BestTour = nil
	}
	stored, _ = jm.GetJob(job.ID)
	if len(stored.BestTour) != 5 {
		t.Error("ListJobs must return copies too")
	}
}

func TestJobManager_EncodeWhileUpdating(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Cities: 50})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Iterations = i
				j.BestTour = make([]int, 50)
			})
		}
	}()

	// Encoding a handler response while the worker rewrites the tour slice
	// must be safe because GetJob hands out an independent copy.
	for i := 0; i < 1000; i++ {
		snapshot, _ := jm.GetJob(job.ID)
		if _, err := json.Marshal(snapshot); err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
	}
	<-done
}
