package mcp

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// RunStatus represents the current state of a catalog run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one generate_catalog invocation
type Run struct {
	ID           string    `json:"id"`
	JobKey       string    `json:"job_key"`
	Status       RunStatus `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
	Headings     int       `json:"headings"`
	Mismatches   []string  `json:"mismatches,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// RunManager tracks catalog runs and rejects concurrent runs of the same job
type RunManager struct {
	runs  map[string]*Run
	mu    sync.RWMutex
	byJob map[string]string // jobKey -> runID for running jobs
}

// NewRunManager creates a new run manager
func NewRunManager() *RunManager {
	return &RunManager{
		runs:  make(map[string]*Run),
		byJob: make(map[string]string),
	}
}

// StartRun registers a new running run for a job.
// Returns ErrJobRunning if the job already has a run in progress.
func (m *RunManager) StartRun(jobKey string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, exists := m.byJob[jobKey]; exists {
		return nil, fmt.Errorf("%w: '%s' (run %s)", utils.ErrJobRunning, jobKey, existingID)
	}

	run := &Run{
		ID:        uuid.New().String(),
		JobKey:    jobKey,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
	m.runs[run.ID] = run
	m.byJob[jobKey] = run.ID

	return run, nil
}

// FinishRun records the job result and releases the job for new runs
func (m *RunManager) FinishRun(runID string, result models.JobResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[runID]
	if !exists {
		return
	}
	run.Status = RunStatusCompleted
	if !result.Success {
		run.Status = RunStatusFailed
	}
	run.CompletedAt = time.Now()
	run.Headings = result.Headings
	run.Mismatches = result.Mismatches
	run.ErrorMessage = result.ErrorMessage()
	delete(m.byJob, run.JobKey)
}

// GetRun returns a copy of a run by ID, or nil
func (m *RunManager) GetRun(runID string) *Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[runID]
	if !exists {
		return nil
	}
	cp := *run
	return &cp
}

// IsRunning checks if a run is in progress for a job
func (m *RunManager) IsRunning(jobKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.byJob[jobKey]
	return exists
}

// LastRun returns a copy of the most recently started run for a job, or nil
func (m *RunManager) LastRun(jobKey string) *Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *Run
	for _, run := range m.runs {
		if run.JobKey == jobKey && (last == nil || run.StartedAt.After(last.StartedAt)) {
			last = run
		}
	}
	if last == nil {
		return nil
	}
	cp := *last
	return &cp
}

// ListRuns returns copies of all runs, oldest first
func (m *RunManager) ListRuns() []Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs
}
