package watch

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/storage"
)

// StateManager tracks the fingerprint each job was last generated from.
// With a store, state is written through and survives restarts; without one it
// lives for the lifetime of the process.
type StateManager struct {
	store storage.JobStateStore
	log   *logrus.Entry
	jobs  map[string]models.JobState
	mu    sync.RWMutex
}

// NewStateManager creates a new state manager; store may be nil
func NewStateManager(store storage.JobStateStore, log *logrus.Entry) *StateManager {
	return &StateManager{
		store: store,
		log:   log,
		jobs:  make(map[string]models.JobState),
	}
}

// Load reads all persisted job states from the store
func (m *StateManager) Load() error {
	if m.store == nil {
		return nil
	}
	states, err := m.store.ListJobStates()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range states {
		m.jobs[k] = v
	}
	return nil
}

// GetJobState returns the state for a specific job
func (m *StateManager) GetJobState(jobKey string) (models.JobState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.jobs[jobKey]
	return state, ok
}

// Fingerprint captures what a job's catalog depends on at one point in time.
// An empty Source means the source could not be hashed.
type Fingerprint struct {
	Source string // SHA-256 of the source document
	Config string // Fingerprint of the effective job settings and preamble
	Target string // SHA-256 of the target file, empty when it does not exist
}

// UpdateJobState records a run. The fingerprint is only remembered after a
// successful run so that failed jobs are retried on the next check.
func (m *StateManager) UpdateJobState(jobKey string, fp Fingerprint, success bool, headings int, errorMsg string) {
	if !success {
		fp = Fingerprint{}
	}
	state := models.JobState{
		SourceHash:     fp.Source,
		ConfigHash:     fp.Config,
		TargetHash:     fp.Target,
		LastRunTime:    time.Now(),
		LastRunSuccess: success,
		Headings:       headings,
		ErrorMessage:   errorMsg,
	}

	m.mu.Lock()
	m.jobs[jobKey] = state
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.PutJobState(jobKey, state); err != nil {
			m.log.WithField("job", jobKey).Errorf("Failed to persist watch state: %v", err)
		}
	}
}

// ShouldRun reports whether anything the job depends on differs from its last
// successful run: the source, the job settings, or the target itself.
func (m *StateManager) ShouldRun(jobKey string, fp Fingerprint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.jobs[jobKey]
	if !ok || fp.Source == "" || fp.Target == "" {
		return true
	}
	return state.SourceHash != fp.Source ||
		state.ConfigHash != fp.Config ||
		state.TargetHash != fp.Target
}
