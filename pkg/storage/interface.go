package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks github.com/Sriram-PR/doc-catalog/pkg/storage JobStateStore

import (
	"context"
	"time"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
)

// JobStateStore persists watch-mode job state across restarts
type JobStateStore interface {
	// GetJobState retrieves the state of a job.
	// Returns the state, whether it exists, and any error
	GetJobState(jobKey string) (models.JobState, bool, error)

	// PutJobState stores the state of a job, replacing any previous one
	PutJobState(jobKey string, state models.JobState) error

	// DeleteJobState removes the state of a job; a missing key is not an error
	DeleteJobState(jobKey string) error

	// ListJobStates returns the state of every stored job
	ListJobStates() (map[string]models.JobState, error)
}

// StoreAdmin handles lifecycle and administrative operations
type StoreAdmin interface {
	// RunGC runs periodic garbage collection. Should be run in a goroutine
	RunGC(ctx context.Context, interval time.Duration)

	// Close cleanly closes the database connection
	Close() error
}

// StateStore combines all store interfaces for components that need full access
type StateStore interface {
	JobStateStore
	StoreAdmin
}
