package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-catalog/pkg/log"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

const (
	jobKeyPrefix = "job:"     // Prefix for job state keys in DB
	watchDBDir   = "watch_db" // Subdirectory name within stateDir for Badger DB files
)

// BadgerStore implements the StateStore interface using BadgerDB
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerStore opens (or creates) the watch state database under stateDir
func NewBadgerStore(stateDir string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(stateDir, watchDBDir)
	logger.Infof("Opening watch state database at: %s", dbPath)

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %w", utils.ErrDatabase, dbPath, err)
	}

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %s: %w", utils.ErrDatabase, dbPath, err)
	}

	return &BadgerStore{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction conflicts.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// GetJobState implements the JobStateStore interface
func (s *BadgerStore) GetJobState(jobKey string) (models.JobState, bool, error) {
	var state models.JobState
	found := false
	key := []byte(jobKeyPrefix + jobKey)

	err := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return errGet
		}
		return item.Value(func(val []byte) error {
			if errJson := json.Unmarshal(val, &state); errJson != nil {
				s.log.Warnf("Failed to unmarshal job state for key '%s': %v. Treating as never run.", string(key), errJson)
				state = models.JobState{}
				return nil
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return models.JobState{}, false, fmt.Errorf("%w: failed getting job key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	return state, found, nil
}

// PutJobState implements the JobStateStore interface
func (s *BadgerStore) PutJobState(jobKey string, state models.JobState) error {
	key := []byte(jobKeyPrefix + jobKey)
	val, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal job state for key '%s': %w", utils.ErrDatabase, string(key), err)
	}

	err = s.dbUpdate(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, val))
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in PutJobState: %v", err)
		return fmt.Errorf("%w: failed setting job state for key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	return nil
}

// DeleteJobState implements the JobStateStore interface
func (s *BadgerStore) DeleteJobState(jobKey string) error {
	key := []byte(jobKeyPrefix + jobKey)
	err := s.dbUpdate(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("%w: failed deleting job key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	return nil
}

// ListJobStates implements the JobStateStore interface
func (s *BadgerStore) ListJobStates() (map[string]models.JobState, error) {
	states := make(map[string]models.JobState)
	prefix := []byte(jobKeyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			jobKey := strings.TrimPrefix(string(item.Key()), jobKeyPrefix)
			errVal := item.Value(func(val []byte) error {
				var state models.JobState
				if errJson := json.Unmarshal(val, &state); errJson != nil {
					s.log.Warnf("Skipping unreadable job state for '%s': %v", jobKey, errJson)
					return nil
				}
				states[jobKey] = state
				return nil
			})
			if errVal != nil {
				return errVal
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed listing job states: %w", utils.ErrDatabase, err)
	}
	return states, nil
}

// RunGC runs BadgerDB's garbage collection periodically
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.db == nil || s.db.IsClosed() {
				continue
			}
			var err error
			for {
				// Run GC if log is at least 50% reclaimable space
				err = s.db.RunValueLogGC(0.5)
				if err != nil {
					break
				}
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Errorf("BadgerDB GC error: %v", err)
			}
		case <-ctx.Done():
			s.log.Debugf("Stopping BadgerDB garbage collection: %v", ctx.Err())
			return
		}
	}
}

// Close implements the StoreAdmin interface
func (s *BadgerStore) Close() error {
	if s.db != nil && !s.db.IsClosed() {
		s.log.Debug("Closing watch state database...")
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Error closing watch state database: %v", err)
			return err
		}
	}
	return nil
}
