package mcp

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

func startTestRun(t *testing.T, rm *RunManager, jobKey string) *Run {
	t.Helper()
	run, err := rm.StartRun(jobKey)
	require.NoError(t, err)
	require.NotNil(t, run)
	return run
}

func TestNewRunManager(t *testing.T) {
	rm := NewRunManager()
	require.NotNil(t, rm)
	assert.Empty(t, rm.ListRuns())
}

func TestStartRun(t *testing.T) {
	t.Run("new run fields correct", func(t *testing.T) {
		rm := NewRunManager()
		run := startTestRun(t, rm, "docs")

		assert.NotEmpty(t, run.ID)
		assert.Equal(t, "docs", run.JobKey)
		assert.Equal(t, RunStatusRunning, run.Status)
		assert.False(t, run.StartedAt.IsZero())
		assert.True(t, run.CompletedAt.IsZero())
		assert.True(t, rm.IsRunning("docs"))
	})

	t.Run("concurrent run of same job rejected", func(t *testing.T) {
		rm := NewRunManager()
		startTestRun(t, rm, "docs")

		_, err := rm.StartRun("docs")
		require.Error(t, err)
		assert.True(t, errors.Is(err, utils.ErrJobRunning))
	})

	t.Run("new run allowed after finish", func(t *testing.T) {
		rm := NewRunManager()
		run1 := startTestRun(t, rm, "docs")
		rm.FinishRun(run1.ID, models.JobResult{JobKey: "docs", Success: true})

		run2 := startTestRun(t, rm, "docs")
		assert.NotEqual(t, run1.ID, run2.ID)
	})

	t.Run("different jobs independent", func(t *testing.T) {
		rm := NewRunManager()
		run1 := startTestRun(t, rm, "a")
		run2 := startTestRun(t, rm, "b")
		assert.NotEqual(t, run1.ID, run2.ID)
		assert.Len(t, rm.ListRuns(), 2)
	})
}

func TestFinishRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rm := NewRunManager()
		run := startTestRun(t, rm, "docs")
		rm.FinishRun(run.ID, models.JobResult{JobKey: "docs", Success: true, Headings: 7, Mismatches: []string{"c++"}})

		got := rm.GetRun(run.ID)
		require.NotNil(t, got)
		assert.Equal(t, RunStatusCompleted, got.Status)
		assert.Equal(t, 7, got.Headings)
		assert.Equal(t, []string{"c++"}, got.Mismatches)
		assert.False(t, got.CompletedAt.IsZero())
		assert.False(t, rm.IsRunning("docs"))
	})

	t.Run("failure keeps error message", func(t *testing.T) {
		rm := NewRunManager()
		run := startTestRun(t, rm, "docs")
		rm.FinishRun(run.ID, models.JobResult{JobKey: "docs", Error: utils.ErrMarkerNotFound})

		got := rm.GetRun(run.ID)
		assert.Equal(t, RunStatusFailed, got.Status)
		assert.Equal(t, utils.ErrMarkerNotFound.Error(), got.ErrorMessage)
	})

	t.Run("unknown id ignored", func(t *testing.T) {
		rm := NewRunManager()
		rm.FinishRun("missing", models.JobResult{Success: true})
		assert.Empty(t, rm.ListRuns())
	})
}

func TestGetRunReturnsCopy(t *testing.T) {
	rm := NewRunManager()
	run := startTestRun(t, rm, "docs")

	got := rm.GetRun(run.ID)
	got.Status = RunStatusFailed

	assert.Equal(t, RunStatusRunning, rm.GetRun(run.ID).Status)
	assert.Nil(t, rm.GetRun("nonexistent"))
}

func TestLastRun(t *testing.T) {
	rm := NewRunManager()
	assert.Nil(t, rm.LastRun("docs"))

	run1 := startTestRun(t, rm, "docs")
	rm.FinishRun(run1.ID, models.JobResult{Success: true})
	run2 := startTestRun(t, rm, "docs")

	last := rm.LastRun("docs")
	require.NotNil(t, last)
	if !run2.StartedAt.Equal(run1.StartedAt) {
		assert.Equal(t, run2.ID, last.ID)
	}
}

func TestRunManagerConcurrentStart(t *testing.T) {
	rm := NewRunManager()
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := rm.StartRun("docs"); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
}
