package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	state, found, err := store.GetJobState("docs")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.JobState{}, state)
}

func TestBadgerStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	want := models.JobState{
		SourceHash:     "abc123",
		LastRunTime:    now,
		LastRunSuccess: true,
		Headings:       42,
	}

	require.NoError(t, store.PutJobState("docs", want))

	got, found, err := store.GetJobState("docs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want.SourceHash, got.SourceHash)
	assert.Equal(t, want.Headings, got.Headings)
	assert.True(t, want.LastRunTime.Equal(got.LastRunTime))

	want.SourceHash = "def456"
	require.NoError(t, store.PutJobState("docs", want))
	got, _, err = store.GetJobState("docs")
	require.NoError(t, err)
	assert.Equal(t, "def456", got.SourceHash)
}

func TestBadgerStore_ListAndDelete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.PutJobState("a", models.JobState{SourceHash: "1"}))
	require.NoError(t, store.PutJobState("b", models.JobState{SourceHash: "2"}))

	states, err := store.ListJobStates()
	require.NoError(t, err)
	assert.Len(t, states, 2)
	assert.Equal(t, "2", states["b"].SourceHash)

	require.NoError(t, store.DeleteJobState("a"))
	require.NoError(t, store.DeleteJobState("never-stored"))

	states, err = store.ListJobStates()
	require.NoError(t, err)
	assert.Len(t, states, 1)
	assert.Contains(t, states, "b")
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewBadgerStore(dir, testLogger())
	require.NoError(t, err)
	require.NoError(t, store1.PutJobState("docs", models.JobState{SourceHash: "abc", LastRunSuccess: true}))
	require.NoError(t, store1.Close())

	store2, err := NewBadgerStore(dir, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store2.Close() })

	got, found, err := store2.GetJobState("docs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", got.SourceHash)
}

func TestBadgerStore_CloseTwice(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestBadgerStore_RunGCStops(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunGC(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunGC did not stop after context cancellation")
	}
}

var _ StateStore = (*BadgerStore)(nil)
