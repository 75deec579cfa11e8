package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_ValidLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", &buf)

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "Setting log level to: debug")
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("loud", &buf)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level 'loud'")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	entry := Component(NewLogger("info", &buf), "writer")

	entry.Info("hello")

	assert.Equal(t, "writer", entry.Data["component"])
	assert.Contains(t, buf.String(), "component=writer")
}

func TestDiscard(t *testing.T) {
	entry := Discard()

	assert.NotPanics(t, func() { entry.Errorf("error %s", "test") })
	assert.NotPanics(t, func() { entry.Warnf("warning %d", 42) })
}

func TestBadgerLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf)
	adapter := NewBadgerLogrusAdapter(Component(logger, "badgerdb"))

	adapter.Infof("opening %s", "vlog")
	assert.NotContains(t, buf.String(), "opening vlog")

	adapter.Warningf("compaction %d", 3)
	adapter.Errorf("sync failed")
	out := buf.String()
	assert.Contains(t, out, "compaction 3")
	assert.Contains(t, out, "sync failed")
	assert.Contains(t, out, "component=badgerdb")
}
