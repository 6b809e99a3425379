package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_Basic(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewFileLogger(FileLoggerConfig{BasePath: dir})
	require.NoError(t, err)
	defer logger.Close()

	err = logger.Log(context.Background(), &Event{
		EventType:    EventTypeUserDelete,
		Status:       EventStatusSuccess,
		ActorID:      "admin-1",
		ActorEmail:   "ops@gaslink.ng",
		ResourceType: ResourceTypeUser,
		ResourceID:   "u-42",
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "audit.log"))

	events, err := logger.ReadLogs(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeUserDelete, events[0].EventType)
	assert.Equal(t, "ops@gaslink.ng", events[0].ActorEmail)
	assert.Equal(t, "u-42", events[0].ResourceID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestFileLogger_ReadLogsCount(t *testing.T) {
	logger, err := NewFileLogger(FileLoggerConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	defer logger.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, logger.Log(context.Background(), &Event{
			EventType:    EventTypeSubscriptionUpdate,
			ResourceType: ResourceTypeSubscription,
		}))
	}

	events, err := logger.ReadLogs(3)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = logger.ReadLogs(0)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestFileLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFileLogger(FileLoggerConfig{BasePath: dir, MaxSize: 64, MaxFiles: 2})
	require.NoError(t, err)
	defer logger.Close()

	tick := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	logger.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	for i := 0; i < 6; i++ {
		require.NoError(t, logger.Log(context.Background(), &Event{
			EventType:    EventTypeUserUpdate,
			ResourceType: ResourceTypeUser,
			ResourceID:   "u-1",
		}))
	}

	rotated, err := filepath.Glob(filepath.Join(dir, "audit-*.log"))
	require.NoError(t, err)
	assert.Len(t, rotated, 2)

	events, err := logger.ReadLogs(0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFileLogger_Closed(t *testing.T) {
	logger, err := NewFileLogger(FileLoggerConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	err = logger.Log(context.Background(), &Event{EventType: EventTypeUserCreate})
	assert.ErrorContains(t, err, "closed")
}

func TestNewFileLogger_RequiresDirectory(t *testing.T) {
	_, err := NewFileLogger(FileLoggerConfig{})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = NewFileLogger(FileLoggerConfig{BasePath: file})
	assert.Error(t, err)
}

func TestRecord(t *testing.T) {
	logger, err := NewFileLogger(FileLoggerConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	defer logger.Close()
	ctx := context.Background()

	require.NoError(t, Record(ctx, logger, &Event{EventType: EventTypeSubscriptionCreate, ResourceType: ResourceTypeSubscription}, nil))
	require.NoError(t, Record(ctx, logger, &Event{EventType: EventTypeSubscriptionDelete, ResourceType: ResourceTypeSubscription}, errors.New("subscription not found")))

	events, err := logger.ReadLogs(0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventStatusSuccess, events[0].Status)
	assert.Empty(t, events[0].ErrorMessage)
	assert.Equal(t, EventStatusFailure, events[1].Status)
	assert.Equal(t, "subscription not found", events[1].ErrorMessage)
}

func TestDefaultFileLoggerConfig(t *testing.T) {
	config := DefaultFileLoggerConfig("/tmp/gaslink-audit")

	assert.Equal(t, "/tmp/gaslink-audit", config.BasePath)
	assert.Equal(t, int64(10*1024*1024), config.MaxSize)
	assert.Equal(t, 5, config.MaxFiles)
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.NoError(t, l.Log(context.Background(), &Event{}))
	assert.NoError(t, l.Close())
}
