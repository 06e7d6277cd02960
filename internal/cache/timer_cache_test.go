package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "worktracker.com/worktracker/internal/models"
)

func TestMemoryTimerCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryTimerCache()

	_, err := c.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "alice", nil))
	timer, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, timer)

	running := &model.ActiveTimer{UserID: "alice", TaskID: "t1", StartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, c.Set(ctx, "alice", running))
	running.TaskID = "mutated"

	timer, err = c.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, timer)
	assert.Equal(t, "t1", timer.TaskID)

	require.NoError(t, c.Delete(ctx, "alice"))
	_, err = c.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
