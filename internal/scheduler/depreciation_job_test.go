package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRefresher struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (r *countingRefresher) RefreshDepreciation(_ context.Context, asOf time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, asOf)
	return len(r.calls), r.err
}

func TestDepreciationJob_RunNow(t *testing.T) {
	refresher := &countingRefresher{}
	job, err := NewDepreciationJob("15 0 * * *", refresher, time.Minute, zap.NewNop())
	require.NoError(t, err)
	defer job.Cancel()

	job.RunNow()
	require.Len(t, refresher.calls, 1)
	asOf := refresher.calls[0]
	assert.Equal(t, 0, asOf.Hour(), "пересчёт идёт на дату без времени")
	assert.Equal(t, time.UTC, asOf.Location())
}

func TestDepreciationJob_ErrorIsLoggedNotPanics(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("db down")}
	job, err := NewDepreciationJob("@daily", refresher, 0, zap.NewNop())
	require.NoError(t, err)
	defer job.Cancel()

	assert.NotPanics(t, job.RunNow)
}

func TestScheduledTask_InvalidSpec(t *testing.T) {
	_, err := NewDepreciationJob("каждый день", &countingRefresher{}, time.Minute, zap.NewNop())
	assert.Error(t, err)
}

func TestScheduledTask_NextAndCancel(t *testing.T) {
	job, err := NewDepreciationJob("15 0 * * *", &countingRefresher{}, time.Minute, zap.NewNop())
	require.NoError(t, err)
	job.Start()

	next := job.Next()
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 15, next.Minute())

	job.Cancel()
	job.Cancel()
}
