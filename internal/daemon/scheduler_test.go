package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		id, err := s.ScheduleEvery("poll", 10*time.Second, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleEvery("poll", 0, func() {})
		require.Error(t, err)
	})
}

func TestScheduler_RunsTaskImmediately(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	var fired atomic.Int32
	_, err = s.ScheduleEvery("poll", time.Hour, func() { fired.Add(1) })
	require.NoError(t, err)

	s.Start(context.Background())

	require.Eventually(t, func() bool { return fired.Load() >= 1 },
		2*time.Second, 10*time.Millisecond, "first poll should fire on start, not after one interval")
}

func TestScheduler_Remove(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	id, err := s.ScheduleEvery("poll", time.Hour, func() {})
	require.NoError(t, err)
	require.NoError(t, s.Remove(id))

	require.Error(t, s.Remove("not-a-uuid"))
}
