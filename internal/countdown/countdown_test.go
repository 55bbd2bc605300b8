package countdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dtroode/quicklogin/internal/model"
	"github.com/dtroode/quicklogin/internal/repository/memory"
	"github.com/dtroode/quicklogin/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = time.Second
	poll    = 5 * time.Millisecond
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestTimer(t *testing.T, opts ...Option) (*Timer, *memory.KVStore, *clockwork.FakeClock) {
	t.Helper()
	store := memory.NewKVStore()
	clk := clockwork.NewFakeClockAt(epoch)
	timer := New(store, testutil.MakeNoopLogger(), append([]Option{WithClock(clk)}, opts...)...)
	t.Cleanup(timer.Close)
	return timer, store, clk
}

// requireTickers waits until exactly n tickers are live on clk.
func requireTickers(t *testing.T, clk *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, clk.BlockUntilContext(ctx, n))
}

func persisted(t *testing.T, store model.KVStore, key string) (int64, bool) {
	t.Helper()
	v, err := store.GetValue(context.Background(), key)
	if errors.Is(err, model.ErrNotFound) {
		return 0, false
	}
	require.NoError(t, err)
	return v, true
}

func TestStart_ShowsSecondsImmediately(t *testing.T) {
	for _, seconds := range []int{1, 5, 60, 3600} {
		timer, _, _ := newTestTimer(t)

		require.NoError(t, timer.Start(context.Background(), seconds))

		assert.Equal(t, seconds, timer.Remaining())
		assert.True(t, timer.Running())
	}
}

func TestStart_PersistsDeadline(t *testing.T) {
	timer, store, _ := newTestTimer(t, WithKey("sms_cooldown"))

	require.NoError(t, timer.Start(context.Background(), 60))

	deadline, ok := persisted(t, store, "sms_cooldown")
	require.True(t, ok)
	assert.Equal(t, epoch.UnixMilli()+60_000, deadline)

	_, ok = persisted(t, store, DefaultKey)
	assert.False(t, ok, "custom key must not touch the default key")
}

func TestStart_RejectsNonPositive(t *testing.T) {
	timer, store, _ := newTestTimer(t)

	for _, seconds := range []int{0, -1} {
		err := timer.Start(context.Background(), seconds)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	}

	assert.False(t, timer.Running())
	_, ok := persisted(t, store, DefaultKey)
	assert.False(t, ok)
}

func TestTick_RecomputesFromWallClock(t *testing.T) {
	timer, _, clk := newTestTimer(t)
	require.NoError(t, timer.Start(context.Background(), 60))

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return timer.Remaining() == 59 }, waitFor, poll)

	// forty seconds pass while at most one tick can be buffered
	clk.Advance(40 * time.Second)
	require.Eventually(t, func() bool { return timer.Remaining() == 19 }, waitFor, poll)
}

func TestTick_ExpiryRemovesDeadline(t *testing.T) {
	timer, store, clk := newTestTimer(t)
	require.NoError(t, timer.Start(context.Background(), 60))

	clk.Advance(61 * time.Second)

	require.Eventually(t, func() bool { return !timer.Running() }, waitFor, poll)
	assert.Equal(t, 0, timer.Remaining())
	_, ok := persisted(t, store, DefaultKey)
	assert.False(t, ok)
	requireTickers(t, clk, 0)
}

func TestStop_IsIdempotent(t *testing.T) {
	timer, store, clk := newTestTimer(t)
	require.NoError(t, timer.Start(context.Background(), 30))

	timer.Stop()
	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Running())

	timer.Stop()
	assert.Equal(t, 0, timer.Remaining())
	requireTickers(t, clk, 0)

	// stop never clears the persisted deadline
	_, ok := persisted(t, store, DefaultKey)
	assert.True(t, ok)
}

func TestStop_WithoutStart(t *testing.T) {
	timer, _, _ := newTestTimer(t)

	timer.Stop()

	assert.Equal(t, 0, timer.Remaining())
}

func TestStart_RestartCancelsPreviousSchedule(t *testing.T) {
	timer, store, clk := newTestTimer(t)
	require.NoError(t, timer.Start(context.Background(), 10))
	require.NoError(t, timer.Start(context.Background(), 100))

	assert.Equal(t, 100, timer.Remaining())
	requireTickers(t, clk, 1)

	deadline, ok := persisted(t, store, DefaultKey)
	require.True(t, ok)
	assert.Equal(t, epoch.UnixMilli()+100_000, deadline)

	// past the first deadline but well before the second
	clk.Advance(11 * time.Second)
	require.Eventually(t, func() bool { return timer.Remaining() == 89 }, waitFor, poll)
	assert.True(t, timer.Running())
}

func TestRestore_Absent(t *testing.T) {
	timer, _, clk := newTestTimer(t)

	timer.Restore(context.Background())

	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Running())
	requireTickers(t, clk, 0)
}

func TestRestore_ResumesWithoutRepersisting(t *testing.T) {
	timer, store, clk := newTestTimer(t)
	deadline := epoch.UnixMilli() + 30_500
	require.NoError(t, store.SetValue(context.Background(), DefaultKey, deadline))

	timer.Restore(context.Background())

	assert.Equal(t, 31, timer.Remaining())
	assert.True(t, timer.Running())
	got, ok := persisted(t, store, DefaultKey)
	require.True(t, ok)
	assert.Equal(t, deadline, got)

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return timer.Remaining() == 30 }, waitFor, poll)
}

func TestRestore_ExpiredDeadline(t *testing.T) {
	tests := []struct {
		name     string
		deadline int64
	}{
		{name: "exactly now", deadline: epoch.UnixMilli()},
		{name: "in the past", deadline: epoch.UnixMilli() - 5_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer, store, _ := newTestTimer(t)
			require.NoError(t, store.SetValue(context.Background(), DefaultKey, tt.deadline))

			timer.Restore(context.Background())

			assert.Equal(t, 0, timer.Remaining())
			assert.False(t, timer.Running())
			_, ok := persisted(t, store, DefaultKey)
			assert.False(t, ok)
		})
	}
}

func TestRestore_AfterRemount(t *testing.T) {
	store := memory.NewKVStore()
	clk := clockwork.NewFakeClockAt(epoch)

	first := New(store, testutil.MakeNoopLogger(), WithClock(clk))
	require.NoError(t, first.Start(context.Background(), 60))
	first.Close()

	requireTickers(t, clk, 0)
	clk.Advance(45 * time.Second)

	second := New(store, testutil.MakeNoopLogger(), WithClock(clk))
	t.Cleanup(second.Close)
	second.Restore(context.Background())

	assert.Equal(t, 15, second.Remaining())
	assert.True(t, second.Running())
}

func TestScopeCancellation_TearsDownTick(t *testing.T) {
	timer, store, clk := newTestTimer(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, timer.Start(ctx, 60))
	cancel()

	require.Eventually(t, func() bool { return !timer.Running() }, waitFor, poll)
	assert.Equal(t, 0, timer.Remaining())
	requireTickers(t, clk, 0)

	_, ok := persisted(t, store, DefaultKey)
	assert.True(t, ok, "scope teardown keeps the deadline for restore")
}

func TestOnChange_ReceivesCounterUpdates(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	timer, _, clk := newTestTimer(t, WithOnChange(func(remaining int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, remaining)
	}))
	snapshot := func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), seen...)
	}

	require.NoError(t, timer.Start(context.Background(), 2))
	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return len(snapshot()) == 2 }, waitFor, poll)
	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return len(snapshot()) == 3 }, waitFor, poll)

	assert.Equal(t, []int{2, 1, 0}, snapshot())
}

type failingStore struct{}

func (failingStore) GetValue(context.Context, string) (int64, error) {
	return 0, errors.New("disk unavailable")
}

func (failingStore) SetValue(context.Context, string, int64) error {
	return errors.New("disk unavailable")
}

func (failingStore) RemoveValue(context.Context, string) error {
	return errors.New("disk unavailable")
}

func TestStoreFailures_AreNotFatal(t *testing.T) {
	clk := clockwork.NewFakeClockAt(epoch)
	timer := New(failingStore{}, testutil.MakeNoopLogger(), WithClock(clk))
	t.Cleanup(timer.Close)

	timer.Restore(context.Background())
	assert.False(t, timer.Running())

	require.NoError(t, timer.Start(context.Background(), 5))
	assert.Equal(t, 5, timer.Remaining())

	clk.Advance(6 * time.Second)
	require.Eventually(t, func() bool { return !timer.Running() }, waitFor, poll)
}

func TestRemainingSeconds(t *testing.T) {
	now := epoch
	ms := now.UnixMilli()

	tests := []struct {
		name     string
		deadline int64
		want     int
	}{
		{name: "expired", deadline: ms - 1, want: 0},
		{name: "exactly now", deadline: ms, want: 0},
		{name: "one millisecond left rounds up", deadline: ms + 1, want: 1},
		{name: "whole seconds", deadline: ms + 60_000, want: 60},
		{name: "partial second rounds up", deadline: ms + 59_001, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, remainingSeconds(tt.deadline, now))
		})
	}
}
