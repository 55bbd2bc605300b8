// Package countdown implements a restartable countdown anchored to a
// persisted wall-clock deadline.
//
// The deadline (epoch milliseconds) is the only durable fact. Every
// observation recomputes the remaining seconds from the deadline and the
// current time, so the countdown stays correct across process suspension.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
)

// DefaultKey is the storage key of a Timer created without WithKey.
// Unrelated countdowns must use distinct keys.
const DefaultKey = "countdown_end_time"

const tickInterval = time.Second

// ErrInvalidDuration is returned by Start for a non-positive duration.
var ErrInvalidDuration = errors.New("countdown duration must be positive")

// Option configures a Timer.
type Option func(*Timer)

// WithKey sets the storage key of the persisted deadline.
func WithKey(key string) Option {
	return func(t *Timer) {
		t.key = key
	}
}

// WithClock replaces the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

// WithOnChange registers fn to receive every change of the visible counter.
// fn runs outside the timer's lock but on the tick goroutine, so it must
// not call Start, Stop or Close.
func WithOnChange(fn func(remaining int)) Option {
	return func(t *Timer) {
		t.onChange = fn
	}
}

// schedule is one running tick loop bound to a deadline.
type schedule struct {
	deadline int64
	cancel   context.CancelFunc
	done     chan struct{}
}

// Timer is a countdown whose deadline is persisted in a KVStore.
type Timer struct {
	key      string
	store    model.KVStore
	clock    clockwork.Clock
	logger   *logger.Logger
	onChange func(int)

	mu        sync.Mutex
	remaining int
	current   *schedule
}

// New creates a Timer persisting its deadline in store.
func New(store model.KVStore, logger *logger.Logger, opts ...Option) *Timer {
	t := &Timer{
		key:    DefaultKey,
		store:  store,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Key returns the storage key of the persisted deadline.
func (t *Timer) Key() string {
	return t.key
}

// Remaining returns the visible counter in seconds.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether a tick loop is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil
}

// Start persists a deadline seconds from now and begins ticking. A running
// schedule is cancelled first. The counter shows seconds immediately.
//
// ctx bounds the tick loop: when it is cancelled the timer stops as if
// Stop was called, leaving the persisted deadline for Restore.
func (t *Timer) Start(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, seconds)
	}

	t.mu.Lock()
	deadline := t.clock.Now().UnixMilli() + int64(seconds)*int64(time.Second/time.Millisecond)
	if err := t.store.SetValue(ctx, t.key, deadline); err != nil {
		t.logger.Error("Countdown: failed to persist deadline",
			"key", t.key,
			"error", err.Error())
	}
	prev := t.schedule(ctx, deadline)
	t.remaining = seconds
	t.mu.Unlock()

	t.cancel(prev)
	t.notify(seconds)

	t.logger.Debug("Countdown: started",
		"key", t.key,
		"seconds", seconds,
		"deadline_ms", deadline)

	return nil
}

// Stop cancels the tick loop and resets the counter to zero. The persisted
// deadline is left untouched. Stop is safe to call repeatedly.
func (t *Timer) Stop() {
	t.mu.Lock()
	prev := t.current
	t.current = nil
	changed := t.remaining != 0
	t.remaining = 0
	t.mu.Unlock()

	t.cancel(prev)
	if changed {
		t.notify(0)
	}
}

// Close tears the timer down when its owning scope ends.
func (t *Timer) Close() {
	t.Stop()
}

// Restore resumes a countdown from the persisted deadline. Without a
// deadline it does nothing. An expired deadline is deleted and the counter
// stays at zero.
func (t *Timer) Restore(ctx context.Context) {
	deadline, err := t.store.GetValue(ctx, t.key)
	if errors.Is(err, model.ErrNotFound) {
		return
	}
	if err != nil {
		t.logger.Error("Countdown: failed to read deadline",
			"key", t.key,
			"error", err.Error())
		return
	}

	t.mu.Lock()
	remaining := remainingSeconds(deadline, t.clock.Now())
	if remaining <= 0 {
		prev := t.current
		t.current = nil
		t.remaining = 0
		t.removeDeadline(ctx)
		t.mu.Unlock()

		t.cancel(prev)
		t.logger.Debug("Countdown: restored deadline already expired", "key", t.key)
		return
	}
	prev := t.schedule(ctx, deadline)
	t.remaining = remaining
	t.mu.Unlock()

	t.cancel(prev)
	t.notify(remaining)

	t.logger.Debug("Countdown: restored",
		"key", t.key,
		"remaining", remaining)
}

// schedule installs a new tick loop for deadline and returns the one it
// replaced. Callers hold t.mu.
func (t *Timer) schedule(ctx context.Context, deadline int64) *schedule {
	sctx, cancel := context.WithCancel(ctx)
	s := &schedule{
		deadline: deadline,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	ticker := t.clock.NewTicker(tickInterval)

	prev := t.current
	t.current = s
	go t.run(sctx, s, ticker)

	return prev
}

// cancel stops s and waits for its loop to exit. Callers must not hold t.mu.
func (t *Timer) cancel(s *schedule) {
	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (t *Timer) run(ctx context.Context, s *schedule, ticker clockwork.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.release(s)
			return
		case <-ticker.Chan():
			if !t.tick(ctx, s) {
				return
			}
		}
	}
}

// tick recomputes the counter from the deadline. It returns false once the
// schedule is no longer current or has expired.
func (t *Timer) tick(ctx context.Context, s *schedule) bool {
	t.mu.Lock()
	if t.current != s {
		t.mu.Unlock()
		return false
	}

	remaining := remainingSeconds(s.deadline, t.clock.Now())
	if remaining <= 0 {
		t.current = nil
		t.remaining = 0
		t.removeDeadline(ctx)
		t.mu.Unlock()

		t.notify(0)
		t.logger.Debug("Countdown: expired", "key", t.key)
		return false
	}

	t.remaining = remaining
	t.mu.Unlock()

	t.notify(remaining)
	return true
}

// release clears s after its scope ended without touching the store.
func (t *Timer) release(s *schedule) {
	t.mu.Lock()
	if t.current != s {
		t.mu.Unlock()
		return
	}
	t.current = nil
	changed := t.remaining != 0
	t.remaining = 0
	t.mu.Unlock()

	if changed {
		t.notify(0)
	}
}

// removeDeadline deletes the persisted deadline. Callers hold t.mu.
func (t *Timer) removeDeadline(ctx context.Context) {
	if err := t.store.RemoveValue(ctx, t.key); err != nil && !errors.Is(err, model.ErrNotFound) {
		t.logger.Error("Countdown: failed to remove deadline",
			"key", t.key,
			"error", err.Error())
	}
}

func (t *Timer) notify(remaining int) {
	if t.onChange != nil {
		t.onChange(remaining)
	}
}

// remainingSeconds is ceil((deadline - now) / 1s), or 0 once expired.
func remainingSeconds(deadlineMs int64, now time.Time) int {
	diff := deadlineMs - now.UnixMilli()
	if diff <= 0 {
		return 0
	}
	return int((diff + 999) / 1000)
}
