package loginguard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestGuard(cfg Config) (*Guard, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := New(cfg)
	g.now = clock.now
	return g, clock
}

func TestDefaults(t *testing.T) {
	g := New(Config{})
	assert.Equal(t, 3, g.maxFailures)
	assert.Equal(t, 5*time.Minute, g.windowDuration)
	assert.Equal(t, 5*time.Minute, g.blockDuration)
}

func TestBlocksAfterMaxFailures(t *testing.T) {
	g, _ := newTestGuard(Config{MaxFailures: 3})
	key := "admin@10.0.0.1"

	assert.False(t, g.RecordFailure(key))
	assert.Equal(t, 2, g.RemainingAttempts(key))
	assert.False(t, g.RecordFailure(key))
	assert.False(t, g.IsBlocked(key))

	assert.True(t, g.RecordFailure(key))
	assert.True(t, g.IsBlocked(key))
	assert.Equal(t, 0, g.RemainingAttempts(key))
	assert.False(t, g.BlockedUntil(key).IsZero())

	// other keys are unaffected
	assert.False(t, g.IsBlocked("admin@10.0.0.2"))
}

func TestBlockExpires(t *testing.T) {
	g, clock := newTestGuard(Config{MaxFailures: 1, BlockDuration: time.Minute})
	key := "admin@fw"

	assert.True(t, g.RecordFailure(key))
	assert.Equal(t, clock.t.Add(time.Minute), g.BlockedUntil(key))

	clock.t = clock.t.Add(59 * time.Second)
	assert.True(t, g.IsBlocked(key))

	clock.t = clock.t.Add(time.Second)
	assert.False(t, g.IsBlocked(key))
	assert.True(t, g.BlockedUntil(key).IsZero())
	assert.Equal(t, 1, g.RemainingAttempts(key))
}

func TestWindowResets(t *testing.T) {
	g, clock := newTestGuard(Config{MaxFailures: 2, WindowDuration: time.Minute})
	key := "admin@fw"

	g.RecordFailure(key)
	clock.t = clock.t.Add(2 * time.Minute)

	assert.False(t, g.RecordFailure(key), "failure outside the window starts a new count")
	assert.Equal(t, 1, g.RemainingAttempts(key))
}

func TestRecordSuccessClears(t *testing.T) {
	g, _ := newTestGuard(Config{MaxFailures: 2})
	key := "admin@fw"

	g.RecordFailure(key)
	g.RecordSuccess(key)
	assert.Equal(t, 2, g.RemainingAttempts(key))
}
