// Package loginguard stops a client from hammering a device with logins
// the device keeps rejecting. SonicOS locks administrator accounts after a
// handful of bad passwords, so once the limit is hit the guard refuses
// further attempts until the block expires.
package loginguard

import (
	"sync"
	"time"
)

// Guard tracks rejected logins per key (user@host).
type Guard struct {
	mu sync.Mutex

	maxFailures    int
	windowDuration time.Duration
	blockDuration  time.Duration

	failures map[string]*failureRecord

	// now is replaced in tests.
	now func() time.Time
}

type failureRecord struct {
	count     int
	firstAt   time.Time
	blockedAt time.Time
}

// Config holds guard configuration.
type Config struct {
	// MaxFailures is the number of rejected logins within the window that
	// triggers a block (default: 3)
	MaxFailures int
	// WindowDuration is the time window for counting failures (default: 5m)
	WindowDuration time.Duration
	// BlockDuration is how long further logins are refused (default: 5m)
	BlockDuration time.Duration
}

// New creates a new guard.
func New(cfg Config) *Guard {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 5 * time.Minute
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = 5 * time.Minute
	}

	return &Guard{
		maxFailures:    cfg.MaxFailures,
		windowDuration: cfg.WindowDuration,
		blockDuration:  cfg.BlockDuration,
		failures:       make(map[string]*failureRecord),
		now:            time.Now,
	}
}

// IsBlocked returns true if logins for key are currently refused.
func (g *Guard) IsBlocked(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expire(key)
	record, exists := g.failures[key]
	return exists && !record.blockedAt.IsZero()
}

// RecordFailure records a rejected login for key.
// Returns true if key is now blocked.
func (g *Guard) RecordFailure(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expire(key)
	now := g.now()

	record, exists := g.failures[key]
	if !exists {
		record = &failureRecord{firstAt: now}
		g.failures[key] = record
	}

	record.count++
	if record.count >= g.maxFailures && record.blockedAt.IsZero() {
		record.blockedAt = now
	}
	return !record.blockedAt.IsZero()
}

// RecordSuccess clears the failure record for key.
func (g *Guard) RecordSuccess(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.failures, key)
}

// RemainingAttempts returns how many rejected logins remain before blocking.
func (g *Guard) RemainingAttempts(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expire(key)
	record, exists := g.failures[key]
	if !exists {
		return g.maxFailures
	}
	if remaining := g.maxFailures - record.count; remaining > 0 {
		return remaining
	}
	return 0
}

// BlockedUntil returns when the block on key expires, or zero time if not blocked.
func (g *Guard) BlockedUntil(key string) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expire(key)
	record, exists := g.failures[key]
	if !exists || record.blockedAt.IsZero() {
		return time.Time{}
	}
	return record.blockedAt.Add(g.blockDuration)
}

// expire drops the record for key once its window and any block have passed.
// Caller holds g.mu.
func (g *Guard) expire(key string) {
	record, exists := g.failures[key]
	if !exists {
		return
	}

	now := g.now()
	if !record.blockedAt.IsZero() {
		if now.Sub(record.blockedAt) >= g.blockDuration {
			delete(g.failures, key)
		}
		return
	}
	if now.Sub(record.firstAt) > g.windowDuration {
		delete(g.failures, key)
	}
}
