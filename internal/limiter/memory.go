package limiter

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	fails        int
	lastFailure  time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter for single-instance deployments and tests.
type Memory struct {
	mu      sync.Mutex
	policy  Policy
	entries map[string]*memEntry
	now     func() time.Time
}

// NewMemory constructs an in-process limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{policy: p, entries: map[string]*memEntry{}, now: time.Now}
}

func memKey(username string, ipHash []byte) string { return username + "\x00" + string(ipHash) }

// Allow reports whether the pair is currently unblocked.
func (m *Memory) Allow(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memKey(username, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if left := e.blockedUntil.Sub(m.now()); left > 0 {
		return false, left, nil
	}
	return true, 0, nil
}

// Success forgets the pair.
func (m *Memory) Success(_ context.Context, username string, ipHash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memKey(username, ipHash))
	return nil
}

// Failure records a failure and blocks once MaxFails is reached within Window.
func (m *Memory) Failure(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	k := memKey(username, ipHash)
	e, ok := m.entries[k]
	if !ok {
		e = &memEntry{}
		m.entries[k] = e
	}
	if now.Sub(e.lastFailure) > m.policy.Window {
		e.fails = 0
	}
	e.fails++
	e.lastFailure = now
	if e.fails < m.policy.MaxFails {
		return false, 0, nil
	}
	e.blockedUntil = now.Add(m.policy.BlockFor)
	return true, m.policy.BlockFor, nil
}
