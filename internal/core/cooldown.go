package core

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type cooldownKey struct {
	command string
	userID  string
}

// MemoryCooldowns is a process-local CooldownStore. Each (command, user) pair
// gets a token bucket holding one use that refills once per cooldown.
type MemoryCooldowns struct {
	mu       sync.Mutex
	limiters map[cooldownKey]*rate.Limiter
	now      func() time.Time
}

func NewMemoryCooldowns() *MemoryCooldowns {
	return &MemoryCooldowns{
		limiters: map[cooldownKey]*rate.Limiter{},
		now:      time.Now,
	}
}

// CheckAndRecordUse consumes the caller's use, or returns the remaining wait
// without touching the bucket.
func (m *MemoryCooldowns) CheckAndRecordUse(_ context.Context, userID string, cmd *Command) (time.Duration, error) {
	if cmd.Cooldown <= 0 {
		return 0, nil
	}
	now := m.now()
	every := rate.Every(cmd.Cooldown)

	m.mu.Lock()
	defer m.mu.Unlock()

	key := cooldownKey{command: cmd.Name, userID: userID}
	lim, ok := m.limiters[key]
	if !ok || lim.Limit() != every {
		lim = rate.NewLimiter(every, 1)
		m.limiters[key] = lim
	}

	if tokens := lim.TokensAt(now); tokens < 1 {
		missing := (1 - tokens) / float64(lim.Limit())
		return time.Duration(missing * float64(time.Second)), nil
	}
	lim.AllowN(now, 1)
	return 0, nil
}

// Sweep drops buckets that have fully refilled. It returns how many were
// removed.
func (m *MemoryCooldowns) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, lim := range m.limiters {
		if lim.TokensAt(now) >= 1 {
			delete(m.limiters, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked buckets.
func (m *MemoryCooldowns) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryCooldowns) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
