package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector keeps in-process counters. All methods are safe on a nil
// receiver so optional wiring needs no guards.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	conflicts       uint64
	totalDurationMs uint64
	bonusResults    uint64
	bonusFailures   uint64

	mu          sync.Mutex
	transitions map[string]uint64
}

func New() *Collector {
	return &Collector{transitions: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == http.StatusConflict {
		atomic.AddUint64(&c.conflicts, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Transition counts one applied workflow transition.
func (c *Collector) Transition(action string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.transitions[action]++
	c.mu.Unlock()
}

// Conflict counts a rejected transition or a lost optimistic update.
func (c *Collector) Conflict() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.conflicts, 1)
}

func (c *Collector) BonusComputed(succeeded, failed int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.bonusResults, uint64(succeeded))
	atomic.AddUint64(&c.bonusFailures, uint64(failed))
}

func (c *Collector) Snapshot() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	transitions := make(map[string]uint64, len(c.transitions))
	for action, n := range c.transitions {
		transitions[action] = n
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        atomic.LoadUint64(&c.errorRequests),
		"conflictsTotal":     atomic.LoadUint64(&c.conflicts),
		"avgDurationMs":      avg,
		"totalDurationMs":    totalMs,
		"transitionsTotal":   transitions,
		"bonusResultsTotal":  atomic.LoadUint64(&c.bonusResults),
		"bonusFailuresTotal": atomic.LoadUint64(&c.bonusFailures),
	}
}
