package utils

import (
	"sync"
	"time"
)

// Wall clock for a run, with laps for its phases.
type Watch struct {
	mu        sync.Mutex
	startTime time.Time
	lapTime   time.Time
}

func (w *Watch) Start() {
	w.mu.Lock()
	w.startTime = time.Now()
	w.lapTime = w.startTime
	w.mu.Unlock()
}

func (w *Watch) Elapsed() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.startTime.IsZero() {
		return 0
	}
	return time.Since(w.startTime)
}

// Time since the previous lap (or the start), and begins the next lap.
func (w *Watch) Lap() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.startTime.IsZero() {
		panic("watch lap before start")
	}
	now := time.Now()
	d := now.Sub(w.lapTime)
	w.lapTime = now
	return d
}
