package main

import "sync"

// tickCounter is the global tick source, advanced on every timer
// interrupt reported by a CPU. Kept behind its own lock, independent of
// the scheduler's run-queue lock, since every accounting read/write is a
// single increment with no other invariant to protect.
type tickCounter struct {
	mu    sync.Mutex
	ticks int64
}

func (t *tickCounter) advance() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks++
	return t.ticks
}

func (t *tickCounter) now() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}
