package main

import "sync"

// readCounter tracks total_read_bytes, the cumulative count of bytes
// delivered by successful read() syscalls since boot, wrapping at 2^32.
// getreadcount() exposes it to user programs; grounded on xv6's
// readcount.c, where a process compares two getreadcount() samples
// around a read() to check the byte delta.
type readCounter struct {
	mu    sync.Mutex
	total uint32
}

func (r *readCounter) add(n int) uint32 {
	if n <= 0 {
		return r.get()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total += uint32(n)
	return r.total
}

func (r *readCounter) get() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
