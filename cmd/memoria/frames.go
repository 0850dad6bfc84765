package main

import (
	"sync"
)

// framePool is the global physical frame allocator: a flat byte arena plus
// a free bitmap, addressed by page-frame number (pfn), in the naming
// convention of gopheros's kernel/mem/pfn and kernel/mem/pmm packages. It
// has its own lock, independent of any per-process lock.
type framePool struct {
	mu       sync.Mutex
	mem      []byte
	free     []bool
	pageSize int
}

func newFramePool(totalFrames, pageSize int) *framePool {
	fp := &framePool{
		mem:      make([]byte, totalFrames*pageSize),
		free:     make([]bool, totalFrames),
		pageSize: pageSize,
	}
	for i := range fp.free {
		fp.free[i] = true
	}
	return fp
}

// allocFrame returns a byte slice backing one free physical frame, or nil
// if none remain.
func (fp *framePool) allocFrame() (pfn int, frame []byte) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	for i, isFree := range fp.free {
		if isFree {
			fp.free[i] = false
			start := i * fp.pageSize
			return i, fp.mem[start : start+fp.pageSize]
		}
	}
	return -1, nil
}

func (fp *framePool) freeFrame(pfn int) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if pfn < 0 || pfn >= len(fp.free) {
		return
	}
	start := pfn * fp.pageSize
	for i := start; i < start+fp.pageSize; i++ {
		fp.mem[i] = 0
	}
	fp.free[pfn] = true
}

func (fp *framePool) frameAt(pfn int) []byte {
	start := pfn * fp.pageSize
	return fp.mem[start : start+fp.pageSize]
}

func (fp *framePool) countFree() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	n := 0
	for _, isFree := range fp.free {
		if isFree {
			n++
		}
	}
	return n
}
