package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// ProcessMemory is the per-process memory record: the address-space
// layout, the page-metadata table, the swap-slot bitmap and the handles
// to the backing files. A single mutex protects every mutable field —
// every fault, eviction, exec-load and stats operation on a process runs
// holding that process's lock.
type ProcessMemory struct {
	mu sync.Mutex

	PID int

	TextStart, TextEnd int
	DataStart, DataEnd int
	HeapStart          int
	StackBottom        int
	StackTop           int
	Sz                 int // current address-space high-water mark (sbrk)

	Pages           []PageInfo
	NumSwappedPages int
	NextFifoSeq     int64

	pt     *pageTable
	frames map[int]int // va -> pfn, for resident pages owned by this process

	swapBitmap   []uint64 // MaxSwapSlots bits
	maxProcPages int
	maxSwapSlots int
	pageSize     int

	swapFile  *os.File
	swapPath  string
	execPath  string
	execSize  int64

	execLines []string

	killed bool
}

func newProcessMemory(pid int, pageSize, maxProcPages, maxSwapSlots int, swapDir string) (*ProcessMemory, error) {
	swapPath := fmt.Sprintf("%s/pgswp%d", swapDir, pid)
	if err := os.MkdirAll(swapDir, 0755); err != nil {
		return nil, fmt.Errorf("crear directorio para swap: %w", err)
	}
	f, err := os.OpenFile(swapPath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("crear archivo SWAP: %w", err)
	}

	words := (maxSwapSlots + 63) / 64
	pm := &ProcessMemory{
		PID:          pid,
		Pages:        make([]PageInfo, 0, maxProcPages),
		swapBitmap:   make([]uint64, words),
		maxProcPages: maxProcPages,
		maxSwapSlots: maxSwapSlots,
		pageSize:     pageSize,
		swapFile:     f,
		swapPath:     swapPath,
		pt:           newPageTable(),
		frames:       make(map[int]int),
	}
	logging.Info.Info("Archivo SWAP creado", "pid", pid, "archivo", swapPath)
	return pm, nil
}

func (pm *ProcessMemory) close() {
	if pm.swapFile != nil {
		pm.swapFile.Close()
	}
	os.Remove(pm.swapPath)
}

// --- process registry ---

type processRegistry struct {
	mu    sync.RWMutex
	procs map[int]*ProcessMemory
}

func newProcessRegistry() *processRegistry {
	return &processRegistry{procs: make(map[int]*ProcessMemory)}
}

func (r *processRegistry) get(pid int) *ProcessMemory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.procs[pid]
}

func (r *processRegistry) put(pm *ProcessMemory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[pm.PID] = pm
}

func (r *processRegistry) remove(pid int) {
	r.mu.Lock()
	pm := r.procs[pid]
	delete(r.procs, pid)
	r.mu.Unlock()
	if pm != nil {
		pm.close()
	}
}
