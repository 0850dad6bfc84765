package main

import (
	"os"
	"testing"
)

func newEvictionTestProcess(t *testing.T) *ProcessMemory {
	t.Helper()
	f, err := os.CreateTemp("", "pgswp-evict-*")
	if err != nil {
		t.Fatalf("creating temp swap file: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})
	return &ProcessMemory{
		maxProcPages: 16,
		maxSwapSlots: 8,
		swapBitmap:   make([]uint64, 1),
		pageSize:     64,
		TextStart:    0, TextEnd: 128,
		HeapStart: 128, StackBottom: 512, StackTop: 640,
		pt:       newPageTable(),
		frames:   make(map[int]int),
		swapFile: f,
	}
}

func TestEvictOnePicksMinSeq(t *testing.T) {
	pm := newEvictionTestProcess(t)
	fp := newFramePool(3, 64)

	pfnA, _ := fp.allocFrame()
	pm.Pages = append(pm.Pages, PageInfo{VA: 128, State: Resident, Seq: 5})
	pm.pt.mapPage(128, pfnA, PermU|PermR|PermW)
	pm.frames[128] = pfnA

	pfnB, _ := fp.allocFrame()
	pm.Pages = append(pm.Pages, PageInfo{VA: 192, State: Resident, Seq: 2})
	pm.pt.mapPage(192, pfnB, PermU|PermR|PermW)
	pm.frames[192] = pfnB

	pm.mu.Lock()
	freedPfn, err := evictOne(pm, fp)
	pm.mu.Unlock()
	if err != nil {
		t.Fatalf("evictOne: %v", err)
	}
	if freedPfn != pfnB {
		t.Errorf("expected the lower-seq page's frame (%d) to be freed, got %d", pfnB, freedPfn)
	}
	if pm.pt.isMapped(192) {
		t.Error("expected the victim page to be unmapped")
	}
	if !pm.pt.isMapped(128) {
		t.Error("expected the non-victim page to remain mapped")
	}
}

func TestEvictOneDiscardsCleanText(t *testing.T) {
	pm := newEvictionTestProcess(t)
	fp := newFramePool(1, 64)

	pfn, _ := fp.allocFrame()
	pm.Pages = append(pm.Pages, PageInfo{VA: 0, State: Resident, Seq: 1, Dirty: false})
	pm.pt.mapPage(0, pfn, PermU|PermR|PermX)
	pm.frames[0] = pfn

	pm.mu.Lock()
	_, err := evictOne(pm, fp)
	pm.mu.Unlock()
	if err != nil {
		t.Fatalf("evictOne: %v", err)
	}
	if pm.Pages[0].State != Unmapped {
		t.Errorf("expected a clean text page to be discarded (state UNMAPPED), got %v", pm.Pages[0].State)
	}
	if pm.NumSwappedPages != 0 {
		t.Errorf("expected discard to not consume a swap slot, got NumSwappedPages=%d", pm.NumSwappedPages)
	}
}

func TestEvictOneSwapsOutDirtyOrNonText(t *testing.T) {
	pm := newEvictionTestProcess(t)
	fp := newFramePool(1, 64)

	pfn, _ := fp.allocFrame()
	pm.Pages = append(pm.Pages, PageInfo{VA: 128, State: Resident, Seq: 1, Dirty: false})
	pm.pt.mapPage(128, pfn, PermU|PermR|PermW)
	pm.frames[128] = pfn

	pm.mu.Lock()
	_, err := evictOne(pm, fp)
	pm.mu.Unlock()
	if err != nil {
		t.Fatalf("evictOne: %v", err)
	}
	if pm.Pages[0].State != Swapped {
		t.Errorf("expected a heap page to be swapped out rather than discarded, got %v", pm.Pages[0].State)
	}
	if pm.NumSwappedPages != 1 {
		t.Errorf("expected NumSwappedPages=1 after swap-out eviction, got %d", pm.NumSwappedPages)
	}
}

func TestEvictOneNoResidentPagesIsError(t *testing.T) {
	pm := newEvictionTestProcess(t)
	fp := newFramePool(1, 64)

	pm.mu.Lock()
	_, err := evictOne(pm, fp)
	pm.mu.Unlock()
	if err == nil {
		t.Fatal("expected evictOne to error when no RESIDENT page exists")
	}
}

func TestEvictOneSwapExhaustionIsFaultKill(t *testing.T) {
	pm := newEvictionTestProcess(t)
	pm.maxSwapSlots = 1
	pm.swapBitmap = make([]uint64, 1)
	fp := newFramePool(2, 64)

	pfnA, _ := fp.allocFrame()
	pm.Pages = append(pm.Pages, PageInfo{VA: 128, State: Resident, Seq: 1, Dirty: true})
	pm.pt.mapPage(128, pfnA, PermU|PermR|PermW)
	pm.frames[128] = pfnA

	pfnB, _ := fp.allocFrame()
	pm.Pages = append(pm.Pages, PageInfo{VA: 192, State: Resident, Seq: 2, Dirty: true})
	pm.pt.mapPage(192, pfnB, PermU|PermR|PermW)
	pm.frames[192] = pfnB

	// First eviction consumes the process's only swap slot.
	pm.mu.Lock()
	_, err := evictOne(pm, fp)
	pm.mu.Unlock()
	if err != nil {
		t.Fatalf("first evictOne: %v", err)
	}

	// Second eviction has a RESIDENT victim but no swap slot left for it.
	pm.mu.Lock()
	_, err = evictOne(pm, fp)
	pm.mu.Unlock()
	if err == nil {
		t.Fatal("expected the second eviction to fail on swap exhaustion")
	}
	kill, ok := err.(*FaultKill)
	if !ok {
		t.Fatalf("expected a *FaultKill, got %T (%v)", err, err)
	}
	if kill.Reason != KillSwapExhausted {
		t.Errorf("expected KillSwapExhausted, got %v", kill.Reason)
	}
}
