package main

import (
	"os"
	"testing"
)

func newExecTestProcess(t *testing.T) *ProcessMemory {
	t.Helper()
	f, err := os.CreateTemp("", "pgswp-exec-*")
	if err != nil {
		t.Fatalf("creating temp swap file: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})
	return &ProcessMemory{
		maxProcPages: 64,
		maxSwapSlots: 8,
		swapBitmap:   make([]uint64, 1),
		pageSize:     64,
		pt:           newPageTable(),
		frames:       make(map[int]int),
		swapFile:     f,
	}
}

func writeTestExec(t *testing.T, lines int) string {
	t.Helper()
	f, err := os.CreateTemp("", "exec-*")
	if err != nil {
		t.Fatalf("creating temp exec file: %v", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	for i := 0; i < lines; i++ {
		f.WriteString("NOOP\n")
	}
	f.Close()
	return f.Name()
}

func TestExecLoadComputesTextDataHeapLayout(t *testing.T) {
	pm := newExecTestProcess(t)
	fp := newFramePool(4, 64)
	path := writeTestExec(t, 4)

	headers := []ProgramHeader{
		{VAddr: 0, MemSz: 64, FileSz: 64, Off: 0, Executable: true},
		{VAddr: 64, MemSz: 64, FileSz: 32, Off: 64, Executable: false},
	}

	if err := execLoad(pm, fp, path, headers); err != nil {
		t.Fatalf("execLoad: %v", err)
	}

	if pm.TextStart != 0 || pm.TextEnd != 64 {
		t.Errorf("expected text range [0,64), got [%d,%d)", pm.TextStart, pm.TextEnd)
	}
	if pm.DataStart != 64 || pm.DataEnd != 128 {
		t.Errorf("expected data range [64,128), got [%d,%d)", pm.DataStart, pm.DataEnd)
	}
	if pm.HeapStart != pm.DataEnd {
		t.Errorf("expected heap_start to follow data end, got %d", pm.HeapStart)
	}
	if pm.Sz != 128 {
		t.Errorf("expected sz=128, got %d", pm.Sz)
	}
}

func TestExecLoadMapsOneResidentStackPageEagerly(t *testing.T) {
	pm := newExecTestProcess(t)
	fp := newFramePool(4, 64)
	path := writeTestExec(t, 1)

	headers := []ProgramHeader{
		{VAddr: 0, MemSz: 64, FileSz: 64, Off: 0, Executable: true},
	}
	if err := execLoad(pm, fp, path, headers); err != nil {
		t.Fatalf("execLoad: %v", err)
	}

	topStackVA := pgroundDown(pm.StackTop-pm.pageSize, pm.pageSize)
	pi := pm.lookupPageInfo(topStackVA, pm.pageSize)
	if pi == nil || pi.State != Resident {
		t.Fatal("expected the top stack page to be RESIDENT after exec")
	}
	if !pm.pt.isMapped(topStackVA) {
		t.Error("expected the top stack page to have a mapped PTE")
	}
	if fp.countFree() != 3 {
		t.Errorf("expected exactly one frame consumed by exec, got %d free of 4", fp.countFree())
	}
}

// TestExecLoadReservesSeqZeroForFirstFault guards the ordering between the
// eagerly-mapped top stack page and the first page a real fault resolves:
// the stack page must not consume FIFO sequence 0, since the first fault
// after exec is expected to land on seq=0.
func TestExecLoadReservesSeqZeroForFirstFault(t *testing.T) {
	pm := newExecTestProcess(t)
	fp := newFramePool(4, 64)
	path := writeTestExec(t, 1)

	headers := []ProgramHeader{
		{VAddr: 0, MemSz: 64, FileSz: 64, Off: 0, Executable: true},
	}
	if err := execLoad(pm, fp, path, headers); err != nil {
		t.Fatalf("execLoad: %v", err)
	}

	if pm.NextFifoSeq != 0 {
		t.Fatalf("expected NextFifoSeq=0 after exec, got %d", pm.NextFifoSeq)
	}

	cause, err := handleFault(pm, fp, pm.TextStart, 0, false)
	if err != nil {
		t.Fatalf("unexpected kill on first fault: %v", err)
	}
	if cause != CauseExec {
		t.Errorf("expected CauseExec, got %v", cause)
	}
	pi := pm.lookupPageInfo(pgroundDown(pm.TextStart, pm.pageSize), pm.pageSize)
	if pi == nil || pi.Seq != 0 {
		t.Fatalf("expected the first post-exec fault to claim seq=0, got %+v", pi)
	}
}

func TestExecLoadRejectsUnalignedHeader(t *testing.T) {
	pm := newExecTestProcess(t)
	fp := newFramePool(4, 64)
	path := writeTestExec(t, 1)

	headers := []ProgramHeader{
		{VAddr: 10, MemSz: 64, FileSz: 64, Off: 0, Executable: true},
	}
	if err := execLoad(pm, fp, path, headers); err == nil {
		t.Fatal("expected an unaligned vaddr to be rejected")
	}
}

func TestExecLoadRejectsFileszGreaterThanMemsz(t *testing.T) {
	pm := newExecTestProcess(t)
	fp := newFramePool(4, 64)
	path := writeTestExec(t, 1)

	headers := []ProgramHeader{
		{VAddr: 0, MemSz: 32, FileSz: 64, Off: 0, Executable: true},
	}
	if err := execLoad(pm, fp, path, headers); err == nil {
		t.Fatal("expected filesz > memsz to be rejected")
	}
}
