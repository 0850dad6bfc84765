package main

import "testing"

func TestSnapshotRecomputesCounts(t *testing.T) {
	pm := &ProcessMemory{
		PID:         7,
		Sz:          256,
		pageSize:    64,
		NextFifoSeq: 5,
		Pages: []PageInfo{
			{VA: 0, State: Resident, Seq: 0},
			{VA: 64, State: Swapped, SwapSlot: 2},
			{VA: 128, State: Resident, Seq: 3},
			{VA: 192, State: Unmapped},
		},
	}

	stat := snapshot(pm)

	if stat.PID != 7 {
		t.Errorf("expected PID=7, got %d", stat.PID)
	}
	if stat.NumPagesTotal != 4 {
		t.Errorf("expected num_pages_total=4, got %d", stat.NumPagesTotal)
	}
	if stat.NumResident != 2 {
		t.Errorf("expected num_resident=2, got %d", stat.NumResident)
	}
	if stat.NumSwapped != 1 {
		t.Errorf("expected num_swapped=1, got %d", stat.NumSwapped)
	}
	if stat.NextFifoSeq != 5 {
		t.Errorf("expected next_fifo_seq=5, got %d", stat.NextFifoSeq)
	}
	if len(stat.Pages) != 4 {
		t.Fatalf("expected 4 page entries, got %d", len(stat.Pages))
	}
	if stat.Pages[1].State != "swapped" {
		t.Errorf("expected page 1 state 'swapped', got %q", stat.Pages[1].State)
	}
}

func TestSnapshotCapsPageListAtMaxPagesInfo(t *testing.T) {
	pm := &ProcessMemory{PID: 1, pageSize: 64}
	for i := 0; i < maxPagesInfo+10; i++ {
		pm.Pages = append(pm.Pages, PageInfo{VA: i * 64, State: Unmapped})
	}

	stat := snapshot(pm)

	if len(stat.Pages) != maxPagesInfo {
		t.Errorf("expected the page list capped at %d, got %d", maxPagesInfo, len(stat.Pages))
	}
}

func TestSnapshotEmptyProcess(t *testing.T) {
	pm := &ProcessMemory{PID: 3, pageSize: 64}
	stat := snapshot(pm)

	if stat.NumResident != 0 || stat.NumSwapped != 0 {
		t.Errorf("expected zero counts for an empty process, got resident=%d swapped=%d", stat.NumResident, stat.NumSwapped)
	}
	if len(stat.Pages) != 0 {
		t.Errorf("expected no page entries, got %d", len(stat.Pages))
	}
}
