package main

import "testing"

func TestFramePoolAllocFreeRoundTrip(t *testing.T) {
	fp := newFramePool(4, 16)

	if got := fp.countFree(); got != 4 {
		t.Fatalf("expected 4 free frames initially, got %d", got)
	}

	pfn, frame := fp.allocFrame()
	if pfn != 0 {
		t.Errorf("expected first allocation to return pfn 0, got %d", pfn)
	}
	if len(frame) != 16 {
		t.Errorf("expected a 16-byte frame, got %d bytes", len(frame))
	}
	if got := fp.countFree(); got != 3 {
		t.Errorf("expected 3 free frames after one allocation, got %d", got)
	}

	frame[0] = 0xFF
	fp.freeFrame(pfn)
	if got := fp.countFree(); got != 4 {
		t.Errorf("expected 4 free frames after freeing, got %d", got)
	}
	if got := fp.frameAt(pfn); got[0] != 0 {
		t.Error("expected freeFrame to zero the frame's contents")
	}
}

func TestFramePoolExhaustion(t *testing.T) {
	fp := newFramePool(2, 8)

	pfns := map[int]bool{}
	for i := 0; i < 2; i++ {
		pfn, frame := fp.allocFrame()
		if pfn < 0 || frame == nil {
			t.Fatalf("expected allocation %d to succeed", i)
		}
		if pfns[pfn] {
			t.Fatalf("allocFrame returned pfn %d twice", pfn)
		}
		pfns[pfn] = true
	}

	if pfn, frame := fp.allocFrame(); pfn != -1 || frame != nil {
		t.Errorf("expected exhausted pool to return (-1, nil), got (%d, %v)", pfn, frame)
	}
}

func TestFramePoolFrameAtDistinctRegions(t *testing.T) {
	fp := newFramePool(2, 4)
	a := fp.frameAt(0)
	b := fp.frameAt(1)
	a[0] = 7
	if b[0] == 7 {
		t.Error("expected frameAt(0) and frameAt(1) to address disjoint memory")
	}
}
