package main

import "testing"

func TestWeightZeroIsNiceZeroWeight(t *testing.T) {
	if got := weight(0); got != niceZeroWeight {
		t.Errorf("weight(0) = %d; want %d", got, niceZeroWeight)
	}
}

func TestWeightMonotonicallyDecreasesWithNice(t *testing.T) {
	prev := weight(-20)
	for n := -19; n <= 19; n++ {
		cur := weight(n)
		if cur > prev {
			t.Errorf("weight(%d) = %d should not exceed weight(%d) = %d; weight must be non-increasing in nice", n, cur, n-1, prev)
		}
		prev = cur
	}
}

func TestWeightClampsOutOfRangeNice(t *testing.T) {
	if weight(-100) != weight(-20) {
		t.Error("expected weight(-100) to clamp to weight(-20)")
	}
	if weight(100) != weight(19) {
		t.Error("expected weight(100) to clamp to weight(19)")
	}
}

func TestClampNice(t *testing.T) {
	specs := []struct{ in, want int }{
		{-100, -20},
		{-20, -20},
		{0, 0},
		{19, 19},
		{100, 19},
	}
	for _, s := range specs {
		if got := clampNice(s.in); got != s.want {
			t.Errorf("clampNice(%d) = %d; want %d", s.in, got, s.want)
		}
	}
}

func TestForkChildPCBInheritsVruntimeAndNice(t *testing.T) {
	parent := newPCB(1, "/tmp/parent", 64, 10)
	parent.Vruntime = 4096
	parent.Nice = -5

	child := forkChildPCB(parent, 2, 64, 20, 3)

	if child.Vruntime != parent.Vruntime {
		t.Errorf("expected child to inherit parent's vruntime %d, got %d", parent.Vruntime, child.Vruntime)
	}
	if child.Nice != parent.Nice {
		t.Errorf("expected child to inherit parent's nice %d, got %d", parent.Nice, child.Nice)
	}
	if child.PC != 3 {
		t.Errorf("expected child to resume at the given pc, got %d", child.PC)
	}
	if child.Ctime != 20 {
		t.Errorf("expected child to get its own ctime, got %d", child.Ctime)
	}
	if child.State != StateNew {
		t.Errorf("expected a freshly forked child to start in StateNew, got %v", child.State)
	}
}

func TestSetStateUpdatesAndToleratesRepeat(t *testing.T) {
	pcb := newPCB(1, "/tmp/x", 64, 0)
	if pcb.getState() != StateNew {
		t.Fatalf("expected a fresh PCB to start in StateNew, got %v", pcb.getState())
	}
	pcb.setState(StateReady)
	if pcb.getState() != StateReady {
		t.Errorf("expected state to become StateReady, got %v", pcb.getState())
	}
	// Re-setting to the same state must not panic or corrupt anything.
	pcb.setState(StateReady)
	if pcb.getState() != StateReady {
		t.Errorf("expected state to remain StateReady after a same-state set, got %v", pcb.getState())
	}
}
