package main

import "testing"

func newTestScheduler(policy string, target, minSlice int) *Scheduler {
	return newScheduler(&Config{
		Policy:                 policy,
		TargetLatency:          target,
		MinSlice:               minSlice,
		GradoMultiprogramacion: 8,
	})
}

func TestSelectFCFSPicksSmallestCtimeTieByPID(t *testing.T) {
	s := newTestScheduler("FCFS", 48, 3)
	a := &PCB{PID: 3, Ctime: 5}
	b := &PCB{PID: 1, Ctime: 2}
	c := &PCB{PID: 2, Ctime: 2}
	s.ready = []*PCB{a, b, c}

	picked := s.selectFCFS()
	if picked != b {
		t.Fatalf("expected PCB with smallest Ctime (tie broken by PID) to be picked, got pid=%d", picked.PID)
	}
	if picked.SliceRemaining != 0 {
		t.Errorf("expected FCFS to assign SliceRemaining=0 (run to block), got %d", picked.SliceRemaining)
	}
	if len(s.ready) != 2 {
		t.Errorf("expected the picked PCB removed from ready, got %d remaining", len(s.ready))
	}
}

func TestSelectRRIsFIFOWithFixedSlice(t *testing.T) {
	s := newTestScheduler("RR", 48, 5)
	a := &PCB{PID: 1}
	b := &PCB{PID: 2}
	s.ready = []*PCB{a, b}

	picked := s.selectRR()
	if picked != a {
		t.Fatalf("expected FIFO order to pick the first enqueued PCB, got pid=%d", picked.PID)
	}
	if picked.SliceRemaining != 5 {
		t.Errorf("expected RR to assign the configured min slice, got %d", picked.SliceRemaining)
	}
	if len(s.ready) != 1 || s.ready[0] != b {
		t.Error("expected the remaining ready queue to preserve order")
	}
}

func TestSelectCFSPicksSmallestVruntime(t *testing.T) {
	s := newTestScheduler("CFS", 48, 3)
	a := &PCB{PID: 1, Vruntime: 100, Nice: 0}
	b := &PCB{PID: 2, Vruntime: 40, Nice: 0}
	s.ready = []*PCB{a, b}

	picked := s.selectCFS()
	if picked != b {
		t.Fatalf("expected the PCB with the smallest vruntime to be picked, got pid=%d", picked.PID)
	}
	if picked.SliceRemaining <= 0 {
		t.Errorf("expected a positive slice to be assigned, got %d", picked.SliceRemaining)
	}
}

func TestSelectCFSTiesBreakByPID(t *testing.T) {
	s := newTestScheduler("CFS", 48, 3)
	a := &PCB{PID: 5, Vruntime: 10, Nice: 0}
	b := &PCB{PID: 2, Vruntime: 10, Nice: 0}
	c := &PCB{PID: 8, Vruntime: 10, Nice: 0}
	s.ready = []*PCB{a, b, c}

	picked := s.selectCFS()
	if picked != b {
		t.Fatalf("expected a vruntime tie to be broken by smallest PID, got pid=%d", picked.PID)
	}
}

func TestSelectCFSNegativeNiceGetsLargerSlice(t *testing.T) {
	s := newTestScheduler("CFS", 48, 3)
	high := &PCB{PID: 1, Vruntime: 0, Nice: -10}
	s.ready = []*PCB{high}
	highSlice := s.selectCFS()

	s2 := newTestScheduler("CFS", 48, 3)
	low := &PCB{PID: 2, Vruntime: 0, Nice: 10}
	s2.ready = []*PCB{low}
	lowSlice := s2.selectCFS()

	if highSlice.SliceRemaining <= lowSlice.SliceRemaining {
		t.Errorf("expected a negative-nice process to get a larger slice (%d) than a positive-nice one (%d)",
			highSlice.SliceRemaining, lowSlice.SliceRemaining)
	}
}

func TestAccountTickFCFSNeverExpires(t *testing.T) {
	s := newTestScheduler("FCFS", 48, 3)
	pcb := &PCB{PID: 1, SliceRemaining: 0}
	if expired := s.accountTick(pcb); expired {
		t.Error("expected FCFS to never report slice expiration")
	}
}

func TestAccountTickRRDrainsSlice(t *testing.T) {
	s := newTestScheduler("RR", 48, 2)
	pcb := &PCB{PID: 1, SliceRemaining: 2}
	if expired := s.accountTick(pcb); expired {
		t.Error("expected slice not to expire on the first tick")
	}
	if expired := s.accountTick(pcb); !expired {
		t.Error("expected slice to expire once SliceRemaining reaches 0")
	}
}

func TestAccountTickCFSAccruesVruntimeInverselyToWeight(t *testing.T) {
	s := newTestScheduler("CFS", 48, 3)
	niceZero := &PCB{PID: 1, Nice: 0}
	nicePositive := &PCB{PID: 2, Nice: 10}

	s.accountTick(niceZero)
	s.accountTick(nicePositive)

	if nicePositive.Vruntime <= niceZero.Vruntime {
		t.Errorf("expected a higher-nice (lower-priority) process to accrue vruntime faster: nice=0 got %d, nice=10 got %d",
			niceZero.Vruntime, nicePositive.Vruntime)
	}
}

func TestEnqueueReadySetsStateAndWakesSelector(t *testing.T) {
	s := newTestScheduler("RR", 48, 3)
	pcb := &PCB{PID: 1}
	s.enqueueReady(pcb)

	if pcb.getState() != StateReady {
		t.Errorf("expected enqueueReady to set StateReady, got %v", pcb.getState())
	}
	s.mu.Lock()
	n := len(s.ready)
	s.mu.Unlock()
	if n != 1 {
		t.Errorf("expected the ready queue to contain 1 entry, got %d", n)
	}
}

func TestSelectNextDefaultsToRRForUnknownPolicy(t *testing.T) {
	s := newTestScheduler("bogus-policy", 48, 4)
	pcb := &PCB{PID: 1}
	s.ready = []*PCB{pcb}
	picked := s.selectNext()
	if picked != pcb {
		t.Fatal("expected selectNext to still pick the only ready PCB under an unrecognized policy")
	}
	if picked.SliceRemaining != 4 {
		t.Errorf("expected the unrecognized policy to fall back to RR's slice assignment, got %d", picked.SliceRemaining)
	}
}

func TestSelectNextEmptyReadyReturnsNil(t *testing.T) {
	s := newTestScheduler("RR", 48, 4)
	if s.selectNext() != nil {
		t.Error("expected selectNext on an empty ready queue to return nil")
	}
}
