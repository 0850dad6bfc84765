package main

import (
	"sync"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/semaphore"
)

// Scheduler owns the READY queue and the short-term dispatch loop.
// Exactly one policy is active per boot, selected by Config.policy() —
// the same dispatch-on-config-string shape as a PlanificarCortoPlazo
// loop that picks among FIFO / SJF / SRT, generalized here to RR / FCFS
// / CFS.
type Scheduler struct {
	mu       sync.Mutex
	cond     *sync.Cond
	ready    []*PCB
	policy   string
	target   int
	minSlice int

	cpus      map[string]*proto.Client
	cpusMu    sync.Mutex
	execMu    sync.Mutex
	exec      map[string]*PCB

	admit *semaphore.Semaphore
}

func newScheduler(cfg *Config) *Scheduler {
	s := &Scheduler{
		policy:   cfg.policy(),
		target:   cfg.targetLatency(),
		minSlice: cfg.minSlice(),
		cpus:     make(map[string]*proto.Client),
		exec:     make(map[string]*PCB),
	}
	s.cond = sync.NewCond(&s.mu)
	grado := cfg.GradoMultiprogramacion
	if grado <= 0 {
		grado = 1
	}
	s.admit = semaphore.New(grado)
	logging.Info.Info("Planificador inicializado", "politica", s.policy, "target_latency", s.target, "min_slice", s.minSlice, "grado_multiprogramacion", grado)
	return s
}

func (s *Scheduler) registerCPU(name, ip string, port int) {
	s.cpusMu.Lock()
	defer s.cpusMu.Unlock()
	s.cpus[name] = proto.NewClient(ip, port, "Kernel->"+name)
	logging.Info.Info("CPU registrada", "nombre", name, "ip", ip, "puerto", port)
}

func (s *Scheduler) admitReady(pcb *PCB) {
	s.admit.Wait()
	s.enqueueReady(pcb)
}

func (s *Scheduler) enqueueReady(pcb *PCB) {
	pcb.setState(StateReady)
	s.mu.Lock()
	s.ready = append(s.ready, pcb)
	s.mu.Unlock()
	s.cond.Signal()
}

// selectNext picks the next process to run according to the active policy.
// Must be called with s.mu held; removes the winner from s.ready.
func (s *Scheduler) selectNext() *PCB {
	if len(s.ready) == 0 {
		return nil
	}
	switch s.policy {
	case "FCFS":
		return s.selectFCFS()
	case "CFS":
		return s.selectCFS()
	default:
		return s.selectRR()
	}
}

// FCFS: smallest Ctime, ties broken by PID. Non-preemptive — whoever runs
// keeps the CPU until blocking or exiting, so no slice is assigned.
func (s *Scheduler) selectFCFS() *PCB {
	best := 0
	for i := 1; i < len(s.ready); i++ {
		if s.ready[i].Ctime < s.ready[best].Ctime ||
			(s.ready[i].Ctime == s.ready[best].Ctime && s.ready[i].PID < s.ready[best].PID) {
			best = i
		}
	}
	pcb := s.ready[best]
	s.ready = append(s.ready[:best], s.ready[best+1:]...)
	pcb.SliceRemaining = 0 // 0 means "run to completion / block" for FCFS
	return pcb
}

// RR: plain FIFO order, fixed min-slice ticks per dispatch.
func (s *Scheduler) selectRR() *PCB {
	pcb := s.ready[0]
	s.ready = s.ready[1:]
	pcb.SliceRemaining = s.minSlice
	return pcb
}

// CFS: smallest vruntime wins. Slice is
// max(TARGET_LATENCY/n, MIN_SLICE) * weight(nice)/weight(0), n being the
// number of runnable processes at dispatch time.
func (s *Scheduler) selectCFS() *PCB {
	best := 0
	for i := 1; i < len(s.ready); i++ {
		if s.ready[i].Vruntime < s.ready[best].Vruntime ||
			(s.ready[i].Vruntime == s.ready[best].Vruntime && s.ready[i].PID < s.ready[best].PID) {
			best = i
		}
	}

	candidates := make([]*PCB, len(s.ready))
	copy(candidates, s.ready)

	pcb := s.ready[best]
	s.ready = append(s.ready[:best], s.ready[best+1:]...)

	n := len(s.ready) + 1

	logging.Line("[Scheduler Tick]")
	for _, c := range candidates {
		logging.Line("PID: %d | vRuntime: %d | Weight: %d | TimeSlice: %d",
			c.PID, c.Vruntime, weight(c.Nice), s.sliceFor(c.Nice, n))
	}

	slice := s.sliceFor(pcb.Nice, n)
	pcb.SliceRemaining = slice

	logging.Line("--> Scheduling PID %d (lowest vRuntime: %d)", pcb.PID, pcb.Vruntime)
	return pcb
}

// sliceFor computes the CFS time slice for a process of the given nice
// among n runnable processes: max(TARGET_LATENCY/n, MIN_SLICE) scaled by
// weight(nice)/weight(0).
func (s *Scheduler) sliceFor(nice int, n int) int {
	base := s.target / n
	if base < s.minSlice {
		base = s.minSlice
	}
	w := weight(nice)
	slice := base * w / niceZeroWeight
	if slice < 1 {
		slice = 1
	}
	return slice
}

// accountTick is the per-tick accounting hook invoked for whichever
// process is currently EXEC on a CPU. vruntime accrues only under CFS;
// RR and CFS drain the slice counter, FCFS never reports expiry.
func (s *Scheduler) accountTick(pcb *PCB) (sliceExpired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy == "CFS" {
		pcb.Vruntime += niceZeroWeight * uint64(1) / uint64(weight(pcb.Nice))
	}
	if s.policy == "FCFS" {
		return false
	}
	pcb.SliceRemaining--
	return pcb.SliceRemaining <= 0
}

func (s *Scheduler) run() {
	logging.Info.Info("Iniciando planificador de corto plazo")
	for {
		s.mu.Lock()
		for len(s.ready) == 0 {
			s.cond.Wait()
		}
		pcb := s.selectNext()
		s.mu.Unlock()

		if pcb == nil {
			continue
		}

		name, client := s.waitForFreeCPU()
		s.execMu.Lock()
		s.exec[name] = pcb
		s.execMu.Unlock()

		pcb.setState(StateRunning)
		go s.dispatch(name, client, pcb)
	}
}

func (s *Scheduler) waitForFreeCPU() (string, *proto.Client) {
	for {
		s.cpusMu.Lock()
		for name, client := range s.cpus {
			s.execMu.Lock()
			_, busy := s.exec[name]
			s.execMu.Unlock()
			if !busy {
				s.cpusMu.Unlock()
				return name, client
			}
		}
		s.cpusMu.Unlock()
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *Scheduler) dispatch(name string, client *proto.Client, pcb *PCB) {
	defer func() {
		s.execMu.Lock()
		delete(s.exec, name)
		s.execMu.Unlock()
	}()

	resp, err := client.Send(proto.MsgDispatch, "dispatch", map[string]interface{}{
		"pid":   pcb.PID,
		"pc":    pcb.PC,
		"slice": pcb.SliceRemaining,
	})
	if err != nil {
		logging.Error.Error("Error despachando proceso a CPU", "pid", pcb.PID, "cpu", name, "error", err)
		s.enqueueReady(pcb)
		return
	}

	m, _ := resp.(map[string]interface{})
	outcome, _ := m["outcome"].(string)
	if pc, ok := asInt(m, "pc"); ok {
		pcb.PC = pc
	}

	switch outcome {
	case "BLOCKED":
		pcb.setState(StateBlocked)
	case "EXIT":
		finishFromExec(pcb)
	default:
		s.enqueueReady(pcb)
	}
}
