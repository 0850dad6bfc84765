package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

type State string

const (
	StateNew     State = "NEW"
	StateReady   State = "READY"
	StateRunning State = "EXEC"
	StateBlocked State = "BLOCKED"
	StateExit    State = "EXIT"
)

// PCB is the process scheduling record: the scheduling fields
// (Ctime, Nice, Vruntime, SliceRemaining) live alongside the lifecycle
// bookkeeping a process control block already tracks (state, timestamps).
type PCB struct {
	mu sync.Mutex

	PID   int
	State State

	Ctime int64 // tick at allocproc(), used by FCFS
	PC    int

	Nice           int    // [-20, +19]
	Vruntime       uint64 // wraps on overflow, which is acceptable here
	SliceRemaining int    // ticks

	ExecPath string
	Size     int

	HoraCreacion time.Time
	MotivoBloqueo string
}

func newPCB(pid int, execPath string, size int, ctime int64) *PCB {
	pcb := &PCB{
		PID:          pid,
		State:        StateNew,
		Ctime:        ctime,
		ExecPath:     execPath,
		Size:         size,
		HoraCreacion: time.Now(),
	}
	logging.Info.Info("Proceso creado", "pid", pid, "estado", pcb.State, "ctime", ctime)
	return pcb
}

// forkChildPCB builds the PCB for a forked child: it starts a fresh
// lifecycle (NEW, its own ctime) resuming at pc (the instruction right
// after the parent's FORK call, the way a real fork() returns in both
// parent and child), but inherits the parent's vruntime and nice so a
// newborn under the fair policy doesn't start at vruntime 0 and dominate
// the ready queue.
func forkChildPCB(parent *PCB, childPID, size int, ctime int64, pc int) *PCB {
	child := newPCB(childPID, parent.ExecPath, size, ctime)
	child.Vruntime = parent.Vruntime
	child.Nice = parent.Nice
	child.PC = pc
	return child
}

func (p *PCB) setState(s State) {
	p.mu.Lock()
	prev := p.State
	p.State = s
	p.mu.Unlock()
	if prev != s {
		logging.Info.Info("Proceso cambió de estado", "pid", p.PID, "de", prev, "a", s)
	}
}

func (p *PCB) getState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.State
}

func (p *PCB) String() string {
	return fmt.Sprintf("PCB{PID: %d, Estado: %s, Tamaño: %d}", p.PID, p.State, p.Size)
}

// weight implements weight(nice) = round(1024 / 1.25^nice).
func weight(nice int) int {
	return niceWeights[clampNice(nice)+20]
}

func clampNice(nice int) int {
	if nice < -20 {
		return -20
	}
	if nice > 19 {
		return 19
	}
	return nice
}

// niceWeights is the classic CFS-style weight table: weight(0) == 1024,
// and each step of nice scales by 1/1.25 (or *1.25 going the other way).
// Precomputed once rather than calling math.Pow per tick — the running
// process's weight is looked up on every accounting tick.
var niceWeights = func() [40]int {
	var w [40]int
	w[20] = niceZeroWeight // nice == 0
	cur := float64(niceZeroWeight)
	for n := 1; n <= 19; n++ {
		cur /= 1.25
		w[20+n] = int(cur + 0.5)
	}
	cur = float64(niceZeroWeight)
	for n := 1; n <= 20; n++ {
		cur *= 1.25
		w[20-n] = int(cur + 0.5)
	}
	return w
}()
