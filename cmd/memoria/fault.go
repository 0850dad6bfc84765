package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// Cause is the classification a fault resolves to.
type Cause string

const (
	CauseSwap    Cause = "swap"
	CauseExec    Cause = "exec"
	CauseHeap    Cause = "heap"
	CauseStack   Cause = "stack"
	CauseInvalid Cause = "unknown"
)

// FaultKillReason distinguishes the fatal outcomes a fault can resolve to.
type FaultKillReason string

const (
	KillInvalidAccess FaultKillReason = "invalid-access"
	KillMemFull       FaultKillReason = "MEMFULL"
	KillSwapExhausted FaultKillReason = "swap-exhausted"
)

// FaultKill is returned by handleFault when the process must die.
type FaultKill struct {
	Reason FaultKillReason
	Detail string
}

func (k *FaultKill) Error() string {
	if k.Detail == "" {
		return string(k.Reason)
	}
	return fmt.Sprintf("%s: %s", k.Reason, k.Detail)
}

// classify determines why va faulted. A one-page guard below the
// caller-reported stack pointer is tolerated as stack growth rather than
// rejected as invalid; spHint <= 0 means the caller didn't report one and
// the whole [stack_bottom, stack_top) window is accepted.
func classify(pm *ProcessMemory, va int, spHint int, pageSize int) Cause {
	if pi := pm.lookupPageInfo(va, pageSize); pi != nil && pi.State == Swapped {
		return CauseSwap
	}
	if va >= pm.TextStart && va < pm.DataEnd {
		return CauseExec
	}
	if va >= pm.HeapStart && va < pm.StackBottom {
		return CauseHeap
	}
	if va >= pm.StackBottom && va < pm.StackTop {
		if spHint > 0 && va < pgroundDown(spHint, pageSize)-pageSize {
			return CauseInvalid
		}
		return CauseStack
	}
	return CauseInvalid
}

// handleFault resolves a page fault end to end: classify, acquire a frame
// (evicting once if necessary), populate it, install the PTE, and update
// PageInfo. pm.mu must be held by the caller (the faulting request's own
// handler); it may be released and reacquired internally around swap I/O.
func handleFault(pm *ProcessMemory, fp *framePool, va, spHint int, isWrite bool) (Cause, error) {
	va = pgroundDown(va, pm.pageSize)
	access := "read"
	if isWrite {
		access = "write"
	}

	if e, ok := pm.pt.walk(va); ok && e.valid {
		sufficientlyPermissive := e.perm.has(PermR) && (!isWrite || e.perm.has(PermW))
		if sufficientlyPermissive {
			return "", nil // spurious fault
		}
		if isWrite && !e.perm.has(PermW) {
			if pi := pm.lookupPageInfo(va, pm.pageSize); pi != nil && pi.State == Resident {
				pm.pt.setPerm(va, e.perm|PermW)
				pi.Dirty = true
				return "", nil // dirty-tracking upgrade, not a fresh populate
			}
		}
	}

	cause := classify(pm, va, spHint, pm.pageSize)
	logging.Line("[pid %d] PAGEFAULT va=%d access=%s cause=%s", pm.PID, va, access, cause)

	if cause == CauseInvalid {
		return cause, &FaultKill{Reason: KillInvalidAccess, Detail: fmt.Sprintf("va=%d", va)}
	}

	var pi *PageInfo
	if cause == CauseSwap {
		pi = pm.lookupPageInfo(va, pm.pageSize)
	} else {
		pi = pm.getPageInfo(va, pm.pageSize)
		if pi == nil {
			return cause, &FaultKill{Reason: KillInvalidAccess, Detail: "tabla de páginas agotada"}
		}
	}

	pfn, frame := fp.allocFrame()
	if frame == nil {
		if _, err := evictOne(pm, fp); err != nil {
			if kill, ok := err.(*FaultKill); ok {
				return cause, kill
			}
			return cause, &FaultKill{Reason: KillMemFull, Detail: err.Error()}
		}
		pfn, frame = fp.allocFrame()
		if frame == nil {
			return cause, &FaultKill{Reason: KillMemFull}
		}
	}

	for i := range frame {
		frame[i] = 0
	}

	switch cause {
	case CauseSwap:
		if err := pm.swapIn(pi, frame); err != nil {
			fp.freeFrame(pfn)
			return cause, &FaultKill{Reason: KillInvalidAccess, Detail: err.Error()}
		}
	case CauseExec:
		if pi.FileLen > 0 {
			f, err := os.Open(pm.execPath)
			if err != nil {
				fp.freeFrame(pfn)
				return cause, &FaultKill{Reason: KillInvalidAccess, Detail: err.Error()}
			}
			// A file shorter than FileLen leaves the rest of the page zero.
			_, err = f.ReadAt(frame[:pi.FileLen], pi.FileOff)
			f.Close()
			if err != nil && err != io.EOF {
				fp.freeFrame(pfn)
				return cause, &FaultKill{Reason: KillInvalidAccess, Detail: err.Error()}
			}
		}
		logging.Line("[pid %d] LOADEXEC va=%d", pm.PID, va)
	case CauseHeap, CauseStack:
		logging.Line("[pid %d] ALLOC   va=%d", pm.PID, va)
	}

	perm := PermU | PermR
	if va >= pm.TextStart && va < pm.TextEnd {
		perm |= PermX
	}
	writableAtInstall := false
	if (cause == CauseHeap || cause == CauseStack) && isWrite {
		perm |= PermW
		writableAtInstall = true
	}
	pm.pt.mapPage(va, pfn, perm)
	pm.frames[va] = pfn

	if cause != CauseSwap {
		pi.State = Resident
		pi.Seq = pm.NextFifoSeq
		pm.NextFifoSeq++
		pi.Dirty = isWrite && writableAtInstall
	}

	logging.Line("[pid %d] RESIDENT va=%d seq=%d", pm.PID, va, pi.Seq)
	return cause, nil
}
