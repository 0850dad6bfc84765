package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// forkProcessMemory duplicates parent's address space into a fresh
// ProcessMemory for childPID: every RESIDENT page gets its own physical
// frame with the parent's bytes copied in, every SWAPPED page gets its own
// swap slot with the parent's swapped bytes copied in, and UNMAPPED pages
// carry over as metadata only (they materialize lazily on first fault,
// same as they would have for the parent). Must be called with parent.mu
// held; the child is not yet visible to any other goroutine so it needs no
// locking of its own during construction.
func forkProcessMemory(parent *ProcessMemory, fp *framePool, childPID int, swapDir string) (*ProcessMemory, error) {
	child, err := newProcessMemory(childPID, parent.pageSize, parent.maxProcPages, parent.maxSwapSlots, swapDir)
	if err != nil {
		return nil, err
	}

	child.TextStart, child.TextEnd = parent.TextStart, parent.TextEnd
	child.DataStart, child.DataEnd = parent.DataStart, parent.DataEnd
	child.HeapStart = parent.HeapStart
	child.StackBottom, child.StackTop = parent.StackBottom, parent.StackTop
	child.Sz = parent.Sz
	child.NextFifoSeq = parent.NextFifoSeq
	child.execPath = parent.execPath
	child.execLines = parent.execLines

	child.Pages = make([]PageInfo, len(parent.Pages))
	for i, pi := range parent.Pages {
		child.Pages[i] = pi
		child.Pages[i].SwapSlot = -1

		switch pi.State {
		case Resident:
			parentPfn, ok := parent.frames[pi.VA]
			if !ok {
				child.close()
				return nil, fmt.Errorf("página RESIDENT sin marco asignado durante fork: va=%d", pi.VA)
			}
			childPfn, frame := fp.allocFrame()
			if frame == nil {
				child.close()
				return nil, fmt.Errorf("sin marcos libres para duplicar la página va=%d", pi.VA)
			}
			copy(frame, fp.frameAt(parentPfn))

			e, _ := parent.pt.walk(pi.VA)
			child.pt.mapPage(pi.VA, childPfn, e.perm)
			child.frames[pi.VA] = childPfn

		case Swapped:
			buf := make([]byte, parent.pageSize)
			parent.mu.Unlock()
			_, readErr := parent.swapFile.ReadAt(buf, int64(pi.SwapSlot)*int64(parent.pageSize))
			parent.mu.Lock()
			if readErr != nil {
				child.close()
				return nil, fmt.Errorf("leer página swapeada del padre durante fork: %w", readErr)
			}

			slot := child.allocSlot()
			if slot < 0 {
				child.close()
				return nil, &FaultKill{Reason: KillSwapExhausted, Detail: fmt.Sprintf("fork va=%d", pi.VA)}
			}
			if _, writeErr := child.swapFile.WriteAt(buf, int64(slot)*int64(child.pageSize)); writeErr != nil {
				child.close()
				return nil, fmt.Errorf("escribir página duplicada en SWAP del hijo: %w", writeErr)
			}
			child.Pages[i].SwapSlot = slot
			child.NumSwappedPages++
		}
	}

	logging.Line("[pid %d] FORK    parent=%d", childPID, parent.PID)
	return child, nil
}
