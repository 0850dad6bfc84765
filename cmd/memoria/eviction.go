package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// evictOne implements the FIFO eviction policy: pick the RESIDENT page
// with the minimum FIFO sequence, discard it if clean and belonging to
// text (re-readable from the executable), otherwise swap it out.
// Must be called with pm.mu held. Returns the freed pfn, or an error if no
// RESIDENT page exists or swap is exhausted.
func evictOne(pm *ProcessMemory, fp *framePool) (int, error) {
	victim := -1
	for i := range pm.Pages {
		if pm.Pages[i].State != Resident {
			continue
		}
		if victim == -1 || pm.Pages[i].Seq < pm.Pages[victim].Seq {
			victim = i
		}
	}
	if victim == -1 {
		return -1, fmt.Errorf("no hay página RESIDENT para desalojar")
	}

	pi := &pm.Pages[victim]
	logging.Line("[pid %d] VICTIM  va=%d seq=%d algo=FIFO", pm.PID, pi.VA, pi.Seq)

	pfn, ok := pm.frames[pi.VA]
	if !ok {
		return -1, fmt.Errorf("página víctima sin marco asignado: va=%d", pi.VA)
	}

	isText := pi.VA >= pm.TextStart && pi.VA < pm.TextEnd
	if isText && !pi.Dirty {
		logging.Line("[pid %d] EVICT   va=%d state=clean", pm.PID, pi.VA)
		logging.Line("[pid %d] DISCARD va=%d", pm.PID, pi.VA)
		pi.State = Unmapped
		pi.SwapSlot = -1
	} else {
		state := "clean"
		if pi.Dirty {
			state = "dirty"
		}
		logging.Line("[pid %d] EVICT   va=%d state=%s", pm.PID, pi.VA, state)
		if err := pm.swapOut(pi, fp.frameAt(pfn)); err != nil {
			return -1, err
		}
	}

	pm.pt.unmap(pi.VA)
	delete(pm.frames, pi.VA)
	fp.freeFrame(pfn)
	return pfn, nil
}
