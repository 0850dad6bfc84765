package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

// allocSlot scans the bitmap for the lowest clear bit, sets it, and returns
// its index, or -1 if the process's swap capacity (MaxSwapSlots) is
// exhausted. Must be called with pm.mu held.
func (pm *ProcessMemory) allocSlot() int {
	for i := 0; i < pm.maxSwapSlots; i++ {
		word, bit := i/64, uint(i%64)
		if pm.swapBitmap[word]&(1<<bit) == 0 {
			pm.swapBitmap[word] |= 1 << bit
			return i
		}
	}
	return -1
}

// freeSlot clears bit i. Out-of-range indices are no-ops. Must be called
// with pm.mu held.
func (pm *ProcessMemory) freeSlot(i int) {
	if i < 0 || i >= pm.maxSwapSlots {
		return
	}
	word, bit := i/64, uint(i%64)
	pm.swapBitmap[word] &^= 1 << bit
}

func (pm *ProcessMemory) slotUsed(i int) bool {
	if i < 0 || i >= pm.maxSwapSlots {
		return false
	}
	word, bit := i/64, uint(i%64)
	return pm.swapBitmap[word]&(1<<bit) != 0
}

// swapOut allocates a slot, writes PageSize bytes from the frame at pa to
// the process's swap file at slot*PageSize, and on success updates the
// page's metadata. On failure the slot is released and no metadata is
// touched. The caller must hold pm.mu but must NOT hold it across the
// actual disk write: the process lock is released, the I/O happens, and
// the lock is reacquired before the caller re-validates state.
func (pm *ProcessMemory) swapOut(pi *PageInfo, frame []byte) error {
	slot := pm.allocSlot()
	if slot < 0 {
		return &FaultKill{Reason: KillSwapExhausted, Detail: fmt.Sprintf("va=%d", pi.VA)}
	}

	pm.mu.Unlock()
	_, err := pm.swapFile.WriteAt(frame, int64(slot)*int64(pm.pageSize))
	pm.mu.Lock()

	if err != nil {
		pm.freeSlot(slot)
		return fmt.Errorf("escribir en SWAP: %w", err)
	}

	pi.State = Swapped
	pi.SwapSlot = slot
	pm.NumSwappedPages++

	logging.Line("[pid %d] SWAPOUT va=%d slot=%d", pm.PID, pi.VA, slot)
	return nil
}

// swapIn reads PageSize bytes from the page's recorded slot into frame,
// frees the slot, and marks the page RESIDENT with a fresh FIFO sequence.
func (pm *ProcessMemory) swapIn(pi *PageInfo, frame []byte) error {
	slot := pi.SwapSlot
	if !pm.slotUsed(slot) {
		return fmt.Errorf("slot de swap %d no asignado para pid %d", slot, pm.PID)
	}

	pm.mu.Unlock()
	_, err := pm.swapFile.ReadAt(frame, int64(slot)*int64(pm.pageSize))
	pm.mu.Lock()

	if err != nil {
		return fmt.Errorf("leer de SWAP: %w", err)
	}

	pm.freeSlot(slot)
	pm.NumSwappedPages--
	pi.State = Resident
	pi.SwapSlot = -1
	pi.Seq = pm.NextFifoSeq
	pm.NextFifoSeq++
	pi.Dirty = false

	logging.Line("[pid %d] SWAPIN  va=%d slot=%d", pm.PID, pi.VA, slot)
	return nil
}

// freeAllSlots releases every slot still held by the process, used at
// process exit. Returns the count freed for the SWAPCLEANUP log line.
func (pm *ProcessMemory) freeAllSlots() int {
	freed := 0
	for i := 0; i < pm.maxSwapSlots; i++ {
		if pm.slotUsed(i) {
			pm.freeSlot(i)
			freed++
		}
	}
	return freed
}
