package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

const userStackPages = 16 // USERSTACK: pages in the stack window [stack_bottom, stack_top)

// ProgramHeader describes one LOAD segment of the executable being mapped,
// mirroring the subset of an ELF program header this kernel cares about.
type ProgramHeader struct {
	VAddr      int
	MemSz      int
	FileSz     int
	Off        int64
	Executable bool
}

func validateHeaders(headers []ProgramHeader, pageSize int) error {
	for _, ph := range headers {
		if ph.MemSz < ph.FileSz {
			return fmt.Errorf("cabecera inválida: memsz %d < filesz %d", ph.MemSz, ph.FileSz)
		}
		if ph.VAddr%pageSize != 0 {
			return fmt.Errorf("cabecera inválida: vaddr %d no alineado", ph.VAddr)
		}
		if ph.VAddr < 0 || ph.MemSz < 0 {
			return fmt.Errorf("cabecera inválida: valores negativos")
		}
		if ph.VAddr > math.MaxInt-ph.MemSz {
			return fmt.Errorf("cabecera inválida: desbordamiento aritmético")
		}
	}
	return nil
}

// execLoad parses headers, computes text/data bounds, creates UNMAPPED
// PageInfo entries carrying each page's file offset/length, and
// allocates exactly one physical frame for the topmost stack page. It
// mutates a fresh ProcessMemory and only wires it into the registry on
// success — failure before commit leaves the caller's old image (if any)
// untouched.
func execLoad(pm *ProcessMemory, fp *framePool, execPath string, headers []ProgramHeader) error {
	if err := validateHeaders(headers, pm.pageSize); err != nil {
		return err
	}

	raw, err := os.ReadFile(execPath)
	if err != nil {
		return fmt.Errorf("no se pudo abrir el ejecutable: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")

	textStart, textEnd := math.MaxInt, 0
	dataStart, dataEnd := math.MaxInt, 0
	maxEnd := 0

	for _, ph := range headers {
		end := ph.VAddr + ph.MemSz
		if end > maxEnd {
			maxEnd = end
		}
		if ph.Executable {
			if ph.VAddr < textStart {
				textStart = ph.VAddr
			}
			if end > textEnd {
				textEnd = end
			}
		} else {
			if ph.VAddr < dataStart {
				dataStart = ph.VAddr
			}
			if end > dataEnd {
				dataEnd = end
			}
		}
	}
	if textStart == math.MaxInt {
		textStart, textEnd = 0, 0
	}
	if dataStart == math.MaxInt {
		dataStart, dataEnd = textEnd, textEnd
	}

	pages := make([]PageInfo, 0, len(headers)*4)
	for _, ph := range headers {
		for pageVA := pgroundDown(ph.VAddr, pm.pageSize); pageVA < ph.VAddr+ph.MemSz; pageVA += pm.pageSize {
			pageOff := pageVA - ph.VAddr
			fileLen := clamp(ph.FileSz-pageOff, 0, pm.pageSize)
			fileOff := ph.Off + int64(pageOff)
			if fileLen == 0 {
				fileOff = 0
			}
			pages = append(pages, PageInfo{
				VA:       pageVA,
				State:    Unmapped,
				SwapSlot: -1,
				FileOff:  fileOff,
				FileLen:  fileLen,
			})
		}
	}

	sz := pgroundUp(maxEnd, pm.pageSize)
	stackTop := pgroundUp(sz, pm.pageSize) + (userStackPages+1)*pm.pageSize
	stackBottom := stackTop - userStackPages*pm.pageSize

	pfn, frame := fp.allocFrame()
	if frame == nil {
		return fmt.Errorf("sin marcos libres para la página tope de pila")
	}
	for i := range frame {
		frame[i] = 0
	}

	topStackVA := pgroundDown(stackTop-pm.pageSize, pm.pageSize)
	pm.pt.mapPage(topStackVA, pfn, PermU|PermR|PermW)
	pm.frames[topStackVA] = pfn
	// Seq -1 keeps this eagerly-mapped page strictly older than any page a
	// real fault resolves, without consuming seq 0 — the first fault after
	// exec must see seq=0.
	pages = append(pages, PageInfo{
		VA:       topStackVA,
		State:    Resident,
		SwapSlot: -1,
		Seq:      -1,
	})

	pm.TextStart, pm.TextEnd = textStart, textEnd
	pm.DataStart, pm.DataEnd = dataStart, dataEnd
	pm.HeapStart = dataEnd
	pm.StackBottom = stackBottom
	pm.StackTop = stackTop
	pm.Sz = sz
	pm.Pages = pages
	pm.NextFifoSeq = 0
	pm.execPath = execPath
	pm.execLines = lines

	logging.Line("[pid %d] INIT-LAZYMAP text=[%d,%d) data=[%d,%d) heap_start=%d stack_top=%d",
		pm.PID, textStart, textEnd, dataStart, dataEnd, pm.HeapStart, stackTop)
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
