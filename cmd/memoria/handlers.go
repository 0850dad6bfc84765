package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

func asMap(data interface{}) (map[string]interface{}, bool) {
	m, ok := data.(map[string]interface{})
	return m, ok
}

func asInt(m map[string]interface{}, key string) (int, bool) {
	v, ok := m[key].(float64)
	return int(v), ok
}

func errResponse(format string, args ...any) (interface{}, error) {
	return map[string]interface{}{"status": "ERROR", "mensaje": fmt.Sprintf(format, args...)}, nil
}

func okResponse(extra map[string]interface{}) map[string]interface{} {
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["status"] = "OK"
	return extra
}

func registerHandlers(srv *proto.Server) {
	srv.Register(proto.MsgExec, handleExec)
	srv.Register(proto.MsgTranslate, handleAccess)
	srv.Register(proto.MsgFetch, handleFetch)
	srv.Register(proto.MsgMemStat, handleMemStat)
	srv.Register(proto.MsgFinishProcess, handleFinish)
	srv.Register(proto.MsgSbrk, handleSbrk)
	srv.Register(proto.MsgSuspend, handleSuspend)
	srv.Register(proto.MsgResume, handleResume)
	srv.Register(proto.MsgFork, handleFork)
}

func handleExec(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	execPath, _ := data["exec_path"].(string)
	rawHeaders, _ := data["headers"].([]interface{})

	headers := make([]ProgramHeader, 0, len(rawHeaders))
	for _, rh := range rawHeaders {
		hm, ok := rh.(map[string]interface{})
		if !ok {
			continue
		}
		vaddr, _ := asInt(hm, "vaddr")
		memsz, _ := asInt(hm, "memsz")
		filesz, _ := asInt(hm, "filesz")
		off, _ := asInt(hm, "off")
		exec, _ := hm["executable"].(bool)
		headers = append(headers, ProgramHeader{
			VAddr: vaddr, MemSz: memsz, FileSz: filesz, Off: int64(off), Executable: exec,
		})
	}

	pm, err := newProcessMemory(pid, cfg.pageSize(), cfg.maxProcPages(), cfg.maxSwapSlots(), cfg.SwapDir)
	if err != nil {
		return errResponse("%v", err)
	}

	pm.mu.Lock()
	err = execLoad(pm, frames, execPath, headers)
	pm.mu.Unlock()

	if err != nil {
		pm.close()
		return errResponse("error en exec: %v", err)
	}

	registry.put(pm)
	return okResponse(map[string]interface{}{
		"stack_top": pm.StackTop,
		"sz":        pm.Sz,
	}), nil
}

func handleAccess(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	va, _ := asInt(data, "va")
	sp, _ := asInt(data, "sp")
	isWrite, _ := data["is_write"].(bool)

	pm := registry.get(pid)
	if pm == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	pm.mu.Lock()
	if pm.killed {
		pm.mu.Unlock()
		return errResponse("proceso %d ya finalizado", pid)
	}
	cause, err := handleFault(pm, frames, va, sp, isWrite)
	pm.mu.Unlock()

	if err != nil {
		if kill, ok := err.(*FaultKill); ok {
			killProcess(pm, kill.Reason, kill.Detail)
			return map[string]interface{}{"status": "KILL", "reason": string(kill.Reason)}, nil
		}
		return errResponse("%v", err)
	}

	return okResponse(map[string]interface{}{"cause": string(cause)}), nil
}

// handleFetch resolves one pseudo-instruction by line number. Fetch is
// a separate address space from the byte-addressed heap/stack/text the
// fault handler manages: it never triggers a page fault, since
// instruction fetch never goes through a TLB or cache here.
func handleFetch(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	pc, _ := asInt(data, "pc")

	pm := registry.get(pid)
	if pm == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pc < 0 || pc >= len(pm.execLines) {
		return errResponse("PC %d fuera de rango para pid %d", pc, pid)
	}
	return okResponse(map[string]interface{}{"instruccion": pm.execLines[pc]}), nil
}

func handleMemStat(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")

	pm := registry.get(pid)
	if pm == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	pm.mu.Lock()
	stat := snapshot(pm)
	pm.mu.Unlock()

	return okResponse(map[string]interface{}{"memstat": stat}), nil
}

func handleFinish(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")

	pm := registry.get(pid)
	if pm == nil {
		return okResponse(nil), nil
	}

	pm.mu.Lock()
	for va, pfn := range pm.frames {
		frames.freeFrame(pfn)
		pm.pt.unmap(va)
	}
	freed := pm.freeAllSlots()
	pm.mu.Unlock()

	logging.Line("[pid %d] SWAPCLEANUP freed_slots=%d", pid, freed)
	registry.remove(pid)
	return okResponse(nil), nil
}

func handleSbrk(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	n, _ := asInt(data, "n")
	mode, _ := data["mode"].(string)

	pm := registry.get(pid)
	if pm == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	newSz := pm.Sz + n
	if newSz < pm.HeapStart {
		return errResponse("sbrk negativo por debajo de heap_start")
	}

	if n < 0 || mode == "EAGER" {
		if n < 0 {
			for va := pgroundDown(newSz, pm.pageSize); va < pm.Sz; va += pm.pageSize {
				if pfn, ok := pm.frames[va]; ok {
					frames.freeFrame(pfn)
					delete(pm.frames, va)
					pm.pt.unmap(va)
				}
			}
		} else {
			for va := pgroundDown(pm.Sz, pm.pageSize); va < newSz; va += pm.pageSize {
				if _, err := handleFault(pm, frames, va, 0, false); err != nil {
					return errResponse("error en crecimiento eager: %v", err)
				}
			}
		}
	}

	pm.Sz = newSz
	return okResponse(map[string]interface{}{"sz": pm.Sz}), nil
}

func handleSuspend(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	pm := registry.get(pid)
	if pm == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	pm.mu.Lock()
	for i := range pm.Pages {
		if pm.Pages[i].State != Resident {
			continue
		}
		pfn, ok := pm.frames[pm.Pages[i].VA]
		if !ok {
			continue
		}
		if err := pm.swapOut(&pm.Pages[i], frames.frameAt(pfn)); err != nil {
			pm.mu.Unlock()
			return errResponse("%v", err)
		}
		pm.pt.unmap(pm.Pages[i].VA)
		delete(pm.frames, pm.Pages[i].VA)
		frames.freeFrame(pfn)
	}
	pm.mu.Unlock()

	return okResponse(nil), nil
}

func handleResume(msg *proto.Message) (interface{}, error) {
	return okResponse(nil), nil
}

// handleFork duplicates the address space of an existing process into a
// new one. The new pid's PCB (and its vruntime inheritance) is the
// kernel's responsibility — this only builds the child's memory image.
func handleFork(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	parentPID, _ := asInt(data, "parent_pid")
	childPID, _ := asInt(data, "child_pid")

	parent := registry.get(parentPID)
	if parent == nil {
		return errResponse("proceso %d no encontrado", parentPID)
	}

	parent.mu.Lock()
	if parent.killed {
		parent.mu.Unlock()
		return errResponse("proceso %d ya finalizado", parentPID)
	}
	child, err := forkProcessMemory(parent, frames, childPID, cfg.SwapDir)
	parent.mu.Unlock()
	if err != nil {
		if kill, ok := err.(*FaultKill); ok {
			return map[string]interface{}{"status": "KILL", "reason": string(kill.Reason)}, nil
		}
		return errResponse("error en fork: %v", err)
	}

	registry.put(child)
	return okResponse(map[string]interface{}{
		"stack_top": child.StackTop,
		"sz":        child.Sz,
	}), nil
}

func killProcess(pm *ProcessMemory, reason FaultKillReason, detail string) {
	pm.mu.Lock()
	pm.killed = true
	pm.mu.Unlock()

	if detail != "" {
		logging.Line("[pid %d] KILL    %s %s", pm.PID, reason, detail)
	} else {
		logging.Line("[pid %d] KILL    %s", pm.PID, reason)
	}
	if reason == KillMemFull {
		logging.Line("[pid %d] MEMFULL", pm.PID)
	}

	if kernelClient != nil {
		kernelClient.Send(proto.MsgFinishProcess, "kill", map[string]interface{}{
			"pid": pm.PID, "reason": string(reason),
		})
	}
}
