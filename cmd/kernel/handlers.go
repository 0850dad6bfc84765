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
	srv.Register(proto.MsgHandshake, handleHandshake)
	srv.Register(proto.MsgInitProcess, handleInitProcess)
	srv.Register(proto.MsgTick, handleTick)
	srv.Register(proto.MsgFinishProcess, handleFinishProcess)
	srv.Register(proto.MsgIOComplete, handleIOComplete)
	srv.Register(proto.MsgOperation, handleSyscall)
}

// handleHandshake is used by CPU instances to register themselves with
// the scheduler, and by the I/O module announcing itself so the kernel
// knows where to route blocking read() calls.
func handleHandshake(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	kind, _ := data["kind"].(string)
	name, _ := data["name"].(string)
	ip, _ := data["ip"].(string)
	port, _ := asInt(data, "port")

	switch kind {
	case "cpu":
		sched.registerCPU(name, ip, port)
	case "io":
		registerIO(name, ip, port)
	default:
		return errResponse("tipo de handshake desconocido: %s", kind)
	}
	return okResponse(nil), nil
}

// handleInitProcess admits a new process: allocate PID, ask memoria to
// lazily map its executable, create the PCB and enqueue it READY.
func handleInitProcess(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	execPath, _ := data["exec_path"].(string)
	headers, _ := data["headers"]

	pid := allocPID()
	resp, err := memoriaClient.Send(proto.MsgExec, "init", map[string]interface{}{
		"pid":       pid,
		"exec_path": execPath,
		"headers":   headers,
	})
	if err != nil {
		return errResponse("fallo comunicando con memoria: %v", err)
	}
	m, _ := resp.(map[string]interface{})
	if status, _ := m["status"].(string); status != "OK" {
		msgStr, _ := m["mensaje"].(string)
		return errResponse("memoria rechazó exec: %s", msgStr)
	}
	sz, _ := asInt(m, "sz")

	pcb := newPCB(pid, execPath, sz, ticks.now())
	pidMu.Lock()
	procs[pid] = pcb
	pidMu.Unlock()

	sched.admitReady(pcb)
	return okResponse(map[string]interface{}{"pid": pid}), nil
}

// handleTick advances the global tick counter and runs the scheduler's
// per-tick accounting for whichever process the reporting CPU is running.
func handleTick(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")

	ticks.advance()

	pcb := lookupPCB(pid)
	if pcb == nil {
		return okResponse(map[string]interface{}{"preempt": false}), nil
	}
	expired := sched.accountTick(pcb)
	return okResponse(map[string]interface{}{"preempt": expired}), nil
}

// handleFinishProcess handles a kill reported by memoria (MEMFULL /
// invalid access / swap exhaustion): the process leaves the system and
// the multiprogramming semaphore is released. A natural exit reported by
// the CPU arrives in the dispatch reply instead (finishFromExec).
func handleFinishProcess(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	reason, _ := data["reason"].(string)

	pcb := lookupPCB(pid)
	if pcb == nil {
		return okResponse(nil), nil
	}
	retireProcess(pcb, reason)
	return okResponse(nil), nil
}

// retireProcess removes a process from the kernel's bookkeeping, tells
// memoria to release its frames and swap slots, and releases the
// multiprogramming admission slot. Shared by the CPU-reported EXIT path
// (finishFromExec) and the memoria-reported KILL path
// (handleFinishProcess).
func retireProcess(pcb *PCB, reason string) {
	pcb.setState(StateExit)

	pidMu.Lock()
	delete(procs, pcb.PID)
	pidMu.Unlock()

	sched.admit.Signal()

	memoriaClient.Send(proto.MsgFinishProcess, "cleanup", map[string]interface{}{"pid": pcb.PID})

	if reason != "" {
		logging.Line("[pid %d] FINISH reason=%s", pcb.PID, reason)
	} else {
		logging.Line("[pid %d] FINISH", pcb.PID)
	}
}

func finishFromExec(pcb *PCB) {
	retireProcess(pcb, "exit")
}

// handleIOComplete is called by the io module once a blocking read()
// finishes: it credits the byte count to the global read counter and
// moves the waiting process back to READY.
func handleIOComplete(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	pid, _ := asInt(data, "pid")
	bytes, _ := asInt(data, "bytes")

	total := reads.add(bytes)
	logging.Line("[pid %d] IOCOMPLETE bytes=%d total_read_bytes=%d", pid, bytes, total)

	pcb := lookupPCB(pid)
	if pcb == nil {
		return okResponse(nil), nil
	}
	sched.enqueueReady(pcb)
	return okResponse(nil), nil
}

// handleSyscall dispatches the generic syscall envelope (sbrk, memstat,
// getreadcount, read) a CPU forwards on behalf of the process it is
// running.
func handleSyscall(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return errResponse("formato de datos inválido")
	}
	name, _ := data["syscall"].(string)

	switch name {
	case "sbrk":
		return syscallSbrk(data)
	case "memstat":
		return syscallMemStat(data)
	case "getreadcount":
		return okResponse(map[string]interface{}{"count": reads.get()}), nil
	case "read":
		return syscallRead(data)
	case "io":
		return syscallIO(data)
	case "fork":
		return syscallFork(data)
	case "status":
		return syscallStatus(data)
	default:
		return errResponse("syscall desconocida: %s", name)
	}
}
