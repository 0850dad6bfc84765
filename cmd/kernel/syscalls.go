package main

import (
	"sync"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

var (
	ioMu      sync.Mutex
	ioClients = make(map[string]*proto.Client)
)

func registerIO(name, ip string, port int) {
	ioMu.Lock()
	defer ioMu.Unlock()
	ioClients[name] = proto.NewClient(ip, port, "Kernel->"+name)
}

func anyIOClient() *proto.Client {
	ioMu.Lock()
	defer ioMu.Unlock()
	for _, c := range ioClients {
		return c
	}
	return nil
}

// syscallSbrk forwards sbrk(n, mode) straight to memoria; the kernel
// itself holds no memory-layout state.
func syscallSbrk(data map[string]interface{}) (interface{}, error) {
	pid, _ := asInt(data, "pid")
	n, _ := asInt(data, "n")
	mode, _ := data["mode"].(string)

	resp, err := memoriaClient.Send(proto.MsgSbrk, "sbrk", map[string]interface{}{
		"pid": pid, "n": n, "mode": mode,
	})
	if err != nil {
		return errResponse("fallo comunicando con memoria: %v", err)
	}
	return resp, nil
}

// syscallMemStat forwards memstat(buf) to memoria for a stats snapshot.
func syscallMemStat(data map[string]interface{}) (interface{}, error) {
	pid, _ := asInt(data, "pid")

	resp, err := memoriaClient.Send(proto.MsgMemStat, "memstat", map[string]interface{}{"pid": pid})
	if err != nil {
		return errResponse("fallo comunicando con memoria: %v", err)
	}
	return resp, nil
}

// syscallRead blocks the calling process (moves it out of the ready
// pool) and asks an io instance to simulate the device read. The byte
// count lands back at handleIOComplete, which credits total_read_bytes
// and re-enqueues the process.
func syscallRead(data map[string]interface{}) (interface{}, error) {
	pid, _ := asInt(data, "pid")
	n, _ := asInt(data, "n")

	pcb := lookupPCB(pid)
	if pcb == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	io := anyIOClient()
	if io == nil {
		return errResponse("no hay módulo de IO disponible")
	}

	pcb.setState(StateBlocked)
	if _, err := io.Send(proto.MsgReadBlock, "read", map[string]interface{}{
		"pid": pid, "bytes": n,
	}); err != nil {
		sched.enqueueReady(pcb)
		return errResponse("fallo comunicando con io: %v", err)
	}

	return okResponse(map[string]interface{}{"blocked": true}), nil
}

// syscallStatus reports a process's current scheduling state. Used by
// the CLI test programs to poll for completion — not part of the
// in-process syscall surface a running process would call on itself.
func syscallStatus(data map[string]interface{}) (interface{}, error) {
	pid, _ := asInt(data, "pid")
	pcb := lookupPCB(pid)
	if pcb == nil {
		return okResponse(map[string]interface{}{"state": string(StateExit), "exists": false}), nil
	}
	return okResponse(map[string]interface{}{"state": string(pcb.getState()), "exists": true}), nil
}

// syscallFork creates a child process that inherits the parent's vruntime
// (so a newborn under the fair policy doesn't start at 0 and dominate the
// ready queue), asks memoria to duplicate the parent's address space, and
// admits the child READY. The parent keeps running uninterrupted.
func syscallFork(data map[string]interface{}) (interface{}, error) {
	pid, _ := asInt(data, "pid")
	pc, _ := asInt(data, "pc")

	parent := lookupPCB(pid)
	if parent == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	childPID := allocPID()
	resp, err := memoriaClient.Send(proto.MsgFork, "fork", map[string]interface{}{
		"parent_pid": pid, "child_pid": childPID,
	})
	if err != nil {
		return errResponse("fallo comunicando con memoria: %v", err)
	}
	m, _ := resp.(map[string]interface{})
	if status, _ := m["status"].(string); status != "OK" {
		msgStr, _ := m["mensaje"].(string)
		return errResponse("memoria rechazó fork: %s", msgStr)
	}
	sz, _ := asInt(m, "sz")

	child := forkChildPCB(parent, childPID, sz, ticks.now(), pc)

	pidMu.Lock()
	procs[childPID] = child
	pidMu.Unlock()

	sched.admitReady(child)
	return okResponse(map[string]interface{}{"pid": childPID}), nil
}

// syscallIO blocks the calling process for a device operation (device
// name + duration in ticks). Unlike syscallRead this never touches
// total_read_bytes — it is a generic blocking wait, not a byte-counted
// read().
func syscallIO(data map[string]interface{}) (interface{}, error) {
	pid, _ := asInt(data, "pid")
	device, _ := data["device"].(string)
	ticks, _ := asInt(data, "ticks")

	pcb := lookupPCB(pid)
	if pcb == nil {
		return errResponse("proceso %d no encontrado", pid)
	}

	io := anyIOClient()
	if io == nil {
		return errResponse("no hay módulo de IO disponible")
	}

	pcb.setState(StateBlocked)
	if _, err := io.Send(proto.MsgReadBlock, "io", map[string]interface{}{
		"pid": pid, "device": device, "ticks": ticks,
	}); err != nil {
		sched.enqueueReady(pcb)
		return errResponse("fallo comunicando con io: %v", err)
	}

	return okResponse(map[string]interface{}{"blocked": true}), nil
}
