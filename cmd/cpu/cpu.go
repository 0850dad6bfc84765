package main

import (
	"strconv"
	"strings"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

// runProcess drives the dispatched process until it blocks, exits, or
// its slice runs out. Each step is one pseudo-instruction: fetched from
// memoria by line index, decoded, and executed. There is no
// TLB or instruction cache in front of the fetch/access path: every
// access is a direct call to memoria.
func runProcess(pid, pc, slice int) (nextPC int, outcome string, detail map[string]interface{}) {
	nextPC = pc
	remaining := slice

	for {
		instr, ok := fetch(pid, nextPC)
		if !ok {
			return nextPC, "EXIT", map[string]interface{}{"reason": "fetch_error"}
		}

		newPC, reason, params := execute(pid, nextPC, instr)
		nextPC = newPC

		switch reason {
		case "ERROR", "EXIT":
			return nextPC, reason, params

		case "SYSCALL_IO", "SYSCALL_READ":
			blocked, resp := doSyscall(pid, reason, params)
			if blocked {
				respMap, _ := resp.(map[string]interface{})
				return nextPC, "BLOCKED", respMap
			}
			// syscall failed before blocking; process keeps running

		case "SYSCALL_SBRK", "SYSCALL_MEMSTAT", "SYSCALL_READCOUNT", "SYSCALL_FORK":
			doSyscall(pid, reason, params)
		}

		if reportTick(pid) {
			return nextPC, "READY", nil
		}

		if slice > 0 {
			remaining--
			if remaining <= 0 {
				return nextPC, "READY", nil
			}
		}
	}
}

// doSyscall forwards a decoded syscall to the kernel's generic operation
// handler. Returns blocked=true only for the syscalls that suspend the
// calling process (IO, read); sbrk/memstat/getreadcount complete inline
// and execution continues in the same dispatch.
func doSyscall(pid int, reason string, params map[string]interface{}) (blocked bool, resp interface{}) {
	name := map[string]string{
		"SYSCALL_IO":        "io",
		"SYSCALL_READ":      "read",
		"SYSCALL_SBRK":      "sbrk",
		"SYSCALL_MEMSTAT":   "memstat",
		"SYSCALL_READCOUNT": "getreadcount",
		"SYSCALL_FORK":      "fork",
	}[reason]

	data := map[string]interface{}{"pid": pid, "syscall": name}
	for k, v := range params {
		data[k] = v
	}

	r, err := kernelClient.Send(proto.MsgOperation, name, data)
	if err != nil {
		logging.Error.Error("error en syscall", "pid", pid, "syscall", name, "error", err)
		return false, nil
	}
	if name == "io" || name == "read" {
		return true, r
	}
	return false, r
}

func execute(pid, pc int, instr string) (nextPC int, reason string, params map[string]interface{}) {
	fields := strings.Fields(instr)
	if len(fields) == 0 {
		return pc, "ERROR", nil
	}
	op, args := fields[0], fields[1:]
	nextPC = pc + 1 // default: advance one line; GOTO overrides below
	params = map[string]interface{}{}

	logging.Info.Debug("ejecutando instrucción", "pid", pid, "pc", pc, "op", op)

	switch op {
	case "NOOP":

	case "WRITE":
		if len(args) < 2 {
			return pc, "ERROR", nil
		}
		addr, err := strconv.Atoi(args[0])
		if err != nil {
			return pc, "ERROR", nil
		}
		if !writeMemory(pid, addr, args[1]) {
			return pc, "ERROR", nil
		}

	case "READ":
		if len(args) < 2 {
			return pc, "ERROR", nil
		}
		addr, err1 := strconv.Atoi(args[0])
		size, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return pc, "ERROR", nil
		}
		if !readMemory(pid, addr, size) {
			return pc, "ERROR", nil
		}

	case "GOTO":
		if len(args) < 1 {
			return pc, "ERROR", nil
		}
		target, err := strconv.Atoi(args[0])
		if err != nil {
			return pc, "ERROR", nil
		}
		nextPC = target

	case "IO":
		if len(args) < 2 {
			return pc, "ERROR", nil
		}
		ticks, err := strconv.Atoi(args[1])
		if err != nil {
			return pc, "ERROR", nil
		}
		params["device"] = args[0]
		params["ticks"] = ticks
		reason = "SYSCALL_IO"

	case "READCOUNT":
		reason = "SYSCALL_READCOUNT"

	case "FORK":
		// The child starts right after the FORK instruction, the way a
		// real fork() returns at the same point in both parent and child.
		params["pc"] = nextPC
		reason = "SYSCALL_FORK"

	case "READBYTES":
		if len(args) < 1 {
			return pc, "ERROR", nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return pc, "ERROR", nil
		}
		params["n"] = n
		reason = "SYSCALL_READ"

	case "SBRK":
		if len(args) < 2 {
			return pc, "ERROR", nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return pc, "ERROR", nil
		}
		params["n"] = n
		params["mode"] = args[1]
		reason = "SYSCALL_SBRK"

	case "MEMSTAT":
		reason = "SYSCALL_MEMSTAT"

	case "EXIT":
		nextPC = pc
		reason = "EXIT"

	default:
		return pc, "ERROR", nil
	}

	return nextPC, reason, params
}

// reportTick sends one timer tick to the kernel and returns whether the
// scheduler wants this process preempted before the next instruction.
func reportTick(pid int) bool {
	resp, err := kernelClient.Send(proto.MsgTick, "tick", map[string]interface{}{"pid": pid})
	if err != nil {
		logging.Error.Error("error reportando tick", "pid", pid, "error", err)
		return false
	}
	m, ok := resp.(map[string]interface{})
	if !ok {
		return false
	}
	preempt, _ := m["preempt"].(bool)
	return preempt
}
