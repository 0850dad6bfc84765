package main

import (
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

// fetch asks memoria for the pseudo-instruction text at pid's PC, a line
// index into the executable. Fetch does not go through memoria's fault
// handler: it never maps, swaps in or evicts a page.
func fetch(pid, pc int) (string, bool) {
	resp, err := memoriaClient.Send(proto.MsgFetch, "fetch", map[string]interface{}{
		"pid": pid, "pc": pc,
	})
	if err != nil {
		logging.Error.Error("error en fetch", "pid", pid, "pc", pc, "error", err)
		return "", false
	}
	m, ok := resp.(map[string]interface{})
	if !ok {
		return "", false
	}
	instr, ok := m["instruccion"].(string)
	return instr, ok
}

// readMemory and writeMemory drive a data access through memoria's
// translate/fault path. A page fault, swap-in, or eviction may happen
// transparently inside memoria before the access is satisfied.
func readMemory(pid, addr, size int) bool {
	resp, err := memoriaClient.Send(proto.MsgTranslate, "READ", map[string]interface{}{
		"pid": pid, "va": addr, "is_write": false,
	})
	return accessOK(pid, resp, err)
}

func writeMemory(pid, addr int, data string) bool {
	resp, err := memoriaClient.Send(proto.MsgTranslate, "WRITE", map[string]interface{}{
		"pid": pid, "va": addr, "is_write": true, "data": data,
	})
	return accessOK(pid, resp, err)
}

func accessOK(pid int, resp interface{}, err error) bool {
	if err != nil {
		logging.Error.Error("error accediendo a memoria", "pid", pid, "error", err)
		return false
	}
	m, ok := resp.(map[string]interface{})
	if !ok {
		return false
	}
	status, _ := m["status"].(string)
	return status == "OK"
}
