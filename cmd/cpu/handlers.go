package main

import (
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

func registerHandlers(srv *proto.Server) {
	srv.Register(proto.MsgHandshake, handleHandshake)
	srv.Register(proto.MsgDispatch, handleDispatch)
}

func handleHandshake(msg *proto.Message) (interface{}, error) {
	logging.Info.Info("handshake recibido", "origen", msg.Origin)
	return map[string]interface{}{"status": "OK"}, nil
}

// handleDispatch runs the received process until it yields control back
// to the kernel, returning the resulting PC and the reason it stopped.
func handleDispatch(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return map[string]interface{}{"outcome": "ERROR"}, nil
	}
	pid, _ := asInt(data, "pid")
	pc, _ := asInt(data, "pc")
	slice, _ := asInt(data, "slice")

	nextPC, outcome, detail := runProcess(pid, pc, slice)

	logging.Info.Info("proceso devuelto al kernel", "pid", pid, "pc", nextPC, "outcome", outcome)

	resp := map[string]interface{}{
		"pid":     pid,
		"pc":      nextPC,
		"outcome": outcome,
	}
	if detail != nil {
		resp["detail"] = detail
	}
	return resp, nil
}
