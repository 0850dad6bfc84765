package main

import (
	"time"

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
	srv.Register(proto.MsgReadBlock, handleBlock)
}

func handleHandshake(msg *proto.Message) (interface{}, error) {
	logging.Info.Info("handshake recibido", "origen", msg.Origin)
	return map[string]interface{}{"status": "OK"}, nil
}

// handleBlock simulates either a byte-counted read() (operation "read")
// or a generic device wait (operation "io"), then reports completion to
// the kernel asynchronously: the caller's HTTP response returns
// immediately, fire-and-forget, and notifyComplete runs in its own
// goroutine once the simulated delay elapses.
func handleBlock(msg *proto.Message) (interface{}, error) {
	data, ok := asMap(msg.Data)
	if !ok {
		return map[string]interface{}{"status": "ERROR"}, nil
	}
	pid, _ := asInt(data, "pid")

	switch msg.Operation {
	case "read":
		bytes, _ := asInt(data, "bytes")
		logging.Info.Info("inicio de lectura", "pid", pid, "bytes", bytes)
		simulateDelay(bytes)
		logging.Info.Info("fin de lectura", "pid", pid, "bytes", bytes)
		go notifyComplete(pid, bytes)

	case "io":
		device, _ := data["device"].(string)
		ticks, _ := asInt(data, "ticks")
		logging.Info.Info("inicio de io", "pid", pid, "dispositivo", device, "ticks", ticks)
		simulateDelay(ticks)
		logging.Info.Info("fin de io", "pid", pid, "dispositivo", device)
		go notifyComplete(pid, 0)
	}

	return map[string]interface{}{"status": "OK"}, nil
}

func simulateDelay(units int) {
	if units <= 0 {
		return
	}
	time.Sleep(time.Duration(units*cfg.delayPerTick()) * time.Millisecond)
}

func notifyComplete(pid, bytes int) {
	_, err := kernelClient.Send(proto.MsgIOComplete, "io_complete", map[string]interface{}{
		"pid": pid, "bytes": bytes,
	})
	if err != nil {
		logging.Error.Error("error notificando fin de IO al kernel", "pid", pid, "error", err)
	}
}
