// Command cpu implements the instruction fetch/decode/execute cycle: it
// receives a dispatched PID from the kernel, steps through its pseudo
// instructions, and routes every memory access through memoria and every
// blocking syscall through the kernel.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/config"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

var (
	cfg           *Config
	kernelClient  *proto.Client
	memoriaClient *proto.Client
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion>\n", os.Args[0])
		os.Exit(1)
	}

	var err error
	cfg, err = config.Load[Config](os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("CPU_%s_%d", cfg.IPCPU, cfg.PortCPU)
	}

	logging.Init(cfg.LogLevel, name)
	logging.Info.Info("Iniciando módulo CPU")

	kernelClient = proto.NewClient(cfg.IPKernel, cfg.PortKernel, name+"->Kernel")
	memoriaClient = proto.NewClient(cfg.IPMemory, cfg.PortMemory, name+"->Memoria")

	srv := proto.NewServer(cfg.IPCPU, cfg.PortCPU, name)
	registerHandlers(srv)

	go func() {
		if err := proto.DialWithRetry(kernelClient, 20, 2*time.Second); err != nil {
			logging.Error.Error("No se pudo conectar con Kernel", "error", err)
			return
		}
		kernelClient.Send(proto.MsgHandshake, "handshake", map[string]interface{}{
			"kind": "cpu", "name": name, "ip": cfg.IPCPU, "port": cfg.PortCPU,
		})
	}()

	logging.Info.Info("CPU completamente inicializada")
	if err := srv.ListenAndServe(); err != nil {
		logging.Error.Error("Error al iniciar servidor HTTP", "error", err)
		os.Exit(1)
	}
}
