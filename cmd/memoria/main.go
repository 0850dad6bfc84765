// Command memoria implements the demand-paged virtual-memory subsystem:
// per-process swap files, FIFO eviction, the fault handler, exec
// lazy-mapping, and the memory-stats reporter.
package main

import (
	"fmt"
	"os"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/config"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

var (
	cfg          *Config
	frames       *framePool
	registry     *processRegistry
	kernelClient *proto.Client
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

	logging.Init(cfg.LogLevel, "Memoria")
	logging.Info.Info("Iniciando módulo Memoria")

	frames = newFramePool(cfg.TotalFrames, cfg.pageSize())
	registry = newProcessRegistry()
	logging.Info.Info("Memoria principal inicializada", "marcos", cfg.TotalFrames, "tamaño_página", cfg.pageSize())

	if cfg.IPKernel != "" {
		kernelClient = proto.NewClient(cfg.IPKernel, cfg.PortKernel, "Memoria->Kernel")
	}

	srv := proto.NewServer(cfg.IPMemory, cfg.PortMemory, "Memoria")
	registerHandlers(srv)

	logging.Info.Info("Memoria completamente inicializada")
	if err := srv.ListenAndServe(); err != nil {
		logging.Error.Error("Error al iniciar servidor HTTP", "error", err)
		os.Exit(1)
	}
}
