// Command kernel implements process admission, the short-term scheduler,
// and tick/readcount bookkeeping for the teaching OS. It never touches
// page tables or frames directly — every memory operation is proxied to
// the memoria module over the shared proto envelope.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/config"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

var (
	cfg           *Config
	sched         *Scheduler
	ticks         = &tickCounter{}
	reads         = &readCounter{}
	memoriaClient *proto.Client

	pidMu   sync.Mutex
	nextPID int
	procs   = make(map[int]*PCB)
)

func allocPID() int {
	pidMu.Lock()
	defer pidMu.Unlock()
	pid := nextPID
	nextPID++
	return pid
}

func lookupPCB(pid int) *PCB {
	pidMu.Lock()
	defer pidMu.Unlock()
	return procs[pid]
}

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

	logging.Init(cfg.LogLevel, "Kernel")
	logging.Info.Info("Iniciando módulo Kernel", "politica", cfg.policy())

	memoriaClient = proto.NewClient(cfg.IPMemory, cfg.PortMemory, "Kernel->Memoria")
	sched = newScheduler(cfg)

	srv := proto.NewServer(cfg.IPKernel, cfg.PortKernel, "Kernel")
	registerHandlers(srv)

	go sched.run()

	logging.Info.Info("Kernel completamente inicializado")
	if err := srv.ListenAndServe(); err != nil {
		logging.Error.Error("Error al iniciar servidor HTTP", "error", err)
		os.Exit(1)
	}
}
