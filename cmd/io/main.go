// Command io simulates one block device: it receives blocking read()
// and generic device-IO requests forwarded by the kernel and replies
// asynchronously once the simulated transfer completes.
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
	cfg          *Config
	kernelClient *proto.Client
	deviceName   string
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Uso: io <nombre_dispositivo> <archivo_configuracion>")
		os.Exit(1)
	}
	deviceName = os.Args[1]

	var err error
	cfg, err = config.Load[Config](os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loggerName := "IO-" + deviceName
	logging.Init(cfg.LogLevel, loggerName)
	logging.Info.Info("Iniciando módulo IO", "dispositivo", deviceName)

	kernelClient = proto.NewClient(cfg.IPKernel, cfg.PortKernel, loggerName+"->Kernel")

	srv := proto.NewServer(cfg.IPIO, cfg.PortIO, loggerName)
	registerHandlers(srv)

	go func() {
		if err := proto.DialWithRetry(kernelClient, 20, 2*time.Second); err != nil {
			logging.Error.Error("No se pudo conectar con Kernel", "error", err)
			return
		}
		kernelClient.Send(proto.MsgHandshake, "handshake", map[string]interface{}{
			"kind": "io", "name": deviceName, "ip": cfg.IPIO, "port": cfg.PortIO,
		})
	}()

	logging.Info.Info("Módulo IO completamente inicializado")
	if err := srv.ListenAndServe(); err != nil {
		logging.Error.Error("Error al iniciar servidor HTTP", "error", err)
		os.Exit(1)
	}
}
