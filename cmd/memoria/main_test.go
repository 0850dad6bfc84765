package main

import (
	"os"
	"testing"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init("error", "memoria-test")
	os.Exit(m.Run())
}
