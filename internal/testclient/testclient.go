// Package testclient is the thin client shared by the CLI user programs
// (readcount, memtest, schedulertest, forktest, usertests). These submit
// an exec script to a running kernel over the normal proto envelope and
// poll for the outcome, the way a real xv6 userland binary would drive
// syscalls against the kernel it runs under.
package testclient

import (
	"fmt"
	"os"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
)

// Header mirrors cmd/memoria's ProgramHeader wire shape.
type Header struct {
	VAddr      int  `json:"vaddr"`
	MemSz      int  `json:"memsz"`
	FileSz     int  `json:"filesz"`
	Off        int  `json:"off"`
	Executable bool `json:"executable"`
}

// Dial connects a client to the kernel at ip:port, named for logging.
func Dial(ip string, port int, name string) *proto.Client {
	return proto.NewClient(ip, port, name)
}

// WriteScript writes a pseudo-instruction script to a temp file and
// returns its path, ready to be passed as exec_path.
func WriteScript(name, contents string) (string, error) {
	path := fmt.Sprintf("%s/%s-%d.txt", os.TempDir(), name, os.Getpid())
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Submit asks the kernel to admit a new process running execPath, with
// one RWX header spanning the whole declared size (these are flat
// single-segment test programs, no separate text/data segments).
func Submit(c *proto.Client, execPath string, size int) (pid int, err error) {
	headers := []Header{{VAddr: 0, MemSz: size, FileSz: size, Off: 0, Executable: true}}
	resp, err := c.Send(proto.MsgInitProcess, "init", map[string]interface{}{
		"exec_path": execPath,
		"headers":   headers,
	})
	if err != nil {
		return 0, err
	}
	m, ok := resp.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("respuesta inesperada de kernel: %v", resp)
	}
	if status, _ := m["status"].(string); status != "OK" {
		return 0, fmt.Errorf("kernel rechazó el proceso: %v", m["mensaje"])
	}
	pidF, _ := m["pid"].(float64)
	return int(pidF), nil
}

// WaitExit polls the kernel's process status until the process leaves
// the system or the timeout elapses.
func WaitExit(c *proto.Client, pid int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := c.Send(proto.MsgOperation, "status", map[string]interface{}{"pid": pid})
		if err == nil {
			if m, ok := resp.(map[string]interface{}); ok {
				if exists, _ := m["exists"].(bool); !exists {
					return nil
				}
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("pid %d no finalizó dentro de %s", pid, timeout)
}

func Fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func Pass(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	os.Exit(0)
}
