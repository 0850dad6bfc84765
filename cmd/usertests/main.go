// Command usertests is an end-to-end smoke test: it drives sbrk growth,
// a data write and read, a device IO wait, and a read() syscall in one
// process, then checks that it left the system within the timeout. A
// killed process also leaves the system, so EXIT and KILL are not told
// apart.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/testclient"
)

func main() {
	if len(os.Args) < 3 {
		testclient.Fail("uso: usertests <ip_kernel> <puerto_kernel>")
	}
	ip := os.Args[1]
	var port int
	fmt.Sscanf(os.Args[2], "%d", &port)

	kernel := testclient.Dial(ip, port, "usertests")

	script := "SBRK 4096 EAGER\n" +
		"WRITE 0 hola\n" +
		"READ 0 4\n" +
		"IO DISCO 5\n" +
		"READBYTES 50\n" +
		"EXIT\n"

	path, err := testclient.WriteScript("usertests", script)
	if err != nil {
		testclient.Fail("error escribiendo script: %v", err)
	}
	pid, err := testclient.Submit(kernel, path, 64)
	if err != nil {
		testclient.Fail("error enviando proceso: %v", err)
	}
	if err := testclient.WaitExit(kernel, pid, 30*time.Second); err != nil {
		testclient.Fail("%v", err)
	}
	testclient.Pass("OK: secuencia completa de sbrk/write/read/io/read() finalizó")
}
