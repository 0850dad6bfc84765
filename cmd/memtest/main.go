// Command memtest exercises sbrk growth and the memory-stats snapshot:
// after growing the heap it checks that memstat reports at least one
// total page while the process is still alive.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/proto"
	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/testclient"
)

func main() {
	if len(os.Args) < 3 {
		testclient.Fail("uso: memtest <ip_kernel> <puerto_kernel>")
	}
	ip := os.Args[1]
	var port int
	fmt.Sscanf(os.Args[2], "%d", &port)

	kernel := testclient.Dial(ip, port, "memtest")

	script, err := testclient.WriteScript("memtest", "SBRK 8192 EAGER\nWRITE 0 hola\nNOOP\nNOOP\nNOOP\nNOOP\nNOOP\nEXIT\n")
	if err != nil {
		testclient.Fail("error escribiendo script: %v", err)
	}
	pid, err := testclient.Submit(kernel, script, 64)
	if err != nil {
		testclient.Fail("error enviando proceso: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	resp, err := kernel.Send(proto.MsgOperation, "memstat", map[string]interface{}{
		"pid": pid, "syscall": "memstat",
	})
	if err != nil {
		testclient.Fail("error consultando memstat: %v", err)
	}
	m, ok := resp.(map[string]interface{})
	if !ok {
		testclient.Fail("respuesta inesperada de memstat: %v", resp)
	}
	stat, ok := m["memstat"].(map[string]interface{})
	if !ok {
		testclient.Fail("memstat sin datos para pid %d (¿ya finalizó?)", pid)
	}

	total, _ := stat["num_pages_total"].(float64)
	if total < 1 {
		testclient.Fail("se esperaba num_pages_total >= 1, se obtuvo %v", total)
	}

	if err := testclient.WaitExit(kernel, pid, 10*time.Second); err != nil {
		testclient.Fail("%v", err)
	}
	testclient.Pass("OK: memstat reportó %v páginas totales tras el crecimiento de heap", total)
}
