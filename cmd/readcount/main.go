// Command readcount drives (I7): getreadcount must increase by exactly
// the sum of successful read() byte counts observed since the last
// sample, under serial access. Grounded on
// original_source/xv6 FCFS AND CFS/readcount.c, which samples
// getreadcount() before and after a 100-byte read and checks the delta.
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
		testclient.Fail("uso: readcount <ip_kernel> <puerto_kernel>")
	}
	ip := os.Args[1]
	var port int
	fmt.Sscanf(os.Args[2], "%d", &port)

	kernel := testclient.Dial(ip, port, "readcount")

	before, err := getReadCount(kernel)
	if err != nil {
		testclient.Fail("error leyendo contador inicial: %v", err)
	}

	script, err := testclient.WriteScript("readcount", "READBYTES 100\nEXIT\n")
	if err != nil {
		testclient.Fail("error escribiendo script: %v", err)
	}
	pid, err := testclient.Submit(kernel, script, 64)
	if err != nil {
		testclient.Fail("error enviando proceso: %v", err)
	}
	if err := testclient.WaitExit(kernel, pid, 10*time.Second); err != nil {
		testclient.Fail("%v", err)
	}

	after, err := getReadCount(kernel)
	if err != nil {
		testclient.Fail("error leyendo contador final: %v", err)
	}

	delta := after - before
	if delta != 100 {
		testclient.Fail("se esperaba un incremento de 100 bytes, se obtuvo %d", delta)
	}
	testclient.Pass("OK: getreadcount incrementó exactamente 100 bytes")
}

func getReadCount(kernel *proto.Client) (int, error) {
	resp, err := kernel.Send(proto.MsgOperation, "getreadcount", map[string]interface{}{
		"pid": 0, "syscall": "getreadcount",
	})
	if err != nil {
		return 0, err
	}
	m, ok := resp.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("respuesta inesperada: %v", resp)
	}
	count, _ := m["count"].(float64)
	return int(count), nil
}
