// Command schedulertest submits several processes of different lengths
// concurrently and checks that the active scheduling policy (RR, FCFS or
// CFS — whichever the running kernel was built with) eventually drains
// the whole batch without starving anyone.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sisoputnfrba/tp-2026-2c-fifo-fair-kernel/internal/testclient"
)

func main() {
	if len(os.Args) < 3 {
		testclient.Fail("uso: schedulertest <ip_kernel> <puerto_kernel>")
	}
	ip := os.Args[1]
	var port int
	fmt.Sscanf(os.Args[2], "%d", &port)

	kernel := testclient.Dial(ip, port, "schedulertest")

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			body := ""
			for j := 0; j < (i+1)*5; j++ {
				body += "NOOP\n"
			}
			body += "EXIT\n"

			script, err := testclient.WriteScript(fmt.Sprintf("schedulertest-%d", i), body)
			if err != nil {
				errs[i] = err
				return
			}
			pid, err := testclient.Submit(kernel, script, 64)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = testclient.WaitExit(kernel, pid, 30*time.Second)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			testclient.Fail("proceso %d no completó: %v", i, err)
		}
	}
	testclient.Pass("OK: %d procesos concurrentes completaron bajo la política activa", n)
}
