// Command forktest exercises the fork() path — the forked child is
// admitted and leaves the system like its parent — and separately checks
// that 10 concurrently submitted processes all complete.
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
		testclient.Fail("uso: forktest <ip_kernel> <puerto_kernel>")
	}
	ip := os.Args[1]
	var port int
	fmt.Sscanf(os.Args[2], "%d", &port)

	kernel := testclient.Dial(ip, port, "forktest")

	script, err := testclient.WriteScript("forktest-fork-parent", "SBRK 64 EAGER\nFORK\nNOOP\nEXIT\n")
	if err != nil {
		testclient.Fail("error escribiendo script de fork: %v", err)
	}
	parentPID, err := testclient.Submit(kernel, script, 64)
	if err != nil {
		testclient.Fail("error admitiendo proceso padre: %v", err)
	}
	// PID allocation is sequential and nothing else has been admitted yet,
	// so the forked child is guaranteed to land on the very next pid.
	childPID := parentPID + 1

	if err := testclient.WaitExit(kernel, parentPID, 30*time.Second); err != nil {
		testclient.Fail("proceso padre %d no finalizó: %v", parentPID, err)
	}
	if err := testclient.WaitExit(kernel, childPID, 30*time.Second); err != nil {
		testclient.Fail("proceso hijo %d (fork de %d) no finalizó: %v", childPID, parentPID, err)
	}

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			script, err := testclient.WriteScript(fmt.Sprintf("forktest-%d", i), "SBRK 64 EAGER\nNOOP\nEXIT\n")
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

	failed := 0
	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(os.Stderr, "proceso %d: %v\n", i, err)
			failed++
		}
	}
	if failed > 0 {
		testclient.Fail("%d/%d procesos no completaron", failed, n)
	}
	testclient.Pass("OK: fork admitió correctamente al hijo %d de %d, y %d procesos independientes completaron bajo el límite de multiprogramación", childPID, parentPID, n)
}
