// sysfuzz is a kernel system-call fuzzer.
//
// It spawns a pool of worker processes, each of which repeatedly picks a
// registered syscall, synthesizes arguments for it from a shared resource
// pool, invokes it directly, and feeds the outcome back into the pool's
// bookkeeping.
package main

import (
	"fmt"
	"os"

	"sysfuzz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
