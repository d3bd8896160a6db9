// Command graphonauts loads the TPC-H dataset into graph databases and benchmarks
// queries against them.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
)

func main() {
	defer exitOnPanic()
	os.Exit(Execute(context.Background(), os.Args[1:]))
}

// exitOnPanic turns a panic into ExitError. The stack is printed only in verbose mode.
func exitOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "graphonauts: internal error: %v\n", r)
	if internal.VerboseFromEnv() {
		os.Stderr.Write(debug.Stack())
	}
	os.Exit(internal.ExitError)
}
