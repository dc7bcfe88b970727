package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mortie23/tptload/internal/cli"
	"github.com/mortie23/tptload/pkg/tptload"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(tptload.ExitPanic)
		}
	}()

	if os.Getenv("TPTLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(tptload.ExitCodeForError(err))
	}
}
