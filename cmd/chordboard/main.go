// Package main is the entry point for chordboard.
package main

import (
	"fmt"
	"os"

	"golang.design/x/hotkey/mainthread"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Global hotkeys on macOS must be serviced from the main thread.
	code := 0
	mainthread.Init(func() { code = run(os.Args[1:]) })
	os.Exit(code)
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
