// Package main is the entry point for the quizboard command
package main

import (
	"fmt"
	"os"
)

// version is set during build using ldflags
var (
	version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
