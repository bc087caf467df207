// Package main provides the entry point for the contextbrain CLI.
package main

import (
	"os"

	"github.com/RealFaceCode/ContextBrain/cmd/contextbrain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
