// Package main provides the examprep CLI application entry point.
// examprep turns a syllabus topic into a structured study framework with an LLM.
package main

import (
	"os"

	"examprep/internal/output"
	"examprep/pkg/preptypes"
)

func main() {
	if err := newRootCommand(loadApp).Execute(); err != nil {
		printer := output.GetGlobalPrinter()
		printer.SetWriter(os.Stderr)
		reportError(printer, err)
		os.Exit(1)
	}
}

// reportError prints err and, for a missing session, how to start one.
func reportError(printer *output.Printer, err error) {
	printer.Failure(err)
	if preptypes.IsKind(err, preptypes.ErrNotLoggedIn) {
		printer.Info("Log in with: examprep login <email> <password>")
	}
}
