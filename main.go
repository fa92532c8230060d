// =============================================================================
// CFDI Extractor - Main Entry Point
// =============================================================================
//
// This is the main entry point for the CFDI Extractor CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   cfdi process            - Extract every CFDI in the input directory into a workbook
//   cfdi inspect <file>     - Print the record extracted from a single CFDI
//   cfdi version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Extraction, reporting, config and logging (not for external import)
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/cfdi-extractor/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
