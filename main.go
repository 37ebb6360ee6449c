// =============================================================================
// CSV to XLSX Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   csv2xlsx convert   - Convert one file (or stdin) to XLSX
//   csv2xlsx process   - Convert every CSV file in the input directory
//   csv2xlsx inspect   - Show the sheet and header style of a workbook
//   csv2xlsx validate  - Check the configuration file
//   csv2xlsx version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, workbook building, conversion, config, logging
//   - pkg/       : file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/cmd"
)

func main() {
	cmd.Execute()
}
