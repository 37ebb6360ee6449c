// =============================================================================
// CSV to XLSX Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (csv2xlsx)
//   ├── convertCmd  (csv2xlsx convert)
//   ├── processCmd  (csv2xlsx process)
//   ├── inspectCmd  (csv2xlsx inspect)
//   ├── validateCmd (csv2xlsx validate)
//   └── versionCmd  (csv2xlsx version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/logging"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/pkg/utils"
)

// defaultConfigFile is loaded when --config is not given and it exists.
const defaultConfigFile = "config.yaml"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "csv2xlsx",
	Short: "CSV to XLSX Converter - Turn delimited text into styled spreadsheets",
	Long: `CSV to XLSX Converter reads delimited text files (any delimiter, quote
character and encoding) and writes XLSX workbooks with one sheet: a bold,
grey, bordered header row followed by the data rows as text cells.

Example Usage:
  csv2xlsx convert --in people.csv --out people.xlsx
  csv2xlsx convert --in - --out out.xlsx --delimiter ';' < data.csv
  csv2xlsx process --config ./config.yaml
  csv2xlsx inspect people.xlsx`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default: ./config.yaml if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadConfig loads the configuration and builds the logger for a command.
func loadConfig() (*config.MainConfig, logging.Logger, error) {
	path := cfgFile
	if path == "" && utils.FileExists(defaultConfigFile) {
		path = defaultConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.NewConsole(level)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}
