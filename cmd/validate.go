// =============================================================================
// CSV to XLSX Converter - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   csv2xlsx validate [--config config.yaml]
//
// Loads and validates the configuration without converting anything.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		d, err := cfg.CSVSettings.Dialect()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration OK")
		fmt.Fprintf(out, "  input_dir:       %s\n", cfg.InputDir)
		fmt.Fprintf(out, "  output_dir:      %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "  max_concurrency: %d\n", cfg.MaxConcurrency)
		fmt.Fprintf(out, "  delimiter:       %q\n", d.Comma)
		fmt.Fprintf(out, "  quote_char:      %q\n", d.Quote)
		fmt.Fprintf(out, "  has_header:      %t\n", d.HeaderPresent)
		fmt.Fprintf(out, "  encoding:        %s\n", cfg.CSVSettings.Encoding)
		fmt.Fprintf(out, "  field_policy:    %s\n", cfg.CSVSettings.FieldCountPolicy)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
