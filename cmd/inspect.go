// =============================================================================
// CSV to XLSX Converter - Inspect Command
// =============================================================================
//
// COMMAND USAGE:
//   csv2xlsx inspect <file.xlsx> [--rows N]
//
// Prints the sheets of a workbook, the header row with its style and column
// widths, and the first data rows of the first sheet.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/xlsxdoc"
)

// inspectRows limits the number of data rows printed.
var inspectRows int

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.xlsx>",
	Short: "Show the sheet, header style and first rows of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := xlsxdoc.Inspect(args[0])
		if err != nil {
			return err
		}
		printSummary(cmd, summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVarP(&inspectRows, "rows", "n", 5, "Number of data rows to print")
}

func printSummary(cmd *cobra.Command, s *xlsxdoc.Summary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "File:    %s\n", s.SourceFile)
	fmt.Fprintf(out, "Sheets:  %s\n", strings.Join(s.Sheets, ", "))
	fmt.Fprintf(out, "Sheet:   %s (%d data rows, %d columns)\n", s.Sheet, len(s.DataRows()), s.Width)
	fmt.Fprintf(out, "Header:  %s\n", strings.Join(s.Header(), " | "))

	if style := s.HeaderStyle; style != nil {
		bold := style.Font != nil && style.Font.Bold
		fill := "none"
		if len(style.Fill.Color) > 0 {
			fill = style.Fill.Color[0]
		}
		var borders []string
		for _, b := range style.Border {
			borders = append(borders, fmt.Sprintf("%s=%d", b.Type, b.Style))
		}
		fmt.Fprintf(out, "Style:   bold=%t fill=%s borders=[%s]\n", bold, fill, strings.Join(borders, " "))
	} else {
		fmt.Fprintln(out, "Style:   none")
	}

	widths := make([]string, len(s.ColumnWidths))
	for i, w := range s.ColumnWidths {
		widths[i] = fmt.Sprintf("%g", w)
	}
	fmt.Fprintf(out, "Widths:  %s\n", strings.Join(widths, " "))

	rows := s.DataRows()
	if inspectRows >= 0 && len(rows) > inspectRows {
		rows = rows[:inspectRows]
	}
	for i, row := range rows {
		fmt.Fprintf(out, "%6d:  %s\n", i+2, strings.Join(row, " | "))
	}
}
