// =============================================================================
// CSV to XLSX Converter - Convert Command
// =============================================================================
//
// COMMAND USAGE:
//   csv2xlsx convert --in <file.csv|-> --out <file.xlsx> [dialect flags]
//
// Dialect flags override the csv_settings of the configuration file, but
// only when they are given on the command line.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/converter"
)

// convertFlags holds the values of the convert command flags.
type convertFlags struct {
	in             string
	out            string
	delimiter      string
	quote          string
	noHeader       bool
	encoding       string
	trimSpace      bool
	keepEmptyLines bool
	comment        string
	lazyQuotes     bool
	strictFields   bool
}

var convertOpts convertFlags

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one CSV file (or stdin) to XLSX",
	Long: `Convert reads one delimited text file and writes an XLSX workbook.

Use --in - to read from standard input; the stream is staged to a temporary
file first. The output file is replaced only once the workbook is complete.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, convertOpts)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	f.StringVarP(&convertOpts.in, "in", "i", "", "Input CSV file, or - for stdin")
	f.StringVarP(&convertOpts.out, "out", "o", "", "Output XLSX file")
	f.StringVarP(&convertOpts.delimiter, "delimiter", "d", ",", `Field delimiter (a character, or tab, pipe, semicolon, "\t")`)
	f.StringVarP(&convertOpts.quote, "quote", "q", "\"", "Quote character")
	f.BoolVar(&convertOpts.noHeader, "no-header", false, "The first record is data; columns are named Column_1..N")
	f.StringVarP(&convertOpts.encoding, "encoding", "e", "UTF-8", "Input encoding (WHATWG label, e.g. shift_jis, windows-1252)")
	f.BoolVar(&convertOpts.trimSpace, "trim-space", false, "Trim spaces and tabs around fields")
	f.BoolVar(&convertOpts.keepEmptyLines, "keep-empty-lines", false, "Keep empty lines as records with one empty field")
	f.StringVar(&convertOpts.comment, "comment", "", "Ignore lines starting with this character")
	f.BoolVar(&convertOpts.lazyQuotes, "lazy-quotes", false, "Allow quotes inside unquoted fields")
	f.BoolVar(&convertOpts.strictFields, "strict-fields", false, "Fail on records whose field count differs from the header")

	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")
}

func runConvert(cmd *cobra.Command, flags convertFlags) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	applyConvertFlags(cmd, flags, &cfg.CSVSettings)
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := cfg.ConverterOptions()
	if err != nil {
		return err
	}
	conv := converter.New(append(opts, converter.WithLogger(log))...)

	var stats converter.ProcessingStats
	if flags.in == "-" {
		stats, err = conv.ConvertReader(cmd.InOrStdin(), flags.out)
	} else {
		stats, err = conv.ConvertFile(flags.in, flags.out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows, %d columns)\n", flags.out, stats.RowsProcessed, stats.Columns)
	if stats.PaddedRows > 0 || stats.TruncatedRows > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: %d short record(s) padded, %d long record(s) truncated\n",
			stats.PaddedRows, stats.TruncatedRows)
	}
	return nil
}

// applyConvertFlags copies explicitly given flags over the configured settings.
func applyConvertFlags(cmd *cobra.Command, flags convertFlags, s *config.CSVSettings) {
	changed := cmd.Flags().Changed

	if changed("delimiter") {
		s.Delimiter = flags.delimiter
	}
	if changed("quote") {
		s.QuoteChar = flags.quote
	}
	if changed("no-header") {
		s.HasHeader = !flags.noHeader
	}
	if changed("encoding") {
		s.Encoding = flags.encoding
	}
	if changed("trim-space") {
		s.TrimSpace = flags.trimSpace
	}
	if changed("keep-empty-lines") {
		s.SkipEmptyLines = !flags.keepEmptyLines
	}
	if changed("comment") {
		s.Comment = flags.comment
	}
	if changed("lazy-quotes") {
		s.LazyQuotes = flags.lazyQuotes
	}
	if changed("strict-fields") {
		if flags.strictFields {
			s.FieldCountPolicy = converter.FailFast.String()
		} else {
			s.FieldCountPolicy = converter.PadMissing.String()
		}
	}
}
