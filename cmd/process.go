// =============================================================================
// CSV to XLSX Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every CSV file in
// the input directory.
//
// COMMAND USAGE:
//   csv2xlsx process [--dry-run] [--input-dir DIR] [--output-dir DIR]
//
// PROCESSING FLOW:
//   1. Load configuration
//   2. Discover .csv files in the input directory
//   3. Convert files concurrently (bounded by max_concurrency)
//   4. Write a processing summary, and an error log if anything failed
//   5. Report results
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/converter"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/pkg/utils"
)

// dryRun parses the input files without writing any output.
var dryRun bool

// inputDirFlag and outputDirFlag override the configured directories.
var inputDirFlag, outputDirFlag string

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every CSV file in the input directory to XLSX",
	Long: `The process command scans the input directory for .csv files and converts
each one to an .xlsx file of the same name in the output directory.

Processing is done concurrently. Each file is converted independently; with
continue_on_error set to false, files not yet started are skipped after the
first failure.

After the run:
  - A processing summary is written to the output directory
  - An error log is written next to it if any file failed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the input files without writing any output")
	processCmd.Flags().StringVar(&inputDirFlag, "input-dir", "", "Override the configured input directory")
	processCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Override the configured output directory")
}

func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== CSV to XLSX Converter ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if inputDirFlag != "" {
		cfg.InputDir = inputDirFlag
	}
	if outputDirFlag != "" {
		cfg.OutputDir = outputDirFlag
	}

	if dryRun {
		return runDryRun(cmd, cfg)
	}

	opts, err := cfg.ConverterOptions()
	if err != nil {
		return err
	}
	conv := converter.New(append(opts, converter.WithLogger(log))...)

	fmt.Fprintf(out, "Converting %s -> %s\n", cfg.InputDir, cfg.OutputDir)
	results, err := conv.ConvertDir(cfg.InputDir, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to process input directory: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No CSV files found in the input directory.")
		return nil
	}

	summary := utils.ProcessingSummary{StartTime: startTime, TotalFiles: len(results)}
	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalRows += result.Stats.RowsProcessed
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				Rows:        result.Stats.RowsProcessed,
				Columns:     result.Stats.Columns,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, result.OutputFile)
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: result.Error.Error(),
		})
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     result.FilePath,
			ErrorType:    converter.ErrorType(result.Error),
			ErrorMessage: result.Error.Error(),
			Line:         converter.ErrorLine(result.Error),
		})
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
	}
	summary.EndTime = time.Now()

	if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
		log.Warn("%v", err)
	} else {
		log.Debug("summary written to %s", path)
	}
	errorLog, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir)
	if err != nil {
		log.Warn("%v", err)
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if summary.FailedFiles > 0 {
		if errorLog != "" {
			fmt.Fprintf(out, "\nErrors have been logged to %s\n", errorLog)
		}
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// runDryRun checks every input file with the configured dialect and field
// count policy and reports what a real run would produce.
func runDryRun(cmd *cobra.Command, cfg *config.MainConfig) error {
	out := cmd.OutOrStdout()

	opts, err := cfg.ConverterOptions()
	if err != nil {
		return err
	}
	conv := converter.New(opts...)

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, "")
	files, err := fm.DiscoverInputFiles()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Dry run: %d file(s) in %s\n", len(files), cfg.InputDir)
	failed := 0
	for _, file := range files {
		stats, err := conv.CheckFile(file)
		if err != nil {
			failed++
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(file), err)
			continue
		}
		fmt.Fprintf(out, "  ✓ %s: %d rows, %d columns -> %s",
			filepath.Base(file), stats.RowsProcessed, stats.Columns, filepath.Base(fm.OutputPathFor(file)))
		if stats.PaddedRows > 0 || stats.TruncatedRows > 0 {
			fmt.Fprintf(out, " (%d padded, %d truncated)", stats.PaddedRows, stats.TruncatedRows)
		}
		fmt.Fprintln(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) would fail", failed, len(files))
	}
	return nil
}
