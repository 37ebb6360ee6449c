// =============================================================================
// CSV to XLSX Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Directory management and input discovery
//   - Staging of stream sources into temporary files
//   - Atomic output writes (temp file + rename)
//   - Error and summary logs for batch runs
//
// OUTPUT STRATEGY:
//   - Output is rendered in memory first
//   - natefinch/atomic writes it to a temp file next to the destination and
//     replaces the destination only after a full, synced write
//   - On failure no partial document is left behind
//
// =============================================================================

package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// InputExtension is the extension of files picked up by batch discovery.
const InputExtension = ".csv"

// OutputExtension is the extension given to converted files.
const OutputExtension = ".xlsx"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory where input files are placed.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string

	// StagingDir holds temporary copies of stream sources.
	// Default: os.TempDir()
	StagingDir string
}

// NewFileManager creates a new FileManager with the specified directories.
// An empty stagingDir selects the system temp directory.
func NewFileManager(inputDir, outputDir, stagingDir string) *FileManager {
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		StagingDir: stagingDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and staging directories if they don't
// exist. The input directory must already exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	if info, err := os.Stat(fm.InputDir); err != nil {
		return fmt.Errorf("input directory %s: %w", fm.InputDir, err)
	} else if !info.IsDir() {
		return fmt.Errorf("input directory %s is not a directory", fm.InputDir)
	}

	for _, dir := range []string{fm.OutputDir, fm.StagingDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files directly inside the input
// directory whose extension is .csv in any letter case, sorted by path.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), InputExtension) {
			files = append(files, filepath.Join(fm.InputDir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// OutputPathFor returns the output path for an input file:
// <OutputDir>/<input base name without extension>.xlsx
func (fm *FileManager) OutputPathFor(inputPath string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(fm.OutputDir, name+OutputExtension)
}

// =============================================================================
// STAGING
// =============================================================================

// StageReader copies r into a new uniquely named file in dir and returns its
// path together with a cleanup function that removes it. The cleanup function
// is safe to call more than once. On error nothing is left on disk.
func StageReader(r io.Reader, dir string) (string, func(), error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "staging-"+uuid.New().String()+InputExtension)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	cleanup := func() { os.Remove(path) }

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to stage input: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return path, cleanup, nil
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic renders write into memory and hands the result to
// atomic.WriteFile, which replaces path only after a complete, synced write.
// When write fails nothing touches the disk and an existing file at path is
// kept. Newly created files get mode 0644.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	created := errors.Is(statErr, fs.ErrNotExist)

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	if created {
		if err := os.Chmod(path, 0644); err != nil {
			return fmt.Errorf("failed to set mode on %s: %w", path, err)
		}
	}

	return nil
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	Line         int
}

// WriteErrorLog writes error entries to error_log_<timestamp>.txt in
// outputDir. Nothing is written for an empty list.
//
// RETURNS:
//   - The path to the error log file ("" when nothing was written).
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", time.Now().Format("20060102_150405")))

	err := WriteFileAtomic(logPath, func(w io.Writer) error {
		fmt.Fprintf(w, "CSV to XLSX Converter - Error Log\n"+
			"Generated: %s\n"+
			"Total Errors: %d\n"+
			"================================================================================\n\n",
			time.Now().Format("2006-01-02 15:04:05"), len(entries))

		for i, entry := range entries {
			fmt.Fprintf(w, "Error #%d\n"+
				"  Timestamp:  %s\n"+
				"  File:       %s\n"+
				"  Error Type: %s\n"+
				"  Message:    %s\n",
				i+1,
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.FileName,
				entry.ErrorType,
				entry.ErrorMessage)
			if entry.Line > 0 {
				fmt.Fprintf(w, "  Line:       %d\n", entry.Line)
			}
			fmt.Fprintln(w)
		}

		_, err := io.WriteString(w, "================================================================================\n"+
			"End of Error Log\n")
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a batch run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRows       int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a converted file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	Rows        int
	Columns     int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes processing_summary_<timestamp>.txt to outputDir.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("processing_summary_%s.txt", time.Now().Format("20060102_150405")))

	err := WriteFileAtomic(summaryPath, func(w io.Writer) error {
		fmt.Fprintf(w, "CSV to XLSX Converter - Processing Summary\n"+
			"================================================================================\n\n"+
			"Run Information:\n"+
			"  Start Time:  %s\n"+
			"  End Time:    %s\n"+
			"  Duration:    %s\n\n"+
			"Statistics:\n"+
			"  Total Files: %d\n"+
			"  Successful:  %d\n"+
			"  Failed:      %d\n"+
			"  Total Rows:  %d\n\n",
			summary.StartTime.Format("2006-01-02 15:04:05"),
			summary.EndTime.Format("2006-01-02 15:04:05"),
			summary.EndTime.Sub(summary.StartTime).String(),
			summary.TotalFiles,
			summary.SuccessfulFiles,
			summary.FailedFiles,
			summary.TotalRows)

		if len(summary.ProcessedFiles) > 0 {
			io.WriteString(w, "Successful Files:\n")
			io.WriteString(w, "--------------------------------------------------------------------------------\n")
			for _, pf := range summary.ProcessedFiles {
				fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
				fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
				fmt.Fprintf(w, "  Rows:         %d\n", pf.Rows)
				fmt.Fprintf(w, "  Columns:      %d\n", pf.Columns)
				fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
			}
		}

		if len(summary.FailedFilesList) > 0 {
			io.WriteString(w, "Failed Files:\n")
			io.WriteString(w, "--------------------------------------------------------------------------------\n")
			for _, ff := range summary.FailedFilesList {
				fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
				fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
			}
		}

		_, err := io.WriteString(w, "================================================================================\n"+
			"End of Summary\n")
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
