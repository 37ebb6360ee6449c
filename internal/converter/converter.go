// =============================================================================
// CSV to XLSX Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It runs the pipeline for a
// single input, from delimited text to a finished workbook, and fans out over
// a directory for batch runs.
//
// CONVERSION PIPELINE:
//   1. Decode the input and read the header
//   2. Create the sheet, write and style the header, set column widths
//   3. Align each record to the header width and append it as a data row
//   4. Serialize the workbook once, after the last row
//
// CONCURRENCY:
//   A Converter holds only immutable options. Any number of conversions may
//   run on one Converter at the same time, each with its own resources.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/csvparser"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/logging"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/xlsxdoc"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/pkg/utils"
)

// DefaultMaxConcurrency bounds the number of files ConvertDir converts at once.
const DefaultMaxConcurrency = 4

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting one file in a batch.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XLSX file.
	// This is empty if processing failed.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about one conversion.
type ProcessingStats struct {
	// RowsProcessed is the number of data records written.
	RowsProcessed int

	// Columns is the header width.
	Columns int

	// PaddedRows counts records that were shorter than the header.
	PaddedRows int

	// TruncatedRows counts records whose extra trailing fields were dropped.
	TruncatedRows int

	// ProcessingTime is the time taken to process the input.
	ProcessingTime time.Duration
}

// =============================================================================
// FIELD COUNT POLICY
// =============================================================================

// FieldCountPolicy decides what happens to records whose width differs from
// the header's.
type FieldCountPolicy int

const (
	// PadMissing fills missing trailing fields with empty text and drops
	// fields beyond the header width.
	PadMissing FieldCountPolicy = iota

	// FailFast stops the conversion with a *FieldCountMismatchError.
	FailFast
)

// ParseFieldCountPolicy maps a configuration value ("pad" or "strict") to a
// policy. The empty string selects PadMissing.
func ParseFieldCountPolicy(s string) (FieldCountPolicy, error) {
	switch s {
	case "", "pad":
		return PadMissing, nil
	case "strict":
		return FailFast, nil
	}
	return PadMissing, fmt.Errorf("unknown field count policy %q (want pad or strict)", s)
}

func (p FieldCountPolicy) String() string {
	if p == FailFast {
		return "strict"
	}
	return "pad"
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts delimited text to XLSX workbooks.
type Converter struct {
	dialect         csvparser.Dialect
	encoding        string
	policy          FieldCountPolicy
	stagingDir      string
	maxConcurrency  int
	continueOnError bool
	logger          logging.Logger
	newBuilder      func() xlsxdoc.TableDocumentBuilder
}

// Option configures a Converter.
type Option func(*Converter)

// WithDialect sets the lexical rules of the input.
func WithDialect(d csvparser.Dialect) Option {
	return func(c *Converter) { c.dialect = d }
}

// WithEncoding sets the encoding label of the input.
func WithEncoding(label string) Option {
	return func(c *Converter) { c.encoding = label }
}

// WithFieldCountPolicy sets how width mismatches are handled.
func WithFieldCountPolicy(p FieldCountPolicy) Option {
	return func(c *Converter) { c.policy = p }
}

// WithStagingDir sets where stream sources are staged.
func WithStagingDir(dir string) Option {
	return func(c *Converter) { c.stagingDir = dir }
}

// WithMaxConcurrency bounds concurrent conversions in ConvertDir.
func WithMaxConcurrency(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithContinueOnError keeps a batch going after a file fails.
func WithContinueOnError(v bool) Option {
	return func(c *Converter) { c.continueOnError = v }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDocumentBuilder replaces the workbook implementation.
func WithDocumentBuilder(newBuilder func() xlsxdoc.TableDocumentBuilder) Option {
	return func(c *Converter) { c.newBuilder = newBuilder }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a Converter. Without options it reads UTF-8, comma-separated
// input with a header row and pads short records.
func New(opts ...Option) *Converter {
	c := &Converter{
		dialect:         csvparser.DefaultDialect(),
		encoding:        csvparser.DefaultEncoding,
		policy:          PadMissing,
		stagingDir:      os.TempDir(),
		maxConcurrency:  DefaultMaxConcurrency,
		continueOnError: true,
		logger:          logging.Nop(),
		newBuilder:      func() xlsxdoc.TableDocumentBuilder { return xlsxdoc.NewWorkbook() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// CONVERSION
// =============================================================================

// Convert reads delimited text from src and writes a workbook to dst.
// Neither stream is closed.
func (c *Converter) Convert(src io.Reader, dst io.Writer) (ProcessingStats, error) {
	c.logger.Info("starting: %s -> %s", "<stream>", "<stream>")
	stats, err := c.convert(src, "", dst)
	err = classify(err, "write", "")
	c.logDone("<stream>", stats, err)
	return stats, err
}

// ConvertFile converts the file at srcPath into a workbook at dstPath.
// The destination only ever holds a complete document: the workbook is
// written to a temp file that replaces dstPath once fully written.
func (c *Converter) ConvertFile(srcPath, dstPath string) (ProcessingStats, error) {
	return c.convertFile(srcPath, srcPath, dstPath)
}

// ConvertReader converts a stream into a workbook at dstPath. The stream is
// first copied to a staging file, which is removed before returning.
func (c *Converter) ConvertReader(r io.Reader, dstPath string) (ProcessingStats, error) {
	staged, cleanup, err := utils.StageReader(r, c.stagingDir)
	if err != nil {
		err = &IOError{Op: "stage", Path: c.stagingDir, Err: err}
		c.logger.Error("failed: %s: %v", "<stream>", err)
		return ProcessingStats{}, err
	}
	defer cleanup()

	c.logger.Debug("staged input stream at %s", staged)
	return c.convertFile(staged, "<stream>", dstPath)
}

func (c *Converter) convertFile(srcPath, srcName, dstPath string) (stats ProcessingStats, err error) {
	c.logger.Info("starting: %s -> %s", srcName, dstPath)
	defer func() { c.logDone(srcName, stats, err) }()

	file, err := os.Open(srcPath)
	if err != nil {
		return stats, &IOError{Op: "open", Path: srcPath, Err: err}
	}
	defer file.Close()

	err = utils.WriteFileAtomic(dstPath, func(w io.Writer) error {
		var convErr error
		stats, convErr = c.convert(file, srcPath, w)
		return convErr
	})
	return stats, classify(err, "write", dstPath)
}

// convert is the single-pass pipeline. Read errors are classified here,
// where the source name is known; write errors are left to the caller.
func (c *Converter) convert(src io.Reader, srcName string, dst io.Writer) (ProcessingStats, error) {
	start := time.Now()
	var stats ProcessingStats

	parser, err := csvparser.NewRecordReader(src, c.dialect, c.encoding)
	if err != nil {
		return stats, classify(err, "read", srcName)
	}

	builder := c.newBuilder()
	defer builder.Close()

	headers := parser.Headers()
	stats.Columns = len(headers)

	if err := builder.NewSheet(); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	for col, name := range headers {
		if err := builder.SetHeaderCell(col, name); err != nil {
			return stats, fmt.Errorf("%w: %w", ErrDocument, err)
		}
		if err := builder.SetColumnWidth(col, xlsxdoc.HeaderColumnWidth); err != nil {
			return stats, fmt.Errorf("%w: %w", ErrDocument, err)
		}
	}

	for parser.Next() {
		record, err := c.align(parser.Record(), len(headers), parser.RowNumber(), parser.Line(), &stats)
		if err != nil {
			return stats, err
		}
		if err := builder.AppendDataRow(record); err != nil {
			return stats, fmt.Errorf("%w: row %d: %w", ErrDocument, parser.RowNumber(), err)
		}
		stats.RowsProcessed++
	}
	if err := parser.Err(); err != nil {
		return stats, classify(err, "read", srcName)
	}

	if err := builder.Serialize(dst); err != nil {
		return stats, err
	}

	stats.ProcessingTime = time.Since(start)
	return stats, nil
}

// CheckFile parses srcPath and applies the field count policy without
// building a workbook. It fails exactly where ConvertFile would fail for a
// reason found in the source.
func (c *Converter) CheckFile(srcPath string) (stats ProcessingStats, err error) {
	start := time.Now()

	file, err := os.Open(srcPath)
	if err != nil {
		return stats, &IOError{Op: "open", Path: srcPath, Err: err}
	}
	defer file.Close()

	parser, err := csvparser.NewRecordReader(file, c.dialect, c.encoding)
	if err != nil {
		return stats, classify(err, "read", srcPath)
	}
	width := len(parser.Headers())
	stats.Columns = width

	for parser.Next() {
		if _, err := c.align(parser.Record(), width, parser.RowNumber(), parser.Line(), &stats); err != nil {
			return stats, err
		}
		stats.RowsProcessed++
	}
	if err := parser.Err(); err != nil {
		return stats, classify(err, "read", srcPath)
	}

	stats.ProcessingTime = time.Since(start)
	return stats, nil
}

// align applies the field count policy to one record.
func (c *Converter) align(record []string, width, row, line int, stats *ProcessingStats) ([]string, error) {
	switch {
	case len(record) == width:
		return record, nil
	case c.policy == FailFast:
		return nil, &FieldCountMismatchError{Row: row, Line: line, Want: width, Got: len(record)}
	case len(record) < width:
		stats.PaddedRows++
		padded := make([]string, width)
		copy(padded, record)
		return padded, nil
	default:
		stats.TruncatedRows++
		c.logger.Debug("record %d (line %d): dropping %d fields beyond the header", row, line, len(record)-width)
		return record[:width], nil
	}
}

func (c *Converter) logDone(srcName string, stats ProcessingStats, err error) {
	if err != nil {
		c.logger.Error("failed: %s: %v", srcName, err)
		return
	}
	c.logger.Info("completed: %s (%d rows, %d columns, %d padded, %d truncated) in %s",
		srcName, stats.RowsProcessed, stats.Columns, stats.PaddedRows, stats.TruncatedRows, stats.ProcessingTime)
}

// =============================================================================
// BATCH CONVERSION
// =============================================================================

// ConvertDir converts every .csv file in inputDir into a workbook of the same
// base name in outputDir, creating outputDir when needed. It returns one
// Result per input file, sorted by input path. The error is non-nil only
// when the directories themselves cannot be used.
func (c *Converter) ConvertDir(inputDir, outputDir string) ([]Result, error) {
	fm := utils.NewFileManager(inputDir, outputDir, c.stagingDir)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}

	inputFiles, err := fm.DiscoverInputFiles()
	if err != nil {
		return nil, err
	}
	c.logger.Info("found %d file(s) in %s", len(inputFiles), inputDir)

	var (
		wg      sync.WaitGroup
		failed  atomic.Bool
		sem     = make(chan struct{}, c.maxConcurrency)
		results = make(chan Result, len(inputFiles))
	)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(filePath string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if !c.continueOnError && failed.Load() {
				results <- Result{FilePath: filePath, Error: ErrSkipped}
				return
			}

			outputPath := fm.OutputPathFor(filePath)
			stats, err := c.ConvertFile(filePath, outputPath)
			if err != nil {
				failed.Store(true)
				results <- Result{FilePath: filePath, Error: err, Stats: stats}
				return
			}
			results <- Result{FilePath: filePath, OutputFile: outputPath, Success: true, Stats: stats}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]Result, 0, len(inputFiles))
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].FilePath < collected[j].FilePath })

	return collected, nil
}
