// =============================================================================
// CSV to XLSX Converter - CSV Parser Module
// =============================================================================
//
// This module turns delimited text into a header and a lazy sequence of
// records. It handles:
//   - Any single-character delimiter and quote character
//   - Optional header rows (column names are synthesized when absent)
//   - Any encoding known to golang.org/x/text (see decode.go)
//   - Quoted fields with embedded delimiters, quotes and line breaks
//
// STRUCTURE:
//   decode.go  : bytes in the source encoding -> validated UTF-8
//   reader.go  : UTF-8 text -> records (the tokenizer)
//   parser.go  : records -> header + data records (this file)
//
// =============================================================================

package csvparser

import (
	"fmt"
	"io"
	"os"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents a fully parsed CSV file.
type CSVData struct {
	// Headers contains the column headers from the CSV file.
	Headers []string

	// Rows contains the data rows in input order, as read (not aligned
	// to the header width).
	Rows [][]string

	// SourceFile is the path to the source CSV file.
	SourceFile string

	// RowCount is the total number of data rows (excluding headers).
	RowCount int

	// ColumnCount is the number of columns in the header.
	ColumnCount int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a whole CSV file into memory.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - dialect: The lexical rules of the file.
//   - encoding: The text encoding label ("" means UTF-8).
//
// RETURNS:
//   - A pointer to the CSVData struct containing the parsed data.
//   - An error if the file cannot be read or parsed.
//
// Prefer Open for conversion; Parse is meant for small files and dry runs.
func Parse(filePath string, dialect Dialect, encoding string) (*CSVData, error) {
	parser, err := Open(filePath, dialect, encoding)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	data := &CSVData{
		Headers:     parser.Headers(),
		SourceFile:  filePath,
		ColumnCount: len(parser.Headers()),
	}
	for parser.Next() {
		data.Rows = append(data.Rows, parser.Record())
	}
	if err := parser.Err(); err != nil {
		return nil, err
	}
	data.RowCount = len(data.Rows)

	return data, nil
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// RecordReader yields the header and then the data records of a CSV input,
// one at a time. It is a single forward pass: to read the input again, open
// it again.
//
// USAGE:
//   parser, err := csvparser.Open(filePath, csvparser.DefaultDialect(), "")
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   headers := parser.Headers()
//   for parser.Next() {
//       record := parser.Record()
//       // Process the record...
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type RecordReader struct {
	file      *os.File
	reader    *Reader
	dialect   Dialect
	headers   []string
	pending   []string
	current   []string
	rowNumber int
	done      bool
	err       error
}

// Open opens a CSV file and reads its header. The returned RecordReader
// owns the file; Close releases it.
func Open(filePath string, dialect Dialect, encoding string) (*RecordReader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := NewRecordReader(file, dialect, encoding)
	if err != nil {
		file.Close()
		return nil, err
	}
	parser.file = file

	return parser, nil
}

// NewRecordReader reads the header from src and returns a RecordReader
// positioned at the first data record. The caller keeps ownership of src.
//
// When the dialect declares a header and src holds no records, the error
// is a *ParseError wrapping ErrMissingHeader.
func NewRecordReader(src io.Reader, dialect Dialect, encoding string) (*RecordReader, error) {
	if err := dialect.Validate(); err != nil {
		return nil, err
	}

	text, err := NewDecodingReader(src, encoding)
	if err != nil {
		return nil, err
	}

	parser := &RecordReader{
		reader:  NewReader(text, dialect),
		dialect: dialect,
	}
	if err := parser.readHeaders(); err != nil {
		return nil, err
	}

	return parser, nil
}

// readHeaders reads the header record, or synthesizes column names from the
// width of the first data record when the dialect has no header.
func (p *RecordReader) readHeaders() error {
	row, err := p.reader.Read()
	if err == io.EOF {
		if p.dialect.HeaderPresent {
			return &ParseError{Line: 1, Column: 1, Err: ErrMissingHeader}
		}
		p.headers = []string{}
		p.done = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading header row: %w", err)
	}

	if p.dialect.HeaderPresent {
		p.headers = row
		return nil
	}

	p.headers = columnNames(len(row))
	p.pending = row
	return nil
}

// columnNames names unnamed columns by position.
func columnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return names
}

// Next advances to the next record. Returns false when there are no more
// records or an error occurred; check Err afterwards.
func (p *RecordReader) Next() bool {
	if p.err != nil || p.done {
		return false
	}

	if p.pending != nil {
		p.current, p.pending = p.pending, nil
		p.rowNumber++
		return true
	}

	row, err := p.reader.Read()
	if err == io.EOF {
		p.done = true
		p.current = nil
		return false
	}
	if err != nil {
		p.err = fmt.Errorf("error reading record %d: %w", p.rowNumber+1, err)
		p.current = nil
		return false
	}

	p.current = row
	p.rowNumber++
	return true
}

// Record returns the current record. Its length may differ from the
// header's; aligning it is up to the caller.
func (p *RecordReader) Record() []string {
	return p.current
}

// Headers returns the header names.
func (p *RecordReader) Headers() []string {
	return p.headers
}

// RowNumber returns the 1-based index of the current data record.
func (p *RecordReader) RowNumber() int {
	return p.rowNumber
}

// Line returns the input line on which the current record started.
func (p *RecordReader) Line() int {
	return p.reader.RecordLine()
}

// Err returns the error that stopped iteration, if any.
func (p *RecordReader) Err() error {
	return p.err
}

// Close closes the underlying file when the reader was created by Open.
func (p *RecordReader) Close() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}
