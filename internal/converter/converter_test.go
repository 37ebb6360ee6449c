package converter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/csvparser"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/logging"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/xlsxdoc"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func convertString(t *testing.T, c *Converter, input string) (*xlsxdoc.Summary, ProcessingStats) {
	t.Helper()

	var buf bytes.Buffer
	stats, err := c.Convert(strings.NewReader(input), &buf)
	require.NoError(t, err)

	summary, err := xlsxdoc.InspectReader(&buf)
	require.NoError(t, err)
	return summary, stats
}

func assertStringCells(t *testing.T, summary *xlsxdoc.Summary) {
	t.Helper()

	for i, row := range summary.CellTypes {
		for j, typ := range row {
			assert.Contains(t,
				[]excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString},
				typ, "cell (%d, %d) is not a string cell", i, j)
		}
	}
}

func TestConvertFileJapanese(t *testing.T) {
	dir := t.TempDir()
	src := writeInput(t, dir, "people.csv", "名前,年齢\n山田,30\n")
	dst := filepath.Join(dir, "people.xlsx")

	stats, err := New().ConvertFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RowsProcessed)
	assert.Equal(t, 2, stats.Columns)

	summary, err := xlsxdoc.Inspect(dst)
	require.NoError(t, err)

	assert.Equal(t, []string{xlsxdoc.DefaultSheetName}, summary.Sheets)
	assert.Equal(t, [][]string{{"名前", "年齢"}, {"山田", "30"}}, summary.Rows)
	assertStringCells(t, summary)

	require.NotNil(t, summary.HeaderStyle)
	require.NotNil(t, summary.HeaderStyle.Font)
	assert.True(t, summary.HeaderStyle.Font.Bold)
	require.NotEmpty(t, summary.HeaderStyle.Fill.Color)
	assert.True(t, strings.HasSuffix(strings.ToUpper(summary.HeaderStyle.Fill.Color[0]), xlsxdoc.HeaderFillColor))
	assert.Equal(t, []float64{xlsxdoc.HeaderColumnWidth, xlsxdoc.HeaderColumnWidth}, summary.ColumnWidths)
}

func TestConvertDelimiterInsideQuotes(t *testing.T) {
	d := csvparser.DefaultDialect()
	d.Comma = ';'

	summary, _ := convertString(t, New(WithDialect(d)), "\"a\";\"b,c\"\n\"1\";\"2,3\"\n")
	assert.Equal(t, [][]string{{"a", "b,c"}, {"1", "2,3"}}, summary.Rows)
}

func TestConvertLongHeaderKeepsFixedWidth(t *testing.T) {
	long := "quarterly_revenue_excluding_returns_and_discounts"
	summary, _ := convertString(t, New(), "id,"+long+",x\n1,2,3\n")

	assert.Equal(t, []string{"id", long, "x"}, summary.Header())
	assert.Equal(t,
		[]float64{xlsxdoc.HeaderColumnWidth, xlsxdoc.HeaderColumnWidth, xlsxdoc.HeaderColumnWidth},
		summary.ColumnWidths)
}

func TestConvertShape(t *testing.T) {
	const n, m = 25, 6

	var sb strings.Builder
	header := make([]string, m)
	for j := range header {
		header[j] = fmt.Sprintf("col%d", j)
	}
	sb.WriteString(strings.Join(header, ",") + "\n")
	want := [][]string{header}
	for i := 0; i < n; i++ {
		row := make([]string, m)
		for j := range row {
			row[j] = fmt.Sprintf("%d", i*m+j)
		}
		sb.WriteString(strings.Join(row, ",") + "\r\n")
		want = append(want, row)
	}

	summary, stats := convertString(t, New(), sb.String())
	assert.Equal(t, n, stats.RowsProcessed)
	assert.Len(t, summary.Rows, n+1)
	assert.Equal(t, m, summary.Width)
	assert.Equal(t, want, summary.Rows)
	assertStringCells(t, summary)

	require.Len(t, summary.HeaderStyleIDs, m)
	for _, id := range summary.HeaderStyleIDs {
		assert.NotZero(t, id)
	}
}

func TestConvertDialectIndependence(t *testing.T) {
	comma, _ := convertString(t, New(), "id,name\n1,\"O'Neil, P\"\n2,\"say \"\"hi\"\"\"\n")

	d := csvparser.DefaultDialect()
	d.Comma, d.Quote = ';', '\''
	semi, _ := convertString(t, New(WithDialect(d)), "id;name\n1;'O''Neil, P'\n2;'say \"hi\"'\n")

	assert.Equal(t, comma.Rows, semi.Rows)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "O'Neil, P"}, {"2", "say \"hi\""}}, comma.Rows)
}

func TestConvertWithoutHeader(t *testing.T) {
	d := csvparser.DefaultDialect()
	d.HeaderPresent = false

	summary, stats := convertString(t, New(WithDialect(d)), "1,2\n3,4\n")
	assert.Equal(t, 2, stats.RowsProcessed)
	assert.Equal(t, [][]string{{"Column_1", "Column_2"}, {"1", "2"}, {"3", "4"}}, summary.Rows)
}

func TestConvertEmptyStream(t *testing.T) {
	dir := t.TempDir()
	src := writeInput(t, dir, "empty.csv", "")
	dst := filepath.Join(dir, "empty.xlsx")

	_, err := New().ConvertFile(src, dst)

	var perr *csvparser.ParseError
	require.True(t, errors.As(err, &perr), "want *ParseError, got %v", err)
	assert.ErrorIs(t, err, csvparser.ErrMissingHeader)
	assert.NoFileExists(t, dst)
}

func TestFieldCountPolicies(t *testing.T) {
	const input = "a,b,c\n1\n1,2,3,4\n"

	summary, stats := convertString(t, New(), input)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "", ""}, {"1", "2", "3"}}, summary.Rows)
	assert.Equal(t, 1, stats.PaddedRows)
	assert.Equal(t, 1, stats.TruncatedRows)
	assertStringCells(t, summary)

	dir := t.TempDir()
	src := writeInput(t, dir, "short.csv", input)
	dst := filepath.Join(dir, "short.xlsx")

	_, err := New(WithFieldCountPolicy(FailFast)).ConvertFile(src, dst)
	var mismatch *FieldCountMismatchError
	require.True(t, errors.As(err, &mismatch), "want *FieldCountMismatchError, got %v", err)
	assert.Equal(t, FieldCountMismatchError{Row: 1, Line: 2, Want: 3, Got: 1}, *mismatch)
	assert.NoFileExists(t, dst)
}

func TestCheckFileMatchesConvertFile(t *testing.T) {
	dir := t.TempDir()
	src := writeInput(t, dir, "short.csv", "a,b,c\n1\n1,2,3,4\n4,5,6\n")

	stats, err := New().CheckFile(src)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RowsProcessed)
	assert.Equal(t, 3, stats.Columns)
	assert.Equal(t, 1, stats.PaddedRows)
	assert.Equal(t, 1, stats.TruncatedRows)

	_, err = New(WithFieldCountPolicy(FailFast)).CheckFile(src)
	var mismatch *FieldCountMismatchError
	require.True(t, errors.As(err, &mismatch), "want *FieldCountMismatchError, got %v", err)
	assert.Equal(t, FieldCountMismatchError{Row: 1, Line: 2, Want: 3, Got: 1}, *mismatch)

	bad := writeInput(t, dir, "bad.csv", "a\n\"x\n")
	_, err = New().CheckFile(bad)
	assert.ErrorIs(t, err, csvparser.ErrUnterminatedQuote)

	_, err = New().CheckFile(filepath.Join(dir, "missing.csv"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "checking must not write output")
}

func TestParseFieldCountPolicy(t *testing.T) {
	for in, want := range map[string]FieldCountPolicy{"": PadMissing, "pad": PadMissing, "strict": FailFast} {
		got, err := ParseFieldCountPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFieldCountPolicy("lenient")
	assert.Error(t, err)
	assert.Equal(t, "strict", FailFast.String())
}

func TestConvertErrorsLeaveDestinationUntouched(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(dst, []byte("previous"), 0o644))

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "unterminatedQuote",
			input: "a,b\n1,\"2\n",
			check: func(t *testing.T, err error) {
				var perr *csvparser.ParseError
				require.True(t, errors.As(err, &perr))
				assert.ErrorIs(t, err, csvparser.ErrUnterminatedQuote)
				assert.Equal(t, 2, perr.StartLine)
			},
		},
		{
			name:  "malformedUTF8",
			input: "a,b\n\xff,1\n",
			check: func(t *testing.T, err error) {
				var merr *csvparser.MalformedInputError
				require.True(t, errors.As(err, &merr))
				assert.EqualValues(t, 4, merr.Offset)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := writeInput(t, dir, tc.name+".csv", tc.input)
			_, err := New().ConvertFile(src, dst)
			require.Error(t, err)
			tc.check(t, err)

			data, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, "previous", string(data))
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		name := e.Name()
		assert.True(t, name == "out.xlsx" || strings.HasSuffix(name, ".csv"), "leftover file %s", name)
	}
}

func TestConvertIOErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := New().ConvertFile(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.xlsx"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)

	src := writeInput(t, dir, "ok.csv", "a\n1\n")
	_, err = New().ConvertFile(src, filepath.Join(dir, "no", "such", "dir", "out.xlsx"))
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)

	boom := errors.New("connection reset")
	_, err = New().Convert(io.MultiReader(strings.NewReader("a,b\n1,2\n"), iotest.ErrReader(boom)), io.Discard)
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestConvertReaderStaging(t *testing.T) {
	staging := t.TempDir()
	out := t.TempDir()
	c := New(WithStagingDir(staging))

	dst := filepath.Join(out, "stream.xlsx")
	stats, err := c.ConvertReader(strings.NewReader("x,y\n1,2\n"), dst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RowsProcessed)
	assert.FileExists(t, dst)

	_, err = c.ConvertReader(strings.NewReader("x,y\n\"1,2\n"), filepath.Join(out, "bad.xlsx"))
	assert.ErrorIs(t, err, csvparser.ErrUnterminatedQuote)
	assert.NoFileExists(t, filepath.Join(out, "bad.xlsx"))

	boom := errors.New("stream closed")
	_, err = c.ConvertReader(io.MultiReader(strings.NewReader("x\n"), iotest.ErrReader(boom)), filepath.Join(out, "closed.xlsx"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "stage", ioErr.Op)
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging files must be removed")
}

// failingBuilder writes part of a document and then fails to serialize.
type failingBuilder struct {
	*xlsxdoc.Workbook
}

func (b failingBuilder) Serialize(w io.Writer) error {
	io.WriteString(w, "PK\x03\x04 partial")
	return errors.New("disk full")
}

func TestConvertSerializeFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeInput(t, dir, "in.csv", "a\n1\n")
	dst := filepath.Join(dir, "out.xlsx")

	c := New(WithDocumentBuilder(func() xlsxdoc.TableDocumentBuilder {
		return failingBuilder{xlsxdoc.NewWorkbook()}
	}))
	_, err := c.ConvertFile(src, dst)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)
	assert.Equal(t, dst, ioErr.Path)
	assert.NoFileExists(t, dst)
}

func TestConvertLogs(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "info")
	require.NoError(t, err)

	dir := t.TempDir()
	src := writeInput(t, dir, "in.csv", "a\n1\n")
	_, err = New(WithLogger(log)).ConvertFile(src, filepath.Join(dir, "out.xlsx"))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "starting: "+src)
	assert.Contains(t, buf.String(), "completed: "+src)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		err  error
		typ  string
		line int
	}{
		{&csvparser.ParseError{Line: 3, Column: 1, Err: csvparser.ErrBareQuote}, "parse", 3},
		{&csvparser.MalformedInputError{Offset: 1}, "encoding", 0},
		{&FieldCountMismatchError{Row: 1, Line: 7, Want: 2, Got: 1}, "field_count", 7},
		{&IOError{Op: "open", Err: os.ErrNotExist}, "io", 0},
		{ErrSkipped, "skipped", 0},
		{fmt.Errorf("x: %w", csvparser.ErrInvalidDialect), "config", 0},
		{nil, "", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.typ, ErrorType(tc.err), "%v", tc.err)
		assert.Equal(t, tc.line, ErrorLine(tc.err), "%v", tc.err)
	}

	wrapped := classify(errors.New("eof"), "read", "in.csv")
	var ioErr *IOError
	require.True(t, errors.As(wrapped, &ioErr))
	assert.Equal(t, "read in.csv: eof", ioErr.Error())
}

func TestConvertDir(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "converted")

	writeInput(t, in, "a.csv", "h\n1\n")
	writeInput(t, in, "b.CSV", "h1,h2\n1,2\n3,4\n")
	writeInput(t, in, "c.csv", "h\n\"open\n")
	writeInput(t, in, "d.csv", "x,y,z\n")
	writeInput(t, in, "readme.txt", "not csv")

	results, err := New(WithMaxConcurrency(2)).ConvertDir(in, out)
	require.NoError(t, err)
	require.Len(t, results, 4)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = filepath.Base(r.FilePath)
	}
	assert.Equal(t, []string{"a.csv", "b.CSV", "c.csv", "d.csv"}, names)

	assert.True(t, results[0].Success)
	assert.Equal(t, filepath.Join(out, "a.xlsx"), results[0].OutputFile)
	assert.Equal(t, 2, results[1].Stats.RowsProcessed)
	assert.False(t, results[2].Success)
	assert.ErrorIs(t, results[2].Error, csvparser.ErrUnterminatedQuote)
	assert.True(t, results[3].Success)
	assert.Equal(t, 0, results[3].Stats.RowsProcessed)

	for _, name := range []string{"a.xlsx", "b.xlsx", "d.xlsx"} {
		summary, err := xlsxdoc.Inspect(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, summary.Header(), name)
	}
	assert.NoFileExists(t, filepath.Join(out, "c.xlsx"))

	_, err = New().ConvertDir(filepath.Join(in, "missing"), out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvertDirStopsAfterFailure(t *testing.T) {
	in := t.TempDir()
	for i := 0; i < 5; i++ {
		writeInput(t, in, fmt.Sprintf("bad%d.csv", i), "h\n\"open\n")
	}

	results, err := New(WithMaxConcurrency(1), WithContinueOnError(false)).ConvertDir(in, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 5)

	var failed, skipped int
	for _, r := range results {
		assert.False(t, r.Success)
		if errors.Is(r.Error, ErrSkipped) {
			skipped++
		} else {
			assert.ErrorIs(t, r.Error, csvparser.ErrUnterminatedQuote)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 4, skipped)
}
