package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/converter"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/csvparser"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	d, err := cfg.CSVSettings.Dialect()
	require.NoError(t, err)
	assert.Equal(t, csvparser.DefaultDialect(), d)

	cfg, err = Load(writeConfig(t, "input_dir: ./in\n"))
	require.NoError(t, err)
	assert.Equal(t, "./in", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, cfg.ContinueOnError)
	assert.True(t, cfg.CSVSettings.HasHeader)
	assert.True(t, cfg.CSVSettings.SkipEmptyLines)
	assert.Equal(t, "UTF-8", cfg.CSVSettings.Encoding)
	assert.Equal(t, "pad", cfg.CSVSettings.FieldCountPolicy)
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
input_dir: /data/in
output_dir: /data/out
staging_dir: /data/tmp
log_level: debug
max_concurrency: 8
continue_on_error: false
csv_settings:
  delimiter: semicolon
  quote_char: "'"
  has_header: false
  encoding: shift_jis
  skip_empty_lines: false
  trim_space: true
  comment: "#"
  lazy_quotes: true
  field_count_policy: strict
`))
	require.NoError(t, err)

	assert.Equal(t, "/data/tmp", cfg.StagingDir)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.False(t, cfg.ContinueOnError)

	d, err := cfg.CSVSettings.Dialect()
	require.NoError(t, err)
	assert.Equal(t, csvparser.Dialect{
		Comma:      ';',
		Quote:      '\'',
		TrimSpace:  true,
		Comment:    '#',
		LazyQuotes: true,
	}, d)

	opts, err := cfg.ConverterOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 6)
	assert.NotNil(t, converter.New(opts...))
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"badLevel":       "log_level: loud\n",
		"badConcurrency": "max_concurrency: -2\n",
		"longDelimiter":  "csv_settings:\n  delimiter: ab\n",
		"sameQuote":      "csv_settings:\n  delimiter: \"'\"\n  quote_char: \"'\"\n",
		"badEncoding":    "csv_settings:\n  encoding: klingon\n",
		"badPolicy":      "csv_settings:\n  field_count_policy: lenient\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(writeConfig(t, "csv_settings: [\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseChar(t *testing.T) {
	for in, want := range map[string]rune{
		",":         ',',
		`\t`:        '\t',
		"TAB":       '\t',
		"\t":        '\t',
		"pipe":      '|',
		"semicolon": ';',
		"；":         '；',
	} {
		got, err := ParseChar(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "ab", "\xff"} {
		_, err := ParseChar(in)
		assert.Error(t, err, in)
	}
}
