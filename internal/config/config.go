// =============================================================================
// CSV to XLSX Converter - Configuration Module
// =============================================================================
//
// This module handles loading and parsing of the YAML configuration file.
//
// EXAMPLE:
//
//   input_dir: ./input
//   output_dir: ./output
//   log_level: info
//   max_concurrency: 4
//   continue_on_error: true
//   csv_settings:
//     delimiter: ";"
//     quote_char: "'"
//     has_header: true
//     encoding: shift_jis
//     field_count_policy: pad
//
// Every key is optional. Values that are not given keep the defaults listed
// on each field below.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/converter"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/csvparser"
	"github.com/ginjaninja78/CSV-to-XLSX-conversion/internal/logging"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig represents the main application configuration.
type MainConfig struct {
	// InputDir is scanned for .csv files by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the converted workbooks and run logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// StagingDir holds temporary copies of streamed input (stdin).
	// Default: the system temp directory
	StagingDir string `yaml:"staging_dir"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// MaxConcurrency is the maximum number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps a batch running after a file fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// CSVSettings describes the input files.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator. Besides any single character it
	// accepts the names "tab" (or "\t"), "pipe", "semicolon", "comma" and
	// "space".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// QuoteChar is the character used to quote fields.
	// Default: "\""
	QuoteChar string `yaml:"quote_char"`

	// HasHeader indicates whether the first record holds the column names.
	// Default: true
	HasHeader bool `yaml:"has_header"`

	// Encoding is the WHATWG label of the file encoding.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// SkipEmptyLines drops lines that contain nothing at all.
	// Default: true
	SkipEmptyLines bool `yaml:"skip_empty_lines"`

	// TrimSpace trims spaces and tabs around fields.
	// Default: false
	TrimSpace bool `yaml:"trim_space"`

	// Comment, when set, is the character that starts an ignored line.
	Comment string `yaml:"comment"`

	// LazyQuotes allows quotes inside unquoted fields.
	LazyQuotes bool `yaml:"lazy_quotes"`

	// FieldCountPolicy is "pad" or "strict".
	// Default: "pad"
	FieldCountPolicy string `yaml:"field_count_policy"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() *MainConfig {
	return &MainConfig{
		InputDir:        "./input",
		OutputDir:       "./output",
		StagingDir:      os.TempDir(),
		LogLevel:        logging.DefaultLevel,
		MaxConcurrency:  converter.DefaultMaxConcurrency,
		ContinueOnError: true,
		CSVSettings: CSVSettings{
			Delimiter:        ",",
			QuoteChar:        "\"",
			HasHeader:        true,
			Encoding:         csvparser.DefaultEncoding,
			SkipEmptyLines:   true,
			FieldCountPolicy: converter.PadMissing.String(),
		},
	}
}

// Load reads the configuration file at configPath. An empty path returns
// Default().
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the validated MainConfig.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*MainConfig, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their default values.
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyDefaults restores defaults for values explicitly set to empty.
func applyDefaults(config *MainConfig) {
	defaults := Default()

	if config.InputDir == "" {
		config.InputDir = defaults.InputDir
	}
	if config.OutputDir == "" {
		config.OutputDir = defaults.OutputDir
	}
	if config.StagingDir == "" {
		config.StagingDir = defaults.StagingDir
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = defaults.CSVSettings.Delimiter
	}
	if config.CSVSettings.QuoteChar == "" {
		config.CSVSettings.QuoteChar = defaults.CSVSettings.QuoteChar
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = defaults.CSVSettings.Encoding
	}
	if config.CSVSettings.FieldCountPolicy == "" {
		config.CSVSettings.FieldCountPolicy = defaults.CSVSettings.FieldCountPolicy
	}
}

// Validate checks every setting that would otherwise fail at conversion time.
func (c *MainConfig) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max_concurrency must be at least 1, got %d", ErrInvalidConfig, c.MaxConcurrency)
	}
	if _, err := c.CSVSettings.Dialect(); err != nil {
		return fmt.Errorf("%w: csv_settings: %w", ErrInvalidConfig, err)
	}
	if _, _, err := csvparser.ResolveEncoding(c.CSVSettings.Encoding); err != nil {
		return fmt.Errorf("%w: csv_settings: %w", ErrInvalidConfig, err)
	}
	if _, err := converter.ParseFieldCountPolicy(c.CSVSettings.FieldCountPolicy); err != nil {
		return fmt.Errorf("%w: csv_settings: %v", ErrInvalidConfig, err)
	}
	return nil
}

// =============================================================================
// CONVERSION SETTINGS
// =============================================================================

// Dialect builds the validated parser dialect described by the settings.
func (s CSVSettings) Dialect() (csvparser.Dialect, error) {
	comma, err := ParseChar(s.Delimiter)
	if err != nil {
		return csvparser.Dialect{}, fmt.Errorf("delimiter: %w", err)
	}
	quote, err := ParseChar(s.QuoteChar)
	if err != nil {
		return csvparser.Dialect{}, fmt.Errorf("quote_char: %w", err)
	}

	var comment rune
	if s.Comment != "" {
		if comment, err = ParseChar(s.Comment); err != nil {
			return csvparser.Dialect{}, fmt.Errorf("comment: %w", err)
		}
	}

	d := csvparser.Dialect{
		Comma:          comma,
		Quote:          quote,
		HeaderPresent:  s.HasHeader,
		SkipEmptyLines: s.SkipEmptyLines,
		TrimSpace:      s.TrimSpace,
		Comment:        comment,
		LazyQuotes:     s.LazyQuotes,
	}
	if err := d.Validate(); err != nil {
		return csvparser.Dialect{}, err
	}
	return d, nil
}

// ConverterOptions returns the converter options described by the
// configuration. The configuration must be valid.
func (c *MainConfig) ConverterOptions() ([]converter.Option, error) {
	dialect, err := c.CSVSettings.Dialect()
	if err != nil {
		return nil, err
	}
	policy, err := converter.ParseFieldCountPolicy(c.CSVSettings.FieldCountPolicy)
	if err != nil {
		return nil, err
	}

	return []converter.Option{
		converter.WithDialect(dialect),
		converter.WithEncoding(c.CSVSettings.Encoding),
		converter.WithFieldCountPolicy(policy),
		converter.WithStagingDir(c.StagingDir),
		converter.WithMaxConcurrency(c.MaxConcurrency),
		converter.WithContinueOnError(c.ContinueOnError),
	}, nil
}

// charAliases are names accepted for characters that are awkward to write
// in YAML or on a command line.
var charAliases = map[string]rune{
	`\t`:        '\t',
	"tab":       '\t',
	"pipe":      '|',
	"semicolon": ';',
	"comma":     ',',
	"space":     ' ',
}

// ParseChar parses a setting that must name exactly one character.
func ParseChar(s string) (rune, error) {
	if r, ok := charAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("%q is not a single character", s)
	}
	return r, nil
}
