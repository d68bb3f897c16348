// Package config provides configuration management and validation for recat.
// It centralizes command-line options, environment defaults and runtime
// settings, and validates them before any file is touched.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"recat/internal/errors"
)

// LogFormat represents the supported output formats for change logs.
type LogFormat string

// Supported change log formats.
const (
	LogFormatJSON LogFormat = "json"
	LogFormatCSV  LogFormat = "csv"
)

// Built-in defaults.
const (
	DefaultInputFile  = "exercises.json"
	DefaultOutputFile = "updated_exercises.json"
	DefaultSampleSize = 10
)

// Environment variables read as defaults. Flags take precedence.
const (
	EnvInput   = "RECAT_INPUT"
	EnvOutput  = "RECAT_OUTPUT"
	EnvWorkers = "RECAT_WORKERS"
)

// Config holds all runtime configuration options for a recat run.
type Config struct {
	InputFile  string
	OutputFile string
	DryRun     bool
	NoBackup   bool
	Verbose    bool
	Debug      bool
	Quiet      bool
	LogFile    string
	LogFormat  LogFormat
	SampleSize int
	Workers    int
}

// LoadEnv loads variables from the given .env files (".env" when none are
// given) into the process environment. Missing files are ignored and
// variables that are already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.NewConfigErrorWithPath(f, "failed to load environment file", err)
		}
	}
	return nil
}

// ApplyEnv fills settings that were not given on the command line from the
// environment.
func (c *Config) ApplyEnv() error {
	if c.InputFile == "" {
		c.InputFile = strings.TrimSpace(os.Getenv(EnvInput))
	}
	if c.OutputFile == "" {
		c.OutputFile = strings.TrimSpace(os.Getenv(EnvOutput))
	}
	if c.Workers == 0 {
		if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.NewConfigError(EnvWorkers+" must be an integer", err)
			}
			c.Workers = n
		}
	}
	return nil
}

// Validate checks the configuration and fills in defaults.
// It runs after flags and environment have been applied and before any file
// is read. Empty input and output paths fall back to the built-in names.
func (c *Config) Validate() error {
	if err := c.validateLogFormat(); err != nil {
		return err
	}

	if err := c.validateSampleSize(); err != nil {
		return err
	}

	if err := c.validateWorkers(); err != nil {
		return err
	}

	c.normalizeConfig()
	return nil
}

func (c *Config) validateLogFormat() error {
	if c.LogFormat != "" && c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatCSV {
		return errors.NewConfigError("log format must be 'json' or 'csv'", nil)
	}
	return nil
}

func (c *Config) validateSampleSize() error {
	if c.SampleSize < 0 {
		return errors.NewConfigError("sample size cannot be negative", nil)
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers < 0 {
		return errors.NewConfigError("worker count cannot be negative", nil)
	}
	return nil
}

func (c *Config) normalizeConfig() {
	c.InputFile = strings.TrimSpace(c.InputFile)
	if c.InputFile == "" {
		c.InputFile = DefaultInputFile
	}

	c.OutputFile = strings.TrimSpace(c.OutputFile)
	if c.OutputFile == "" {
		c.OutputFile = DefaultOutputFile
	}

	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
}

// IsVerbose reports whether verbose diagnostics are enabled. Quiet wins.
func (c *Config) IsVerbose() bool {
	return c.Verbose && !c.Quiet
}

// IsDebug reports whether debug diagnostics are enabled. Quiet wins.
func (c *Config) IsDebug() bool {
	return c.Debug && !c.Quiet
}

// ShouldLog reports whether the console report is printed.
func (c *Config) ShouldLog() bool {
	return !c.Quiet
}

// ShouldCreateBackup reports whether an existing output file is backed up
// before it is replaced. Backups are on unless disabled.
func (c *Config) ShouldCreateBackup() bool {
	return !c.NoBackup
}
