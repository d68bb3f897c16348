package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "empty config uses defaults",
			config: Config{},
		},
		{
			name: "valid config",
			config: Config{
				InputFile:  "in.json",
				OutputFile: "out.json",
				LogFormat:  LogFormatCSV,
				SampleSize: 5,
				Workers:    2,
			},
		},
		{
			name:        "invalid log format",
			config:      Config{LogFormat: "xml"},
			expectError: true,
		},
		{
			name:        "negative sample size",
			config:      Config{SampleSize: -1},
			expectError: true,
		},
		{
			name:        "negative workers",
			config:      Config{Workers: -3},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := Config{InputFile: "  "}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultInputFile, cfg.InputFile)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestApplyEnv(t *testing.T) {
	t.Run("fills unset values", func(t *testing.T) {
		t.Setenv(EnvInput, "env-in.json")
		t.Setenv(EnvOutput, "env-out.json")
		t.Setenv(EnvWorkers, "3")

		cfg := &Config{}
		require.NoError(t, cfg.ApplyEnv())

		assert.Equal(t, "env-in.json", cfg.InputFile)
		assert.Equal(t, "env-out.json", cfg.OutputFile)
		assert.Equal(t, 3, cfg.Workers)
	})

	t.Run("flags take precedence", func(t *testing.T) {
		t.Setenv(EnvInput, "env-in.json")
		t.Setenv(EnvWorkers, "3")

		cfg := &Config{InputFile: "flag.json", Workers: 5}
		require.NoError(t, cfg.ApplyEnv())

		assert.Equal(t, "flag.json", cfg.InputFile)
		assert.Equal(t, 5, cfg.Workers)
	})

	t.Run("invalid worker count", func(t *testing.T) {
		t.Setenv(EnvWorkers, "many")

		cfg := &Config{}
		assert.Error(t, cfg.ApplyEnv())
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RECAT_OUTPUT=from-dotenv.json\n"), 0644))

	t.Setenv(EnvOutput, "")
	os.Unsetenv(EnvOutput)

	require.NoError(t, LoadEnv(envFile))
	assert.Equal(t, "from-dotenv.json", os.Getenv(EnvOutput))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")), "missing files are ignored")
}

func TestLoadEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RECAT_INPUT=from-dotenv.json\n"), 0644))

	t.Setenv(EnvInput, "from-shell.json")

	require.NoError(t, LoadEnv(envFile))
	assert.Equal(t, "from-shell.json", os.Getenv(EnvInput))
}

func TestFlagPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		config       Config
		verbose      bool
		debug        bool
		shouldLog    bool
		createBackup bool
	}{
		{"defaults", Config{}, false, false, true, true},
		{"verbose", Config{Verbose: true}, true, false, true, true},
		{"debug", Config{Debug: true}, false, true, true, true},
		{"quiet wins", Config{Verbose: true, Debug: true, Quiet: true}, false, false, false, true},
		{"no backup", Config{NoBackup: true}, false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.verbose, tt.config.IsVerbose())
			assert.Equal(t, tt.debug, tt.config.IsDebug())
			assert.Equal(t, tt.shouldLog, tt.config.ShouldLog())
			assert.Equal(t, tt.createBackup, tt.config.ShouldCreateBackup())
		})
	}
}
