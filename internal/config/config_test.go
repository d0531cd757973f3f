package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("otn", pflag.ContinueOnError)
	fs.BoolP("verbose", "v", false, "")
	fs.String("log-format", "text", "")
	fs.Int("workers", 0, "")
	fs.String("format", "kicad", "")
	fs.StringP("output", "o", "-", "")
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "otn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Resolver.ParallelThreshold)
	assert.Positive(t, cfg.Resolver.Workers)
	assert.True(t, cfg.ERC.DriverConflicts)
	assert.True(t, cfg.ERC.UniqueGlobalLabels)
	assert.Equal(t, "kicad", cfg.Netlist.Format)
	assert.Equal(t, "-", cfg.Netlist.Output)
}

func TestLoadPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, `
log:
  level: warn
resolver:
  workers: 2
  parallel_threshold: 4
erc:
  bus_to_bus_conflicts: false
  severities:
    label_dangling: ignore
netlist:
  format: json
`)

	tests := []struct {
		name  string
		env   map[string]string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "file only",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Log.Level)
				assert.Equal(t, 2, cfg.Resolver.Workers)
				assert.Equal(t, 4, cfg.Resolver.ParallelThreshold)
				assert.False(t, cfg.ERC.BusToBusConflicts)
				assert.True(t, cfg.ERC.BusToNetConflicts)
				assert.Equal(t, "ignore", cfg.ERC.Severities["label_dangling"])
				assert.Equal(t, "json", cfg.Netlist.Format)
			},
		},
		{
			name: "env over file",
			env:  map[string]string{"OTN_RESOLVER_WORKERS": "6", "OTN_LOG_LEVEL": "error"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6, cfg.Resolver.Workers)
				assert.Equal(t, "error", cfg.Log.Level)
			},
		},
		{
			name: "flags over env",
			env:  map[string]string{"OTN_RESOLVER_WORKERS": "6"},
			args: []string{"--workers", "3", "-v", "--format", "sqlite", "-o", "out.db"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Resolver.Workers)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, "sqlite", cfg.Netlist.Format)
				assert.Equal(t, "out.db", cfg.Netlist.Output)
			},
		},
		{
			name: "unset flags keep file values",
			args: []string{"--log-format", "json"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "json", cfg.Log.Format)
				assert.Equal(t, "json", cfg.Netlist.Format)
				assert.Equal(t, 2, cfg.Resolver.Workers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := testFlags()
			require.NoError(t, fs.Parse(tt.args))

			cfg, err := Load(path, fs)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte("netlist:\n  output: nets.net\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "nets.net", cfg.Netlist.Output)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"log level", "log:\n  level: loud\n", ErrInvalidLogLevel},
		{"log format", "log:\n  format: xml\n", ErrInvalidLogFormat},
		{"netlist format", "netlist:\n  format: spice\n", ErrInvalidFormat},
		{"unknown check", "erc:\n  severities:\n    bogus: error\n", connectivity.ErrInvalidConfig},
		{"unknown severity", "erc:\n  severities:\n    label_dangling: fatal\n", connectivity.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			_, err := Load(writeConfig(t, tt.body), nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestERCSettings(t *testing.T) {
	cfg := &Config{ERC: ERCConfig{
		DriverConflicts: true,
		Severities: map[string]string{
			"label_dangling":    "ignore",
			"pin_not_connected": "error",
		},
	}}

	s, err := cfg.ERCSettings()
	require.NoError(t, err)

	assert.True(t, s.CheckDriverConflicts)
	assert.False(t, s.CheckBusToBusConflicts)
	assert.Equal(t, connectivity.SeverityIgnore, s.Severity(connectivity.ErcLabelNotConnected))
	assert.Equal(t, connectivity.SeverityError, s.Severity(connectivity.ErcPinNotConnected))
	assert.Equal(t, connectivity.ErcDriverConflict.DefaultSeverity(), s.Severity(connectivity.ErcDriverConflict))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Log: LogConfig{Level: "warn", Format: "json"}}

	log := cfg.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "n", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json output expected, got %q", out)
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestGraphConfig(t *testing.T) {
	cfg := &Config{Resolver: ResolverConfig{Workers: 3, ParallelThreshold: 16}}

	gc := cfg.GraphConfig(nil)
	require.NoError(t, gc.Validate())
	assert.Equal(t, 3, gc.Workers)
	assert.Equal(t, 16, gc.ParallelThreshold)
	assert.NotNil(t, gc.Logger)
}
