package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
)

// EnvPrefix prefixes environment overrides: OTN_LOG_LEVEL -> log.level
const EnvPrefix = "OTN_"

// flagKeys maps command-line flags to config keys
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"workers":    "resolver.workers",
	"codes":      "resolver.codes",
	"format":     "netlist.format",
	"output":     "netlist.output",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level":                   "info",
		"log.format":                  "text",
		"resolver.workers":            runtime.NumCPU(),
		"resolver.parallel_threshold": 8,
		"erc.driver_conflicts":        true,
		"erc.bus_to_net_conflicts":    true,
		"erc.bus_entry_conflicts":     true,
		"erc.bus_to_bus_conflicts":    true,
		"erc.unique_global_labels":    true,
		"netlist.format":              "kicad",
		"netlist.output":              "-",
	}
}

// Load reads configuration. Precedence (highest to lowest):
// flags > env vars > config file > defaults. An empty cfgFile falls back to
// DefaultConfigFile when it exists.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: OTN_RESOLVER_PARALLEL_THRESHOLD -> resolver.parallel_threshold
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if f.Name == "verbose" {
				if v, _ := flags.GetBool("verbose"); v {
					return "log.level", "debug"
				}
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}

	switch c.Netlist.Format {
	case "json", "kicad", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Netlist.Format)
	}

	if _, err := c.ERCSettings(); err != nil {
		return err
	}

	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return level, nil
}

// Logger builds the slog logger described by the log section
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// GraphConfig returns the connection graph settings
func (c *Config) GraphConfig(log *slog.Logger) *connectivity.Config {
	return &connectivity.Config{
		Workers:           c.Resolver.Workers,
		ParallelThreshold: c.Resolver.ParallelThreshold,
		Logger:            log,
	}
}

// ERCSettings converts the erc section
func (c *Config) ERCSettings() (connectivity.ERCSettings, error) {
	s := connectivity.ERCSettings{
		CheckDriverConflicts:    c.ERC.DriverConflicts,
		CheckBusToNetConflicts:  c.ERC.BusToNetConflicts,
		CheckBusEntryConflicts:  c.ERC.BusEntryConflicts,
		CheckBusToBusConflicts:  c.ERC.BusToBusConflicts,
		CheckUniqueGlobalLabels: c.ERC.UniqueGlobalLabels,
	}

	if len(c.ERC.Severities) > 0 {
		s.Severities = make(map[connectivity.ErrorKind]connectivity.Severity, len(c.ERC.Severities))
	}
	for name, value := range c.ERC.Severities {
		kind, err := connectivity.ParseErrorKind(name)
		if err != nil {
			return s, err
		}
		sev, err := connectivity.ParseSeverity(value)
		if err != nil {
			return s, err
		}
		s.Severities[kind] = sev
	}

	return s, nil
}
