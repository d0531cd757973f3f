// Package config loads otn settings from defaults, an optional YAML file,
// OTN_ environment variables and command-line flags.
package config

import "errors"

// Sentinel errors for invalid settings
var (
	ErrInvalidLogLevel  = errors.New("config: invalid log level")
	ErrInvalidLogFormat = errors.New("config: invalid log format")
	ErrInvalidFormat    = errors.New("config: invalid netlist format")
)

// DefaultConfigFile is looked up in the working directory when no
// --config flag is given
const DefaultConfigFile = "otn.yaml"

// Config is the full otn configuration
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Resolver ResolverConfig `koanf:"resolver"`
	ERC      ERCConfig      `koanf:"erc"`
	Netlist  NetlistConfig  `koanf:"netlist"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// ResolverConfig tunes the connection graph build
type ResolverConfig struct {
	Workers           int    `koanf:"workers"`
	ParallelThreshold int    `koanf:"parallel_threshold"`
	Codes             string `koanf:"codes"` // CBOR code table kept between runs
}

// ERCConfig toggles checks and overrides severities by check name,
// e.g. label_dangling: ignore
type ERCConfig struct {
	DriverConflicts    bool              `koanf:"driver_conflicts"`
	BusToNetConflicts  bool              `koanf:"bus_to_net_conflicts"`
	BusEntryConflicts  bool              `koanf:"bus_entry_conflicts"`
	BusToBusConflicts  bool              `koanf:"bus_to_bus_conflicts"`
	UniqueGlobalLabels bool              `koanf:"unique_global_labels"`
	Severities         map[string]string `koanf:"severities"`
}

// NetlistConfig controls netlist export
type NetlistConfig struct {
	Format string `koanf:"format"` // json, kicad, sqlite
	Output string `koanf:"output"` // file path, "-" for stdout
}
