package connectivity

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Config controls how the connection graph is built.
type Config struct {
	// Parallelism
	Workers           int // Upper bound on driver resolution workers (default: NumCPU)
	ParallelThreshold int // Dirty subgraph count below which resolution stays on the caller (default: 8)

	// Logger receives build progress at debug level and propagation
	// problems at warn level (default: discard)
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults for most designs.
func DefaultConfig() *Config {
	return &Config{
		Workers:           runtime.NumCPU(),
		ParallelThreshold: 8,
	}
}

// Validate checks the configuration and fills in missing values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		c.Workers = 1
	}

	if c.ParallelThreshold < 0 {
		return fmt.Errorf("%w: parallel threshold %d", ErrInvalidConfig, c.ParallelThreshold)
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	return nil
}

// workersFor returns how many workers to use for n dirty subgraphs, one per
// four subgraphs at most.
func (c *Config) workersFor(n int) int {
	if n < c.ParallelThreshold {
		return 1
	}
	return max(1, min(c.Workers, (n+3)/4))
}
