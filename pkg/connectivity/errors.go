package connectivity

import "errors"

var (
	// ErrGraphDirty is returned by checks that need a fully resolved graph
	ErrGraphDirty = errors.New("connectivity: graph has unresolved subgraphs")

	// ErrNoSheets is returned when a rebuild is asked for without sheets
	ErrNoSheets = errors.New("connectivity: no sheets to build")

	// ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("connectivity: invalid config")
)
