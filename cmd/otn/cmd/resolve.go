package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/design"
)

// resolved is a loaded and built schematic hierarchy
type resolved struct {
	sch   *connectivity.Schematic
	graph *connectivity.Graph
}

func resolve(filename string) (*resolved, error) {
	sch, err := design.LoadFile(filename, design.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("error loading schematic: %w", err)
	}

	g, err := connectivity.NewGraph(cfg.GraphConfig(logger))
	if err != nil {
		return nil, err
	}

	codes, err := loadCodes(cfg.Resolver.Codes)
	if err != nil {
		return nil, err
	}
	g.SetCodeTable(codes)

	// On a fresh graph every sheet is indexed; an unconditional build would
	// drop the loaded codes.
	if err := g.Recalculate(sch.Sheets(), false); err != nil {
		return nil, fmt.Errorf("error resolving connectivity: %w", err)
	}

	if err := saveCodes(cfg.Resolver.Codes, g.Codes()); err != nil {
		return nil, err
	}

	return &resolved{sch: sch, graph: g}, nil
}

func loadCodes(path string) (*connectivity.CodeTable, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open code table: %w", err)
	}
	defer f.Close()

	codes, err := connectivity.LoadCodeTable(f)
	if err != nil {
		return nil, err
	}
	nets, buses := codes.Len()
	logger.Debug("otn: loaded code table", "path", path, "nets", nets, "buses", buses)
	return codes, nil
}

func saveCodes(path string, codes *connectivity.CodeTable) error {
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create code table: %w", err)
	}
	if err := codes.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// markers returns the markers of every screen, each screen once
func (r *resolved) markers() []*connectivity.Marker {
	var out []*connectivity.Marker
	for _, screen := range r.sch.Screens() {
		out = append(out, screen.Markers...)
	}
	return out
}
