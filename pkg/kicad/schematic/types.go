// Package schematic reads KiCad 6+ schematic files (.kicad_sch) into plain
// Go structures. Only what connectivity needs is kept: electrical items,
// symbols with their library pins, sheets and instance data.
package schematic

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/sexp"
)

// Type aliases for shared types from sexp package
type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type Size = sexp.Size
type UUID = sexp.UUID
type Effects = sexp.Effects
type Property = sexp.Property

// Schematic represents one .kicad_sch file
type Schematic struct {
	Version      int    // File format version
	Generator    string // Generator info (e.g., "eeschema")
	GeneratorVer string // Generator version
	UUID         UUID   // Schematic UUID, the root path element for a root file

	LibSymbols []LibSymbol // Embedded library symbols
	Symbols    []Symbol    // Symbol instances on the schematic
	BusAliases []BusAlias  // Bus alias definitions

	Wires        []Wire
	Buses        []Bus
	BusEntries   []BusEntry
	Junctions    []Junction
	NoConnects   []NoConnect
	Labels       []Label
	GlobalLabels []GlobalLabel
	HierLabels   []HierLabel
	Sheets       []Sheet

	SheetInstances  []SheetInstance  // root-only page table
	SymbolInstances []SymbolInstance // KiCad 6 root-level reference table
}

// LibSymbol is a library symbol embedded in the schematic
type LibSymbol struct {
	Name       string // Symbol name (e.g., "Device:R")
	Power      bool   // Power symbol flag
	Properties []Property
	Units      []SymbolUnit
}

// SymbolUnit is a sub-symbol named "<name>_<unit>_<bodystyle>".
// Unit 0 is shared by all units.
type SymbolUnit struct {
	Name      string
	Unit      int
	BodyStyle int
	Pins      []Pin
}

// Pin is a library pin. Position is the electrical connection point in
// symbol space, with Y pointing up.
type Pin struct {
	Type     string // input, output, power_in, ...
	Style    string // line, inverted, clock, ...
	Position Position
	Angle    Angle
	Length   float64
	Name     string
	Number   string
	Hide     bool
}

// Symbol is a placed symbol
type Symbol struct {
	LibID      string // Library identifier (e.g., "Device:R")
	LibName    string // embedded symbol name when it differs from LibID
	Position   Position
	Angle      Angle
	Mirror     string // "x", "y" or empty
	Unit       int
	BodyStyle  int
	UUID       UUID
	Properties []Property
	Instances  []SymbolInstance // KiCad 7+ per-path references
}

// SymbolInstance assigns a reference to a symbol on one sheet path
type SymbolInstance struct {
	Project   string
	Path      string
	Reference string
	Unit      int
}

// BusAlias is a named list of bus members
type BusAlias struct {
	Name    string
	Members []string
}

// Wire is a single wire segment
type Wire struct {
	Points []Position
	UUID   UUID
}

// Bus is a single bus segment
type Bus struct {
	Points []Position
	UUID   UUID
}

// BusEntry connects a wire to a bus; its ends are Position and Position+Size
type BusEntry struct {
	Position Position
	Size     Size
	UUID     UUID
}

// End returns the second connection point of the entry
func (e BusEntry) End() Position {
	return Position{X: e.Position.X + e.Size.Width, Y: e.Position.Y + e.Size.Height}
}

// Junction is an explicit wire junction
type Junction struct {
	Position Position
	UUID     UUID
}

// NoConnect is a no-connect marker
type NoConnect struct {
	Position Position
	UUID     UUID
}

// Label is a local label
type Label struct {
	Text     string
	Position Position
	Angle    Angle
	UUID     UUID
}

// GlobalLabel is a global label
type GlobalLabel struct {
	Text     string
	Shape    string // input, output, bidirectional, tri_state, passive
	Position Position
	Angle    Angle
	UUID     UUID
}

// HierLabel is a hierarchical label
type HierLabel struct {
	Text     string
	Shape    string
	Position Position
	Angle    Angle
	UUID     UUID
}

// Sheet is a hierarchical sheet symbol
type Sheet struct {
	Position   Position
	Size       Size
	UUID       UUID
	Name       string // Sheetname property
	FileName   string // Sheetfile property
	Pins       []SheetPin
	Properties []Property
}

// SheetPin is a pin on a sheet symbol
type SheetPin struct {
	Name     string
	Shape    string
	Position Position
	UUID     UUID
}

// SheetInstance maps a sheet path to its page number
type SheetInstance struct {
	Path string
	Page string
}

// Property returns the value of a symbol property
func (s *Symbol) Property(key string) string {
	for _, prop := range s.Properties {
		if prop.Key == key {
			return prop.Value
		}
	}
	return ""
}

// Reference returns the Reference property
func (s *Symbol) Reference() string { return s.Property("Reference") }

// Value returns the Value property
func (s *Symbol) Value() string { return s.Property("Value") }

// LibKey is the name of the embedded library symbol used by s
func (s *Symbol) LibKey() string {
	if s.LibName != "" {
		return s.LibName
	}
	return s.LibID
}

// GetSymbol finds a symbol by its Reference property
func (s *Schematic) GetSymbol(ref string) *Symbol {
	for i := range s.Symbols {
		if s.Symbols[i].Reference() == ref {
			return &s.Symbols[i]
		}
	}
	return nil
}

// GetLibSymbol finds an embedded library symbol by name
func (s *Schematic) GetLibSymbol(name string) *LibSymbol {
	for i := range s.LibSymbols {
		if s.LibSymbols[i].Name == name {
			return &s.LibSymbols[i]
		}
	}
	return nil
}

// GetAllReferences returns all symbol references
func (s *Schematic) GetAllReferences() []string {
	var refs []string
	for i := range s.Symbols {
		if ref := s.Symbols[i].Reference(); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// GetLabels returns all label names (local + global + hierarchical)
func (s *Schematic) GetLabels() []string {
	seen := make(map[string]bool)
	var labels []string

	add := func(text string) {
		if !seen[text] {
			seen[text] = true
			labels = append(labels, text)
		}
	}
	for _, l := range s.Labels {
		add(l.Text)
	}
	for _, l := range s.GlobalLabels {
		add(l.Text)
	}
	for _, l := range s.HierLabels {
		add(l.Text)
	}

	return labels
}

// UnitPins returns the pins drawn for one unit and body style. Pins of the
// shared unit 0 are included.
func (l *LibSymbol) UnitPins(unit, bodyStyle int) []Pin {
	if bodyStyle < 1 {
		bodyStyle = 1
	}
	var pins []Pin
	for _, u := range l.Units {
		if u.Unit != 0 && u.Unit != unit {
			continue
		}
		if u.BodyStyle != 0 && u.BodyStyle != bodyStyle {
			continue
		}
		pins = append(pins, u.Pins...)
	}
	return pins
}

// splitUnitName parses "Device:R_1_1" into unit 1, body style 1
func splitUnitName(name string) (unit, bodyStyle int) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return 0, 0
	}
	u, err1 := strconv.Atoi(parts[len(parts)-2])
	b, err2 := strconv.Atoi(parts[len(parts)-1])
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return u, b
}
