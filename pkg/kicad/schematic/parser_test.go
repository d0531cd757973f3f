package schematic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinimalSchematic(t *testing.T) {
	input := `(kicad_sch
		(version 20250114)
		(generator "eeschema")
		(generator_version "9.0")
		(uuid 862335ee-c981-4fe1-9eb9-84db19301dd4)
		(paper "A4")
		(lib_symbols)
		(sheet_instances
			(path "/"
				(page "1")
			)
		)
	)`

	sch, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse schematic: %v", err)
	}

	if sch.Version != 20250114 {
		t.Errorf("Expected version 20250114, got %d", sch.Version)
	}

	if sch.Generator != "eeschema" {
		t.Errorf("Expected generator 'eeschema', got '%s'", sch.Generator)
	}

	if sch.GeneratorVer != "9.0" {
		t.Errorf("Expected generator version '9.0', got '%s'", sch.GeneratorVer)
	}

	if sch.UUID != "862335ee-c981-4fe1-9eb9-84db19301dd4" {
		t.Errorf("Unexpected uuid %q", sch.UUID)
	}

	if len(sch.SheetInstances) != 1 {
		t.Errorf("Expected 1 sheet instance, got %d", len(sch.SheetInstances))
	}
}

func TestParseSchematicWithSymbol(t *testing.T) {
	input := `(kicad_sch
		(version 20231120)
		(generator "eeschema")
		(uuid test-uuid)
		(paper "A4")
		(lib_symbols
			(symbol "Device:R"
				(property "Reference" "R" (at 0 0 0))
				(property "Value" "R" (at 0 0 0))
				(symbol "R_1_1"
					(pin passive line (at 0 3.81 270) (length 1.27)
						(name "~" (effects (font (size 1.27 1.27))))
						(number "1" (effects (font (size 1.27 1.27))))
					)
					(pin passive line (at 0 -3.81 90) (length 1.27)
						(name "~" (effects (font (size 1.27 1.27))))
						(number "2" (effects (font (size 1.27 1.27))))
					)
				)
			)
		)
		(symbol (lib_id "Device:R")
			(at 100 50 90)
			(mirror x)
			(unit 1)
			(uuid sym-uuid-1)
			(property "Reference" "R1" (at 100 45 0))
			(property "Value" "10k" (at 100 55 0))
			(instances
				(project "demo"
					(path "/test-uuid" (reference "R7") (unit 1))
				)
			)
		)
	)`

	sch, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, sch.LibSymbols, 1)
	require.Len(t, sch.Symbols, 1)

	sym := sch.Symbols[0]
	assert.Equal(t, "Device:R", sym.LibID)
	assert.Equal(t, "Device:R", sym.LibKey())
	assert.Equal(t, Angle(90), sym.Angle)
	assert.Equal(t, "x", sym.Mirror)
	assert.Equal(t, "10k", sym.Value())
	require.Len(t, sym.Instances, 1)
	assert.Equal(t, SymbolInstance{Project: "demo", Path: "/test-uuid", Reference: "R7", Unit: 1}, sym.Instances[0])

	lib := sch.GetLibSymbol("Device:R")
	require.NotNil(t, lib)
	assert.False(t, lib.Power)
	pins := lib.UnitPins(1, 1)
	require.Len(t, pins, 2)
	assert.Equal(t, "1", pins[0].Number)
	assert.Equal(t, "~", pins[0].Name)
	assert.Equal(t, Position{X: 0, Y: 3.81}, pins[0].Position)

	if r1 := sch.GetSymbol("R1"); r1 == nil {
		t.Error("GetSymbol('R1') returned nil")
	}

	refs := sch.GetAllReferences()
	if len(refs) != 1 || refs[0] != "R1" {
		t.Errorf("Expected refs ['R1'], got %v", refs)
	}
}

func TestParsePowerSymbol(t *testing.T) {
	input := `(kicad_sch
		(version 20231120)
		(generator "eeschema")
		(lib_symbols
			(symbol "power:GND" (power) (pin_names (offset 0))
				(symbol "GND_0_1")
				(symbol "GND_1_1"
					(pin power_in line (at 0 0 270) (length 0) hide
						(name "GND" (effects (font (size 1.27 1.27))))
						(number "1" (effects (font (size 1.27 1.27))))
					)
				)
			)
			(symbol "MCU:Chip"
				(symbol "Chip_0_1"
					(pin power_in line (at 0 5.08 270) (length 2.54) (hide yes)
						(name "VDD")
						(number "8")
					)
				)
				(symbol "Chip_1_1"
					(pin input line (at -5.08 0 0) (length 2.54) (name "A") (number "1"))
				)
				(symbol "Chip_2_1"
					(pin output line (at 5.08 0 180) (length 2.54) (name "Y") (number "3"))
				)
			)
		)
	)`

	sch, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	gnd := sch.GetLibSymbol("power:GND")
	require.NotNil(t, gnd)
	assert.True(t, gnd.Power)
	pins := gnd.UnitPins(1, 1)
	require.Len(t, pins, 1)
	assert.True(t, pins[0].Hide)
	assert.Equal(t, "power_in", pins[0].Type)

	chip := sch.GetLibSymbol("MCU:Chip")
	require.NotNil(t, chip)

	unit2 := chip.UnitPins(2, 1)
	require.Len(t, unit2, 2, "shared unit 0 pins belong to every unit")
	assert.Equal(t, "8", unit2[0].Number)
	assert.True(t, unit2[0].Hide)
	assert.Equal(t, "3", unit2[1].Number)
}

func TestParseSchematicWithWires(t *testing.T) {
	input := `(kicad_sch
		(version 20231120)
		(generator "eeschema")
		(uuid test-uuid)
		(paper "A4")
		(lib_symbols)
		(wire (pts (xy 100 50) (xy 150 50))
			(stroke (width 0) (type default))
			(uuid wire-1)
		)
		(wire (pts (xy 150 50) (xy 150 100))
			(stroke (width 0) (type default))
			(uuid wire-2)
		)
		(junction (at 150 50) (diameter 0) (color 0 0 0 0)
			(uuid junc-1)
		)
		(bus (pts (xy 50 20) (xy 50 80)) (uuid bus-1))
		(bus_entry (at 50 30) (size 2.54 2.54) (uuid entry-1))
		(no_connect (at 10 10) (uuid nc-1))
	)`

	sch, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse schematic: %v", err)
	}

	if len(sch.Wires) != 2 {
		t.Errorf("Expected 2 wires, got %d", len(sch.Wires))
	}
	if sch.Wires[0].Points[1] != (Position{X: 150, Y: 50}) {
		t.Errorf("Unexpected wire end %+v", sch.Wires[0].Points[1])
	}

	if len(sch.Junctions) != 1 {
		t.Errorf("Expected 1 junction, got %d", len(sch.Junctions))
	}

	if len(sch.Buses) != 1 || len(sch.BusEntries) != 1 || len(sch.NoConnects) != 1 {
		t.Errorf("Expected 1 bus, 1 entry, 1 no-connect, got %d, %d, %d",
			len(sch.Buses), len(sch.BusEntries), len(sch.NoConnects))
	}

	end := sch.BusEntries[0].End()
	assert.InDelta(t, 52.54, end.X, 1e-9)
	assert.InDelta(t, 32.54, end.Y, 1e-9)
}

func TestParseSchematicWithLabels(t *testing.T) {
	input := `(kicad_sch
		(version 20231120)
		(generator "eeschema")
		(uuid test-uuid)
		(paper "A4")
		(lib_symbols)
		(bus_alias "MEM" (members "ADDR[0..3]" "RD" "WR"))
		(label "VCC" (at 100 50 0)
			(effects (font (size 1.27 1.27)))
			(uuid label-1)
		)
		(global_label "GND" (shape input) (at 100 100 0)
			(effects (font (size 1.27 1.27)))
			(uuid glabel-1)
		)
		(hierarchical_label "CLK" (shape output) (at 20 30 180)
			(uuid hlabel-1)
		)
	)`

	sch, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse schematic: %v", err)
	}

	if len(sch.Labels) != 1 {
		t.Errorf("Expected 1 label, got %d", len(sch.Labels))
	}

	if sch.Labels[0].Text != "VCC" {
		t.Errorf("Expected label text 'VCC', got '%s'", sch.Labels[0].Text)
	}

	if len(sch.GlobalLabels) != 1 {
		t.Errorf("Expected 1 global label, got %d", len(sch.GlobalLabels))
	}

	if sch.GlobalLabels[0].Text != "GND" || sch.GlobalLabels[0].Shape != "input" {
		t.Errorf("Unexpected global label %+v", sch.GlobalLabels[0])
	}

	if len(sch.HierLabels) != 1 || sch.HierLabels[0].Shape != "output" {
		t.Errorf("Unexpected hierarchical labels %+v", sch.HierLabels)
	}

	labels := sch.GetLabels()
	if len(labels) != 3 {
		t.Errorf("Expected 3 total labels, got %d", len(labels))
	}

	require.Len(t, sch.BusAliases, 1)
	assert.Equal(t, BusAlias{Name: "MEM", Members: []string{"ADDR[0..3]", "RD", "WR"}}, sch.BusAliases[0])
}

func TestParseSheets(t *testing.T) {
	input := `(kicad_sch
		(version 20211123)
		(generator eeschema)
		(uuid root-uuid)
		(sheet (at 50 50) (size 20 10)
			(uuid sheet-uuid)
			(property "Sheet name" "power" (id 0) (at 50 49 0))
			(property "Sheet file" "power.kicad_sch" (id 1) (at 50 61 0))
			(pin "VIN" input (at 50 55 180) (uuid pin-uuid))
		)
		(symbol_instances
			(path "/sheet-uuid/sym-uuid" (reference "U1") (unit 2) (value "LDO") (footprint ""))
		)
	)`

	sch, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, sch.Sheets, 1)
	sheet := sch.Sheets[0]
	assert.Equal(t, "power", sheet.Name)
	assert.Equal(t, "power.kicad_sch", sheet.FileName)
	assert.Equal(t, UUID("sheet-uuid"), sheet.UUID)
	require.Len(t, sheet.Pins, 1)
	assert.Equal(t, SheetPin{Name: "VIN", Shape: "input", Position: Position{X: 50, Y: 55}, UUID: "pin-uuid"}, sheet.Pins[0])

	require.Len(t, sch.SymbolInstances, 1)
	assert.Equal(t, SymbolInstance{Path: "/sheet-uuid/sym-uuid", Reference: "U1", Unit: 2}, sch.SymbolInstances[0])
}

func TestParseInvalidRoot(t *testing.T) {
	input := `(kicad_pcb (version 20231120))`

	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Error("Expected error for wrong root node type")
	}
}

func TestParseRejectsOldVersion(t *testing.T) {
	_, err := Parse(strings.NewReader(`(kicad_sch (version 20200310))`))
	if err == nil || !strings.Contains(err.Error(), "unsupported KiCad version") {
		t.Errorf("Expected version error, got %v", err)
	}
}

func TestSplitUnitName(t *testing.T) {
	tests := []struct {
		name       string
		unit, body int
	}{
		{"R_1_1", 1, 1},
		{"Chip_A_0_2", 0, 2},
		{"GND", 0, 0},
		{"X_a_b", 0, 0},
	}
	for _, tt := range tests {
		u, b := splitUnitName(tt.name)
		if u != tt.unit || b != tt.body {
			t.Errorf("splitUnitName(%q) = %d, %d; want %d, %d", tt.name, u, b, tt.unit, tt.body)
		}
	}
}
