package schematic

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version for schematics (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	sch, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return sch, nil
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_sch ...) expression
	root := sexps[0]

	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}

	if rootName != "kicad_sch" {
		return nil, fmt.Errorf("not a KiCad schematic file: expected 'kicad_sch', got '%s'", rootName)
	}

	sch := &Schematic{}

	if err := parseHeader(root, sch); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if uuidNode, found := sexp.FindNode(root, "uuid"); found {
		sch.UUID, _ = sexp.GetUUID(uuidNode)
	}

	if libSymbolsNode, found := sexp.FindNode(root, "lib_symbols"); found {
		sch.LibSymbols = parseLibSymbols(libSymbolsNode)
	}

	sch.Symbols = parseSymbols(root)
	sch.BusAliases = parseBusAliases(root)
	sch.Wires = parseWires(root)
	sch.Buses = parseBuses(root)
	sch.BusEntries = parseBusEntries(root)
	sch.Junctions = parseJunctions(root)
	sch.NoConnects = parseNoConnects(root)
	sch.Labels = parseLabels(root)
	sch.GlobalLabels = parseGlobalLabels(root)
	sch.HierLabels = parseHierLabels(root)
	sch.Sheets = parseSheets(root)

	if instancesNode, found := sexp.FindNode(root, "sheet_instances"); found {
		sch.SheetInstances = parseSheetInstances(instancesNode)
	}

	if instancesNode, found := sexp.FindNode(root, "symbol_instances"); found {
		sch.SymbolInstances = parseInstancePaths(instancesNode, "")
	}

	return sch, nil
}

// parseHeader extracts version and generator information
func parseHeader(root kicadsexp.Sexp, sch *Schematic) error {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return fmt.Errorf("failed to parse version: %w", err)
	}

	if ver < MinSupportedVersion {
		return fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}
	sch.Version = ver

	if genNode, found := sexp.FindNode(root, "generator"); found {
		sch.Generator, _ = sexp.GetQuotedString(genNode, 1)
	}
	if genVerNode, found := sexp.FindNode(root, "generator_version"); found {
		sch.GeneratorVer, _ = sexp.GetQuotedString(genVerNode, 1)
	}

	return nil
}

// parseLibSymbols parses embedded library symbols
func parseLibSymbols(node kicadsexp.Sexp) []LibSymbol {
	symbolNodes := sexp.FindAllNodes(node, "symbol")
	symbols := make([]LibSymbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		symbols = append(symbols, parseLibSymbol(symNode))
	}

	return symbols
}

// parseLibSymbol parses a single library symbol definition
func parseLibSymbol(node kicadsexp.Sexp) LibSymbol {
	sym := LibSymbol{}

	sym.Name, _ = sexp.GetQuotedString(node, 1)

	// (power) in KiCad 6-8, (power global|local) from KiCad 9
	_, sym.Power = sexp.FindNode(node, "power")

	for _, pn := range sexp.FindAllNodes(node, "property") {
		if prop, err := sexp.GetProperty(pn); err == nil {
			sym.Properties = append(sym.Properties, prop)
		}
	}

	// Pins placed directly on the symbol belong to every unit
	if pins := parsePins(node); len(pins) > 0 {
		sym.Units = append(sym.Units, SymbolUnit{Name: sym.Name, Pins: pins})
	}

	for _, unitNode := range sexp.FindAllNodes(node, "symbol") {
		unit := SymbolUnit{}
		unit.Name, _ = sexp.GetQuotedString(unitNode, 1)
		unit.Unit, unit.BodyStyle = splitUnitName(unit.Name)
		unit.Pins = parsePins(unitNode)
		sym.Units = append(sym.Units, unit)
	}

	return sym
}

func parsePins(node kicadsexp.Sexp) []Pin {
	var pins []Pin
	for _, pn := range sexp.FindAllNodes(node, "pin") {
		pins = append(pins, parsePin(pn))
	}
	return pins
}

// parsePin parses a pin definition
func parsePin(node kicadsexp.Sexp) Pin {
	pin := Pin{}

	pin.Type, _ = sexp.GetString(node, 1)
	pin.Style, _ = sexp.GetString(node, 2)

	if atNode, found := sexp.FindNode(node, "at"); found {
		pos, _ := sexp.GetPosition(atNode)
		pin.Position = pos.Position
		pin.Angle = pos.Angle
	}

	if lenNode, found := sexp.FindNode(node, "length"); found {
		pin.Length, _ = sexp.GetFloat(lenNode, 1)
	}

	if nameNode, found := sexp.FindNode(node, "name"); found {
		pin.Name, _ = sexp.GetQuotedString(nameNode, 1)
	}

	if numNode, found := sexp.FindNode(node, "number"); found {
		pin.Number, _ = sexp.GetQuotedString(numNode, 1)
	}

	pin.Hide = sexp.GetFlag(node, "hide")

	return pin
}

// parseSymbols parses symbol instances
func parseSymbols(root kicadsexp.Sexp) []Symbol {
	symbolNodes := sexp.FindAllNodes(root, "symbol")
	symbols := make([]Symbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		symbols = append(symbols, parseSymbol(symNode))
	}

	return symbols
}

// parseSymbol parses a single symbol instance
func parseSymbol(node kicadsexp.Sexp) Symbol {
	sym := Symbol{
		Unit:      1,
		BodyStyle: 1,
	}

	if libNode, found := sexp.FindNode(node, "lib_id"); found {
		sym.LibID, _ = sexp.GetQuotedString(libNode, 1)
	}
	if libNode, found := sexp.FindNode(node, "lib_name"); found {
		sym.LibName, _ = sexp.GetQuotedString(libNode, 1)
	}

	if atNode, found := sexp.FindNode(node, "at"); found {
		pos, _ := sexp.GetPosition(atNode)
		sym.Position = pos.Position
		sym.Angle = pos.Angle
	}

	if mirrorNode, found := sexp.FindNode(node, "mirror"); found {
		sym.Mirror, _ = sexp.GetString(mirrorNode, 1)
	}

	if unitNode, found := sexp.FindNode(node, "unit"); found {
		sym.Unit, _ = sexp.GetInt(unitNode, 1)
	}

	// "convert" before KiCad 9, "body_style" after
	for _, key := range []string{"convert", "body_style"} {
		if styleNode, found := sexp.FindNode(node, key); found {
			sym.BodyStyle, _ = sexp.GetInt(styleNode, 1)
		}
	}

	if uuidNode, found := sexp.FindNode(node, "uuid"); found {
		sym.UUID, _ = sexp.GetUUID(uuidNode)
	}

	for _, pn := range sexp.FindAllNodes(node, "property") {
		if prop, err := sexp.GetProperty(pn); err == nil {
			sym.Properties = append(sym.Properties, prop)
		}
	}

	if instNode, found := sexp.FindNode(node, "instances"); found {
		for _, proj := range sexp.FindAllNodes(instNode, "project") {
			name, _ := sexp.GetQuotedString(proj, 1)
			sym.Instances = append(sym.Instances, parseInstancePaths(proj, name)...)
		}
	}

	return sym
}

// parseInstancePaths reads (path "..." (reference "..") (unit N)) entries
func parseInstancePaths(node kicadsexp.Sexp, project string) []SymbolInstance {
	var out []SymbolInstance
	for _, pn := range sexp.FindAllNodes(node, "path") {
		inst := SymbolInstance{Project: project, Unit: 1}
		inst.Path, _ = sexp.GetQuotedString(pn, 1)
		if refNode, found := sexp.FindNode(pn, "reference"); found {
			inst.Reference, _ = sexp.GetQuotedString(refNode, 1)
		}
		if unitNode, found := sexp.FindNode(pn, "unit"); found {
			inst.Unit, _ = sexp.GetInt(unitNode, 1)
		}
		out = append(out, inst)
	}
	return out
}

// parseBusAliases parses (bus_alias "NAME" (members "A" "B" ...))
func parseBusAliases(root kicadsexp.Sexp) []BusAlias {
	var aliases []BusAlias
	for _, an := range sexp.FindAllNodes(root, "bus_alias") {
		alias := BusAlias{}
		alias.Name, _ = sexp.GetQuotedString(an, 1)
		if membersNode, found := sexp.FindNode(an, "members"); found {
			for _, m := range sexp.GetListItems(membersNode) {
				if sym, ok := m.(kicadsexp.Symbol); ok {
					alias.Members = append(alias.Members, string(sym))
				}
			}
		}
		aliases = append(aliases, alias)
	}
	return aliases
}

func parsePoints(node kicadsexp.Sexp) []Position {
	var points []Position
	if ptsNode, found := sexp.FindNode(node, "pts"); found {
		for _, xy := range sexp.FindAllNodes(ptsNode, "xy") {
			if pos, err := sexp.GetPositionXY(xy); err == nil {
				points = append(points, pos)
			}
		}
	}
	return points
}

func parseUUID(node kicadsexp.Sexp) UUID {
	if uuidNode, found := sexp.FindNode(node, "uuid"); found {
		id, _ := sexp.GetUUID(uuidNode)
		return id
	}
	return ""
}

func parseAt(node kicadsexp.Sexp) PositionAngle {
	if atNode, found := sexp.FindNode(node, "at"); found {
		pos, _ := sexp.GetPosition(atNode)
		return pos
	}
	return PositionAngle{}
}

// parseWires parses wire connections
func parseWires(root kicadsexp.Sexp) []Wire {
	wireNodes := sexp.FindAllNodes(root, "wire")
	wires := make([]Wire, 0, len(wireNodes))

	for _, wn := range wireNodes {
		wires = append(wires, Wire{Points: parsePoints(wn), UUID: parseUUID(wn)})
	}

	return wires
}

// parseBuses parses bus segments. Bus-to-bus entries are saved as buses too.
func parseBuses(root kicadsexp.Sexp) []Bus {
	busNodes := sexp.FindAllNodes(root, "bus")
	buses := make([]Bus, 0, len(busNodes))

	for _, bn := range busNodes {
		buses = append(buses, Bus{Points: parsePoints(bn), UUID: parseUUID(bn)})
	}

	return buses
}

// parseBusEntries parses wire-to-bus entries
func parseBusEntries(root kicadsexp.Sexp) []BusEntry {
	entryNodes := sexp.FindAllNodes(root, "bus_entry")
	entries := make([]BusEntry, 0, len(entryNodes))

	for _, en := range entryNodes {
		entry := BusEntry{
			Position: parseAt(en).Position,
			UUID:     parseUUID(en),
		}
		if sizeNode, found := sexp.FindNode(en, "size"); found {
			w, _ := sexp.GetFloat(sizeNode, 1)
			h, _ := sexp.GetFloat(sizeNode, 2)
			entry.Size = Size{Width: w, Height: h}
		}
		entries = append(entries, entry)
	}

	return entries
}

// parseJunctions parses wire junctions
func parseJunctions(root kicadsexp.Sexp) []Junction {
	juncNodes := sexp.FindAllNodes(root, "junction")
	junctions := make([]Junction, 0, len(juncNodes))

	for _, jn := range juncNodes {
		junctions = append(junctions, Junction{Position: parseAt(jn).Position, UUID: parseUUID(jn)})
	}

	return junctions
}

// parseNoConnects parses no-connect markers
func parseNoConnects(root kicadsexp.Sexp) []NoConnect {
	ncNodes := sexp.FindAllNodes(root, "no_connect")
	ncs := make([]NoConnect, 0, len(ncNodes))

	for _, ncn := range ncNodes {
		ncs = append(ncs, NoConnect{Position: parseAt(ncn).Position, UUID: parseUUID(ncn)})
	}

	return ncs
}

// parseLabels parses local wire labels
func parseLabels(root kicadsexp.Sexp) []Label {
	labelNodes := sexp.FindAllNodes(root, "label")
	labels := make([]Label, 0, len(labelNodes))

	for _, ln := range labelNodes {
		label := Label{UUID: parseUUID(ln)}
		label.Text, _ = sexp.GetQuotedString(ln, 1)
		at := parseAt(ln)
		label.Position, label.Angle = at.Position, at.Angle
		labels = append(labels, label)
	}

	return labels
}

func parseShape(node kicadsexp.Sexp) string {
	if shapeNode, found := sexp.FindNode(node, "shape"); found {
		shape, _ := sexp.GetString(shapeNode, 1)
		return shape
	}
	return ""
}

// parseGlobalLabels parses global labels
func parseGlobalLabels(root kicadsexp.Sexp) []GlobalLabel {
	labelNodes := sexp.FindAllNodes(root, "global_label")
	labels := make([]GlobalLabel, 0, len(labelNodes))

	for _, ln := range labelNodes {
		label := GlobalLabel{Shape: parseShape(ln), UUID: parseUUID(ln)}
		label.Text, _ = sexp.GetQuotedString(ln, 1)
		at := parseAt(ln)
		label.Position, label.Angle = at.Position, at.Angle
		labels = append(labels, label)
	}

	return labels
}

// parseHierLabels parses hierarchical labels
func parseHierLabels(root kicadsexp.Sexp) []HierLabel {
	labelNodes := sexp.FindAllNodes(root, "hierarchical_label")
	labels := make([]HierLabel, 0, len(labelNodes))

	for _, ln := range labelNodes {
		label := HierLabel{Shape: parseShape(ln), UUID: parseUUID(ln)}
		label.Text, _ = sexp.GetQuotedString(ln, 1)
		at := parseAt(ln)
		label.Position, label.Angle = at.Position, at.Angle
		labels = append(labels, label)
	}

	return labels
}

// parseSheets parses hierarchical sheet references
func parseSheets(root kicadsexp.Sexp) []Sheet {
	sheetNodes := sexp.FindAllNodes(root, "sheet")
	sheets := make([]Sheet, 0, len(sheetNodes))

	for _, sn := range sheetNodes {
		sheet := Sheet{
			Position: parseAt(sn).Position,
			UUID:     parseUUID(sn),
		}

		if sizeNode, found := sexp.FindNode(sn, "size"); found {
			w, _ := sexp.GetFloat(sizeNode, 1)
			h, _ := sexp.GetFloat(sizeNode, 2)
			sheet.Size = Size{Width: w, Height: h}
		}

		for _, pn := range sexp.FindAllNodes(sn, "property") {
			prop, err := sexp.GetProperty(pn)
			if err != nil {
				continue
			}
			// KiCad 6.0 spelled the keys with a space
			switch prop.Key {
			case "Sheetname", "Sheet name":
				sheet.Name = prop.Value
			case "Sheetfile", "Sheet file":
				sheet.FileName = prop.Value
			default:
				sheet.Properties = append(sheet.Properties, prop)
			}
		}

		for _, pn := range sexp.FindAllNodes(sn, "pin") {
			pin := SheetPin{
				Position: parseAt(pn).Position,
				UUID:     parseUUID(pn),
			}
			pin.Name, _ = sexp.GetQuotedString(pn, 1)
			pin.Shape, _ = sexp.GetString(pn, 2)
			sheet.Pins = append(sheet.Pins, pin)
		}

		sheets = append(sheets, sheet)
	}

	return sheets
}

// parseSheetInstances parses sheet instance paths
func parseSheetInstances(node kicadsexp.Sexp) []SheetInstance {
	pathNodes := sexp.FindAllNodes(node, "path")
	instances := make([]SheetInstance, 0, len(pathNodes))

	for _, pn := range pathNodes {
		inst := SheetInstance{}
		inst.Path, _ = sexp.GetQuotedString(pn, 1)

		if pageNode, found := sexp.FindNode(pn, "page"); found {
			inst.Page, _ = sexp.GetQuotedString(pageNode, 1)
		}

		instances = append(instances, inst)
	}

	return instances
}
