// Package design turns parsed KiCad schematic files into the screens and
// items of a connectivity.Schematic.
package design

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/schematic"
)

// Config controls loading
type Config struct {
	Logger *slog.Logger
}

// Loader converts a schematic project into connectivity screens
type Loader struct {
	log *slog.Logger

	project *schematic.Project
	screens map[string]*connectivity.Screen
	// KiCad 6 keeps references of every sheet instance in the root file,
	// keyed by symbol uuid.
	legacyRefs map[schematic.UUID][]instanceRef
}

type instanceRef struct {
	key string
	ref string
}

// NewLoader creates a loader
func NewLoader(cfg Config) *Loader {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{log: log}
}

// LoadFile parses a root schematic file and its sheets
func LoadFile(filename string, cfg Config) (*connectivity.Schematic, error) {
	project, err := schematic.LoadProject(filename)
	if err != nil {
		return nil, err
	}
	return NewLoader(cfg).Load(project)
}

// Load builds one screen per file of the project. Sheets showing the same
// file share its screen.
func (l *Loader) Load(project *schematic.Project) (*connectivity.Schematic, error) {
	if project == nil || project.Root == nil {
		return nil, fmt.Errorf("design: empty project")
	}

	l.project = project
	l.screens = make(map[string]*connectivity.Screen)
	l.legacyRefs = make(map[schematic.UUID][]instanceRef)

	for _, inst := range project.Root.SymbolInstances {
		dir, sym := splitLegacyPath(inst.Path)
		l.legacyRefs[sym] = append(l.legacyRefs[sym], instanceRef{
			key: pathKey(dir, project.Root.UUID),
			ref: inst.Reference,
		})
	}

	root, err := l.screen(project.RootFile)
	if err != nil {
		return nil, err
	}

	return connectivity.NewSchematic(root), nil
}

func (l *Loader) screen(filename string) (*connectivity.Screen, error) {
	if screen, ok := l.screens[filename]; ok {
		return screen, nil
	}

	sch := l.project.File(filename)
	if sch == nil {
		return nil, fmt.Errorf("design: %s was not parsed", filename)
	}

	screen := connectivity.NewScreen(filepath.Base(filename))
	l.screens[filename] = screen

	for _, alias := range sch.BusAliases {
		screen.AddBusAlias(&connectivity.BusAlias{Name: alias.Name, Members: alias.Members})
	}

	for _, w := range sch.Wires {
		for i := 1; i < len(w.Points); i++ {
			screen.Add(withID(connectivity.NewWire(point(w.Points[i-1]), point(w.Points[i])), w.UUID, i))
		}
	}

	for _, b := range sch.Buses {
		for i := 1; i < len(b.Points); i++ {
			screen.Add(withID(connectivity.NewBus(point(b.Points[i-1]), point(b.Points[i])), b.UUID, i))
		}
	}

	for _, e := range sch.BusEntries {
		screen.Add(withID(connectivity.NewBusWireEntry(point(e.Position), point(e.End())), e.UUID, 0))
	}

	for _, j := range sch.Junctions {
		screen.Add(withID(connectivity.NewJunction(point(j.Position)), j.UUID, 0))
	}

	for _, nc := range sch.NoConnects {
		screen.Add(withID(connectivity.NewNoConnect(point(nc.Position)), nc.UUID, 0))
	}

	for _, lbl := range sch.Labels {
		screen.Add(withID(connectivity.NewLabel(lbl.Text, point(lbl.Position)), lbl.UUID, 0))
	}

	for _, lbl := range sch.GlobalLabels {
		screen.Add(withID(connectivity.NewGlobalLabel(lbl.Text, lbl.Shape, point(lbl.Position)), lbl.UUID, 0))
	}

	for _, lbl := range sch.HierLabels {
		screen.Add(withID(connectivity.NewHierLabel(lbl.Text, lbl.Shape, point(lbl.Position)), lbl.UUID, 0))
	}

	for i := range sch.Symbols {
		if sym := l.symbol(sch, &sch.Symbols[i]); sym != nil {
			screen.AddSymbol(sym)
		}
	}

	for _, sheet := range sch.Sheets {
		child, err := l.screen(l.project.SheetFile(filename, sheet))
		if err != nil {
			return nil, err
		}

		item := withID(connectivity.NewSheet(sheet.Name, child), sheet.UUID, 0)
		for _, pin := range sheet.Pins {
			withID(item.AddPin(pin.Name, pin.Shape, point(pin.Position)), pin.UUID, 0)
		}
		screen.Add(item)
	}

	l.log.Debug("design: loaded screen",
		"file", filename,
		"items", len(screen.Items),
		"symbols", len(screen.Symbols),
		"sheets", len(screen.Sheets))

	return screen, nil
}

func (l *Loader) symbol(sch *schematic.Schematic, s *schematic.Symbol) *connectivity.Symbol {
	lib := sch.GetLibSymbol(s.LibKey())
	if lib == nil {
		l.log.Warn("design: symbol without library definition",
			"lib_id", s.LibID, "reference", s.Reference())
		return nil
	}

	sym := connectivity.NewSymbol(s.LibID, s.Reference())
	if s.UUID != "" {
		sym.ID = string(s.UUID)
	}
	sym.Value = s.Value()
	sym.Power = lib.Power

	for _, inst := range s.Instances {
		if inst.Reference != "" {
			sym.SetInstanceReference(pathKey(inst.Path, l.project.Root.UUID), inst.Reference)
		}
	}
	for _, inst := range l.legacyRefs[s.UUID] {
		sym.SetInstanceReference(inst.key, inst.ref)
	}

	origin := point(s.Position)
	for _, pin := range lib.UnitPins(s.Unit, s.BodyStyle) {
		at := origin.Add(pinOffset(pin.Position, s.Angle, s.Mirror))
		sym.AddPin(pin.Number, pin.Name, connectivity.ParseElectricalType(pin.Type), at, pin.Hide)
	}

	return sym
}

// pinOffset places a library pin relative to the symbol origin. Library
// space has Y up; the sheet has Y down. Rotation is counter-clockwise as
// seen on the sheet and is applied before mirroring.
func pinOffset(p schematic.Position, angle schematic.Angle, mirror string) connectivity.Point {
	off := connectivity.PointFromMM(p.X, -p.Y)

	switch normalize(angle) {
	case 90:
		off = connectivity.Pt(off.Y, -off.X)
	case 180:
		off = connectivity.Pt(-off.X, -off.Y)
	case 270:
		off = connectivity.Pt(-off.Y, off.X)
	}

	switch mirror {
	case "x":
		off.Y = -off.Y
	case "y":
		off.X = -off.X
	}

	return off
}

func normalize(a schematic.Angle) int {
	deg := int(a) % 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

func point(p schematic.Position) connectivity.Point {
	return connectivity.PointFromMM(p.X, p.Y)
}

// withID keeps the file uuid as the item id. Multi-point lines get one item
// per segment, so segments after the first carry a suffix.
func withID(it *connectivity.Item, id schematic.UUID, segment int) *connectivity.Item {
	if id == "" {
		return it
	}
	it.ID = string(id)
	if segment > 1 {
		it.ID = fmt.Sprintf("%s#%d", id, segment)
	}
	return it
}

// pathKey converts a KiCad instance path ("/<root uuid>/<sheet uuid>...")
// into a connectivity.SheetPath key ("/<sheet uuid>/.../"). The root uuid
// prefix is optional.
func pathKey(path string, root schematic.UUID) string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 && root != "" && parts[0] == string(root) {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/") + "/"
}

// splitLegacyPath splits "/<sheet uuids>/<symbol uuid>" as found in KiCad 6
// symbol_instances.
func splitLegacyPath(path string) (string, schematic.UUID) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "/", schematic.UUID(path)
	}
	return path[:i], schematic.UUID(path[i+1:])
}
