package connectivity

import (
	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// BusAlias names a reusable list of bus members
type BusAlias struct {
	Name    string
	Members []string
}

// Screen holds the items of one schematic file. A screen may be shown
// through several sheet instances.
type Screen struct {
	FileName   string
	Items      []*Item // connectable items, sheet pins and symbol pins included
	Sheets     []*Item
	Symbols    []*Symbol
	BusAliases []*BusAlias
	Markers    []*Marker

	dirty bool
}

// NewScreen creates an empty screen
func NewScreen(fileName string) *Screen {
	return &Screen{FileName: fileName, dirty: true}
}

// Add places items on the screen. Adding a sheet symbol also adds the pins it
// carries at that moment.
func (s *Screen) Add(items ...*Item) {
	for _, it := range items {
		it.dirty = true
		if it.Type == ItemSheet {
			s.Sheets = append(s.Sheets, it)
			for _, pin := range it.Pins {
				pin.dirty = true
				s.Items = append(s.Items, pin)
			}
			continue
		}
		s.Items = append(s.Items, it)
	}
	s.dirty = true
}

// AddSymbol places a symbol and its pins on the screen
func (s *Screen) AddSymbol(sym *Symbol) {
	s.Symbols = append(s.Symbols, sym)
	for _, pin := range sym.Pins {
		pin.dirty = true
		s.Items = append(s.Items, pin)
	}
	s.dirty = true
}

// AddBusAlias registers a bus alias defined in this file
func (s *Screen) AddBusAlias(alias *BusAlias) {
	s.BusAliases = append(s.BusAliases, alias)
	s.dirty = true
}

// Remove takes an item off the screen
func (s *Screen) Remove(item *Item) bool {
	for i, it := range s.Items {
		if it == item {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.dirty = true
			return true
		}
	}
	return false
}

// MarkDirty forces the screen to be re-indexed on the next rebuild
func (s *Screen) MarkDirty() {
	s.dirty = true
}

// IsDirty reports whether the screen or any of its items changed
func (s *Screen) IsDirty() bool {
	if s.dirty {
		return true
	}
	for _, it := range s.Items {
		if it.dirty {
			return true
		}
	}
	return false
}

func (s *Screen) clean() {
	s.dirty = false
	for _, it := range s.Items {
		it.dirty = false
	}
}

// BusAt returns the first bus line passing through p
func (s *Screen) BusAt(p Point) *Item {
	for _, it := range s.Items {
		if it.Type == ItemBus && onSegment(p, it.Start, it.End) {
			return it
		}
	}
	return nil
}

// ClearMarkers removes markers of the given kinds, or all markers when no
// kind is given.
func (s *Screen) ClearMarkers(kinds ...ErrorKind) {
	if len(kinds) == 0 {
		s.Markers = nil
		return
	}

	kept := s.Markers[:0]
	for _, m := range s.Markers {
		drop := false
		for _, k := range kinds {
			if m.Kind == k {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, m)
		}
	}
	s.Markers = kept
}

// NewWire creates a wire segment
func NewWire(start, end Point) *Item {
	it := newItem(ItemWire)
	it.Start, it.End = start, end
	return it
}

// NewBus creates a bus line segment
func NewBus(start, end Point) *Item {
	it := newItem(ItemBus)
	it.Start, it.End = start, end
	return it
}

// NewBusWireEntry creates an entry joining a wire at start to a bus at end
func NewBusWireEntry(start, end Point) *Item {
	it := newItem(ItemBusWireEntry)
	it.Start, it.End = start, end
	return it
}

// NewBusBusEntry creates an entry joining two buses
func NewBusBusEntry(start, end Point) *Item {
	it := newItem(ItemBusBusEntry)
	it.Start, it.End = start, end
	return it
}

// NewJunction creates a junction dot
func NewJunction(at Point) *Item {
	it := newItem(ItemJunction)
	it.Start = at
	return it
}

// NewNoConnect creates a no-connect marker
func NewNoConnect(at Point) *Item {
	it := newItem(ItemNoConnect)
	it.Start = at
	return it
}

// NewLabel creates a local label
func NewLabel(text string, at Point) *Item {
	it := newItem(ItemLabel)
	it.Text = text
	it.Start = at
	return it
}

// NewGlobalLabel creates a global label
func NewGlobalLabel(text, shape string, at Point) *Item {
	it := newItem(ItemGlobalLabel)
	it.Text = text
	it.Shape = shape
	it.Start = at
	return it
}

// NewHierLabel creates a hierarchical label
func NewHierLabel(text, shape string, at Point) *Item {
	it := newItem(ItemHierLabel)
	it.Text = text
	it.Shape = shape
	it.Start = at
	return it
}

// NewSheet creates a sheet symbol showing the child screen
func NewSheet(name string, child *Screen) *Item {
	it := newItem(ItemSheet)
	it.SheetName = name
	it.Child = child
	return it
}

// AddPin adds a sheet pin to a sheet symbol. Pins must be added before the
// sheet is placed on a screen.
func (it *Item) AddPin(text, shape string, at Point) *Item {
	pin := newItem(ItemSheetPin)
	pin.Text = text
	pin.Shape = shape
	pin.Start = at
	pin.Parent = it
	it.Pins = append(it.Pins, pin)
	return pin
}

// SheetPath identifies one instance of a screen in the hierarchy
type SheetPath struct {
	key    string
	human  string
	screen *Screen
	sheet  *Item
	parent *SheetPath
}

// NewRootPath returns the path of the root sheet
func NewRootPath(root *Screen) *SheetPath {
	return &SheetPath{key: "/", human: "/", screen: root}
}

// Child returns the path of a sheet symbol placed on this sheet
func (p *SheetPath) Child(sheet *Item) *SheetPath {
	return &SheetPath{
		key:    p.key + sheet.ID + "/",
		human:  p.human + sheet.SheetName + "/",
		screen: sheet.Child,
		sheet:  sheet,
		parent: p,
	}
}

// Key is the stable identifier of the instance, built from sheet ids
func (p *SheetPath) Key() string { return p.key }

// HumanPath is the instance path built from sheet names, e.g. "/power/"
func (p *SheetPath) HumanPath() string { return p.human }

// Screen returns the screen shown by this instance
func (p *SheetPath) Screen() *Screen { return p.screen }

// Sheet returns the sheet symbol of this instance, nil for the root
func (p *SheetPath) Sheet() *Item { return p.sheet }

// Parent returns the enclosing instance, nil for the root
func (p *SheetPath) Parent() *SheetPath { return p.parent }

func (p *SheetPath) String() string { return p.human }

func (p *SheetPath) contains(s *Screen) bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.screen == s {
			return true
		}
	}
	return false
}

// Schematic is a hierarchy of screens rooted at Root
type Schematic struct {
	Root *Screen
}

// NewSchematic wraps a root screen
func NewSchematic(root *Screen) *Schematic {
	return &Schematic{Root: root}
}

// Sheets returns every sheet instance in depth-first order, root first.
// Sheets that would recurse into one of their ancestors are skipped.
func (s *Schematic) Sheets() []*SheetPath {
	if s == nil || s.Root == nil {
		return nil
	}

	var out []*SheetPath
	var walk func(p *SheetPath)
	walk = func(p *SheetPath) {
		out = append(out, p)
		for _, sheet := range p.screen.Sheets {
			if sheet.Child == nil || p.contains(sheet.Child) {
				continue
			}
			walk(p.Child(sheet))
		}
	}
	walk(NewRootPath(s.Root))
	return out
}

// Screens returns each distinct screen in the hierarchy once
func (s *Schematic) Screens() []*Screen {
	seen := make(map[*Screen]bool)
	var out []*Screen
	for _, p := range s.Sheets() {
		if !seen[p.screen] {
			seen[p.screen] = true
			out = append(out, p.screen)
		}
	}
	return out
}
