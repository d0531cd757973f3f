package connectivity

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity/busname"
)

// ItemType identifies the kind of a schematic item
type ItemType int

const (
	ItemWire ItemType = iota + 1
	ItemBus
	ItemBusWireEntry
	ItemBusBusEntry
	ItemJunction
	ItemNoConnect
	ItemLabel
	ItemGlobalLabel
	ItemHierLabel
	ItemSheetPin
	ItemPin
	ItemSheet
)

var itemTypeNames = map[ItemType]string{
	ItemWire:         "wire",
	ItemBus:          "bus",
	ItemBusWireEntry: "bus_wire_entry",
	ItemBusBusEntry:  "bus_bus_entry",
	ItemJunction:     "junction",
	ItemNoConnect:    "no_connect",
	ItemLabel:        "label",
	ItemGlobalLabel:  "global_label",
	ItemHierLabel:    "hierarchical_label",
	ItemSheetPin:     "sheet_pin",
	ItemPin:          "pin",
	ItemSheet:        "sheet",
}

func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

// ElectricalType is the electrical type of a component pin
type ElectricalType int

const (
	PinUnspecified ElectricalType = iota
	PinInput
	PinOutput
	PinBidirectional
	PinTriState
	PinPassive
	PinFree
	PinPowerIn
	PinPowerOut
	PinOpenCollector
	PinOpenEmitter
	PinNoConnect
)

var electricalTypeNames = []string{
	PinUnspecified:   "unspecified",
	PinInput:         "input",
	PinOutput:        "output",
	PinBidirectional: "bidirectional",
	PinTriState:      "tri_state",
	PinPassive:       "passive",
	PinFree:          "free",
	PinPowerIn:       "power_in",
	PinPowerOut:      "power_out",
	PinOpenCollector: "open_collector",
	PinOpenEmitter:   "open_emitter",
	PinNoConnect:     "no_connect",
}

func (e ElectricalType) String() string {
	if int(e) < len(electricalTypeNames) {
		return electricalTypeNames[e]
	}
	return "unspecified"
}

// ParseElectricalType maps the schematic file keyword to an ElectricalType.
// Unknown keywords map to PinUnspecified.
func ParseElectricalType(s string) ElectricalType {
	for i, name := range electricalTypeNames {
		if name == s {
			return ElectricalType(i)
		}
	}
	return PinUnspecified
}

// Item is one schematic primitive. Which fields are meaningful depends on Type.
type Item struct {
	Type ItemType
	ID   string

	// Start is the anchor of point items; lines and bus entries run Start to End.
	Start Point
	End   Point

	// Text is the shown text of labels and sheet pins.
	Text string
	// Shape is the port shape of global/hierarchical labels and sheet pins
	// (input, output, bidirectional, tri_state, passive).
	Shape string

	// Sheet symbols
	SheetName string
	Child     *Screen
	Pins      []*Item

	// Parent is the sheet symbol owning a sheet pin.
	Parent *Item

	// Component pins
	Symbol     *Symbol
	Number     string
	Name       string
	Electrical ElectricalType
	Hidden     bool

	dirty        bool
	conns        map[string]*Connection
	connected    map[string][]*Item
	connectedBus *Item
}

func newItem(t ItemType) *Item {
	return &Item{
		Type:      t,
		ID:        newID(),
		dirty:     true,
		conns:     make(map[string]*Connection),
		connected: make(map[string][]*Item),
	}
}

// IsConnectable reports whether the item takes part in connectivity
func (it *Item) IsConnectable() bool {
	return it.Type != ItemSheet
}

// IsDriver reports whether the item can name a subgraph
func (it *Item) IsDriver() bool {
	switch it.Type {
	case ItemLabel, ItemGlobalLabel, ItemHierLabel, ItemSheetPin, ItemPin:
		return true
	}
	return false
}

// IsLabel reports whether the item is a local, global or hierarchical label
func (it *Item) IsLabel() bool {
	return it.Type == ItemLabel || it.Type == ItemGlobalLabel || it.Type == ItemHierLabel
}

// ConnectionPoints returns the points, in sheet space, where other items may
// attach.
func (it *Item) ConnectionPoints() []Point {
	switch it.Type {
	case ItemWire, ItemBus, ItemBusWireEntry, ItemBusBusEntry:
		return []Point{it.Start, it.End}
	case ItemSheet:
		return nil
	default:
		return []Point{it.Start}
	}
}

// IsPowerConnection reports whether a pin is an implicit power net source:
// a power input that is either hidden or belongs to a power symbol.
func (it *Item) IsPowerConnection() bool {
	if it.Type != ItemPin || it.Electrical != PinPowerIn {
		return false
	}
	return it.Hidden || (it.Symbol != nil && it.Symbol.Power)
}

// DefaultNetName is the name a pin gives its net when nothing stronger
// drives it. Power pins use their pin name.
func (it *Item) DefaultNetName(sheet *SheetPath) string {
	if it.Type != ItemPin {
		return ""
	}
	if it.IsPowerConnection() {
		return it.Name
	}

	ref := "?"
	if it.Symbol != nil {
		ref = it.Symbol.Ref(sheet)
	}
	return fmt.Sprintf("Net-(%s-Pad%s)", ref, it.Number)
}

// inNetlist is false for pins of virtual symbols (power flags and the like)
func (it *Item) inNetlist(sheet *SheetPath) bool {
	return it.Symbol == nil || it.Symbol.InNetlist(sheet)
}

// Connection returns the item's connection on the given sheet instance, or
// nil when the item has not been indexed there.
func (it *Item) Connection(sheet *SheetPath) *Connection {
	if sheet == nil || it.conns == nil {
		return nil
	}
	return it.conns[sheet.key]
}

func (it *Item) initConnection(sheet *SheetPath) *Connection {
	if it.conns == nil {
		it.conns = make(map[string]*Connection)
	}

	conn, ok := it.conns[sheet.key]
	if !ok {
		conn = newConnection(it, sheet)
		it.conns[sheet.key] = conn
	}
	conn.reset()
	return conn
}

// ConnectedItems returns the items linked to this one on the given sheet
// instance by the last adjacency pass.
func (it *Item) ConnectedItems(sheet *SheetPath) []*Item {
	if sheet == nil || it.connected == nil {
		return nil
	}
	return it.connected[sheet.key]
}

// ConnectedBus returns the bus a bus entry graphically lands on
func (it *Item) ConnectedBus() *Item {
	return it.connectedBus
}

func (it *Item) link(sheet *SheetPath, other *Item) {
	if it.connected == nil {
		it.connected = make(map[string][]*Item)
	}
	for _, existing := range it.connected[sheet.key] {
		if existing == other {
			return
		}
	}
	it.connected[sheet.key] = append(it.connected[sheet.key], other)
}

// MarkDirty flags the item for the next incremental rebuild
func (it *Item) MarkDirty() {
	it.dirty = true
}

// IsDirty reports whether the item changed since the last rebuild
func (it *Item) IsDirty() bool {
	return it.dirty
}

// staticType is the connection type implied by the item kind alone
func (it *Item) staticType() ConnectionType {
	switch it.Type {
	case ItemWire, ItemBusWireEntry, ItemPin:
		return ConnectionNet
	case ItemBus, ItemBusBusEntry:
		return ConnectionBus
	default:
		return ConnectionNone
	}
}

func (it *Item) hasBusText() bool {
	return busname.IsBus(it.Text)
}

// propagatesTo reports whether a connection may flow from this item to other
// when they share a point without a junction.
func (it *Item) propagatesTo(other *Item) bool {
	switch it.Type {
	case ItemBusWireEntry:
		// the entry's net end never merges with a bus line
		return other.staticType() != ConnectionBus
	case ItemBusBusEntry:
		return other.staticType() != ConnectionNet
	case ItemLabel, ItemGlobalLabel, ItemHierLabel:
		if other.Type == ItemWire && it.hasBusText() {
			return false
		}
	}
	return true
}

// Describe returns a short human readable description of the item
func (it *Item) Describe(sheet *SheetPath) string {
	switch it.Type {
	case ItemLabel:
		return fmt.Sprintf("Label '%s'", it.Text)
	case ItemGlobalLabel:
		return fmt.Sprintf("Global label '%s'", it.Text)
	case ItemHierLabel:
		return fmt.Sprintf("Hierarchical label '%s'", it.Text)
	case ItemSheetPin:
		return fmt.Sprintf("Sheet pin '%s'", it.Text)
	case ItemPin:
		ref := "?"
		if it.Symbol != nil {
			ref = it.Symbol.Ref(sheet)
		}
		if it.Name != "" && it.Name != "~" {
			return fmt.Sprintf("Pin %s [%s] of %s", it.Number, it.Name, ref)
		}
		return fmt.Sprintf("Pin %s of %s", it.Number, ref)
	case ItemSheet:
		return fmt.Sprintf("Sheet '%s'", it.SheetName)
	default:
		return strings.ReplaceAll(capitalize(it.Type.String()), "_", " ")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Symbol is a placed component. Its pins are Items of type ItemPin.
type Symbol struct {
	ID        string
	LibID     string
	Reference string // reference used when no per-instance value exists
	Value     string
	// Power is set for power symbols; their power input pins drive global nets
	// even when visible.
	Power bool
	Pins  []*Item

	refs map[string]string
}

// NewSymbol creates a symbol with the given library id and reference
func NewSymbol(libID, ref string) *Symbol {
	return &Symbol{
		ID:        newID(),
		LibID:     libID,
		Reference: ref,
		refs:      make(map[string]string),
	}
}

// AddPin adds a pin at the given sheet-space position
func (s *Symbol) AddPin(number, name string, etype ElectricalType, at Point, hidden bool) *Item {
	pin := newItem(ItemPin)
	pin.ID = s.ID + ":" + number
	pin.Start = at
	pin.Symbol = s
	pin.Number = number
	pin.Name = name
	pin.Electrical = etype
	pin.Hidden = hidden
	s.Pins = append(s.Pins, pin)
	return pin
}

// SetInstanceReference sets the reference designator used on one sheet
// instance, identified by SheetPath.Key.
func (s *Symbol) SetInstanceReference(pathKey, ref string) {
	if s.refs == nil {
		s.refs = make(map[string]string)
	}
	s.refs[pathKey] = ref
}

// Ref returns the reference designator on the given sheet instance
func (s *Symbol) Ref(sheet *SheetPath) string {
	if sheet != nil {
		if ref, ok := s.refs[sheet.key]; ok {
			return ref
		}
	}
	return s.Reference
}

// InNetlist is false for virtual symbols, whose references start with '#'
func (s *Symbol) InNetlist(sheet *SheetPath) bool {
	return !strings.HasPrefix(s.Ref(sheet), "#")
}
