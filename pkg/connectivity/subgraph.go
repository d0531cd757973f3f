package connectivity

// Subgraph is a connected set of items on one sheet instance. After a build
// it carries the resolved driver and the connection shared by its items.
type Subgraph struct {
	code  int
	sheet *SheetPath

	items   []*Item
	drivers []*Item

	driver     *Item
	driverConn *Connection

	strong   bool
	local    bool
	multiple bool

	dirty      bool
	absorbed   bool
	absorbedBy int

	hierPins  []*Item // sheet pins leading to child sheets
	hierPorts []*Item // hierarchical labels leading to the parent sheet

	noConnect *Item
	busEntry  *Item

	busNeighbors []*busNeighbor
}

// busNeighbor links one member of a bus subgraph to the net subgraphs that
// carry it on the same sheet.
type busNeighbor struct {
	member *Connection
	codes  []int
}

func newSubgraph(code int, sheet *SheetPath) *Subgraph {
	return &Subgraph{code: code, sheet: sheet, dirty: true, local: true}
}

// Code is the subgraph identifier, unique within one build
func (sg *Subgraph) Code() int { return sg.code }

// Sheet is the sheet instance holding the subgraph
func (sg *Subgraph) Sheet() *SheetPath { return sg.sheet }

// Items returns the member items in discovery order
func (sg *Subgraph) Items() []*Item { return sg.items }

// Drivers returns the driver candidates
func (sg *Subgraph) Drivers() []*Item { return sg.drivers }

// Driver returns the chosen driver, or nil
func (sg *Subgraph) Driver() *Item { return sg.driver }

// DriverConnection returns the connection of the chosen driver
func (sg *Subgraph) DriverConnection() *Connection { return sg.driverConn }

// IsStronglyDriven reports whether a label, power pin or port names the subgraph
func (sg *Subgraph) IsStronglyDriven() bool { return sg.strong }

// IsLocal reports whether the driver name is scoped to the sheet instance
func (sg *Subgraph) IsLocal() bool { return sg.local }

// HasMultipleDrivers reports whether more than one strong driver was found
func (sg *Subgraph) HasMultipleDrivers() bool { return sg.multiple }

// IsAbsorbed reports whether the subgraph was merged into another one
func (sg *Subgraph) IsAbsorbed() bool { return sg.absorbed }

// IsDirty reports whether the subgraph still needs work
func (sg *Subgraph) IsDirty() bool { return sg.dirty }

// NoConnect returns the no-connect marker or no-connect pin, if any
func (sg *Subgraph) NoConnect() *Item { return sg.noConnect }

// BusEntry returns the bus-wire entry found in the subgraph, if any
func (sg *Subgraph) BusEntry() *Item { return sg.busEntry }

// HierPins returns the sheet pins in the subgraph
func (sg *Subgraph) HierPins() []*Item { return sg.hierPins }

// HierPorts returns the hierarchical labels in the subgraph
func (sg *Subgraph) HierPorts() []*Item { return sg.hierPorts }

// IsBus reports whether the subgraph resolved to a bus
func (sg *Subgraph) IsBus() bool {
	return sg.driverConn != nil && sg.driverConn.IsBus()
}

// NetName returns the resolved name, or NoNetName without a driver
func (sg *Subgraph) NetName() string {
	if sg.driverConn == nil {
		return NoNetName
	}
	return sg.driverConn.Name()
}

// NetCode returns the net code of the driver connection
func (sg *Subgraph) NetCode() int {
	if sg.driverConn == nil {
		return 0
	}
	return sg.driverConn.NetCode
}

// hasGlobalName reports whether the driver names the net design-wide
func (sg *Subgraph) hasGlobalName() bool {
	if sg.driver == nil {
		return false
	}
	return sg.driver.Type == ItemGlobalLabel || sg.driver.IsPowerConnection()
}

func (sg *Subgraph) addItem(item *Item) {
	sg.items = append(sg.items, item)

	if item.IsDriver() {
		sg.drivers = append(sg.drivers, item)
	}

	switch item.Type {
	case ItemSheetPin:
		sg.hierPins = append(sg.hierPins, item)
	case ItemHierLabel:
		sg.hierPorts = append(sg.hierPorts, item)
	}
}

// absorb takes over every item of other and retires it
func (sg *Subgraph) absorb(other *Subgraph) {
	for _, item := range other.items {
		if conn := item.Connection(sg.sheet); conn != nil {
			conn.subgraph = sg.code
		}
		sg.addItem(item)
	}

	for _, bn := range other.busNeighbors {
		for _, code := range bn.codes {
			sg.addBusNeighbor(bn.member, code)
		}
	}

	if other.noConnect != nil && sg.noConnect == nil {
		sg.noConnect = other.noConnect
	}
	if other.busEntry != nil && sg.busEntry == nil {
		sg.busEntry = other.busEntry
	}

	other.absorbed = true
	other.absorbedBy = sg.code
	other.dirty = false
	other.driver = nil
	other.driverConn = nil
}

func (sg *Subgraph) addBusNeighbor(member *Connection, code int) {
	for _, bn := range sg.busNeighbors {
		if bn.member == member {
			for _, c := range bn.codes {
				if c == code {
					return
				}
			}
			bn.codes = append(bn.codes, code)
			return
		}
	}
	sg.busNeighbors = append(sg.busNeighbors, &busNeighbor{member: member, codes: []int{code}})
}

// updateItemConnections copies the driver identity onto every item. Items
// whose kind fixes them to the other of net or bus keep their own value.
func (sg *Subgraph) updateItemConnections() {
	if sg.driverConn == nil {
		return
	}

	for _, item := range sg.items {
		if item == sg.driver {
			continue
		}
		conn := item.Connection(sg.sheet)
		if conn == nil {
			continue
		}
		if (sg.driverConn.IsBus() && conn.IsNet()) || (sg.driverConn.IsNet() && conn.IsBus()) {
			continue
		}
		conn.Clone(sg.driverConn)
	}
}
