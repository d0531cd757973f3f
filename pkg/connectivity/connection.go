package connectivity

import (
	"fmt"
	"strconv"

	"github.com/jinzhu/copier"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity/busname"
)

// ConnectionType tells nets and buses apart
type ConnectionType int

const (
	ConnectionNone ConnectionType = iota
	ConnectionNet
	ConnectionBus      // vector bus such as DATA[0..7]
	ConnectionBusGroup // group bus such as MEM{ADDR[0..3] RD WR}
)

func (t ConnectionType) String() string {
	switch t {
	case ConnectionNet:
		return "net"
	case ConnectionBus:
		return "bus"
	case ConnectionBusGroup:
		return "bus_group"
	default:
		return "none"
	}
}

// NoNetName is the name of a connection that has no driver
const NoNetName = "<NO NET>"

// maxAliasDepth stops bus aliases that refer to themselves
const maxAliasDepth = 8

// AliasLookup resolves a bus alias by name
type AliasLookup func(name string) *BusAlias

// Connection is the electrical identity of an item on one sheet instance.
// Bus connections carry an ordered member list; members are connections too.
type Connection struct {
	Type      ConnectionType
	RawName   string
	Prefix    string
	Suffix    string
	SheetName string

	NetCode int
	BusCode int

	VectorIndex  int
	VectorPrefix string
	VectorStart  int
	VectorEnd    int

	Members []*Connection

	item     *Item
	sheet    *SheetPath
	driver   *Item
	subgraph int
	dirty    bool
}

func newConnection(item *Item, sheet *SheetPath) *Connection {
	c := &Connection{item: item, sheet: sheet}
	c.reset()
	return c
}

func (c *Connection) reset() {
	item, sheet := c.item, c.sheet
	*c = Connection{item: item, sheet: sheet, dirty: true}
	if sheet != nil {
		c.SheetName = sheet.human
	}
	if item != nil {
		c.Type = item.staticType()
	}
}

// IsNet reports whether the connection is a single net
func (c *Connection) IsNet() bool { return c.Type == ConnectionNet }

// IsBus reports whether the connection is a vector or group bus
func (c *Connection) IsBus() bool {
	return c.Type == ConnectionBus || c.Type == ConnectionBusGroup
}

// Item returns the item owning the connection
func (c *Connection) Item() *Item { return c.item }

// Sheet returns the sheet instance the connection lives on
func (c *Connection) Sheet() *SheetPath { return c.sheet }

// Driver returns the item that named the connection
func (c *Connection) Driver() *Item { return c.driver }

// SubgraphCode returns the code of the subgraph holding the owning item
func (c *Connection) SubgraphCode() int { return c.subgraph }

// LocalName is the name without the sheet path
func (c *Connection) LocalName() string {
	if c.RawName == "" {
		return NoNetName
	}
	return c.Prefix + c.RawName + c.Suffix
}

// Name is the full net name. Names driven by global labels and by pins are
// not qualified with the sheet path.
func (c *Connection) Name() string {
	local := c.LocalName()
	if c.RawName == "" || c.Type == ConnectionNone {
		return local
	}
	if c.driver != nil {
		switch c.driver.Type {
		case ItemGlobalLabel, ItemPin:
			return local
		}
	}
	return c.SheetName + local
}

func (c *Connection) String() string {
	switch {
	case c.IsBus():
		return fmt.Sprintf("%s %s (bus %d, %d members)", c.Type, c.Name(), c.BusCode, len(c.Members))
	default:
		return fmt.Sprintf("%s %s (net %d)", c.Type, c.Name(), c.NetCode)
	}
}

// SetDriver records the driving item on the connection and all its members
func (c *Connection) SetDriver(item *Item) {
	c.driver = item
	for _, m := range c.Members {
		m.SetDriver(item)
	}
}

// SetSuffix sets the suffix used to keep weakly driven names unique
func (c *Connection) SetSuffix(suffix string) {
	c.Suffix = suffix
	for _, m := range c.Members {
		m.SetSuffix(suffix)
	}
}

// Clone copies the identity of other onto c, keeping the owner of c.
func (c *Connection) Clone(other *Connection) {
	if c == other {
		return
	}
	item, sheet, subgraph := c.item, c.sheet, c.subgraph

	// copier merges into existing slices, so start from an empty value.
	// It cannot fail between two *Connection values.
	*c = Connection{}
	_ = copier.CopyWithOption(c, other, copier.Option{DeepCopy: true})

	c.item, c.sheet, c.subgraph = item, sheet, subgraph
	c.dirty = other.dirty
	c.SetDriver(other.driver)
	for _, m := range c.Members {
		m.adopt(item, sheet)
	}
}

func (c *Connection) adopt(item *Item, sheet *SheetPath) {
	c.item, c.sheet = item, sheet
	for _, m := range c.Members {
		m.adopt(item, sheet)
	}
}

func (c *Connection) child() *Connection {
	return &Connection{
		item:      c.item,
		sheet:     c.sheet,
		driver:    c.driver,
		SheetName: c.SheetName,
	}
}

// ConfigureFromLabel sets the connection from label text. Vector and group
// bus syntax yield bus connections with members; a bare alias name yields a
// group of the alias members; anything else is a net.
func (c *Connection) ConfigureFromLabel(label string, aliases AliasLookup) {
	c.configure(label, aliases, 0)
}

func (c *Connection) configure(label string, aliases AliasLookup, depth int) {
	c.Members = nil
	c.VectorIndex = 0
	c.VectorPrefix = ""
	c.VectorStart = 0
	c.VectorEnd = 0

	bus, err := busname.Parse(label)
	if err == nil {
		c.RawName = label
		switch bus.Kind {
		case busname.KindVector:
			c.Type = ConnectionBus
			c.setVector(bus)
		case busname.KindGroup:
			c.Type = ConnectionBusGroup
			prefix := c.Prefix
			if bus.Name != "" {
				prefix += bus.Name + "."
			}
			for _, m := range bus.Members {
				c.addGroupMember(m, prefix, aliases, depth)
			}
		}
		return
	}

	if alias := lookupAlias(aliases, label); alias != nil && depth < maxAliasDepth {
		c.Type = ConnectionBusGroup
		c.RawName = label
		for _, name := range alias.Members {
			member := c.child()
			member.Prefix = c.Prefix
			member.configure(name, aliases, depth+1)
			c.Members = append(c.Members, member)
		}
		return
	}

	c.Type = ConnectionNet
	c.RawName = label
}

func (c *Connection) setVector(bus *busname.Bus) {
	c.VectorPrefix = bus.Name
	c.VectorStart = bus.Start
	c.VectorEnd = bus.End
	for _, m := range bus.Members {
		member := c.child()
		member.Type = ConnectionNet
		member.Prefix = c.Prefix
		member.RawName = m.Name
		member.VectorIndex = m.Index
		c.Members = append(c.Members, member)
	}
}

func (c *Connection) addGroupMember(m busname.Member, prefix string, aliases AliasLookup, depth int) {
	member := c.child()
	member.Prefix = prefix

	switch {
	case m.Bus != nil:
		member.Type = ConnectionBus
		member.RawName = m.Name
		member.setVector(m.Bus)
		c.Members = append(c.Members, member)
	case depth < maxAliasDepth && lookupAlias(aliases, m.Name) != nil:
		// an alias inside a group expands in place
		for _, name := range lookupAlias(aliases, m.Name).Members {
			sub := c.child()
			sub.Prefix = prefix
			sub.configure(name, aliases, depth+1)
			c.Members = append(c.Members, sub)
		}
	default:
		member.Type = ConnectionNet
		member.RawName = m.Name
		c.Members = append(c.Members, member)
	}
}

func lookupAlias(aliases AliasLookup, name string) *BusAlias {
	if aliases == nil {
		return nil
	}
	return aliases(name)
}

// LeafMembers returns the net members of a bus, flattening nested buses
func (c *Connection) LeafMembers() []*Connection {
	var out []*Connection
	for _, m := range c.Members {
		if m.IsBus() {
			out = append(out, m.LeafMembers()...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// hasMemberNamed reports whether a bus carries a member with the given full
// name, looking into nested buses.
func (c *Connection) hasMemberNamed(name string) bool {
	for _, m := range c.Members {
		if m.Name() == name {
			return true
		}
		if m.IsBus() && m.hasMemberNamed(name) {
			return true
		}
	}
	return false
}

func suffixFor(n int) string {
	return "_" + strconv.Itoa(n)
}
