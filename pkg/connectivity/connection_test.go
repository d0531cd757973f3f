package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafNames(c *Connection) []string {
	var names []string
	for _, m := range c.LeafMembers() {
		names = append(names, m.LocalName())
	}
	return names
}

func TestConfigureVector(t *testing.T) {
	c := &Connection{}
	c.ConfigureFromLabel("DATA[0..3]", nil)

	assert.Equal(t, ConnectionBus, c.Type)
	assert.Equal(t, "DATA[0..3]", c.LocalName())
	assert.Equal(t, "DATA", c.VectorPrefix)
	assert.Equal(t, 0, c.VectorStart)
	assert.Equal(t, 3, c.VectorEnd)
	require.Len(t, c.Members, 4)
	for i, m := range c.Members {
		assert.Equal(t, ConnectionNet, m.Type)
		assert.Equal(t, i, m.VectorIndex)
	}
	assert.Equal(t, []string{"DATA0", "DATA1", "DATA2", "DATA3"}, leafNames(c))
}

func TestConfigureGroup(t *testing.T) {
	c := &Connection{}
	c.ConfigureFromLabel("MEM{ADDR[0..1] RD}", nil)

	assert.Equal(t, ConnectionBusGroup, c.Type)
	require.Len(t, c.Members, 2)
	assert.Equal(t, ConnectionBus, c.Members[0].Type)
	assert.Equal(t, "MEM.ADDR[0..1]", c.Members[0].LocalName())
	assert.Equal(t, []string{"MEM.ADDR0", "MEM.ADDR1", "MEM.RD"}, leafNames(c))
}

func TestConfigureAlias(t *testing.T) {
	aliases := map[string]*BusAlias{
		"CTRL": {Name: "CTRL", Members: []string{"RD", "WR", "CS[0..1]"}},
	}
	lookup := func(name string) *BusAlias { return aliases[name] }

	bare := &Connection{}
	bare.ConfigureFromLabel("CTRL", lookup)
	assert.Equal(t, ConnectionBusGroup, bare.Type)
	assert.Equal(t, []string{"RD", "WR", "CS0", "CS1"}, leafNames(bare))

	inGroup := &Connection{}
	inGroup.ConfigureFromLabel("BUS{CTRL DATA}", lookup)
	assert.Equal(t, []string{"BUS.RD", "BUS.WR", "BUS.CS0", "BUS.CS1", "BUS.DATA"}, leafNames(inGroup))

	net := &Connection{}
	net.ConfigureFromLabel("CTRL_N", lookup)
	assert.Equal(t, ConnectionNet, net.Type)
}

func TestSelfReferencingAliasTerminates(t *testing.T) {
	loop := &BusAlias{Name: "LOOP", Members: []string{"LOOP", "X"}}
	c := &Connection{}
	c.ConfigureFromLabel("LOOP", func(name string) *BusAlias {
		if name == "LOOP" {
			return loop
		}
		return nil
	})
	assert.Equal(t, ConnectionBusGroup, c.Type)
	assert.Contains(t, leafNames(c), "X")
}

func TestConnectionNames(t *testing.T) {
	root := NewScreen("root.kicad_sch")
	sheet := NewRootPath(root).Child(NewSheet("power", NewScreen("power.kicad_sch")))

	local := NewLabel("EN", Pt(0, 0))
	c := newConnection(local, sheet)
	c.ConfigureFromLabel("EN", nil)
	c.SetDriver(local)
	assert.Equal(t, "/power/EN", c.Name())
	assert.Equal(t, "EN", c.LocalName())

	c.SetSuffix("_2")
	assert.Equal(t, "/power/EN_2", c.Name())

	global := NewGlobalLabel("EN", "input", Pt(0, 0))
	c.SetDriver(global)
	assert.Equal(t, "EN_2", c.Name())

	empty := newConnection(NewWire(Pt(0, 0), Pt(1, 0)), sheet)
	assert.Equal(t, NoNetName, empty.Name())
}

func TestCloneKeepsOwner(t *testing.T) {
	sheet := NewRootPath(NewScreen("root.kicad_sch"))

	label := NewLabel("A[0..1]", Pt(0, 0))
	src := newConnection(label, sheet)
	src.ConfigureFromLabel("A[0..1]", nil)
	src.SetDriver(label)
	src.BusCode = 7

	bus := NewBus(Pt(0, 0), Pt(10, 0))
	dst := newConnection(bus, sheet)
	dst.subgraph = 3
	dst.ConfigureFromLabel("X[0..4]", nil)
	dst.Clone(src)

	assert.Same(t, bus, dst.Item())
	assert.Equal(t, 3, dst.SubgraphCode())
	assert.Same(t, label, dst.Driver())
	assert.Equal(t, 7, dst.BusCode)
	assert.Equal(t, src.Name(), dst.Name())
	require.Len(t, dst.Members, 2)
	assert.NotSame(t, src.Members[0], dst.Members[0])
	assert.Same(t, bus, dst.Members[0].Item())
	assert.Same(t, label, dst.Members[0].Driver())

	// members are copies
	dst.Members[0].RawName = "changed"
	assert.Equal(t, "A0", src.Members[0].RawName)
}
