package connectivity

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mm(x, y float64) Point {
	return PointFromMM(x, y)
}

// recalc builds the whole hierarchy under root with a parallel config
func recalc(t *testing.T, root *Screen) (*Graph, []*SheetPath) {
	t.Helper()

	g, err := NewGraph(&Config{Workers: 4, ParallelThreshold: 1})
	require.NoError(t, err)

	sheets := NewSchematic(root).Sheets()
	require.NoError(t, g.Recalculate(sheets, true))
	return g, sheets
}

func resistor(ref string, pin1, pin2 Point) *Symbol {
	s := NewSymbol("Device:R", ref)
	s.AddPin("1", "~", PinPassive, pin1, false)
	s.AddPin("2", "~", PinPassive, pin2, false)
	return s
}

func testPoint(ref string, at Point) *Symbol {
	s := NewSymbol("Connector:TestPoint", ref)
	s.AddPin("1", "1", PinPassive, at, false)
	return s
}

func netOf(t *testing.T, g *Graph, item *Item, sheet *SheetPath) *Subgraph {
	t.Helper()

	sg := g.GetSubgraphForItem(item, sheet)
	require.NotNil(t, sg, "no subgraph for %s", item.Describe(sheet))
	return sg
}

func markerKinds(s *Screen) []ErrorKind {
	var kinds []ErrorKind
	for _, m := range s.Markers {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}
