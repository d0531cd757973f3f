package netlist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceNet/internal/testutil"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
)

func mm(x, y float64) connectivity.Point {
	return connectivity.PointFromMM(x, y)
}

// buildDivider resolves two resistors in series from VCC to GND
func buildDivider(t *testing.T) (*connectivity.Graph, *connectivity.Screen) {
	t.Helper()

	root := connectivity.NewScreen("divider.kicad_sch")

	r1 := connectivity.NewSymbol("Device:R", "R1")
	r1.Value = "10k"
	r1.AddPin("1", "~", connectivity.PinPassive, mm(0, 0), false)
	r1.AddPin("2", "~", connectivity.PinPassive, mm(10, 0), false)

	r2 := connectivity.NewSymbol("Device:R", "R2")
	r2.Value = "4k7"
	r2.AddPin("1", "~", connectivity.PinPassive, mm(20, 0), false)
	r2.AddPin("2", "~", connectivity.PinPassive, mm(30, 0), false)

	gnd := connectivity.NewSymbol("power:GND", "#PWR01")
	gnd.Power = true
	gnd.AddPin("1", "GND", connectivity.PinPowerIn, mm(30, 0), false)

	root.AddSymbol(r1)
	root.AddSymbol(r2)
	root.AddSymbol(gnd)
	root.Add(
		connectivity.NewWire(mm(10, 0), mm(20, 0)),
		connectivity.NewGlobalLabel("VCC", "input", mm(0, 0)),
	)

	g, err := connectivity.NewGraph(&connectivity.Config{Workers: 1, Logger: testutil.NewLogger(t)})
	require.NoError(t, err)
	require.NoError(t, g.Recalculate(connectivity.NewSchematic(root).Sheets(), true))
	return g, root
}

func TestFromGraph(t *testing.T) {
	g, _ := buildDivider(t)

	nl, err := FromGraph(g, "divider.kicad_sch")
	require.NoError(t, err)

	assert.Equal(t, []Component{
		{Ref: "R1", Value: "10k", LibID: "Device:R"},
		{Ref: "R2", Value: "4k7", LibID: "Device:R"},
	}, nl.Components)

	assert.Equal(t, 3, nl.NetCount())
	assert.Equal(t, 1, nl.MultiPinNetCount())

	mid := nl.Net("Net-(R1-Pad2)")
	require.NotNil(t, mid)
	assert.Equal(t, []Node{
		{Ref: "R1", Pin: "2", PinType: "passive"},
		{Ref: "R2", Pin: "1", PinType: "passive"},
	}, mid.Nodes)

	vcc := nl.Net("VCC")
	require.NotNil(t, vcc)
	assert.Equal(t, []Node{{Ref: "R1", Pin: "1", PinType: "passive"}}, vcc.Nodes)

	gnd := nl.Net("GND")
	require.NotNil(t, gnd)
	assert.Equal(t, []Node{{Ref: "R2", Pin: "2", PinType: "passive"}}, gnd.Nodes, "power symbols stay out of the netlist")

	for i := 1; i < len(nl.Nets); i++ {
		assert.Less(t, nl.Nets[i-1].Code, nl.Nets[i].Code)
	}
}

func TestFromGraphNotResolved(t *testing.T) {
	g, err := connectivity.NewGraph(connectivity.DefaultConfig())
	require.NoError(t, err)

	_, err = FromGraph(g, "")
	assert.True(t, errors.Is(err, ErrNotResolved))

	g, root := buildDivider(t)
	root.Add(connectivity.NewWire(mm(0, 10), mm(0, 20)))
	_, err = FromGraph(g, "")
	assert.ErrorIs(t, err, ErrNotResolved)
}

func TestExportJSON(t *testing.T) {
	g, _ := buildDivider(t)
	nl, err := FromGraph(g, "divider.kicad_sch")
	require.NoError(t, err)

	data, err := nl.ExportJSON()
	require.NoError(t, err)

	var out struct {
		NetCount  int    `json:"net_count"`
		MultiNets int    `json:"multi_pin_nets"`
		Nets      []*Net `json:"nets"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 3, out.NetCount)
	assert.Equal(t, 1, out.MultiNets)
	assert.Len(t, out.Nets, 3)
}

func TestExportKiCad(t *testing.T) {
	g, _ := buildDivider(t)
	nl, err := FromGraph(g, `C:\boards\divider.kicad_sch`)
	require.NoError(t, err)

	out := nl.ExportKiCad()
	assert.True(t, strings.HasPrefix(out, `(export (version "E")`))
	assert.Contains(t, out, `(source "C:\\boards\\divider.kicad_sch")`)
	assert.Contains(t, out, `(comp (ref "R2")`)
	assert.Contains(t, out, `(libsource (lib "Device") (part "R"))`)
	assert.Contains(t, out, `(name "VCC")`)
	assert.Contains(t, out, `(node (ref "R1") (pin "1") (pintype "passive"))`)
	assert.NotContains(t, out, "#PWR01")
	assert.Equal(t, strings.Count(out, "("), strings.Count(out, ")"))
}

func TestRefLess(t *testing.T) {
	refs := []struct {
		a, b string
		want bool
	}{
		{"R2", "R10", true},
		{"R10", "R2", false},
		{"C1", "R1", true},
		{"U1", "U1A", true},
		{"2", "10", true},
	}
	for _, tt := range refs {
		if got := refLess(tt.a, tt.b); got != tt.want {
			t.Errorf("refLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	g, root := buildDivider(t)

	nl, err := FromGraph(g, "divider.kicad_sch")
	require.NoError(t, err)

	store, err := OpenStore(ctx, ":memory:", testutil.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.SaveNetlist(ctx, nl)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	settings := connectivity.DefaultERCSettings()
	_, err = g.RunERC(settings, true)
	require.NoError(t, err)
	require.NoError(t, store.SaveMarkers(ctx, runID, root.Markers))

	got, err := store.Netlist(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, nl.Source, got.Source)
	assert.ElementsMatch(t, nl.Components, got.Components)
	require.Len(t, got.Nets, len(nl.Nets))
	for i, net := range nl.Nets {
		assert.Equal(t, net.Code, got.Nets[i].Code)
		assert.Equal(t, net.Name, got.Nets[i].Name)
		assert.Equal(t, net.Nodes, got.Nets[i].Nodes)
	}

	counts, err := store.MarkerCount(ctx, runID)
	require.NoError(t, err)
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, len(root.Markers), total)

	_, err = store.Netlist(ctx, "missing")
	assert.Error(t, err)
}
