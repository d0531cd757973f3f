// Package netlist builds a component/net listing from a resolved connection
// graph and exports it as JSON, as a KiCad netlist, or into SQLite.
package netlist

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
)

// ErrNotResolved is returned when the graph has not been built, or changed
// after its last build.
var ErrNotResolved = errors.New("netlist: graph not resolved")

// Node is one component pin on a net
type Node struct {
	Ref     string `json:"ref"`
	Pin     string `json:"pin"`
	PinName string `json:"pin_name,omitempty"`
	PinType string `json:"pin_type"`
}

// Net is a named set of pins sharing a net code
type Net struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
}

// Component is a placed symbol that appears in the netlist
type Component struct {
	Ref   string `json:"ref"`
	Value string `json:"value"`
	LibID string `json:"lib_id"`
}

// Netlist is the flattened result of a connectivity build
type Netlist struct {
	Source     string      `json:"source"`
	Components []Component `json:"components"`
	Nets       []*Net      `json:"nets"`
}

// FromGraph collects every net of a resolved graph. Nets are ordered by
// code; pins on each net by reference and pin number.
func FromGraph(g *connectivity.Graph, source string) (*Netlist, error) {
	if g == nil || !g.Resolved() {
		return nil, ErrNotResolved
	}

	nl := &Netlist{Source: source}

	seenComp := make(map[string]bool)
	for _, sheet := range g.Sheets() {
		for _, sym := range sheet.Screen().Symbols {
			ref := sym.Ref(sheet)
			if !sym.InNetlist(sheet) || seenComp[ref] {
				continue
			}
			seenComp[ref] = true
			nl.Components = append(nl.Components, Component{Ref: ref, Value: sym.Value, LibID: sym.LibID})
		}
	}
	sort.Slice(nl.Components, func(i, j int) bool {
		return refLess(nl.Components[i].Ref, nl.Components[j].Ref)
	})

	netMap := g.NetMap()
	for _, code := range g.NetCodes() {
		subgraphs := netMap[code]
		if len(subgraphs) == 0 {
			continue
		}

		net := &Net{Code: code, Name: netName(subgraphs)}
		seen := make(map[string]bool)
		for _, sg := range subgraphs {
			for _, item := range sg.Items() {
				if item.Type != connectivity.ItemPin || item.Symbol == nil {
					continue
				}
				sheet := sg.Sheet()
				if !item.Symbol.InNetlist(sheet) {
					continue
				}
				node := Node{
					Ref:     item.Symbol.Ref(sheet),
					Pin:     item.Number,
					PinName: item.Name,
					PinType: item.Electrical.String(),
				}
				if node.PinName == "~" {
					node.PinName = ""
				}
				key := node.Ref + "\x00" + node.Pin
				if seen[key] {
					continue
				}
				seen[key] = true
				net.Nodes = append(net.Nodes, node)
			}
		}
		if len(net.Nodes) == 0 {
			continue
		}

		sort.Slice(net.Nodes, func(i, j int) bool {
			a, b := net.Nodes[i], net.Nodes[j]
			if a.Ref != b.Ref {
				return refLess(a.Ref, b.Ref)
			}
			return refLess(a.Pin, b.Pin)
		})
		nl.Nets = append(nl.Nets, net)
	}

	return nl, nil
}

// netName picks the name of the most strongly driven subgraph of a net
func netName(subgraphs []*connectivity.Subgraph) string {
	best := subgraphs[0]
	bestPriority := priority(best)
	for _, sg := range subgraphs[1:] {
		if p := priority(sg); p > bestPriority {
			best, bestPriority = sg, p
		}
	}
	return best.NetName()
}

func priority(sg *connectivity.Subgraph) int {
	if sg.Driver() == nil {
		return connectivity.PriorityNone
	}
	return connectivity.DriverPriority(sg.Driver(), sg.Sheet())
}

// NetCount returns the number of nets
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// MultiPinNetCount returns the number of nets with more than one pin
func (nl *Netlist) MultiPinNetCount() int {
	count := 0
	for _, net := range nl.Nets {
		if len(net.Nodes) > 1 {
			count++
		}
	}
	return count
}

// Net returns the net with the given name
func (nl *Netlist) Net(name string) *Net {
	for _, net := range nl.Nets {
		if net.Name == name {
			return net
		}
	}
	return nil
}

// refLess orders designators naturally, so R2 sorts before R10
func refLess(a, b string) bool {
	pa, na := splitDesignator(a)
	pb, nb := splitDesignator(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitDesignator(s string) (string, int) {
	i := strings.LastIndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if i == len(s)-1 {
		return s, -1
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s, -1
	}
	return s[:i+1], n
}
