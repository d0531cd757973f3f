package connectivity

import (
	"sort"
)

// Subgraphs returns the live subgraphs of the last build
func (g *Graph) Subgraphs() []*Subgraph {
	return g.live
}

// DriverSubgraphs returns the live subgraphs that have a driver
func (g *Graph) DriverSubgraphs() []*Subgraph {
	return g.drivers
}

// GetSubgraphForItem returns the live subgraph holding an item on a sheet
// instance, following absorption.
func (g *Graph) GetSubgraphForItem(item *Item, sheet *SheetPath) *Subgraph {
	conn := item.Connection(sheet)
	if conn == nil {
		return nil
	}

	sg := g.subgraph(conn.subgraph)
	for sg != nil && sg.absorbed {
		sg = g.subgraph(sg.absorbedBy)
	}
	return sg
}

// FindFirstSubgraphByName returns the first live subgraph resolved to name
func (g *Graph) FindFirstSubgraphByName(name string) *Subgraph {
	for _, sg := range g.drivers {
		if sg.driverConn.Name() == name {
			return sg
		}
	}
	return nil
}

// FindSubgraphsByName returns every live subgraph resolved to name
func (g *Graph) FindSubgraphsByName(name string) []*Subgraph {
	var out []*Subgraph
	for _, sg := range g.drivers {
		if sg.driverConn.Name() == name {
			out = append(out, sg)
		}
	}
	return out
}

// NetMap returns the net subgraphs grouped by net code
func (g *Graph) NetMap() map[int][]*Subgraph {
	out := make(map[int][]*Subgraph, len(g.netMap))
	for code, list := range g.netMap {
		out[code] = append([]*Subgraph(nil), list...)
	}
	return out
}

// NetCodes returns the net codes of the last build in ascending order
func (g *Graph) NetCodes() []int {
	codes := make([]int, 0, len(g.netMap))
	for code := range g.netMap {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// BusesNeedingMigration returns bus subgraphs on which more than one label
// names the bus differently. Older designs allowed this; current bus syntax
// needs a single name per bus.
func (g *Graph) BusesNeedingMigration() []*Subgraph {
	var out []*Subgraph
	for _, sg := range g.live {
		if !sg.IsBus() {
			continue
		}

		var labels []string
		for _, item := range sg.items {
			if item.IsLabel() && item.hasBusText() {
				labels = append(labels, item.Text)
			}
		}
		if len(labels) < 2 {
			continue
		}
		for _, l := range labels[1:] {
			if l != labels[0] {
				out = append(out, sg)
				break
			}
		}
	}
	return out
}

// UsesNewBusFeatures reports whether any subgraph resolved to a bus group
func (g *Graph) UsesNewBusFeatures() bool {
	for _, sg := range g.drivers {
		if sg.driverConn.Type == ConnectionBusGroup {
			return true
		}
	}
	return false
}
