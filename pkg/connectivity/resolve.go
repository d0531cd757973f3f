package connectivity

import (
	"golang.org/x/sync/errgroup"
)

// resolveAll resolves the drivers of every dirty subgraph. Each subgraph
// only touches its own items, so the work is spread over a bounded pool.
func (g *Graph) resolveAll(subgraphs []*Subgraph) {
	var dirty []*Subgraph
	for _, sg := range subgraphs {
		if sg.dirty {
			dirty = append(dirty, sg)
		}
	}

	workers := g.cfg.workersFor(len(dirty))
	if workers <= 1 {
		for _, sg := range dirty {
			g.resolveSubgraph(sg)
		}
		return
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for _, sg := range dirty {
		eg.Go(func() error {
			g.resolveSubgraph(sg)
			return nil
		})
	}
	_ = eg.Wait()
}

func (g *Graph) resolveSubgraph(sg *Subgraph) {
	if !sg.dirty {
		return
	}

	for _, item := range sg.items {
		switch item.Type {
		case ItemNoConnect:
			sg.noConnect = item
		case ItemBusWireEntry:
			sg.busEntry = item
		case ItemPin:
			if item.Electrical == PinNoConnect {
				sg.noConnect = item
			}
		}
	}

	if sg.resolveDrivers() {
		g.configureDriver(sg)
	}
	sg.dirty = false
}

// configureDriver names the driver connection from the driver item
func (g *Graph) configureDriver(sg *Subgraph) {
	conn := sg.driverConn
	conn.ConfigureFromLabel(sg.nameForDriver(sg.driver), g.BusAlias)
	conn.SetDriver(sg.driver)
	conn.dirty = false
}
