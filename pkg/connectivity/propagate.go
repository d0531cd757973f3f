package connectivity

// propagate pushes resolved names down the hierarchy and across bus
// neighbors. Each driver subgraph is handled once, parents before children.
func (g *Graph) propagate(drivers []*Subgraph) {
	ports := make(map[string][]*Subgraph)
	for _, sg := range drivers {
		if !sg.absorbed && len(sg.hierPorts) > 0 {
			ports[sg.sheet.key] = append(ports[sg.sheet.key], sg)
		}
	}

	for _, sg := range drivers {
		if sg.absorbed || !sg.dirty {
			continue
		}
		g.propagateToNeighbors(sg, ports)
		sg.dirty = false
	}

	for _, sg := range drivers {
		sg.dirty = false
	}
}

// childrenOf returns the subgraphs on child sheets whose hierarchical labels
// meet the sheet pins of parent
func childrenOf(parent *Subgraph, ports map[string][]*Subgraph) []*Subgraph {
	var out []*Subgraph
	for _, pin := range parent.hierPins {
		if pin.Parent == nil {
			continue
		}
		key := parent.sheet.key + pin.Parent.ID + "/"
		for _, c := range ports[key] {
			if c.absorbed || c.driver == nil {
				continue
			}
			for _, port := range c.hierPorts {
				if port.Text == pin.Text {
					out = append(out, c)
					break
				}
			}
		}
	}
	return out
}

func (g *Graph) propagateToNeighbors(sg *Subgraph, ports map[string][]*Subgraph) {
	conn := sg.driverConn
	if conn == nil {
		return
	}

	if conn.IsBus() {
		g.propagateBusNeighbors(sg)
	}
	if len(sg.hierPins) == 0 {
		return
	}

	children := childrenOf(sg, ports)
	seen := make(map[*Subgraph]bool)
	for i := 0; i < len(children); i++ {
		child := children[i]
		if seen[child] {
			continue
		}
		seen[child] = true

		if len(child.hierPins) > 0 {
			children = append(children, childrenOf(child, ports)...)
		}

		child.driverConn.Clone(conn)
		child.updateItemConnections()

		if conn.IsBus() {
			g.propagateBusNeighbors(child)
		}
	}
}

// propagateBusNeighbors renames the net subgraphs attached to bus members.
// Vector members match by index, group members by raw name.
func (g *Graph) propagateBusNeighbors(sg *Subgraph) {
	parent := sg.driverConn

	for _, bn := range sg.busNeighbors {
		member := findBusMember(parent, bn.member)
		if member == nil {
			g.log.Warn("bus member not found",
				"member", bn.member.Name(), "bus", parent.Name(), "sheet", sg.sheet.human)
			continue
		}

		for _, code := range bn.codes {
			neighbor := g.subgraph(code)
			if neighbor == nil || neighbor.absorbed || neighbor.driverConn == nil {
				continue
			}
			nc := neighbor.driverConn
			if nc.Name() == member.Name() {
				continue
			}
			nc.Clone(member)
			neighbor.updateItemConnections()
		}
	}
}

func findBusMember(parent, key *Connection) *Connection {
	if parent.Type == ConnectionBus {
		for _, m := range parent.Members {
			if m.VectorIndex == key.VectorIndex {
				return m
			}
		}
		return nil
	}

	for _, m := range parent.Members {
		if m.Type == ConnectionBus {
			for _, sub := range m.Members {
				if sub.RawName == key.RawName {
					return sub
				}
			}
			continue
		}
		if m.RawName == key.RawName {
			return m
		}
	}
	return nil
}
