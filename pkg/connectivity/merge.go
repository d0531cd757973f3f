package connectivity

// assignCodes gives the connection its net or bus code. Bus members get
// their own net codes, nested buses flattened.
func (g *Graph) assignCodes(conn *Connection) {
	if !conn.IsBus() {
		conn.NetCode = g.codes.NetCode(conn.Name())
		return
	}

	conn.BusCode = g.codes.BusCode(conn.Name())
	for _, m := range conn.LeafMembers() {
		m.NetCode = g.codes.NetCode(m.Name())
	}
}

// buildPowerSubgraphs gives hidden power pins with nothing attached a
// subgraph per sheet instance and name, so they join their global net by
// name. It returns the new subgraphs.
func (g *Graph) buildPowerSubgraphs() []*Subgraph {
	type powerKey struct {
		sheet string
		code  int
	}
	groups := make(map[powerKey]*Subgraph)
	var created []*Subgraph

	for _, sheet := range g.sheets {
		for _, pin := range g.invisiblePins[sheet.key] {
			conn := pin.Connection(sheet)
			if conn == nil || conn.subgraph != 0 {
				continue
			}

			conn.Type = ConnectionNet
			conn.RawName = pin.Name
			conn.SetDriver(pin)
			conn.NetCode = g.codes.NetCode(conn.Name())
			conn.dirty = false

			k := powerKey{sheet: sheet.key, code: conn.NetCode}
			sg, ok := groups[k]
			if !ok {
				sg = g.newSubgraph(sheet)
				sg.addItem(pin)
				sg.resolveDrivers()
				sg.dirty = false
				groups[k] = sg
				created = append(created, sg)
			} else {
				sg.addItem(pin)
			}
			conn.subgraph = sg.code
		}
	}

	for _, sg := range created {
		sg.updateItemConnections()
	}
	return created
}

// mergeSubgraphs assigns codes and merges strongly driven subgraphs on the
// same sheet that share a name. A bus and a net sharing a member name become
// bus neighbors instead.
func (g *Graph) mergeSubgraphs(drivers []*Subgraph) {
	var invalidated []*Subgraph
	queued := make(map[*Subgraph]bool)

	for _, sg := range drivers {
		if sg.absorbed {
			continue
		}

		conn := sg.driverConn
		g.assignCodes(conn)
		sg.updateItemConnections()

		// pending propagation
		sg.dirty = true

		if !sg.strong {
			continue
		}

		var candidates []*Subgraph
		for _, c := range drivers {
			if c == sg || c.absorbed || !c.strong || c.sheet.key != sg.sheet.key {
				continue
			}
			if c.driverConn.IsBus() {
				continue
			}
			candidates = append(candidates, c)
		}
		if len(candidates) == 0 {
			continue
		}

		toCheck := make([]*Connection, 0, len(conn.Members)+1)
		names := make(map[string]bool)
		if conn.IsBus() {
			toCheck = append(toCheck, conn.Members...)
		}
		self := &Connection{}
		self.Clone(conn)
		toCheck = append(toCheck, self)
		for _, name := range secondaryNames(sg) {
			toCheck, names = g.addNameToCheck(toCheck, names, sg, name)
		}

		for i := 0; i < len(toCheck); i++ {
			member := toCheck[i]
			if member.IsBus() {
				// bus of buses: check its members too
				toCheck = append(toCheck, member.Members...)
				continue
			}

			testName := member.LocalName()
			for _, c := range candidates {
				if c.absorbed || !matchesCandidate(c, testName) {
					continue
				}

				if conn.IsBus() && c.driverConn.IsNet() {
					sg.addBusNeighbor(member, c.code)
					continue
				}

				for _, name := range secondaryNames(c) {
					toCheck, names = g.addNameToCheck(toCheck, names, sg, name)
				}

				g.log.Debug("subgraph absorbed",
					"subgraph", sg.code, "name", conn.Name(),
					"absorbed", c.code, "absorbedName", c.driverConn.Name())

				sg.absorb(c)
				if !queued[sg] {
					queued[sg] = true
					invalidated = append(invalidated, sg)
				}
			}
		}
	}

	for _, sg := range invalidated {
		if !sg.resolveDrivers() {
			continue
		}
		g.configureDriver(sg)
		g.assignCodes(sg.driverConn)
		sg.updateItemConnections()
		sg.dirty = true
	}
}

// secondaryNames returns the names offered by items other than the driver
func secondaryNames(sg *Subgraph) []string {
	var names []string
	for _, item := range sg.items {
		if item == sg.driver {
			continue
		}
		if name, ok := secondaryName(item); ok {
			names = append(names, name)
		}
	}
	return names
}

func (g *Graph) addNameToCheck(toCheck []*Connection, names map[string]bool, sg *Subgraph, name string) ([]*Connection, map[string]bool) {
	if names[name] {
		return toCheck, names
	}
	names[name] = true

	c := &Connection{sheet: sg.sheet, SheetName: sg.sheet.human}
	c.ConfigureFromLabel(name, g.BusAlias)
	return append(toCheck, c), names
}

// matchesCandidate reports whether a candidate subgraph answers to name,
// either through its driver or any of its other drivers.
func matchesCandidate(c *Subgraph, name string) bool {
	if c.driverConn.LocalName() == name {
		return true
	}
	if !c.multiple {
		return false
	}
	for _, d := range c.drivers {
		if d == c.driver {
			continue
		}
		if n, ok := secondaryName(d); ok && n == name {
			return true
		}
	}
	return false
}

// promoteGlobals renames subgraphs with design-wide names that answer to a
// non-chosen driver name of a multiply driven subgraph with a design-wide
// name. Power pins count as design-wide here even though they are local
// drivers.
func (g *Graph) promoteGlobals(drivers []*Subgraph) {
	var globals []*Subgraph
	for _, sg := range drivers {
		if !sg.absorbed && sg.hasGlobalName() {
			globals = append(globals, sg)
		}
	}

	for _, sg := range globals {
		if !sg.multiple {
			continue
		}
		conn := sg.driverConn
		for _, d := range sg.drivers {
			if d == sg.driver {
				continue
			}
			secondary := sg.nameForDriver(d)
			if secondary == conn.Name() {
				continue
			}
			for _, c := range globals {
				if c == sg || c.driverConn.Name() != secondary {
					continue
				}
				g.log.Debug("global promoted",
					"subgraph", c.code, "from", secondary, "to", conn.Name())
				c.driverConn.Clone(conn)
				c.updateItemConnections()
			}
		}
	}
}
