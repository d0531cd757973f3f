package connectivity

type localKey struct {
	sheet string
	name  string
}

// labelCache indexes strongly driven subgraphs by name. Local names are
// scoped to a sheet instance, global names to the whole design.
type labelCache struct {
	local  map[localKey][]*Subgraph
	global map[string][]*Subgraph
}

func newLabelCache() *labelCache {
	return &labelCache{
		local:  make(map[localKey][]*Subgraph),
		global: make(map[string][]*Subgraph),
	}
}

func (lc *labelCache) add(sg *Subgraph) {
	if sg.driver == nil || sg.driverConn == nil {
		return
	}

	name := sg.driverConn.LocalName()
	switch sg.driver.Type {
	case ItemLabel, ItemHierLabel:
		k := localKey{sheet: sg.sheet.key, name: name}
		lc.local[k] = append(lc.local[k], sg)
	case ItemGlobalLabel, ItemPin:
		lc.global[name] = append(lc.global[name], sg)
	}
}

func (lc *labelCache) hasGlobal(name string) bool {
	return len(lc.global[name]) > 0
}

func (lc *labelCache) hasLocal(sheet *SheetPath, name string) bool {
	return len(lc.local[localKey{sheet: sheet.key, name: name}]) > 0
}

// arbitrateNames caches strong names and renames weakly driven subgraphs
// that would otherwise collide with them. It returns the subgraphs that have
// a driver.
func (g *Graph) arbitrateNames(b *build) []*Subgraph {
	var drivers []*Subgraph
	for _, sg := range g.subgraphs {
		if sg.driver == nil {
			continue
		}
		if sg.strong {
			g.labels.add(sg)
		}
		drivers = append(drivers, sg)
	}

	// every driver subgraph starts pending; dirty marks it
	for _, sg := range drivers {
		sg.dirty = true
	}

	for i, sg := range drivers {
		if !sg.dirty {
			continue
		}
		sg.dirty = false
		if sg.strong {
			continue
		}

		conn := sg.driverConn
		name := conn.Name()
		if g.labels.hasGlobal(name) || g.labels.hasLocal(sg.sheet, conn.LocalName()) {
			conn.SetSuffix(b.nextSuffix())
		}

		for _, other := range drivers[i+1:] {
			if !other.dirty || other.strong || other.sheet.key != sg.sheet.key {
				continue
			}
			if other.driverConn.Name() == name {
				other.driverConn.SetSuffix(b.nextSuffix())
				other.dirty = false
			}
		}
	}

	return drivers
}
