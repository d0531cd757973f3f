package connectivity

// pointIndex groups items by connection point, keeping first-seen order so
// builds are deterministic.
type pointIndex struct {
	order []Point
	items map[Point][]*Item
}

func newPointIndex() *pointIndex {
	return &pointIndex{items: make(map[Point][]*Item)}
}

func (pi *pointIndex) add(p Point, item *Item) {
	list, ok := pi.items[p]
	if !ok {
		pi.order = append(pi.order, p)
	}
	for _, existing := range list {
		if existing == item {
			return
		}
	}
	pi.items[p] = append(list, item)
}

// indexSheet rebuilds the item adjacency of one sheet instance
func (g *Graph) indexSheet(sheet *SheetPath) {
	screen := sheet.screen
	index := newPointIndex()
	var hidden []*Item

	for _, item := range screen.Items {
		if !item.IsConnectable() {
			continue
		}

		item.initConnection(sheet)
		if item.connected != nil {
			delete(item.connected, sheet.key)
		}
		item.connectedBus = nil

		if item.Type == ItemPin && item.Hidden && item.IsPowerConnection() {
			hidden = append(hidden, item)
		}

		for _, p := range item.ConnectionPoints() {
			index.add(p, item)
		}
	}

	for _, p := range index.order {
		linkAt(sheet, p, index.items[p])
	}
	linkDanglingLabels(sheet)

	g.invisiblePins[sheet.key] = hidden
	g.indexed[sheet.key] = screen
}

// linkAt connects the items sharing one point. A junction shorts everything
// at its point; otherwise both items must accept the link.
func linkAt(sheet *SheetPath, at Point, items []*Item) {
	var junction *Item
	for _, it := range items {
		if it.Type == ItemJunction {
			junction = it
			break
		}
	}

	for i, a := range items {
		switch a.Type {
		case ItemBusBusEntry:
			// an entry end landing mid-bus
			if len(items) == 1 {
				if bus := sheet.screen.BusAt(at); bus != nil {
					a.link(sheet, bus)
					bus.link(sheet, a)
				}
			}
		}

		for _, b := range items[i+1:] {
			if a.Type == ItemBusWireEntry && b.staticType() == ConnectionBus {
				a.connectedBus = b
			}
			if b.Type == ItemBusWireEntry && a.staticType() == ConnectionBus {
				b.connectedBus = a
			}

			if junction != nil || (a.propagatesTo(b) && b.propagatesTo(a)) {
				a.link(sheet, b)
				b.link(sheet, a)
			}
		}

		if a.Type == ItemBusWireEntry && a.connectedBus == nil && len(items) == 1 {
			a.connectedBus = sheet.screen.BusAt(at)
		}
	}
}

// linkDanglingLabels attaches labels placed on the middle of a wire or bus
// segment rather than on an endpoint.
func linkDanglingLabels(sheet *SheetPath) {
	screen := sheet.screen

	for _, label := range screen.Items {
		if !label.IsLabel() || hasLineLink(label, sheet) {
			continue
		}

		want := ItemWire
		if label.hasBusText() {
			want = ItemBus
		}

		for _, line := range screen.Items {
			if line.Type != want || !onSegment(label.Start, line.Start, line.End) {
				continue
			}
			label.link(sheet, line)
			line.link(sheet, label)
			break
		}
	}
}

func hasLineLink(item *Item, sheet *SheetPath) bool {
	for _, other := range item.ConnectedItems(sheet) {
		if other.Type == ItemWire || other.Type == ItemBus {
			return true
		}
	}
	return false
}
