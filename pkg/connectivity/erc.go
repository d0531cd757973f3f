package connectivity

import (
	"fmt"
	"sort"
)

type ercRun struct {
	g        *Graph
	settings ERCSettings
	markers  bool
	count    int
}

// RunERC checks every live subgraph for connectivity problems and returns
// the number of violations found. Checks set to SeverityIgnore neither run
// nor count. With createMarkers set, earlier ERC markers are replaced by
// markers for the new violations.
func (g *Graph) RunERC(settings ERCSettings, createMarkers bool) (int, error) {
	if g.isDirty() {
		return 0, ErrGraphDirty
	}

	if createMarkers {
		seen := make(map[*Screen]bool)
		for _, sheet := range g.sheets {
			if sheet.screen != nil && !seen[sheet.screen] {
				seen[sheet.screen] = true
				sheet.screen.ClearMarkers(ErrorKinds()...)
			}
		}
	}

	e := &ercRun{g: g, settings: settings, markers: createMarkers}

	type occurrence struct {
		item *Item
		sg   *Subgraph
	}
	globals := make(map[string][]occurrence)

	for _, sg := range g.live {
		if settings.CheckUniqueGlobalLabels {
			for _, item := range sg.items {
				if item.Type == ItemGlobalLabel {
					globals[item.Text] = append(globals[item.Text], occurrence{item, sg})
				}
			}
		}

		if settings.CheckDriverConflicts {
			e.checkDriverConflict(sg)
		}
		if settings.CheckBusToNetConflicts {
			e.checkBusToNet(sg)
		}
		if settings.CheckBusEntryConflicts {
			e.checkBusEntry(sg)
		}
		if settings.CheckBusToBusConflicts {
			e.checkBusToBus(sg)
		}
		e.checkNoConnects(sg)
		e.checkLabels(sg)
	}

	if settings.CheckUniqueGlobalLabels {
		names := make([]string, 0, len(globals))
		for name := range globals {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			occ := globals[name]
			if len(occ) != 1 {
				continue
			}
			e.report(ErcIsolatedGlobalLabel, occ[0].sg,
				fmt.Sprintf("Global label '%s' is not connected to any other global label", name),
				occ[0].item.Start, nil, occ[0].item)
		}
	}

	g.log.Info("connectivity: erc finished", "violations", e.count, "subgraphs", len(g.live))
	return e.count, nil
}

// Resolved reports whether the graph has been built and nothing changed
// since. Results read from an unresolved graph are stale.
func (g *Graph) Resolved() bool { return !g.isDirty() }

func (g *Graph) isDirty() bool {
	if len(g.sheets) == 0 {
		return true
	}
	for _, sg := range g.live {
		if sg.dirty {
			return true
		}
	}
	for _, sheet := range g.sheets {
		if sheet.screen != nil && sheet.screen.IsDirty() {
			return true
		}
	}
	return false
}

func (e *ercRun) report(kind ErrorKind, sg *Subgraph, msg string, pos Point, aux *Point, items ...*Item) bool {
	sev := e.settings.Severity(kind)
	if sev == SeverityIgnore {
		return false
	}
	e.count++

	if e.markers && sg.sheet.screen != nil {
		m := &Marker{
			ID:       newID(),
			Kind:     kind,
			Severity: sev,
			Message:  msg,
			Pos:      pos,
			Items:    items,
			Sheet:    sg.sheet,
		}
		if aux != nil {
			m.AuxPos = *aux
			m.HasAux = true
		}
		sg.sheet.screen.Markers = append(sg.sheet.screen.Markers, m)
	}
	return true
}

// checkDriverConflict flags top-ranked drivers that disagree on the name
func (e *ercRun) checkDriverConflict(sg *Subgraph) {
	chosen, other, ok := sg.driverConflict()
	if !ok {
		return
	}

	msg := fmt.Sprintf("%s and %s are both attached to the same items; %s will be used in the netlist",
		chosen.Describe(sg.sheet), other.Describe(sg.sheet), sg.nameForDriver(chosen))
	aux := other.Start
	e.report(ErcDriverConflict, sg, msg, chosen.Start, &aux, chosen, other)
}

// checkBusToNet flags bus and net items drawn into one subgraph
func (e *ercRun) checkBusToNet(sg *Subgraph) {
	var netItem, busItem *Item

	for _, item := range sg.items {
		switch item.Type {
		case ItemWire:
			if netItem == nil {
				netItem = item
			}
		case ItemBus:
			if busItem == nil {
				busItem = item
			}
		case ItemLabel, ItemGlobalLabel, ItemHierLabel, ItemSheetPin:
			if item.hasBusText() {
				if busItem == nil {
					busItem = item
				}
			} else if netItem == nil {
				netItem = item
			}
		}
	}

	if netItem == nil || busItem == nil {
		return
	}

	msg := fmt.Sprintf("%s and %s are graphically connected but cannot electrically connect because one is a bus and the other is a net",
		netItem.Describe(sg.sheet), busItem.Describe(sg.sheet))
	aux := busItem.Start
	e.report(ErcBusToNetConflict, sg, msg, netItem.Start, &aux, netItem, busItem)
}

// checkBusEntry flags a bus entry whose net is not a member of the bus it
// lands on
func (e *ercRun) checkBusEntry(sg *Subgraph) {
	var entry *Item
	for _, item := range sg.items {
		if item.Type == ItemBusWireEntry {
			entry = item
			break
		}
	}
	if entry == nil || entry.connectedBus == nil {
		return
	}

	busConn := entry.connectedBus.Connection(sg.sheet)
	entryConn := entry.Connection(sg.sheet)
	if busConn == nil || entryConn == nil || len(busConn.Members) == 0 {
		return
	}

	if busConn.hasMemberNamed(entryConn.Name()) {
		return
	}

	msg := fmt.Sprintf("%s (%s) is connected to %s (%s) but is not a member of the bus",
		entry.Describe(sg.sheet), entryConn.Name(),
		entry.connectedBus.Describe(sg.sheet), busConn.Name())
	e.report(ErcBusEntryConflict, sg, msg, entry.Start, nil, entry, entry.connectedBus)
}

// checkBusToBus flags a bus label and a bus port on one subgraph that share
// no member
func (e *ercRun) checkBusToBus(sg *Subgraph) {
	var label, port *Item

	for _, item := range sg.items {
		switch item.Type {
		case ItemLabel, ItemGlobalLabel:
			if label == nil && item.hasBusText() {
				label = item
			}
		case ItemSheetPin, ItemHierLabel:
			if port == nil && item.hasBusText() {
				port = item
			}
		}
	}

	if label == nil || port == nil {
		return
	}

	labelMembers := e.memberNames(sg, label.Text)
	for name := range e.memberNames(sg, port.Text) {
		if labelMembers[name] {
			return
		}
	}

	msg := fmt.Sprintf("%s and %s are graphically connected but do not share any bus members",
		label.Describe(sg.sheet), port.Describe(sg.sheet))
	aux := port.Start
	e.report(ErcBusToBusConflict, sg, msg, label.Start, &aux, label, port)
}

func (e *ercRun) memberNames(sg *Subgraph, text string) map[string]bool {
	c := &Connection{sheet: sg.sheet}
	c.ConfigureFromLabel(text, e.g.BusAlias)

	names := make(map[string]bool)
	for _, m := range c.LeafMembers() {
		names[m.LocalName()] = true
	}
	return names
}

// checkNoConnects flags no-connect markers that are wired up or dangling,
// and pins left floating without a marker
func (e *ercRun) checkNoConnects(sg *Subgraph) {
	if sg.noConnect != nil {
		var pin *Item
		var others []*Item

		for _, item := range sg.items {
			switch item.Type {
			case ItemNoConnect, ItemJunction:
			case ItemPin:
				if pin == nil {
					pin = item
				} else {
					others = append(others, item)
				}
			default:
				if item.IsConnectable() {
					others = append(others, item)
				}
			}
		}

		if len(others) > 0 {
			var msg string
			if pin != nil {
				msg = fmt.Sprintf("%s has a no-connect marker but is connected", pin.Describe(sg.sheet))
			} else {
				msg = fmt.Sprintf("No-connect marker is connected to %s", others[0].Describe(sg.sheet))
			}
			e.report(ErcNoConnectConnected, sg, msg, sg.noConnect.Start, nil, append([]*Item{sg.noConnect}, others...)...)
			return
		}

		if pin == nil {
			e.report(ErcNoConnectDangling, sg, "No-connect marker is not attached to a pin", sg.noConnect.Start, nil, sg.noConnect)
		}
		return
	}

	var pin *Item
	hasOther := false
	for _, item := range sg.items {
		switch item.Type {
		case ItemPin:
			if pin == nil {
				pin = item
			} else {
				hasOther = true
			}
		case ItemJunction:
		default:
			if item.IsConnectable() {
				hasOther = true
			}
		}
	}

	if pin == nil || hasOther || pin.Electrical == PinNoConnect {
		return
	}

	// a hidden power pin joins its net by name
	if pin.Hidden && pin.IsPowerConnection() {
		if conn := pin.Connection(sg.sheet); conn != nil {
			name := conn.LocalName()
			if e.g.labels.hasGlobal(name) || e.g.labels.hasLocal(sg.sheet, name) {
				return
			}
		}
	}

	e.report(ErcPinNotConnected, sg, fmt.Sprintf("%s is not connected", pin.Describe(sg.sheet)), pin.Start, nil, pin)
}

// checkLabels flags labels with nothing else attached
func (e *ercRun) checkLabels(sg *Subgraph) {
	var label *Item
	hasOther := false

	for _, item := range sg.items {
		switch {
		case item.IsLabel():
			if label == nil {
				label = item
			}
		case item.IsConnectable():
			hasOther = true
		}
	}

	if label == nil || hasOther {
		return
	}

	e.report(ErcLabelNotConnected, sg, fmt.Sprintf("%s is not connected to anything", label.Describe(sg.sheet)), label.Start, nil, label)
}
