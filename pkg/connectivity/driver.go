package connectivity

import (
	"sort"
)

// Driver priorities, lowest to highest. Anything at or above
// PriorityHierLabel is a strong driver.
const (
	PriorityNone        = -1
	PriorityPin         = 1
	PrioritySheetPin    = 2
	PriorityHierLabel   = 3
	PriorityLabel       = 4
	PriorityPowerPin    = 5
	PriorityGlobalLabel = 6
)

// DriverPriority ranks how strongly an item names its subgraph. Pins of
// symbols that are left out of the netlist do not drive unless they are
// power pins.
func DriverPriority(item *Item, sheet *SheetPath) int {
	switch item.Type {
	case ItemSheetPin:
		return PrioritySheetPin
	case ItemHierLabel:
		return PriorityHierLabel
	case ItemLabel:
		return PriorityLabel
	case ItemGlobalLabel:
		return PriorityGlobalLabel
	case ItemPin:
		if item.IsPowerConnection() {
			return PriorityPowerPin
		}
		if !item.inNetlist(sheet) {
			return PriorityNone
		}
		return PriorityPin
	}
	return PriorityNone
}

type election struct {
	priority   int
	candidates []*Item // top priority, tie-break order
	strong     []*Item
}

// elect ranks the subgraph drivers without changing the subgraph
func (sg *Subgraph) elect() election {
	el := election{priority: PriorityNone}

	for _, item := range sg.drivers {
		p := DriverPriority(item, sg.sheet)
		if p >= PriorityHierLabel {
			el.strong = append(el.strong, item)
		}
		switch {
		case p > el.priority:
			el.priority = p
			el.candidates = append(el.candidates[:0], item)
		case p == el.priority && p != PriorityNone:
			el.candidates = append(el.candidates, item)
		}
	}

	if len(el.candidates) > 1 {
		switch el.priority {
		case PriorityPin, PriorityPowerPin:
			sort.SliceStable(el.candidates, func(i, j int) bool {
				return el.candidates[i].DefaultNetName(sg.sheet) < el.candidates[j].DefaultNetName(sg.sheet)
			})
		case PrioritySheetPin:
			for i, c := range el.candidates {
				if c.Shape == "output" {
					el.candidates[0], el.candidates[i] = el.candidates[i], el.candidates[0]
					break
				}
			}
		}
	}
	return el
}

// resolveDrivers picks the driver and records the strength flags. It reports
// whether a driver was found.
func (sg *Subgraph) resolveDrivers() bool {
	el := sg.elect()

	sg.strong = el.priority >= PriorityHierLabel
	sg.local = el.priority < PriorityGlobalLabel
	sg.multiple = len(el.strong) > 1

	if sg.strong {
		sg.drivers = el.strong
	}

	if len(el.candidates) == 0 {
		sg.driver = nil
		sg.driverConn = nil
		return false
	}

	sg.driver = el.candidates[0]
	sg.driverConn = sg.driver.Connection(sg.sheet)
	return sg.driverConn != nil
}

// nameForDriver is the text an item contributes as a net name
func (sg *Subgraph) nameForDriver(item *Item) string {
	switch item.Type {
	case ItemPin:
		return item.DefaultNetName(sg.sheet)
	case ItemLabel, ItemGlobalLabel, ItemHierLabel, ItemSheetPin:
		return item.Text
	}
	return ""
}

// secondaryName is the name a non-chosen driver would have given the net
func secondaryName(item *Item) (string, bool) {
	switch item.Type {
	case ItemPin:
		if item.IsPowerConnection() {
			return item.Name, true
		}
	case ItemLabel, ItemGlobalLabel, ItemHierLabel, ItemSheetPin:
		return item.Text, true
	}
	return "", false
}

// driverConflict reports two top-ranked drivers that disagree on the name
func (sg *Subgraph) driverConflict() (chosen, other *Item, ok bool) {
	el := sg.elect()
	if len(el.strong) < 2 || len(el.candidates) < 2 {
		return nil, nil, false
	}

	first := sg.nameForDriver(el.candidates[0])
	for _, c := range el.candidates[1:] {
		if sg.nameForDriver(c) != first {
			return el.candidates[0], c, true
		}
	}
	return nil, nil, false
}
