package connectivity

import (
	"log/slog"
	"time"
)

// Graph resolves the electrical connectivity of a schematic hierarchy.
//
// A Graph is not safe for concurrent use. Recalculate fans driver
// resolution out to worker goroutines internally and returns once they are
// done.
type Graph struct {
	cfg   *Config
	log   *slog.Logger
	codes *CodeTable

	sheets []*SheetPath

	indexed       map[string]*Screen
	invisiblePins map[string][]*Item
	aliases       map[string]*BusAlias

	subgraphs []*Subgraph // every subgraph of the last build, code = index+1
	live      []*Subgraph // subgraphs not absorbed
	drivers   []*Subgraph // live subgraphs with a driver
	netMap    map[int][]*Subgraph

	labels *labelCache
}

// NewGraph creates an empty graph. A nil config uses DefaultConfig.
func NewGraph(cfg *Config) (*Graph, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		cfg:   cfg,
		log:   cfg.Logger,
		codes: NewCodeTable(),
	}
	g.Reset()
	return g, nil
}

// Reset drops every result and code
func (g *Graph) Reset() {
	g.codes.Reset()
	g.sheets = nil
	g.indexed = make(map[string]*Screen)
	g.invisiblePins = make(map[string][]*Item)
	g.aliases = make(map[string]*BusAlias)
	g.subgraphs = nil
	g.live = nil
	g.drivers = nil
	g.netMap = make(map[int][]*Subgraph)
	g.labels = newLabelCache()
}

// Codes returns the net and bus code table
func (g *Graph) Codes() *CodeTable {
	return g.codes
}

// SetCodeTable replaces the code table, typically with one loaded from a
// previous session so nets keep their codes.
func (g *Graph) SetCodeTable(t *CodeTable) {
	if t != nil {
		g.codes = t
	}
}

// Sheets returns the sheet instances of the last build
func (g *Graph) Sheets() []*SheetPath {
	return g.sheets
}

// build holds the state of one Recalculate call
type build struct {
	suffix int
}

func (b *build) nextSuffix() string {
	b.suffix++
	return suffixFor(b.suffix)
}

// Recalculate rebuilds connectivity for the given sheet instances. With
// unconditional set everything is rebuilt and codes are renumbered;
// otherwise only screens with changed items are re-indexed and codes of
// unchanged names are kept.
func (g *Graph) Recalculate(sheets []*SheetPath, unconditional bool) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	start := time.Now()
	if unconditional {
		g.Reset()
	}
	g.sheets = sheets

	// 1. adjacency
	reindexed := 0
	var dirtyScreens []*Screen
	for _, sheet := range sheets {
		if sheet.screen == nil {
			continue
		}
		if g.indexed[sheet.key] == sheet.screen && !sheet.screen.IsDirty() {
			continue
		}
		g.indexSheet(sheet)
		dirtyScreens = append(dirtyScreens, sheet.screen)
		reindexed++
	}
	for _, screen := range dirtyScreens {
		screen.clean()
	}

	g.collectAliases()
	g.resetConnections()

	b := &build{}

	// 2. subgraph assembly
	g.buildSubgraphs()

	// 3. driver resolution
	g.resolveAll(g.subgraphs)

	// 4. name arbitration
	drivers := g.arbitrateNames(b)

	// 5. hidden power pins
	drivers = append(drivers, g.buildPowerSubgraphs()...)

	// 6. merge, promote and propagate
	g.mergeSubgraphs(drivers)
	g.promoteGlobals(drivers)
	g.propagate(drivers)

	// 7. sweep
	g.sweep()

	g.log.Debug("connectivity rebuilt",
		"sheets", len(sheets),
		"reindexed", reindexed,
		"subgraphs", len(g.live),
		"nets", len(g.netMap),
		"elapsed", time.Since(start))

	return nil
}

func (g *Graph) collectAliases() {
	g.aliases = make(map[string]*BusAlias)
	seen := make(map[*Screen]bool)
	for _, sheet := range g.sheets {
		if sheet.screen == nil || seen[sheet.screen] {
			continue
		}
		seen[sheet.screen] = true
		for _, alias := range sheet.screen.BusAliases {
			if _, ok := g.aliases[alias.Name]; !ok {
				g.aliases[alias.Name] = alias
			}
		}
	}
}

// BusAlias returns the alias with the given name from any screen of the
// last build
func (g *Graph) BusAlias(name string) *BusAlias {
	return g.aliases[name]
}

// resetConnections clears identities from the previous build, keeping the
// static net or bus type of each item.
func (g *Graph) resetConnections() {
	for _, sheet := range g.sheets {
		if sheet.screen == nil {
			continue
		}
		for _, item := range sheet.screen.Items {
			if conn := item.Connection(sheet); conn != nil {
				conn.reset()
			}
		}
	}
	g.subgraphs = nil
	g.live = nil
	g.drivers = nil
	g.netMap = make(map[int][]*Subgraph)
	g.labels = newLabelCache()
}

func (g *Graph) newSubgraph(sheet *SheetPath) *Subgraph {
	sg := newSubgraph(len(g.subgraphs)+1, sheet)
	g.subgraphs = append(g.subgraphs, sg)
	return sg
}

func (g *Graph) subgraph(code int) *Subgraph {
	if code < 1 || code > len(g.subgraphs) {
		return nil
	}
	return g.subgraphs[code-1]
}

// buildSubgraphs floods the adjacency of every sheet instance into
// subgraphs. Hidden power pins with nothing attached are left for
// buildPowerSubgraphs.
func (g *Graph) buildSubgraphs() {
	for _, sheet := range g.sheets {
		if sheet.screen == nil {
			continue
		}

		for _, item := range sheet.screen.Items {
			conn := item.Connection(sheet)
			if conn == nil || conn.subgraph != 0 {
				continue
			}
			if item.Type == ItemPin && item.Hidden && item.IsPowerConnection() &&
				len(item.ConnectedItems(sheet)) == 0 {
				continue
			}

			sg := g.newSubgraph(sheet)
			conn.subgraph = sg.code
			sg.addItem(item)

			queue := []*Item{item}
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]

				for _, next := range cur.ConnectedItems(sheet) {
					nc := next.Connection(sheet)
					if nc == nil {
						nc = next.initConnection(sheet)
					}
					if nc.subgraph != 0 {
						continue
					}
					nc.subgraph = sg.code
					sg.addItem(next)
					queue = append(queue, next)
				}
			}
		}
	}
}

// sweep drops absorbed subgraphs and builds the net map
func (g *Graph) sweep() {
	g.live = g.live[:0]
	g.drivers = g.drivers[:0]
	for _, sg := range g.subgraphs {
		if sg.absorbed {
			continue
		}
		g.live = append(g.live, sg)
		if sg.driver == nil {
			continue
		}
		g.drivers = append(g.drivers, sg)
		if !sg.driverConn.IsBus() {
			code := sg.driverConn.NetCode
			g.netMap[code] = append(g.netMap[code], sg)
		}
	}
}
