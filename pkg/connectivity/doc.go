// Package connectivity resolves electrical connectivity of a hierarchical
// schematic.
//
// Items (wires, buses, bus entries, junctions, no-connect markers, labels,
// sheet pins and symbol pins) are placed on Screens. A Screen may be placed
// several times in the hierarchy; each placement is a SheetPath and is
// resolved independently. For every item and every sheet path the item
// appears on, the Graph maintains one Connection describing the net or bus
// the item belongs to.
//
// # Build phases
//
// Graph.Recalculate runs the following phases in order:
//
//  1. Adjacency: connection points of every item are indexed and co-located
//     items are linked, subject to type compatibility and junctions.
//  2. Assembly: linked items are flood-filled into Subgraphs, one per sheet
//     path and connected region.
//  3. Driver resolution: every subgraph elects the item that names it
//     (global label > power pin > local label > hierarchical label >
//     sheet pin > component pin). This phase runs on a worker pool.
//  4. Arbitration: weakly driven subgraphs whose default names collide get
//     numeric suffixes.
//  5. Codes: resolved names are mapped to small integers, separately for
//     nets and buses.
//  6. Merge: strongly driven subgraphs on the same sheet sharing a name are
//     absorbed into one another; bus members are linked to same-sheet nets.
//     Hidden power input pins with nothing attached join the global net
//     named after the pin.
//  7. Propagation: identities are pushed through sheet pins into child
//     sheets and onto bus member neighbors.
//
// Graph.RunERC then checks the stable graph for authoring mistakes and
// appends Markers to the affected screens.
//
// # Concurrency
//
// Only phase 3 is concurrent. A Graph must not be used from more than one
// goroutine at a time.
package connectivity
