package connectivity

import (
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// CodeTable hands out stable integer codes for net and bus names. Nets and
// buses use separate counters, both starting at 1. A table survives
// incremental rebuilds so unchanged nets keep their codes.
//
// A table is safe for concurrent use. Graph.SetCodeTable lets several graphs
// share one, and callers may Save it while a rebuild is running.
type CodeTable struct {
	mu      sync.Mutex
	nets    map[string]int
	buses   map[string]int
	lastNet int
	lastBus int
}

// NewCodeTable creates an empty table
func NewCodeTable() *CodeTable {
	t := &CodeTable{}
	t.Reset()
	return t
}

// Reset forgets every code
func (t *CodeTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nets = make(map[string]int)
	t.buses = make(map[string]int)
	t.lastNet = 0
	t.lastBus = 0
}

// NetCode returns the code for a net name, allocating one if needed
func (t *CodeTable) NetCode(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if code, ok := t.nets[name]; ok {
		return code
	}
	t.lastNet++
	t.nets[name] = t.lastNet
	return t.lastNet
}

// BusCode returns the code for a bus name, allocating one if needed
func (t *CodeTable) BusCode(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if code, ok := t.buses[name]; ok {
		return code
	}
	t.lastBus++
	t.buses[name] = t.lastBus
	return t.lastBus
}

// LookupNet returns the code of a known net name
func (t *CodeTable) LookupNet(name string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	code, ok := t.nets[name]
	return code, ok
}

// Len returns the number of net and bus codes handed out
func (t *CodeTable) Len() (nets, buses int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.nets), len(t.buses)
}

type codeSnapshot struct {
	Nets    map[string]int `cbor:"1,keyasint"`
	Buses   map[string]int `cbor:"2,keyasint"`
	LastNet int            `cbor:"3,keyasint"`
	LastBus int            `cbor:"4,keyasint"`
}

var codeEncMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Save writes the table as canonical CBOR, so equal tables encode to equal
// bytes.
func (t *CodeTable) Save(w io.Writer) error {
	t.mu.Lock()
	snap := codeSnapshot{
		Nets:    t.nets,
		Buses:   t.buses,
		LastNet: t.lastNet,
		LastBus: t.lastBus,
	}
	data, err := codeEncMode.Marshal(snap)
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("connectivity: encode code table: %w", err)
	}

	_, err = w.Write(data)
	return err
}

// LoadCodeTable reads a table written by Save
func LoadCodeTable(r io.Reader) (*CodeTable, error) {
	var snap codeSnapshot
	if err := cbor.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("connectivity: decode code table: %w", err)
	}

	t := NewCodeTable()
	for name, code := range snap.Nets {
		t.nets[name] = code
		t.lastNet = max(t.lastNet, code)
	}
	for name, code := range snap.Buses {
		t.buses[name] = code
		t.lastBus = max(t.lastBus, code)
	}
	t.lastNet = max(t.lastNet, snap.LastNet)
	t.lastBus = max(t.lastBus, snap.LastBus)
	return t, nil
}
