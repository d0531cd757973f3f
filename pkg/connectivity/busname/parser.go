// Package busname parses KiCad bus labels into their member lists.
//
// Two forms are recognized:
//
//	PREFIX[start..end]       vector bus, members PREFIXstart .. PREFIXend
//	NAME{A B[0..3] C}        group bus, members may be nets, vectors or alias names
//
// Anything else is a plain net name.
package busname

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// ErrNotBus is returned by Parse when the text does not describe a bus
var ErrNotBus = errors.New("busname: not a bus label")

// Kind distinguishes vector buses from group buses
type Kind int

const (
	KindVector Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindGroup:
		return "group"
	default:
		return "none"
	}
}

// Bus is the expanded form of a bus label
type Bus struct {
	Kind Kind
	// Name is the vector prefix for vectors and the group name for groups.
	// Anonymous groups have an empty name.
	Name  string
	Start int // vectors only, Start <= End
	End   int
	// Members are listed in label order; vector members run from Start to End.
	Members []Member
}

// Member is one entry of a bus
type Member struct {
	Name  string // net name, alias name, or vector label text
	Index int    // vector index, vectors only
	Bus   *Bus   // non-nil when the member is itself a vector
}

var labelParser = participle.MustBuild[Label](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse expands a bus label. It returns ErrNotBus (possibly wrapped) when
// the text is a plain net name.
func Parse(text string) (*Bus, error) {
	if !strings.ContainsAny(text, "[{") {
		return nil, ErrNotBus
	}

	label, err := labelParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotBus, err)
	}

	if label.Vector != nil {
		return vectorBus(label.Vector), nil
	}

	bus := &Bus{Kind: KindGroup, Name: label.Group.Name}
	for _, m := range label.Group.Members {
		if m.Vector != nil {
			v := vectorBus(m.Vector)
			bus.Members = append(bus.Members, Member{Name: v.String(), Bus: v})
			continue
		}
		bus.Members = append(bus.Members, Member{Name: m.Name})
	}

	return bus, nil
}

// IsBus reports whether text is a vector or group bus label
func IsBus(text string) bool {
	_, err := Parse(text)
	return err == nil
}

func vectorBus(v *Vector) *Bus {
	start, end := v.Start, v.End
	if start > end {
		start, end = end, start
	}

	bus := &Bus{
		Kind:    KindVector,
		Name:    v.Prefix,
		Start:   start,
		End:     end,
		Members: make([]Member, 0, end-start+1),
	}
	for i := start; i <= end; i++ {
		bus.Members = append(bus.Members, Member{
			Name:  fmt.Sprintf("%s%d", v.Prefix, i),
			Index: i,
		})
	}

	return bus
}

// String returns the canonical label text of the bus
func (b *Bus) String() string {
	if b.Kind == KindVector {
		return fmt.Sprintf("%s[%d..%d]", b.Name, b.Start, b.End)
	}

	names := make([]string, 0, len(b.Members))
	for _, m := range b.Members {
		names = append(names, m.Name)
	}
	return b.Name + "{" + strings.Join(names, " ") + "}"
}

// Flatten returns the names of all leaf nets of the bus, descending into
// nested vectors. Group members get the "NAME." prefix of a named group.
func (b *Bus) Flatten() []string {
	var prefix string
	if b.Kind == KindGroup && b.Name != "" {
		prefix = b.Name + "."
	}

	var out []string
	for _, m := range b.Members {
		if m.Bus != nil {
			for _, leaf := range m.Bus.Flatten() {
				out = append(out, prefix+leaf)
			}
			continue
		}
		out = append(out, prefix+m.Name)
	}
	return out
}
