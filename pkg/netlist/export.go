package netlist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportJSON exports the netlist to JSON format.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	output := struct {
		Version     string      `json:"version"`
		Source      string      `json:"source"`
		NetCount    int         `json:"net_count"`
		MultiNets   int         `json:"multi_pin_nets"`
		Components  []Component `json:"components"`
		Nets        []*Net      `json:"nets"`
		GeneratedBy string      `json:"generated_by"`
	}{
		Version:     "1.0",
		Source:      nl.Source,
		NetCount:    nl.NetCount(),
		MultiNets:   nl.MultiPinNetCount(),
		Components:  nl.Components,
		Nets:        nl.Nets,
		GeneratedBy: "otn",
	}

	return json.MarshalIndent(output, "", "  ")
}

// ExportKiCad exports the netlist in the KiCad s-expression netlist format
// (version E), limited to components and nets.
func (nl *Netlist) ExportKiCad() string {
	var b strings.Builder

	b.WriteString("(export (version \"E\")\n")
	b.WriteString("  (design\n")
	fmt.Fprintf(&b, "    (source %s)\n", quote(nl.Source))
	b.WriteString("    (tool \"otn\"))\n")

	b.WriteString("  (components")
	for _, c := range nl.Components {
		fmt.Fprintf(&b, "\n    (comp (ref %s)\n      (value %s)\n      (libsource (lib %s) (part %s)))",
			quote(c.Ref), quote(c.Value), quote(libName(c.LibID)), quote(partName(c.LibID)))
	}
	b.WriteString(")\n")

	b.WriteString("  (nets")
	for _, net := range nl.Nets {
		fmt.Fprintf(&b, "\n    (net (code %s) (name %s)", quote(fmt.Sprint(net.Code)), quote(net.Name))
		for _, node := range net.Nodes {
			fmt.Fprintf(&b, "\n      (node (ref %s) (pin %s)", quote(node.Ref), quote(node.Pin))
			if node.PinName != "" {
				fmt.Fprintf(&b, " (pinfunction %s)", quote(node.PinName))
			}
			fmt.Fprintf(&b, " (pintype %s))", quote(node.PinType))
		}
		b.WriteString(")")
	}
	b.WriteString("))\n")

	return b.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func libName(libID string) string {
	if i := strings.IndexByte(libID, ':'); i >= 0 {
		return libID[:i]
	}
	return ""
}

func partName(libID string) string {
	if i := strings.IndexByte(libID, ':'); i >= 0 {
		return libID[i+1:]
	}
	return libID
}
