package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/schematic"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/netlist"
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "KiCad schematic file operations",
	Long:  `Commands for working with KiCad schematic files (.kicad_sch)`,
}

var schInfoCmd = &cobra.Command{
	Use:   "info <schematic_file> [component]",
	Short: "Show schematic information",
	Long: `Display information about a KiCad schematic file.

Without component argument: shows schematic summary
With component argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSchInfo,
}

var schNetsCmd = &cobra.Command{
	Use:   "nets <schematic_file>",
	Short: "List the nets of a schematic hierarchy",
	Long: `Resolve the connectivity of a schematic and all its sheets, then list
every net with the component pins on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchNets,
}

var netsAll bool

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schInfoCmd)
	schCmd.AddCommand(schNetsCmd)

	schNetsCmd.Flags().BoolVarP(&netsAll, "all", "a", false, "include single-pin nets")
}

func runSchInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	sch, err := schematic.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) >= 2 {
		return showComponentDetails(out, sch, args[1])
	}

	showSchemSummary(out, sch, filename)
	return nil
}

func showSchemSummary(w io.Writer, sch *schematic.Schematic, filename string) {
	fmt.Fprintf(w, "Schematic: %s\n", filename)
	fmt.Fprintf(w, "Version: %d\n", sch.Version)
	fmt.Fprintf(w, "Generator: %s", sch.Generator)
	if sch.GeneratorVer != "" {
		fmt.Fprintf(w, " v%s", sch.GeneratorVer)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  Components: %d\n", len(sch.Symbols))
	fmt.Fprintf(w, "  Library symbols: %d\n", len(sch.LibSymbols))
	fmt.Fprintf(w, "  Wires: %d\n", len(sch.Wires))
	fmt.Fprintf(w, "  Buses: %d\n", len(sch.Buses))
	fmt.Fprintf(w, "  Bus entries: %d\n", len(sch.BusEntries))
	fmt.Fprintf(w, "  Bus aliases: %d\n", len(sch.BusAliases))
	fmt.Fprintf(w, "  Junctions: %d\n", len(sch.Junctions))
	fmt.Fprintf(w, "  Labels: %d\n", len(sch.Labels))
	fmt.Fprintf(w, "  Global labels: %d\n", len(sch.GlobalLabels))
	fmt.Fprintf(w, "  Hierarchical labels: %d\n", len(sch.HierLabels))
	fmt.Fprintf(w, "  Sheets: %d\n", len(sch.Sheets))
	fmt.Fprintf(w, "  No-connects: %d\n", len(sch.NoConnects))
	fmt.Fprintln(w)

	refs := sch.GetAllReferences()
	if len(refs) > 0 {
		fmt.Fprintln(w, "Components:")

		// Group by reference prefix
		byPrefix := make(map[string][]string)
		for _, ref := range refs {
			prefix := getRefPrefix(ref)
			byPrefix[prefix] = append(byPrefix[prefix], ref)
		}

		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		for _, prefix := range prefixes {
			refs := byPrefix[prefix]
			sort.Strings(refs)
			fmt.Fprintf(w, "  %s: %s\n", prefix, strings.Join(refs, ", "))
		}
		fmt.Fprintln(w)
	}

	labels := sch.GetLabels()
	if len(labels) > 0 {
		fmt.Fprintln(w, "Net Labels:")
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(w, "  %s\n", l)
		}
		fmt.Fprintln(w)
	}

	if len(sch.BusAliases) > 0 {
		fmt.Fprintln(w, "Bus Aliases:")
		for _, a := range sch.BusAliases {
			fmt.Fprintf(w, "  %s: %s\n", a.Name, strings.Join(a.Members, " "))
		}
		fmt.Fprintln(w)
	}

	if len(sch.Sheets) > 0 {
		fmt.Fprintln(w, "Hierarchical Sheets:")
		for _, sheet := range sch.Sheets {
			fmt.Fprintf(w, "  %s (%s)\n", sheet.Name, sheet.FileName)
			if len(sheet.Pins) > 0 {
				var pinNames []string
				for _, p := range sheet.Pins {
					pinNames = append(pinNames, p.Name)
				}
				fmt.Fprintf(w, "    Pins: %s\n", strings.Join(pinNames, ", "))
			}
		}
	}
}

func showComponentDetails(w io.Writer, sch *schematic.Schematic, ref string) error {
	sym := sch.GetSymbol(ref)
	if sym == nil {
		return fmt.Errorf("component '%s' not found", ref)
	}

	fmt.Fprintf(w, "Component: %s\n", ref)
	fmt.Fprintf(w, "Library: %s\n", sym.LibID)
	fmt.Fprintf(w, "Position: (%.2f, %.2f)\n", sym.Position.X, sym.Position.Y)
	if sym.Angle != 0 {
		fmt.Fprintf(w, "Rotation: %.1f°\n", float64(sym.Angle))
	}
	if sym.Mirror != "" {
		fmt.Fprintf(w, "Mirror: %s\n", sym.Mirror)
	}
	fmt.Fprintf(w, "Unit: %d\n", sym.Unit)
	fmt.Fprintln(w)

	if len(sym.Properties) > 0 {
		fmt.Fprintln(w, "Properties:")
		for _, prop := range sym.Properties {
			fmt.Fprintf(w, "  %s: %s\n", prop.Key, prop.Value)
		}
		fmt.Fprintln(w)
	}

	lib := sch.GetLibSymbol(sym.LibKey())
	if lib == nil {
		return nil
	}
	pins := lib.UnitPins(sym.Unit, sym.BodyStyle)
	if len(pins) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Pin", "Name", "Type", "Style", "Hidden"})
	for _, pin := range pins {
		t.AppendRow(table.Row{pin.Number, pin.Name, pin.Type, pin.Style, pin.Hide})
	}
	t.Render()

	return nil
}

func getRefPrefix(ref string) string {
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			return ref[:i]
		}
	}
	return ref
}

func runSchNets(cmd *cobra.Command, args []string) error {
	r, err := resolve(args[0])
	if err != nil {
		return err
	}

	nl, err := netlist.FromGraph(r.graph, args[0])
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Code", "Net", "Pins", "Nodes"})

	for _, net := range nl.Nets {
		if !netsAll && len(net.Nodes) < 2 {
			continue
		}
		nodes := make([]string, 0, len(net.Nodes))
		for _, n := range net.Nodes {
			nodes = append(nodes, n.Ref+"."+n.Pin)
		}
		t.AppendRow(table.Row{net.Code, net.Name, len(net.Nodes), strings.Join(nodes, " ")})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d nets", nl.NetCount()), "", fmt.Sprintf("%d components", len(nl.Components))})
	t.Render()

	return nil
}
