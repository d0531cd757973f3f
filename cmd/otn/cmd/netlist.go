package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/netlist"
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <schematic_file>",
	Short: "Export the netlist of a schematic hierarchy",
	Long: `Resolve the connectivity of a schematic hierarchy and write its netlist.

Formats:
  kicad   KiCad s-expression netlist (.net)
  json    components and nets as JSON
  sqlite  runs, components, nets, nodes and ERC markers in a SQLite database

Examples:
  otn netlist board.kicad_sch > board.net
  otn netlist board.kicad_sch --format json -o board.json
  otn netlist board.kicad_sch --format sqlite -o board.db`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)

	netlistCmd.Flags().StringP("format", "f", "kicad", "output format (kicad, json, sqlite)")
	netlistCmd.Flags().StringP("output", "o", "-", "output file, - for stdout")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	r, err := resolve(args[0])
	if err != nil {
		return err
	}

	nl, err := netlist.FromGraph(r.graph, args[0])
	if err != nil {
		return err
	}

	output := cfg.Netlist.Output
	switch cfg.Netlist.Format {
	case "sqlite":
		return writeStore(cmd.Context(), cmd.OutOrStdout(), r, nl, output)
	case "json":
		data, err := nl.ExportJSON()
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), output, data)
	default:
		return writeOutput(cmd.OutOrStdout(), output, []byte(nl.ExportKiCad()))
	}
}

func writeOutput(stdout io.Writer, output string, data []byte) error {
	if output == "" || output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write netlist: %w", err)
	}
	logger.Info("otn: netlist written", "path", output, "bytes", len(data))
	return nil
}

func writeStore(ctx context.Context, w io.Writer, r *resolved, nl *netlist.Netlist, output string) error {
	if output == "" || output == "-" {
		return errors.New("sqlite format needs an output file (--output)")
	}

	settings, err := cfg.ERCSettings()
	if err != nil {
		return err
	}
	if _, err := r.graph.RunERC(settings, true); err != nil {
		return err
	}

	store, err := netlist.OpenStore(ctx, output, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.SaveNetlist(ctx, nl)
	if err != nil {
		return err
	}
	if err := store.SaveMarkers(ctx, runID, r.markers()); err != nil {
		return err
	}

	logger.Info("otn: netlist stored", "path", output, "run", runID, "nets", nl.NetCount())
	fmt.Fprintf(w, "Stored run %s in %s\n", runID, output)
	return nil
}
