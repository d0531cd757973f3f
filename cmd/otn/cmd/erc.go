package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
)

var ercCmd = &cobra.Command{
	Use:   "erc <schematic_file>",
	Short: "Run connectivity checks",
	Long: `Resolve the connectivity of a schematic hierarchy and run the electrical
rules checks: driver conflicts, bus conflicts, no-connect usage, unconnected
pins and dangling labels.

Checks and severities are set in the erc section of the config file.
The command exits with status 1 when any violation has error severity.`,
	Args: cobra.ExactArgs(1),
	RunE: runERC,
}

func init() {
	rootCmd.AddCommand(ercCmd)
}

func runERC(cmd *cobra.Command, args []string) error {
	r, err := resolve(args[0])
	if err != nil {
		return err
	}

	settings, err := cfg.ERCSettings()
	if err != nil {
		return err
	}
	if _, err := r.graph.RunERC(settings, true); err != nil {
		return err
	}

	markers := r.markers()
	out := cmd.OutOrStdout()
	if len(markers) == 0 {
		fmt.Fprintln(out, "No violations found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Severity", "Check", "Sheet", "Position", "Message"})

	errs, warnings := 0, 0
	for _, m := range markers {
		switch m.Severity {
		case connectivity.SeverityError:
			errs++
		case connectivity.SeverityWarning:
			warnings++
		}
		t.AppendRow(table.Row{m.Severity, m.Kind, m.Sheet, m.Pos, m.Message})
	}
	t.Render()

	fmt.Fprintf(out, "%d errors, %d warnings\n", errs, warnings)
	if errs > 0 {
		return errViolations
	}
	return nil
}
