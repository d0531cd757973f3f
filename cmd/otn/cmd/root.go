package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceNet/internal/config"
)

var (
	// Global flags
	cfgFile string

	cfg    *config.Config
	logger *slog.Logger
)

// errViolations makes Execute exit with status 1 without printing an error
var errViolations = errors.New("erc violations found")

var rootCmd = &cobra.Command{
	Use:   "otn",
	Short: "OpenTraceNet - KiCad schematic connectivity tools",
	Long: `OpenTraceNet (otn) resolves the electrical connectivity of KiCad
schematics (.kicad_sch), including hierarchical sheets, buses and
power symbols.

Examples:
  otn sch info board.kicad_sch              # Show schematic summary
  otn sch nets board.kicad_sch              # List resolved nets
  otn erc board.kicad_sch                   # Run connectivity checks
  otn netlist board.kicad_sch -o board.net  # Write a KiCad netlist
  otn netlist board.kicad_sch --format sqlite -o board.db`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		logger = cfg.Logger(os.Stderr)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errViolations) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultConfigFile+")")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.Int("workers", 0, "driver resolution workers (default: number of CPUs)")
	pf.String("codes", "", "net code table kept between runs")
}
