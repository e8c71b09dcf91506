package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	seed        int64
	duration    float64
	timestep    float64
	startDelay  float64
	vibration   float64
	count       int
	maxCatchUp  int
	noPhysics   bool
	sampleEvery int
	frameRate   int
	plotWidth   int
	layer       int
	svgMetric   string
	sweepMetric string
	axes        []string
	maximize    bool
)

// main registers the melter commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "melter",
		Short:        "thermally coupled mass-spring lattice simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".melter", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "record metrics every n steps")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal in real time",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metrics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "plot the stiffness factor against temperature",
		Args:  cobra.NoArgs,
		RunE:  plotCurve,
	}
	curveCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a layer heat map, or a metric with --metric, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&layer, "layer", 0, "k layer to draw")
	exportSVGCmd.Flags().StringVar(&svgMetric, "metric", "", "draw this metric over time instead")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the simulation over a grid of parameter values",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "param", nil, "grid axis as name=v1,v2 (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "softened", "metric to compare")
	sweepCmd.Flags().BoolVar(&maximize, "max", false, "pick the highest value instead of the lowest")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario and store the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, curveCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&duration, "time", 30, "simulated seconds after the start delay")
	cmd.Flags().Float64Var(&timestep, "dt", 0.05, "fixed timestep in seconds")
	cmd.Flags().Float64Var(&startDelay, "delay", 3, "start delay in seconds")
	cmd.Flags().Float64Var(&vibration, "vibration", 50, "vibration amplitude")
	cmd.Flags().IntVar(&count, "count", 6, "particles along every axis")
	cmd.Flags().IntVar(&maxCatchUp, "max-catch-up", 0, "cap on steps per frame, 0 for none")
	cmd.Flags().BoolVar(&noPhysics, "no-physics", false, "disable the reference physics body")
	cmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
