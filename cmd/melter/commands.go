package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/melter/internal/automation"
	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/experiment"
	"github.com/san-kum/melter/internal/export"
	"github.com/san-kum/melter/internal/optim"
	"github.com/san-kum/melter/internal/physics"
	"github.com/san-kum/melter/internal/sim"
	"github.com/san-kum/melter/internal/storage"
	"github.com/san-kum/melter/internal/thermal"
	"github.com/san-kum/melter/internal/viz"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff7a18")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3b3b")).Bold(true)
)

// resolveConfig layers the preset, then the config file, then any flag
// set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.LookupPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("dt") {
		cfg.Timestep = timestep
	}
	if flags.Changed("delay") {
		cfg.StartDelay = startDelay
	}
	if flags.Changed("vibration") {
		cfg.Vibration = vibration
	}
	if flags.Changed("count") {
		cfg.Lattice.CountW, cfg.Lattice.CountH, cfg.Lattice.CountD = count, count, count
	}
	if flags.Changed("max-catch-up") {
		cfg.MaxCatchUp = maxCatchUp
	}
	if flags.Changed("no-physics") {
		cfg.Physics.Enabled = !noPhysics
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger := newLogger()
	exp, err := experiment.New(experiment.Config{
		Preset:      preset,
		Sim:         cfg,
		SampleEvery: sampleEvery,
	}, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	l := exp.Melter().Lattice()
	fmt.Println(titleStyle.Render("melting"))
	fmt.Printf("lattice: %dx%dx%d (%d particles, %d springs)\n",
		cfg.Lattice.CountW, cfg.Lattice.CountH, cfg.Lattice.CountD, l.Len(), len(l.Springs))

	run, runErr := exp.Run(ctx)
	if run == nil {
		return runErr
	}

	runID, err := st.Save(run)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "dir", dataDir)

	fmt.Printf("completed in %.2fs\n", run.Metrics["wall_seconds"])
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.2fs simulated)\n", run.Steps, run.SimTime)
	fmt.Println("\nmetrics:")
	for _, name := range run.Names {
		fmt.Printf("  %s: %.6f\n", name, run.Metrics[name])
	}

	if runErr != nil {
		var simErr *dynamo.SimulationError
		if errors.As(runErr, &simErr) {
			fmt.Println(warnStyle.Render(fmt.Sprintf("\nhalted at step %d", simErr.Step)))
		}
		return runErr
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	m, err := sim.New(cfg, sim.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	title := "melter"
	if preset != "" {
		title += " / " + preset
	}

	var body *physics.Body
	if cfg.Physics.Enabled {
		body = experiment.NewBody(cfg, m)
		m.SetPhysics(body)
	}

	p := tea.NewProgram(viz.NewModel(m, body, cfg.FrameRate, title))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tPARTICLES\tSEED\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Halted != "" {
			status = "halted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Particles,
			run.Seed,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	names, samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) < 2 {
		return fmt.Errorf("not enough samples to plot: %d", len(samples))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))

	for col, name := range names {
		data := make([]float64, 0, len(samples))
		for _, s := range samples {
			if col < len(s.Values) {
				data = append(data, s.Values[col])
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, p := range config.ListPresets() {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

// plotCurve shows the spring constant multiplier for a spring whose ends
// share one temperature, from cold to well past melting.
func plotCurve(cmd *cobra.Command, args []string) error {
	const maxTemp = 150.0
	n := plotWidth
	if n < 2 {
		n = 2
	}

	data := make([]float64, n)
	for i := range data {
		t := maxTemp * float64(i) / float64(n-1)
		data[i] = thermal.StiffnessFactor(t, t)
	}

	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("stiffness factor, 0 to %.0f degrees", maxTemp)),
	))
	fmt.Printf("\ncold: %.4f  melt (100): %.4f\n", thermal.StiffnessFactor(0, 0), thermal.StiffnessFactor(100, 100))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if svgMetric != "" {
		names, samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		col := -1
		for i, n := range names {
			if n == svgMetric {
				col = i
			}
		}
		if col < 0 {
			return fmt.Errorf("unknown metric %q (available: %v)", svgMetric, names)
		}
		values := make([]float64, 0, len(samples))
		for _, s := range samples {
			if col < len(s.Values) {
				values = append(values, s.Values[col])
			}
		}
		if len(values) < 2 {
			return fmt.Errorf("not enough samples to draw: %d", len(values))
		}
		fmt.Println(export.SeriesSVG(values, 800, 300, "#ff7a18"))
		return nil
	}

	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	if layer < 0 || layer >= cfg.Lattice.CountD {
		return dynamo.Invalidf("layer %d outside 0..%d", layer, cfg.Lattice.CountD-1)
	}
	records, err := st.LoadTemperatures(runID)
	if err != nil {
		return err
	}

	grid := export.Layer{W: cfg.Lattice.CountW, H: cfg.Lattice.CountH}
	grid.Temps = make([]float64, grid.W*grid.H)
	for _, r := range records {
		i, j, k := r.Index[0], r.Index[1], r.Index[2]
		if k == layer && i < grid.W && j < grid.H {
			grid.Temps[i+j*grid.W] = r.Temperature
		}
	}
	fmt.Println(export.LayerSVG(grid, 24))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(axes) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", config.Params)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(axes))
	ranges := make([][]float64, 0, len(axes))
	for _, a := range axes {
		name, vals, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, err := optim.NewGridSearch(names, ranges).Search(ctx, cfg, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for _, p := range points {
		row := make([]string, len(names))
		for i, n := range names {
			row[i] = strconv.FormatFloat(p.Params[n], 'g', -1, 64)
		}
		value := fmt.Sprintf("%.6f", p.Value)
		if p.Err != nil {
			value = "error: " + p.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", strings.Join(row, "\t"), p.Steps, value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best := optim.Best(points, maximize)
	if best < 0 {
		return fmt.Errorf("every sweep point failed")
	}
	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("best %s: %.6f at %v", sweepMetric, points[best].Value, points[best].Params)))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(titleStyle.Render(scenario.Name))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	results, err := automation.RunScenario(ctx, scenario, st, newLogger())
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = warnStyle.Render("halted: " + r.Err.Error())
		}
		fmt.Printf("  %-16s %-28s %6d steps  %s\n", r.Name, r.RunID, r.Steps, status)
	}
	return err
}
