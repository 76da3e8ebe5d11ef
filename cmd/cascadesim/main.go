package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cascadesim/internal/automation"
	"github.com/san-kum/cascadesim/internal/config"
	"github.com/san-kum/cascadesim/internal/experiment"
	"github.com/san-kum/cascadesim/internal/export"
	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/logging"
	"github.com/san-kum/cascadesim/internal/metrics"
	"github.com/san-kum/cascadesim/internal/optim"
	"github.com/san-kum/cascadesim/internal/storage"
	"github.com/san-kum/cascadesim/internal/topology"
	"github.com/san-kum/cascadesim/internal/viz"
)

type options struct {
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	alpha        float64
	generator    string
	nodes        int
	extra        int
	seed         int64
	topologyFile string
	plan         string
	steps        []string
	workers      int
	maxRounds    int

	name       string
	metricsOut string
	view       bool
	theme      string
	series     []string
	height     int
	width      int
	out        string
	sizes      []int
	grid       []string
	metric     string
	maximize   bool
	iteration  int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:          "cascadesim",
		Short:        "cascading failure simulator for networks",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&o.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&o.preset, "preset", "", "use preset configuration")
	pf.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")
	pf.StringVar(&o.logFormat, "log-format", "text", "log format (text or json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a cascade simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  o.runSimulation,
	}
	o.addSimFlags(runCmd)
	runCmd.Flags().StringVar(&o.name, "name", "", "run name (defaults to the preset or generator)")
	runCmd.Flags().StringVar(&o.metricsOut, "metrics-out", "", "write prometheus textfile metrics to this path")
	runCmd.Flags().BoolVar(&o.view, "view", false, "browse the history after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  o.listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and per-round log",
		Args:  cobra.ExactArgs(1),
		RunE:  o.showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-round series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  o.plotRun,
	}
	plotCmd.Flags().StringSliceVar(&o.series, "series", viz.SeriesNames(), "series to plot")
	plotCmd.Flags().IntVar(&o.height, "height", viz.DefaultPlotOptions.Height, "plot height")
	plotCmd.Flags().IntVar(&o.width, "width", viz.DefaultPlotOptions.Width, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  o.exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "replay a run and export its full history to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  o.exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (stdout when empty)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  o.listPresets,
	}

	topologyCmd := &cobra.Command{
		Use:   "topology [generator]",
		Short: "generate a topology description",
		Args:  cobra.ExactArgs(1),
		RunE:  o.generateTopology,
	}
	topologyCmd.Flags().IntVar(&o.nodes, "nodes", config.DefaultNodes, "node count")
	topologyCmd.Flags().IntVar(&o.extra, "extra", 0, "extra edges (random)")
	topologyCmd.Flags().Int64Var(&o.seed, "seed", 1, "random seed (random)")
	topologyCmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (stdout when empty)")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse a saved run, or a fresh one when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  o.viewRun,
	}
	o.addSimFlags(viewCmd)
	viewCmd.Flags().StringVar(&o.theme, "theme", viz.ThemeClassic.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	benchCmd := &cobra.Command{
		Use:   "bench [generator]",
		Short: "time full runs over growing node counts",
		Args:  cobra.ExactArgs(1),
		RunE:  o.bench,
	}
	benchCmd.Flags().IntSliceVar(&o.sizes, "sizes", []int{10, 20, 40}, "node counts")
	benchCmd.Flags().IntVar(&o.workers, "workers", 0, "betweenness workers (0 = GOMAXPROCS)")
	benchCmd.Flags().Float64Var(&o.alpha, "alpha", config.DefaultAlpha, "capacity tolerance")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "replay a run and draw one iteration (or a series) as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  o.exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&o.iteration, "iteration", -1, "iteration to draw (negative counts from the end)")
	exportSVGCmd.Flags().StringSliceVar(&o.series, "series", nil, "draw this series instead of the network")
	exportSVGCmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (stdout when empty)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate a parameter grid in parallel",
		Args:  cobra.NoArgs,
		RunE:  o.sweep,
	}
	o.addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&o.grid, "grid", []string{"alpha=0:4:5"}, "grid axis, name=lo:hi:n or name=v1,v2,...")
	sweepCmd.Flags().StringVar(&o.metric, "metric", "removed_nodes", "metric to optimize")
	sweepCmd.Flags().BoolVar(&o.maximize, "maximize", false, "pick the largest metric value")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and save every run of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  o.runScenario,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd, presetsCmd, topologyCmd, viewCmd, benchCmd, sweepCmd, scenarioCmd)
	return rootCmd
}

func (o *options) addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&o.alpha, "alpha", config.DefaultAlpha, "capacity tolerance")
	f.StringVar(&o.generator, "generator", config.DefaultGenerator, "topology generator ("+strings.Join(experiment.NewRegistry().ListGenerators(), ", ")+")")
	f.IntVar(&o.nodes, "nodes", config.DefaultNodes, "node count for the generator")
	f.IntVar(&o.extra, "extra", 0, "extra edges for the random generator")
	f.Int64Var(&o.seed, "seed", 0, "random seed for the random generator")
	f.StringVar(&o.topologyFile, "topology", "", "topology description file (yaml)")
	f.StringVar(&o.plan, "plan", config.DefaultPlan, "step plan (canonical, measure)")
	f.StringSliceVar(&o.steps, "steps", nil, "custom step sequence, overrides --plan")
	f.IntVar(&o.workers, "workers", 0, "betweenness workers (0 = GOMAXPROCS)")
	f.IntVar(&o.maxRounds, "max-rounds", 0, "round limit (0 = plan default or node count)")
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order.
func (o *options) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.preset != "" {
		if cfg = config.GetPreset(o.preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
	}
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("alpha") {
		cfg.Alpha = o.alpha
	}
	if flags.Changed("generator") {
		cfg.Topology.Generator = o.generator
		cfg.Topology.File = ""
	}
	if flags.Changed("nodes") {
		cfg.Topology.Nodes = o.nodes
	}
	if flags.Changed("extra") {
		cfg.Topology.Extra = o.extra
	}
	if flags.Changed("seed") {
		cfg.Topology.Seed = o.seed
	}
	if flags.Changed("topology") {
		cfg.Topology.File = o.topologyFile
	}
	if flags.Changed("plan") {
		cfg.Plan = o.plan
		cfg.Steps = nil
	}
	if flags.Changed("steps") {
		cfg.Steps = o.steps
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("max-rounds") {
		cfg.MaxRounds = o.maxRounds
	}
	if flags.Changed("data") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	lc := logging.Config{Level: o.logLevel, Format: o.logFormat}
	if cfg != nil {
		lc = cfg.Log
	}
	return logging.New(lc, cmd.ErrOrStderr())
}

// store opens the data directory from --data, falling back to the config
// file's data_dir when the flag was not given.
func (o *options) store(cmd *cobra.Command) *storage.Store {
	dir := o.dataDir
	if o.configFile != "" && !cmd.Flags().Changed("data") {
		if cfg, err := config.Load(o.configFile); err == nil && cfg.DataDir != "" {
			dir = cfg.DataDir
		}
	}
	return storage.New(dir)
}

func (o *options) runName(cfg *config.Config) string {
	switch {
	case o.name != "":
		return o.name
	case o.preset != "":
		return o.preset
	case cfg.Topology.File != "":
		return "custom"
	}
	return cfg.Topology.Generator
}

func (o *options) runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := o.logger(cmd, cfg)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	var reg *metrics.Registry
	if o.metricsOut != "" {
		reg = metrics.NewRegistry()
		exp.AddObserver(reg)
	}
	if err := exp.Setup(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	name := o.runName(cfg)
	fmt.Fprintf(out, "running %s (alpha=%g)...\n", name, cfg.Alpha)
	start := time.Now()

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(exp.Metadata(name, res), res.Topology, res.Rows)
	if err != nil {
		return err
	}
	if reg != nil {
		if err := reg.WriteTextfile(o.metricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "status: %s\n", res.Status)
	fmt.Fprintf(out, "rounds: %d\n", res.Rounds)
	fmt.Fprintf(out, "iterations: %d\n", res.History.IterCount())
	fmt.Fprintln(out, "\nmetrics:")
	for _, k := range slices.Sorted(maps.Keys(res.Metrics)) {
		fmt.Fprintf(out, "  %s: %.6f\n", k, res.Metrics[k])
	}

	if o.view {
		return viz.RunBrowser(viz.NewBrowser(res.History, res.Status, runID))
	}
	return nil
}

func (o *options) listRuns(cmd *cobra.Command, args []string) error {
	runs, err := o.store(cmd).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPOLOGY\tTIME\tNODES\tALPHA\tPLAN\tSTATUS\tROUNDS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%s\t%s\t%d\n",
			run.ID,
			run.Topology,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nodes,
			run.Alpha,
			run.Plan,
			run.Status,
			run.Rounds,
		)
	}
	return w.Flush()
}

func (o *options) showRun(cmd *cobra.Command, args []string) error {
	st := o.store(cmd)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadRounds(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "topology: %s (%d nodes, %d edges)\n", meta.Topology, meta.Nodes, meta.Edges)
	fmt.Fprintf(out, "alpha: %g\n", meta.Alpha)
	fmt.Fprintf(out, "plan: %s [%s]\n", meta.Plan, strings.Join(meta.Steps, " "))
	fmt.Fprintf(out, "status: %s after %d rounds, %d iterations\n\n", meta.Status, meta.Rounds, meta.Iterations)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROUND\tSTATUS\tALIVE\tMAX\tOVERLOADED\tK\tBETA_DELTA")
	for _, r := range rows {
		maxNode, k, bd := "-", "-", "-"
		if r.MaxNode >= 0 {
			maxNode = fmt.Sprint(r.MaxNode)
		}
		if r.HasK {
			k = fmt.Sprintf("%.4f", r.K)
		}
		if r.HasBetaDelta {
			bd = fmt.Sprintf("%.4f", r.BetaDelta)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\t%s\n", r.Round, r.Status, r.Alive, maxNode, len(r.Overloaded), k, bd)
	}
	return w.Flush()
}

// rowSeries rebuilds a plot series from the saved per-round log.
func rowSeries(rows []storage.RoundRow, name string) ([]float64, error) {
	if !slices.Contains(viz.SeriesNames(), name) {
		return nil, fmt.Errorf("%w: %q", viz.ErrUnknownSeries, name)
	}
	var out []float64
	for _, r := range rows {
		switch name {
		case viz.SeriesKS:
			if r.HasK {
				out = append(out, r.K)
			}
		case viz.SeriesCascade:
			if r.HasK {
				out = append(out, float64(len(r.Overloaded)))
			}
		case viz.SeriesBetaDelta:
			if r.HasBetaDelta {
				out = append(out, r.BetaDelta)
			}
		case viz.SeriesAlive:
			out = append(out, float64(r.Alive))
		}
	}
	return out, nil
}

func (o *options) plotRun(cmd *cobra.Command, args []string) error {
	st := o.store(cmd)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadRounds(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "status: %s\n\n", meta.Status)

	opts := viz.PlotOptions{Height: o.height, Width: o.width}
	for _, name := range o.series {
		values, err := rowSeries(rows, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, viz.Plot(values, name, opts))
	}
	return nil
}

func (o *options) exportRun(cmd *cobra.Command, args []string) error {
	meta, err := o.store(cmd).Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// replay re-runs a saved run from its stored topology, alpha and steps.
// Runs are deterministic, so the rebuilt history matches the original.
func (o *options) replay(cmd *cobra.Command, runID string) (*storage.RunMetadata, *experiment.Result, error) {
	logger := o.logger(cmd, nil)
	st := o.store(cmd)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Alpha = meta.Alpha
	cfg.Steps = meta.Steps
	cfg.MaxRounds = max(meta.Rounds, 1)
	cfg.Topology.File = st.TopologyPath(runID)

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return nil, nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	if got := res.Status.String(); got != meta.Status {
		logger.Warn("replay diverged from saved run", "run", runID, "saved", meta.Status, "replayed", got)
	}
	return meta, res, nil
}

func (o *options) exportJSON(cmd *cobra.Command, args []string) error {
	meta, res, err := o.replay(cmd, args[0])
	if err != nil {
		return err
	}

	data := storage.NewExport(*meta, res.History)
	if o.out == "" {
		return storage.WriteJSON(cmd.OutOrStdout(), data)
	}
	if err := storage.ExportJSON(o.out, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d iterations to %s\n", len(data.Iterations), o.out)
	return nil
}

func (o *options) listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGENERATOR\tNODES\tALPHA\tPLAN")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\n", name, p.Topology.Generator, p.Topology.Nodes, p.Alpha, p.Plan)
	}
	return w.Flush()
}

func (o *options) generateTopology(cmd *cobra.Command, args []string) error {
	desc, err := topology.Generate(topology.Kind(args[0]), topology.Params{Nodes: o.nodes, Extra: o.extra, Seed: o.seed})
	if err != nil {
		return err
	}
	if o.out != "" {
		if err := graph.SaveDesc(o.out, desc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes, %d edges to %s\n", desc.NodeCount(), len(desc.Edges()), o.out)
		return nil
	}
	return writeYAML(cmd.OutOrStdout(), desc)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (o *options) viewRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		meta, res, err := o.replay(cmd, args[0])
		if err != nil {
			return err
		}
		return viz.RunBrowser(viz.NewBrowser(res.History, res.Status, meta.ID).WithTheme(o.theme))
	}

	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the browser owns the terminal, so only errors are logged
	cfg.Log.Level = "error"
	exp := experiment.New(cfg, o.logger(cmd, cfg))
	if err := exp.Setup(); err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	return viz.RunBrowser(viz.NewBrowser(res.History, res.Status, o.runName(cfg)).WithTheme(o.theme))
}

func (o *options) bench(cmd *cobra.Command, args []string) error {
	if _, err := experiment.NewRegistry().GetGenerator(args[0]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s\n\n", args[0])
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODES\tEDGES\tSTATUS\tROUNDS\tTIME\tROUNDS/SEC")

	for _, n := range o.sizes {
		cfg := config.DefaultConfig()
		cfg.Alpha = o.alpha
		cfg.Workers = o.workers
		cfg.Topology = config.TopologyConfig{Generator: args[0], Nodes: n, Seed: 42, Extra: n}

		exp := experiment.New(cfg, nil)
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("%d nodes: %w", n, err)
		}

		start := time.Now()
		res, err := exp.Run(cmd.Context())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		elapsed := time.Since(start)
		if err != nil {
			break
		}

		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%v\t%.1f\n",
			n, len(res.Topology.Edges()), res.Status, res.Rounds, elapsed, float64(res.Rounds)/elapsed.Seconds())
	}
	return w.Flush()
}

func (o *options) exportSVG(cmd *cobra.Command, args []string) error {
	_, res, err := o.replay(cmd, args[0])
	if err != nil {
		return err
	}
	h := res.History

	var svg string
	if len(o.series) > 0 {
		values, err := viz.HistorySeries(h, o.series[0])
		if err != nil {
			return err
		}
		if svg = export.SeriesSVG(values, 640, 240, "#00cccc"); svg == "" {
			return fmt.Errorf("series %s has fewer than two values", o.series[0])
		}
	} else {
		i := o.iteration
		if i < 0 {
			i += h.IterCount()
		}
		if i < 0 || i >= h.IterCount() {
			return fmt.Errorf("iteration %d out of range, run has %d", o.iteration, h.IterCount())
		}
		svg = export.IterationSVG(h.At(i), export.DefaultSVGOptions)
	}

	if o.out == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), svg)
		return err
	}
	if err := export.WriteFile(o.out, svg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", o.out)
	return nil
}

// parseGrid reads axes written as name=lo:hi:n (evenly spaced) or
// name=v1,v2,... (explicit values).
func parseGrid(specs []string) ([]string, [][]float64, error) {
	var names []string
	var ranges [][]float64
	for _, spec := range specs {
		name, vals, ok := strings.Cut(spec, "=")
		if !ok || name == "" || vals == "" {
			return nil, nil, fmt.Errorf("grid %q: expected name=values", spec)
		}

		var values []float64
		if parts := strings.Split(vals, ":"); len(parts) == 3 {
			lo, err1 := strconv.ParseFloat(parts[0], 64)
			hi, err2 := strconv.ParseFloat(parts[1], 64)
			n, err3 := strconv.Atoi(parts[2])
			if err := errors.Join(err1, err2, err3); err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
			}
			values = optim.Linspace(lo, hi, n)
		} else {
			for _, v := range strings.Split(vals, ",") {
				f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if err != nil {
					return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
				}
				values = append(values, f)
			}
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func (o *options) sweep(cmd *cobra.Command, args []string) error {
	base, err := o.resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(o.grid)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	gs.WithWorkers(base.Workers)

	best, points, err := gs.Search(cmd.Context(), base, o.metric, o.maximize)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tSTATUS\tROUNDS\t"+strings.ToUpper(o.metric))
	for _, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", p.Params[n])
		}
		fmt.Fprintf(w, "%s\t%d\t%.4f\n", p.Status, p.Rounds, p.Metrics[o.metric])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, best.Params[n])
	}
	fmt.Fprintf(out, "\nbest: %s (%s=%.4f)\n", strings.Join(parts, " "), o.metric, best.Metrics[o.metric])
	return nil
}

func (o *options) runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := o.store(cmd)
	if err := st.Init(); err != nil {
		return err
	}

	records, runErr := automation.RunScenario(cmd.Context(), sc, st, o.logger(cmd, nil))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s (%d/%d runs)\n", sc.Name, len(records), len(sc.Runs))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRUN ID\tSTATUS\tROUNDS\tREMOVED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\n", r.Name, r.RunID, r.Status, r.Rounds, r.Metrics["removed_nodes"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
