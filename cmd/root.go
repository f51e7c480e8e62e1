package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stormwise/ogs-sizing/hydro"
	"github.com/stormwise/ogs-sizing/hydro/swmm"
)

var (
	// CLI flags; config-file and OGS_ environment values apply first, then
	// any flag the user actually set wins.
	configPath  string  // Optional pipeline config YAML
	logLevel    string  // Log verbosity level
	workdir     string  // Working directory for staged artifacts
	swmmBin     string  // SWMM engine binary
	modelPath   string  // Custom catchment model (.inp); empty = built-in Calgary model
	climatePath string  // Custom climate spec YAML; empty = built-in Calgary normals
	flowsCache  string  // Precomputed flows cache path
	outletLink  string  // Outlet conduit whose flow is analyzed
	reportJSON  string  // Optional JSON report output path
	seed        int64   // Seed for rainfall synthesis
	areaHa      float64 // Catchment area in hectares
	impervPct   float64 // Catchment percent imperviousness

	percentages []float64     // Capture percentages to compute
	simTimeout  time.Duration // Engine run timeout
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ogs-sizing",
	Short: "Water quality flow rate (Q_wq) analysis for oil-grit separator sizing",
	Long: `ogs-sizing runs a three-stage batch pipeline: synthesize a 30-year
rainfall series, feed it through the EPA SWMM engine, and post-process the
outlet hydrograph into a capture-percentage vs. flow-rate curve.`,
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging configures logrus from the --log flag.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadConfig resolves the pipeline configuration and applies explicitly-set
// CLI flags on top.
func loadConfig(cmd *cobra.Command) *hydro.Config {
	cfg, err := hydro.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("configuration: %v", err)
	}

	set := map[string]func(){
		"workdir":      func() { cfg.Workdir = workdir },
		"swmm-bin":     func() { cfg.SWMMBin = swmmBin },
		"model":        func() { cfg.ModelPath = modelPath },
		"climate":      func() { cfg.ClimatePath = climatePath },
		"flows-cache":  func() { cfg.FlowsCache = flowsCache },
		"outlet-link":  func() { cfg.OutletLink = outletLink },
		"report-json":  func() { cfg.ReportJSON = reportJSON },
		"seed":         func() { cfg.Seed = seed },
		"area-ha":      func() { cfg.AreaHa = areaHa },
		"imperv-pct":   func() { cfg.ImpervPct = impervPct },
		"percentages":  func() { cfg.Percentages = percentages },
		"timeout":      func() { cfg.SimTimeout = simTimeout },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("configuration: %v", err)
	}
	return cfg
}

// newPipeline builds the pipeline with the real engine runner.
func newPipeline(cfg *hydro.Config) *hydro.Pipeline {
	return hydro.NewPipeline(cfg, &swmm.ExecRunner{
		Binary:  cfg.SWMMBin,
		Timeout: cfg.SimTimeout,
	})
}

// emit prints the console table and the JSON blob for a finished analysis.
func emit(cfg *hydro.Config, report *hydro.Report) {
	report.Print(os.Stdout)
	if err := report.WriteJSON(os.Stdout, cfg.ReportJSON); err != nil {
		logrus.Fatalf("analysis stage: %v", err)
	}
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Pipeline config file (YAML)")
	pf.StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&workdir, "workdir", "data", "Working directory for model, rainfall and output artifacts")
	pf.StringVar(&swmmBin, "swmm-bin", "runswmm", "SWMM engine binary")
	pf.StringVar(&modelPath, "model", "", "Catchment model .inp file (default: built-in Calgary model)")
	pf.StringVar(&climatePath, "climate", "", "Climate spec YAML (default: built-in Calgary normals)")
	pf.StringVar(&flowsCache, "flows-cache", "data/calgary_flows_30yr.bin.gz", "Precomputed flows cache")
	pf.StringVar(&outletLink, "outlet-link", swmm.DefaultOutletLink, "Outlet conduit name")
	pf.StringVar(&reportJSON, "report-json", "", "Write the JSON report to this file")
	pf.Int64Var(&seed, "seed", 42, "Seed for rainfall synthesis")
	pf.Float64Var(&areaHa, "area-ha", hydro.RefAreaHa, "Catchment area in hectares")
	pf.Float64Var(&impervPct, "imperv-pct", hydro.RefImpervPct, "Catchment percent imperviousness")
	pf.Float64SliceVar(&percentages, "percentages", []float64{50, 75, 80, 90, 95}, "Capture percentages to compute")
	pf.DurationVar(&simTimeout, "timeout", swmm.DefaultTimeout, "Engine run timeout")

	rootCmd.AddCommand(rainfallCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runCmd)
}
