package hydro

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stormwise/ogs-sizing/hydro/capture"
	"github.com/stormwise/ogs-sizing/hydro/rainfall"
	"github.com/stormwise/ogs-sizing/hydro/swmm"
)

// Stage names reported in fatal pipeline errors.
const (
	StageRainfall   = "rainfall"
	StageSimulation = "simulation"
	StageAnalysis   = "analysis"
)

// Pipeline runs the three stages in strict sequence: rainfall synthesis,
// external simulation, capture-curve analysis. Data flows forward only; any
// stage error aborts the run with the stage named in the error.
type Pipeline struct {
	cfg    *Config
	runner swmm.Runner
}

// NewPipeline builds a pipeline around an injected engine runner.
func NewPipeline(cfg *Config, runner swmm.Runner) *Pipeline {
	return &Pipeline{cfg: cfg, runner: runner}
}

func stageErr(stage string, err error) error {
	return fmt.Errorf("%s stage: %w", stage, err)
}

// RainPath is the rainfall artifact location inside the working directory.
func (p *Pipeline) RainPath() string {
	return filepath.Join(p.cfg.Workdir, swmm.RainFileName)
}

// climateSpec resolves the climate profile: the configured YAML document or
// the built-in Calgary profile, with the pipeline seed applied.
func (p *Pipeline) climateSpec() (*rainfall.ClimateSpec, error) {
	spec := rainfall.DefaultCalgarySpec()
	if p.cfg.ClimatePath != "" {
		loaded, err := rainfall.LoadClimateSpec(p.cfg.ClimatePath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	if p.cfg.Seed != 0 {
		spec.Seed = p.cfg.Seed
	}
	return spec, nil
}

// GenerateRainfall synthesizes the precipitation series and writes the SWMM
// rain file into the working directory.
func (p *Pipeline) GenerateRainfall() (*rainfall.Stats, error) {
	spec, err := p.climateSpec()
	if err != nil {
		return nil, stageErr(StageRainfall, err)
	}
	series, stats, err := rainfall.Generate(spec)
	if err != nil {
		return nil, stageErr(StageRainfall, err)
	}
	if err := os.MkdirAll(p.cfg.Workdir, 0o755); err != nil {
		return nil, stageErr(StageRainfall, err)
	}
	if _, err := rainfall.WriteDAT(series, p.RainPath(), spec.Station, spec.TraceDepthMM); err != nil {
		return nil, stageErr(StageRainfall, err)
	}
	return stats, nil
}

// Simulate runs the external engine on the staged model and rainfall,
// generating the rainfall first if its artifact is missing, and persists the
// discharge series to the flows cache for later fast-path runs.
func (p *Pipeline) Simulate(ctx context.Context) (*capture.DischargeSeries, error) {
	if _, err := os.Stat(p.RainPath()); err != nil {
		logrus.Info("rainfall artifact missing, generating")
		if _, err := p.GenerateRainfall(); err != nil {
			return nil, err
		}
	}

	series, err := p.runner.Run(ctx, swmm.Job{
		Workdir:    p.cfg.Workdir,
		ModelPath:  p.cfg.ModelPath,
		OutletLink: p.cfg.OutletLink,
	})
	if err != nil {
		return nil, stageErr(StageSimulation, err)
	}

	if p.cfg.FlowsCache != "" {
		if err := capture.SaveSeries(p.cfg.FlowsCache, series); err != nil {
			return nil, stageErr(StageSimulation, err)
		}
		logrus.Infof("saved %d flow records to %s", series.Len(), p.cfg.FlowsCache)
	}
	return series, nil
}

// Analyze computes the capture curve from a discharge series produced for
// the reference catchment, scaling it first if this run's catchment differs.
func (p *Pipeline) Analyze(series *capture.DischargeSeries, source string) (*Report, error) {
	started := time.Now()

	if factor := p.cfg.ScaleFactor(); factor != 1 {
		logrus.Infof("scaling reference flows by %.4f (%.1f ha, %.1f%% impervious)",
			factor, p.cfg.AreaHa, p.cfg.ImpervPct)
		series = series.Scale(factor)
	}

	result, err := capture.Analyze(series, p.cfg.Percentages, capture.Options{
		WetThresholdCMS: p.cfg.WetThresholdCMS,
	})
	if err != nil {
		return nil, stageErr(StageAnalysis, err)
	}
	return NewReport(p.cfg, result, source, time.Since(started)), nil
}

// AnalyzeCached runs the analysis stage alone from the flows cache.
func (p *Pipeline) AnalyzeCached() (*Report, error) {
	series, err := capture.LoadSeries(p.cfg.FlowsCache)
	if err != nil {
		return nil, stageErr(StageAnalysis, err)
	}
	return p.Analyze(series, SourceCache)
}

// Run executes the full pipeline. When the flows cache already exists the
// generation and simulation stages are skipped entirely: the cached series
// was produced by the same stages from the same inputs, so the result is
// bit-identical to a full run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.cfg.FlowsCache != "" {
		if _, err := os.Stat(p.cfg.FlowsCache); err == nil {
			logrus.Infof("using precomputed flows from %s", p.cfg.FlowsCache)
			return p.AnalyzeCached()
		}
	}

	if _, err := p.GenerateRainfall(); err != nil {
		return nil, err
	}
	series, err := p.Simulate(ctx)
	if err != nil {
		return nil, err
	}
	return p.Analyze(series, SourceSimulation)
}
