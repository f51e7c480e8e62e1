// Package hydro wires the three pipeline stages together: rainfall
// synthesis, external SWMM simulation, and capture-curve analysis.
package hydro

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Reference catchment behind the built-in model and any precomputed flows
// cache. Other area/imperviousness values scale the cached flows linearly.
const (
	RefAreaHa    = 66.0
	RefImpervPct = 55.0
)

// Config is the immutable pipeline configuration, resolved once at startup
// from defaults, an optional YAML file and OGS_-prefixed environment
// variables, then passed explicitly into the pipeline.
type Config struct {
	Workdir     string `mapstructure:"workdir"`
	SWMMBin     string `mapstructure:"swmm_bin"`
	ModelPath   string `mapstructure:"model_inp"`
	ClimatePath string `mapstructure:"climate_spec"`
	FlowsCache  string `mapstructure:"flows_cache"`
	OutletLink  string `mapstructure:"outlet_link"`
	ReportJSON  string `mapstructure:"report_json"`

	Seed            int64         `mapstructure:"seed"`
	AreaHa          float64       `mapstructure:"area_ha"`
	ImpervPct       float64       `mapstructure:"imperv_pct"`
	WetThresholdCMS float64       `mapstructure:"wet_threshold_cms"`
	Percentages     []float64     `mapstructure:"percentages"`
	SimTimeout      time.Duration `mapstructure:"sim_timeout"`
}

// LoadConfig resolves the configuration. path may be empty, in which case
// only defaults and environment overrides apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OGS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workdir", "data")
	v.SetDefault("swmm_bin", "runswmm")
	v.SetDefault("model_inp", "")
	v.SetDefault("climate_spec", "")
	v.SetDefault("flows_cache", "data/calgary_flows_30yr.bin.gz")
	v.SetDefault("outlet_link", "Link_1")
	v.SetDefault("report_json", "")

	v.SetDefault("seed", 42)
	v.SetDefault("area_ha", RefAreaHa)
	v.SetDefault("imperv_pct", RefImpervPct)
	v.SetDefault("wet_threshold_cms", 1e-4)
	v.SetDefault("percentages", []float64{50, 75, 80, 90, 95})
	v.SetDefault("sim_timeout", 30*time.Minute)
}

// Validate rejects configurations no stage could run with.
func (c *Config) Validate() error {
	if c.AreaHa <= 0 {
		return fmt.Errorf("area_ha must be positive, got %g", c.AreaHa)
	}
	if c.ImpervPct <= 0 || c.ImpervPct > 100 {
		return fmt.Errorf("imperv_pct must be in (0, 100], got %g", c.ImpervPct)
	}
	if len(c.Percentages) == 0 {
		return fmt.Errorf("at least one capture percentage is required")
	}
	for _, p := range c.Percentages {
		if p < 0 || p > 100 {
			return fmt.Errorf("capture percentage %g outside [0, 100]", p)
		}
	}
	if c.SimTimeout <= 0 {
		return fmt.Errorf("sim_timeout must be positive, got %s", c.SimTimeout)
	}
	return nil
}

// ScaleFactor is the linear adjustment applied to reference-catchment flows
// for this configuration's catchment.
func (c *Config) ScaleFactor() float64 {
	return (c.AreaHa / RefAreaHa) * (c.ImpervPct / RefImpervPct)
}
