package rainfall

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSpecFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "climate.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadClimateSpec_AppliesDefaults(t *testing.T) {
	body := `
station: TEST_STA
seed: 7
start_year: 2000
end_year: 2001
months:
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
  - {mean_depth_mm: 10, wet_days: 5}
seasons:
  winter: {duration_mean_hours: 8, duration_std_hours: 4, max_intensity_mmh: 5, intensity_shape: 1.5}
  spring: {duration_mean_hours: 4, duration_std_hours: 3, max_intensity_mmh: 15, intensity_shape: 1.2}
  summer: {duration_mean_hours: 2, duration_std_hours: 1.5, max_intensity_mmh: 40, intensity_shape: 0.8}
  fall: {duration_mean_hours: 5, duration_std_hours: 3, max_intensity_mmh: 10, intensity_shape: 1.3}
`
	spec, err := LoadClimateSpec(writeSpecFile(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Station != "TEST_STA" || spec.Seed != 7 {
		t.Errorf("spec fields not loaded: %+v", spec)
	}
	if spec.AnnualFactorStd != defaultAnnualFactorStd {
		t.Errorf("annual_factor_std default not applied: %g", spec.AnnualFactorStd)
	}
	if spec.TraceDepthMM != defaultTraceDepthMM {
		t.Errorf("trace_depth_mm default not applied: %g", spec.TraceDepthMM)
	}
}

func TestLoadClimateSpec_RejectsInvalid(t *testing.T) {
	if _, err := LoadClimateSpec(writeSpecFile(t, "station: X\nmonths: []\n")); err == nil {
		t.Error("expected validation error for missing months")
	}
	if _, err := LoadClimateSpec(writeSpecFile(t, "months: [1,\n")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadClimateSpec(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestDefaultCalgarySpec_Valid(t *testing.T) {
	spec := DefaultCalgarySpec()
	if err := spec.Validate(); err != nil {
		t.Fatalf("built-in profile must validate: %v", err)
	}
	total := 0.0
	for _, m := range spec.Months {
		total += m.MeanDepthMM
	}
	// Calgary's annual normal is roughly 410 mm.
	if total < 380 || total > 440 {
		t.Errorf("annual normal %.1f mm looks wrong for Calgary", total)
	}
}
