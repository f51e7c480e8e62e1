package rainfall

import (
	"math"
	"testing"
)

func shortSpec(seed int64) *ClimateSpec {
	spec := DefaultCalgarySpec()
	spec.Seed = seed
	spec.StartYear = 1991
	spec.EndYear = 1995
	return spec
}

func TestGenerate_Deterministic_SameSeedSameSeries(t *testing.T) {
	s1, _, err := Generate(shortSpec(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, _, err := Generate(shortSpec(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s1.Depths) != len(s2.Depths) {
		t.Fatalf("different lengths: %d vs %d", len(s1.Depths), len(s2.Depths))
	}
	for i := range s1.Depths {
		if s1.Depths[i] != s2.Depths[i] {
			t.Fatalf("hour %d: %g vs %g", i, s1.Depths[i], s2.Depths[i])
		}
	}
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	s1, _, _ := Generate(shortSpec(42))
	s2, _, _ := Generate(shortSpec(43))
	same := true
	for i := range s1.Depths {
		if s1.Depths[i] != s2.Depths[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical series")
	}
}

func TestGenerate_SeriesInvariants(t *testing.T) {
	series, stats, err := Generate(shortSpec(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Dense hourly grid over the full horizon, 1991-1995 inclusive.
	wantHours := 0
	for y := 1991; y <= 1995; y++ {
		wantHours += 365 * 24
		if y == 1992 {
			wantHours += 24 // leap year
		}
	}
	if len(series.Depths) != wantHours {
		t.Errorf("grid length = %d, want %d", len(series.Depths), wantHours)
	}

	for i, d := range series.Depths {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			t.Fatalf("hour %d: invalid depth %g", i, d)
		}
	}
	if stats.StormCount == 0 || stats.WetHours == 0 {
		t.Fatalf("degenerate synthesis: %+v", stats)
	}
}

func TestGenerate_AnnualTotalNearNormal(t *testing.T) {
	// Calgary normals sum to ~410 mm/yr; the synthesis draws monthly factors
	// in [0.5, 1.5], so a five-year average far outside that band means the
	// targets are not being honored.
	_, stats, err := Generate(shortSpec(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.AnnualAvgMM < 200 || stats.AnnualAvgMM > 650 {
		t.Errorf("annual average %.1f mm outside plausible range for Calgary", stats.AnnualAvgMM)
	}
}

func TestGenerate_RejectsDegenerateSpecs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ClimateSpec)
	}{
		{"reversed years", func(s *ClimateSpec) { s.StartYear, s.EndYear = s.EndYear, s.StartYear }},
		{"negative depth", func(s *ClimateSpec) { s.Months[5].MeanDepthMM = -1 }},
		{"missing season", func(s *ClimateSpec) { delete(s.Seasons, SeasonSummer) }},
		{"zero intensity", func(s *ClimateSpec) { p := s.Seasons[SeasonWinter]; p.MaxIntensityMMH = 0; s.Seasons[SeasonWinter] = p }},
		{"wrong month count", func(s *ClimateSpec) { s.Months = s.Months[:11] }},
		{"no station", func(s *ClimateSpec) { s.Station = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := shortSpec(42)
			tc.mutate(spec)
			if _, _, err := Generate(spec); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSeasonOf(t *testing.T) {
	want := map[int]string{
		1: SeasonWinter, 3: SeasonWinter, 4: SeasonSpring, 5: SeasonSpring,
		6: SeasonSummer, 8: SeasonSummer, 9: SeasonFall, 10: SeasonFall,
		11: SeasonWinter, 12: SeasonWinter,
	}
	for month, season := range want {
		if got := SeasonOf(month); got != season {
			t.Errorf("SeasonOf(%d) = %q, want %q", month, got, season)
		}
	}
}

func TestPartitionedRNG_IsolatedPerYear(t *testing.T) {
	p := NewPartitionedRNG(42)
	a := p.ForSubsystem(SubsystemYear(1991))
	b := p.ForSubsystem(SubsystemYear(1992))
	if a == b {
		t.Fatal("distinct years share an RNG stream")
	}
	if again := p.ForSubsystem(SubsystemYear(1991)); again != a {
		t.Fatal("subsystem stream not cached")
	}
}
