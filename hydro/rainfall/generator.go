package rainfall

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"math/rand/v2"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generate synthesizes an hourly precipitation series for the spec's horizon.
// Deterministic given the same spec and seed: each simulated year draws from
// its own partitioned RNG stream.
func Generate(spec *ClimateSpec) (*Series, *Stats, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, fmt.Errorf("climate spec: %w", err)
	}

	start := time.Date(spec.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(spec.EndYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	totalHours := int(end.Sub(start).Hours())

	series := &Series{Start: start, Depths: make([]float64, totalHours)}
	stats := &Stats{Years: spec.EndYear - spec.StartYear + 1, TotalHours: totalHours}

	prng := NewPartitionedRNG(spec.Seed)
	for year := spec.StartYear; year <= spec.EndYear; year++ {
		rng := prng.ForSubsystem(SubsystemYear(year))
		for month := 1; month <= 12; month++ {
			if err := generateMonth(spec, series, stats, year, month, rng); err != nil {
				return nil, nil, err
			}
		}
	}

	stats.AnnualAvgMM = stats.TotalDepthMM / float64(stats.Years)
	for _, d := range series.Depths {
		if d > spec.TraceDepthMM {
			stats.WetHours++
		}
		if d > stats.MaxIntensityMMH {
			stats.MaxIntensityMMH = d
		}
	}

	logrus.Infof("generated %d years of rainfall: %.0f mm total, %.1f mm/yr, %d storms, %d wet hours, max %.2f mm/h",
		stats.Years, stats.TotalDepthMM, stats.AnnualAvgMM, stats.StormCount, stats.WetHours, stats.MaxIntensityMMH)
	return series, stats, nil
}

// generateMonth places that month's storms into the series.
func generateMonth(spec *ClimateSpec, series *Series, stats *Stats, year, month int, rng *rand.Rand) error {
	normal := spec.Months[month-1]
	if normal.MeanDepthMM <= 0 || normal.WetDays == 0 {
		return nil
	}

	// Year-to-year variability on the monthly normal, clamped so a single
	// draw can never halve or double the month.
	factor := distuv.Normal{Mu: 1, Sigma: spec.AnnualFactorStd, Src: rng}.Rand()
	factor = math.Min(1.5, math.Max(0.5, factor))
	monthlyTarget := normal.MeanDepthMM * factor

	days := daysInMonth(year, month)
	nStorms := int(distuv.Poisson{Lambda: float64(normal.WetDays) * 0.7, Src: rng}.Rand())
	if nStorms < 1 {
		nStorms = 1
	}
	if nStorms > days {
		nStorms = days
	}

	// Unequal depth split across storms.
	weights := make([]float64, nStorms)
	weightSum := 0.0
	expDist := distuv.Exponential{Rate: 1, Src: rng}
	for i := range weights {
		weights[i] = expDist.Rand()
		weightSum += weights[i]
	}
	if weightSum <= 0 {
		return fmt.Errorf("degenerate storm weights for %d-%02d", year, month)
	}

	stormDays := rng.Perm(days)[:nStorms]
	for i, day := range stormDays {
		depth := monthlyTarget * weights[i] / weightSum
		if depth < spec.TraceDepthMM {
			continue
		}
		startHour := stormStartHour(month, rng)
		stormStart := time.Date(year, time.Month(month), day+1, startHour, 0, 0, 0, time.UTC)
		offset := int(stormStart.Sub(series.Start).Hours())

		for j, intensity := range generateStorm(spec, month, depth, rng) {
			idx := offset + j
			if idx >= 0 && idx < len(series.Depths) {
				series.Depths[idx] += intensity
			}
		}
		stats.TotalDepthMM += depth
		stats.StormCount++
	}
	return nil
}

// generateStorm produces the hourly intensity profile of a single storm:
// an envelope rising to a peak in the first half then decaying, modulated by
// gamma noise, scaled so the hours sum to the target depth.
func generateStorm(spec *ClimateSpec, month int, targetDepth float64, rng *rand.Rand) []float64 {
	params := spec.Seasons[SeasonOf(month)]

	duration := int(distuv.Normal{Mu: params.DurationMeanHours, Sigma: params.DurationStdHours, Src: rng}.Rand())
	if duration < 1 {
		duration = 1
	}
	peakPos := 0.2 + 0.3*rng.Float64()

	noise := distuv.Gamma{Alpha: params.IntensityShape, Beta: 1, Src: rng}
	intensities := make([]float64, duration)
	total := 0.0
	for i := range intensities {
		pos := float64(i) / float64(duration)
		var envelope float64
		if pos < peakPos {
			envelope = math.Sqrt(pos / peakPos)
		} else {
			envelope = math.Exp(-2 * (pos - peakPos))
		}
		v := envelope * noise.Rand() * params.MaxIntensityMMH / 3
		if v < 0 {
			v = 0
		}
		intensities[i] = v
		total += v
	}

	if total > 0 {
		scale := targetDepth / total
		for i := range intensities {
			intensities[i] *= scale
		}
	}
	return intensities
}

// stormStartHour biases convective summer storms into the afternoon; other
// seasons start uniformly through the day.
func stormStartHour(month int, rng *rand.Rand) int {
	if SeasonOf(month) == SeasonSummer {
		h := int(distuv.NewTriangle(12, 22, 16, rng).Rand())
		if h > 23 {
			h = 23
		}
		return h
	}
	return rng.IntN(24)
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
