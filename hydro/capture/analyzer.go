// Package capture computes the Water Quality Flow Rate (Q_wq) from a
// continuous discharge series: the flow threshold below which the cumulative
// runoff volume equals a target fraction of the total.
//
// Algorithm: dry periods (flow at or below the wet threshold) are dropped,
// each remaining sample contributes flow*step cubic meters (rectangular
// rule), samples are sorted ascending by flow with a stable sort, and the
// cumulative volume is walked until it first reaches the target fraction.
// Q_wq for a percentage is the flow of the sample at that crossing, with no
// interpolation between samples. The same policy applies to every requested
// percentage, so the resulting curve is non-decreasing in the percentage.
package capture

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultWetThresholdCMS separates wet-weather flow from dry-weather noise.
// 1e-4 CMS is 0.1 L/s.
const DefaultWetThresholdCMS = 1e-4

// Options tunes the analyzer. The zero value selects defaults.
type Options struct {
	// WetThresholdCMS excludes samples at or below this flow from the
	// analysis. Zero means DefaultWetThresholdCMS; negative disables
	// filtering entirely.
	WetThresholdCMS float64
}

func (o Options) threshold() float64 {
	if o.WetThresholdCMS == 0 {
		return DefaultWetThresholdCMS
	}
	if o.WetThresholdCMS < 0 {
		return -1 // keep every non-negative sample
	}
	return o.WetThresholdCMS
}

// CurvePoint is one row of the capture curve.
type CurvePoint struct {
	Percent float64 `json:"percent"`
	FlowCMS float64 `json:"flow_cms"`
}

// FlowStats summarizes the wet-weather flow population.
type FlowStats struct {
	MinCMS    float64 `json:"min_flow_cms"`
	MaxCMS    float64 `json:"max_flow_cms"`
	MeanCMS   float64 `json:"mean_flow_cms"`
	MedianCMS float64 `json:"median_flow_cms"`
}

// Result is the outcome of one capture-curve analysis.
type Result struct {
	Curve         []CurvePoint `json:"capture_flows"`
	TotalVolumeM3 float64      `json:"total_volume_m3"`
	WetPeriods    int          `json:"wet_periods"`
	DryPeriods    int          `json:"dry_periods"`
	Stats         FlowStats    `json:"stats"`
}

// QwqCMS returns the flow rate computed for the given percentage, or false
// if it was not requested.
func (r *Result) QwqCMS(percent float64) (float64, bool) {
	for _, p := range r.Curve {
		if p.Percent == percent {
			return p.FlowCMS, true
		}
	}
	return 0, false
}

// Analyze computes Q_wq for each requested capture percentage.
//
// Percentages are validated up front: any value outside [0, 100] yields an
// *InvalidPercentageError and no partial result. A series with no samples
// above the wet threshold yields ErrEmptySeries. The curve preserves the
// order in which percentages were requested.
func Analyze(series *DischargeSeries, percentages []float64, opts Options) (*Result, error) {
	for _, p := range percentages {
		if p < 0 || p > 100 {
			return nil, &InvalidPercentageError{Percent: p}
		}
	}

	threshold := opts.threshold()
	wet := make([]float64, 0, len(series.Flows))
	dry := 0
	for _, f := range series.Flows {
		if f > threshold {
			wet = append(wet, f)
		} else {
			dry++
		}
	}
	if len(wet) == 0 {
		return nil, ErrEmptySeries
	}

	// Stable ascending sort so tied flows keep their series order.
	sorted := make([]float64, len(wet))
	copy(sorted, wet)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Rectangular rule: each sample contributes flow*step m³.
	cumulative := make([]float64, len(sorted))
	running := 0.0
	for i, f := range sorted {
		running += f * series.StepSeconds
		cumulative[i] = running
	}
	total := running

	curve := make([]CurvePoint, 0, len(percentages))
	for _, p := range percentages {
		curve = append(curve, CurvePoint{Percent: p, FlowCMS: qwqAt(sorted, cumulative, total, p)})
	}

	return &Result{
		Curve:         curve,
		TotalVolumeM3: total,
		WetPeriods:    len(wet),
		DryPeriods:    dry,
		Stats: FlowStats{
			MinCMS:    sorted[0],
			MaxCMS:    sorted[len(sorted)-1],
			MeanCMS:   stat.Mean(sorted, nil),
			MedianCMS: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		},
	}, nil
}

// qwqAt finds the flow at the first sample where the cumulative volume
// reaches or exceeds percent% of total. The 0% and 100% endpoints are the
// series minimum and maximum by definition.
func qwqAt(sorted, cumulative []float64, total, percent float64) float64 {
	switch percent {
	case 0:
		return sorted[0]
	case 100:
		return sorted[len(sorted)-1]
	}
	target := total * percent / 100
	idx := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] >= target
	})
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
