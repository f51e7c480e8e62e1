package capture

import "time"

// DischargeSeries holds instantaneous outlet flow at a fixed reporting step.
// Flows are in cubic meters per second (CMS); StepSeconds is the spacing
// between consecutive samples. Produced by the simulation runner and never
// mutated by the analyzer.
type DischargeSeries struct {
	Flows       []float64
	StepSeconds float64
}

// Len returns the number of reporting periods in the series.
func (s *DischargeSeries) Len() int { return len(s.Flows) }

// Span returns the total simulated duration covered by the series.
func (s *DischargeSeries) Span() time.Duration {
	return time.Duration(float64(len(s.Flows)) * s.StepSeconds * float64(time.Second))
}

// Scale returns a copy of the series with every flow multiplied by factor.
// Used by the fast path to adjust the reference catchment's flows for a
// different area or imperviousness.
func (s *DischargeSeries) Scale(factor float64) *DischargeSeries {
	scaled := &DischargeSeries{
		Flows:       make([]float64, len(s.Flows)),
		StepSeconds: s.StepSeconds,
	}
	for i, f := range s.Flows {
		scaled.Flows[i] = f * factor
	}
	return scaled
}
