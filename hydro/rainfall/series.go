package rainfall

import "time"

// Series is a dense hourly precipitation grid. Depths[i] is the depth in mm
// that fell during the hour starting at Start + i hours. Depths are never
// negative and the grid has no gaps.
type Series struct {
	Start  time.Time
	Depths []float64
}

// Timestamp returns the start of hour i.
func (s *Series) Timestamp(i int) time.Time {
	return s.Start.Add(time.Duration(i) * time.Hour)
}

// TotalDepthMM sums the whole series.
func (s *Series) TotalDepthMM() float64 {
	total := 0.0
	for _, d := range s.Depths {
		total += d
	}
	return total
}

// Stats summarizes a generated series for logging and sanity checks.
type Stats struct {
	Years           int
	TotalHours      int
	TotalDepthMM    float64
	AnnualAvgMM     float64
	StormCount      int
	WetHours        int
	MaxIntensityMMH float64
}
