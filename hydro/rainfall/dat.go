package rainfall

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// WriteDAT writes the series as a SWMM user-prepared rain file:
//
//	STA_ID  YYYY  MM  DD  HH  MM  VALUE
//
// Only hours above the trace depth are written; SWMM treats omitted
// timestamps as zero rainfall.
func WriteDAT(series *Series, path, station string, traceDepthMM float64) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create rain file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, ";; Synthetic rainfall for station %s\n", station)
	fmt.Fprintf(w, ";; Period: %s to %s\n",
		series.Start.Format("2006-01-02"),
		series.Timestamp(len(series.Depths)-1).Format("2006-01-02"))
	fmt.Fprintln(w, ";; Hourly depths in mm, zero hours omitted")
	fmt.Fprintln(w, ";;")

	records := 0
	for i, depth := range series.Depths {
		if depth <= traceDepthMM {
			continue
		}
		ts := series.Timestamp(i)
		fmt.Fprintf(w, "%s  %d  %2d  %2d  %2d  00  %.4f\n",
			station, ts.Year(), int(ts.Month()), ts.Day(), ts.Hour(), depth)
		records++
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("write rain file: %w", err)
	}
	logrus.Debugf("wrote %d rainfall records to %s", records, path)
	return records, nil
}
