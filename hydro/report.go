package hydro

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stormwise/ogs-sizing/hydro/capture"
)

// Flow series provenance recorded in the report.
const (
	SourceSimulation = "simulation"
	SourceCache      = "cache"
)

// primaryPercent is the capture target that sizes the separator.
const primaryPercent = 90.0

// Report is the final artifact of an analysis run: the capture curve plus
// enough context to reproduce it. Transient by design; persisted only if a
// JSON path is configured.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`

	AreaHa    float64 `json:"area_ha"`
	ImpervPct float64 `json:"imperv_pct"`

	QWq90CMS float64 `json:"q_wq_90_cms,omitempty"`
	QWq90LPS float64 `json:"q_wq_90_lps,omitempty"`

	Result *capture.Result `json:"result"`

	ProcessSeconds float64 `json:"process_seconds"`
}

// NewReport assembles a report from an analysis result.
func NewReport(cfg *Config, result *capture.Result, source string, elapsed time.Duration) *Report {
	r := &Report{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now().UTC(),
		Source:         source,
		AreaHa:         cfg.AreaHa,
		ImpervPct:      cfg.ImpervPct,
		Result:         result,
		ProcessSeconds: elapsed.Seconds(),
	}
	if q, ok := result.QwqCMS(primaryPercent); ok {
		r.QWq90CMS = q
		r.QWq90LPS = capture.CMSToLPS(q)
	}
	return r
}

// Print writes the fixed-width console table. The 90% row is flagged as the
// primary sizing result.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CAPTURE CURVE RESULTS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-15s %-20s %-15s\n", "Capture %", "Q_wq (CMS)", "Q_wq (L/s)")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	for _, pt := range r.Result.Curve {
		marker := ""
		if pt.Percent == primaryPercent {
			marker = " <<<"
		}
		fmt.Fprintf(w, "%-15s %-20.6f %.2f%s\n",
			fmt.Sprintf("%g%%", pt.Percent), pt.FlowCMS, capture.CMSToLPS(pt.FlowCMS), marker)
	}
	fmt.Fprintln(w, rule)

	if q, ok := r.Result.QwqCMS(primaryPercent); ok {
		fmt.Fprintf(w, "\n>>> WATER QUALITY FLOW RATE (90%%): %.4f CMS <<<\n", q)
		fmt.Fprintf(w, ">>> Q_wq (90%%): %.1f L/s <<<\n", capture.CMSToLPS(q))
	}
	fmt.Fprintf(w, ">>> Total runoff volume: %s m3 <<<\n", groupThousands(r.Result.TotalVolumeM3))
	fmt.Fprintf(w, ">>> Wet periods: %d, dry periods: %d <<<\n", r.Result.WetPeriods, r.Result.DryPeriods)
}

// WriteJSON writes the report as indented JSON, and additionally to a file
// when path is non-empty.
func (r *Report) WriteJSON(w io.Writer, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Fprintln(w, "\n[JSON OUTPUT]")
	fmt.Fprintln(w, string(data))

	if path != "" {
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write report file: %w", err)
		}
	}
	return nil
}

// groupThousands renders a volume with comma separators, no decimals.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
