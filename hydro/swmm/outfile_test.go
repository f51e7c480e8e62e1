package swmm

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// outFileSpec drives the synthetic binary output writer below.
type outFileSpec struct {
	links      []string
	linkFlows  [][]float32 // [period][link]
	reportStep int32
	errCode    int32
	badClosing bool
}

// writeOutFile builds a structurally valid SWMM 5 binary output file with
// one subcatchment, two nodes and the given links.
func writeOutFile(t *testing.T, spec outFileSpec) string {
	t.Helper()

	var buf bytes.Buffer
	w := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	writeName := func(s string) {
		w(int32(len(s)))
		buf.WriteString(s)
	}

	subcatch := []string{"S1"}
	nodes := []string{"J1", "O1"}

	// Opening records.
	w(outMagic)
	w(int32(52000))
	w(flowUnitsCMS)
	w(int32(len(subcatch)))
	w(int32(len(nodes)))
	w(int32(len(spec.links)))
	w(int32(0)) // pollutants

	idPos := int32(buf.Len())
	for _, s := range subcatch {
		writeName(s)
	}
	for _, s := range nodes {
		writeName(s)
	}
	for _, s := range spec.links {
		writeName(s)
	}
	// No pollutant names or concentration unit codes.

	propPos := int32(buf.Len())
	w(int32(1)) // one subcatchment property: area
	w(int32(1))
	for range subcatch {
		w(float32(66))
	}
	w(int32(3)) // node properties: type, invert, max depth
	for i := 0; i < 3; i++ {
		w(int32(i))
	}
	for range nodes {
		w(float32(0))
		w(float32(1048))
		w(float32(3))
	}
	w(int32(5)) // link properties
	for i := 0; i < 5; i++ {
		w(int32(i))
	}
	for range spec.links {
		for i := 0; i < 5; i++ {
			w(float32(i))
		}
	}

	// Reporting variable counts and codes.
	counts := []int32{8, 6, 5, 15} // subcatch, node, link, system
	for _, n := range counts {
		w(n)
		for i := int32(0); i < n; i++ {
			w(i)
		}
	}

	w(float64(33238.0)) // start date
	w(spec.reportStep)

	resultPos := int32(buf.Len())
	for p, flows := range spec.linkFlows {
		w(float64(33238.0) + float64(p))
		for range subcatch {
			for i := 0; i < 8; i++ {
				w(float32(0.5))
			}
		}
		for range nodes {
			for i := 0; i < 6; i++ {
				w(float32(0.25))
			}
		}
		for l := range spec.links {
			w(flows[l]) // FLOW_RATE first
			for i := 1; i < 5; i++ {
				w(float32(9.9))
			}
		}
		for i := 0; i < 15; i++ {
			w(float32(0.1))
		}
	}

	// Closing records.
	w(idPos)
	w(propPos)
	w(resultPos)
	w(int32(len(spec.linkFlows)))
	w(spec.errCode)
	if spec.badClosing {
		w(int32(123))
	} else {
		w(outMagic)
	}

	path := filepath.Join(t.TempDir(), "model_run.out")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadLinkFlows_ExtractsSeries(t *testing.T) {
	path := writeOutFile(t, outFileSpec{
		links: []string{"Link_1", "Link_2"},
		linkFlows: [][]float32{
			{0.001, 7},
			{0.25, 7},
			{-0.013, 7}, // reverse flow still reaches the separator
			{0, 7},
		},
		reportStep: 3600,
	})

	series, err := ReadLinkFlows(path, "Link_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.StepSeconds != 3600 {
		t.Errorf("StepSeconds = %g, want 3600", series.StepSeconds)
	}
	want := []float64{0.001, 0.25, 0.013, 0}
	if len(series.Flows) != len(want) {
		t.Fatalf("got %d flows, want %d", len(series.Flows), len(want))
	}
	for i := range want {
		if math.Abs(series.Flows[i]-want[i]) > 1e-7 {
			t.Errorf("flow[%d] = %g, want %g", i, series.Flows[i], want[i])
		}
	}
}

func TestReadLinkFlows_SecondLink(t *testing.T) {
	path := writeOutFile(t, outFileSpec{
		links:      []string{"Link_1", "Link_2"},
		linkFlows:  [][]float32{{1, 2}, {3, 4}},
		reportStep: 300,
	})

	series, err := ReadLinkFlows(path, "Link_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Flows[0] != 2 || series.Flows[1] != 4 {
		t.Errorf("flows = %v, want [2 4]", series.Flows)
	}
}

func TestReadLinkFlows_UnknownLink(t *testing.T) {
	path := writeOutFile(t, outFileSpec{
		links:      []string{"Link_1"},
		linkFlows:  [][]float32{{1}},
		reportStep: 3600,
	})

	_, err := ReadLinkFlows(path, "Link_99")
	if err == nil {
		t.Fatal("expected error for unknown link")
	}
	if !strings.Contains(err.Error(), "Link_1") {
		t.Errorf("error should list available links: %v", err)
	}
}

func TestReadLinkFlows_EngineErrorCode(t *testing.T) {
	path := writeOutFile(t, outFileSpec{
		links:      []string{"Link_1"},
		linkFlows:  [][]float32{{1}},
		reportStep: 3600,
		errCode:    317,
	})

	_, err := ReadLinkFlows(path, "Link_1")
	if err == nil || !strings.Contains(err.Error(), "317") {
		t.Fatalf("expected error carrying engine code, got %v", err)
	}
}

func TestReadLinkFlows_IncompleteRun(t *testing.T) {
	path := writeOutFile(t, outFileSpec{
		links:      []string{"Link_1"},
		linkFlows:  [][]float32{{1}},
		reportStep: 3600,
		badClosing: true,
	})

	_, err := ReadLinkFlows(path, "Link_1")
	if err == nil || !strings.Contains(err.Error(), "magic") {
		t.Fatalf("expected closing-magic error, got %v", err)
	}
}

func TestReadLinkFlows_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.out")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLinkFlows(path, "Link_1"); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
