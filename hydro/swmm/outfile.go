// Package swmm invokes the external EPA SWMM engine and parses its binary
// output. The engine is an opaque collaborator: this package only builds a
// syntactically valid input, runs the binary, checks for a successful
// completion signal, and extracts the outlet link's flow series.
package swmm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stormwise/ogs-sizing/hydro/capture"
)

// outMagic opens and closes every SWMM 5 binary output file.
const outMagic int32 = 516114522

// flowUnitsCMS is the engine's code for cubic meters per second.
const flowUnitsCMS int32 = 3

// Link flow rate is the first link reporting variable.
const linkVarFlowRate = 0

// ReadLinkFlows reads the flow time series of one link from a SWMM binary
// output file, together with the report step. Flows are returned as absolute
// values: reverse flow through the outlet still reaches the separator.
func ReadLinkFlows(path, linkID string) (*capture.DischargeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() < 7*4+6*4 {
		return nil, fmt.Errorf("output file %s truncated (%d bytes)", path, info.Size())
	}

	closing, err := readClosing(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("output file %s: %w", path, err)
	}
	if closing.errCode != 0 {
		return nil, fmt.Errorf("engine reported error code %d in %s", closing.errCode, path)
	}
	if closing.nPeriods <= 0 {
		return nil, fmt.Errorf("output file %s has no reporting periods", path)
	}

	hdr, err := readHeader(f)
	if err != nil {
		return nil, fmt.Errorf("output file %s: %w", path, err)
	}
	if hdr.flowUnits != flowUnitsCMS {
		logrus.Warnf("output file %s uses flow units code %d, expected CMS (%d); values pass through unconverted",
			path, hdr.flowUnits, flowUnitsCMS)
	}

	linkIdx, err := findLinkIndex(f, hdr, closing.idPos, linkID)
	if err != nil {
		return nil, err
	}

	layout, err := readResultLayout(f, hdr, closing.propPos)
	if err != nil {
		return nil, fmt.Errorf("output file %s: %w", path, err)
	}

	flows, err := readLinkSeries(f, hdr, layout, closing, linkIdx)
	if err != nil {
		return nil, fmt.Errorf("output file %s: %w", path, err)
	}

	logrus.Infof("read %d flow records for link %q at %d s report step", len(flows), linkID, layout.reportStepSec)
	return &capture.DischargeSeries{Flows: flows, StepSeconds: float64(layout.reportStepSec)}, nil
}

type header struct {
	version   int32
	flowUnits int32
	nSubcatch int32
	nNodes    int32
	nLinks    int32
	nPollut   int32
}

type closingRecords struct {
	idPos     int64
	propPos   int64
	resultPos int64
	nPeriods  int32
	errCode   int32
}

type resultLayout struct {
	nSubcatchVars int32
	nNodeVars     int32
	nLinkVars     int32
	nSysVars      int32
	reportStepSec int32
}

func readHeader(f *os.File) (*header, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var raw [7]int32
	if err := binary.Read(f, binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if raw[0] != outMagic {
		return nil, fmt.Errorf("bad opening magic %d", raw[0])
	}
	return &header{
		version:   raw[1],
		flowUnits: raw[2],
		nSubcatch: raw[3],
		nNodes:    raw[4],
		nLinks:    raw[5],
		nPollut:   raw[6],
	}, nil
}

// readClosing parses the six trailing int32 records: section offsets, period
// count, engine error code, and the closing magic.
func readClosing(f *os.File, size int64) (*closingRecords, error) {
	if _, err := f.Seek(size-6*4, io.SeekStart); err != nil {
		return nil, err
	}
	var raw [6]int32
	if err := binary.Read(f, binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("read closing records: %w", err)
	}
	if raw[5] != outMagic {
		return nil, fmt.Errorf("bad closing magic %d (run did not complete)", raw[5])
	}
	return &closingRecords{
		idPos:     int64(raw[0]),
		propPos:   int64(raw[1]),
		resultPos: int64(raw[2]),
		nPeriods:  raw[3],
		errCode:   raw[4],
	}, nil
}

// findLinkIndex scans the object-ID section for the named link. The format
// stores length-prefixed names for subcatchments, nodes, links and
// pollutants in that order.
func findLinkIndex(f *os.File, hdr *header, idPos int64, linkID string) (int32, error) {
	if _, err := f.Seek(idPos, io.SeekStart); err != nil {
		return 0, err
	}
	r := bufio.NewReader(f)

	skip := func(n int32) error {
		for i := int32(0); i < n; i++ {
			if _, err := readName(r); err != nil {
				return err
			}
		}
		return nil
	}
	if err := skip(hdr.nSubcatch); err != nil {
		return 0, fmt.Errorf("read subcatchment names: %w", err)
	}
	if err := skip(hdr.nNodes); err != nil {
		return 0, fmt.Errorf("read node names: %w", err)
	}

	var available []string
	found := int32(-1)
	for i := int32(0); i < hdr.nLinks; i++ {
		name, err := readName(r)
		if err != nil {
			return 0, fmt.Errorf("read link names: %w", err)
		}
		if name == linkID {
			found = i
		}
		if len(available) < 10 {
			available = append(available, name)
		}
	}
	if found < 0 {
		return 0, fmt.Errorf("link %q not found in output file; available links: %v", linkID, available)
	}
	return found, nil
}

func readName(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n < 0 || n > 1024 {
		return "", fmt.Errorf("implausible name length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readResultLayout walks the input-data section to learn how many reporting
// variables each object type carries, then picks up the report step written
// just before the computed results.
func readResultLayout(f *os.File, hdr *header, propPos int64) (*resultLayout, error) {
	if _, err := f.Seek(propPos, io.SeekStart); err != nil {
		return nil, err
	}
	r := bufio.NewReader(f)

	// Saved input properties: a count, that many property codes, then one
	// value per property per object.
	for _, nObjects := range []int32{hdr.nSubcatch, hdr.nNodes, hdr.nLinks} {
		var nProps int32
		if err := binary.Read(r, binary.LittleEndian, &nProps); err != nil {
			return nil, fmt.Errorf("read property count: %w", err)
		}
		if nProps < 0 || nProps > 64 {
			return nil, fmt.Errorf("implausible property count %d", nProps)
		}
		if err := discard(r, int64(nProps)*4+int64(nProps)*int64(nObjects)*4); err != nil {
			return nil, fmt.Errorf("skip properties: %w", err)
		}
	}

	layout := &resultLayout{}
	for _, dst := range []*int32{&layout.nSubcatchVars, &layout.nNodeVars, &layout.nLinkVars, &layout.nSysVars} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("read variable count: %w", err)
		}
		if *dst < 0 || *dst > 256 {
			return nil, fmt.Errorf("implausible variable count %d", *dst)
		}
		if err := discard(r, int64(*dst)*4); err != nil {
			return nil, fmt.Errorf("skip variable codes: %w", err)
		}
	}

	// Start date (8-byte float, unused here) then report step in seconds.
	if err := discard(r, 8); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &layout.reportStepSec); err != nil {
		return nil, fmt.Errorf("read report step: %w", err)
	}
	if layout.reportStepSec <= 0 {
		return nil, fmt.Errorf("non-positive report step %d", layout.reportStepSec)
	}
	return layout, nil
}

// readLinkSeries streams the computed-results section, extracting one link
// variable per period.
func readLinkSeries(f *os.File, hdr *header, layout *resultLayout, closing *closingRecords, linkIdx int32) ([]float64, error) {
	if _, err := f.Seek(closing.resultPos, io.SeekStart); err != nil {
		return nil, err
	}
	r := bufio.NewReaderSize(f, 1<<20)

	// Each period: an 8-byte date followed by float32 values for every
	// reporting variable of every object, system variables last.
	preLink := 8 + 4*(int64(hdr.nSubcatch)*int64(layout.nSubcatchVars)+
		int64(hdr.nNodes)*int64(layout.nNodeVars)+
		int64(linkIdx)*int64(layout.nLinkVars)) + 4*linkVarFlowRate
	postLink := 4*(int64(hdr.nLinks)-int64(linkIdx)-1)*int64(layout.nLinkVars) +
		4*(int64(layout.nLinkVars)-linkVarFlowRate-1) +
		4*int64(layout.nSysVars)

	flows := make([]float64, 0, closing.nPeriods)
	for p := int32(0); p < closing.nPeriods; p++ {
		if err := discard(r, preLink); err != nil {
			return nil, fmt.Errorf("period %d: %w", p, err)
		}
		var v float32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("period %d: read flow: %w", p, err)
		}
		flows = append(flows, math.Abs(float64(v)))
		if err := discard(r, postLink); err != nil {
			return nil, fmt.Errorf("period %d: %w", p, err)
		}
	}
	return flows, nil
}

func discard(r *bufio.Reader, n int64) error {
	_, err := r.Discard(int(n))
	return err
}
