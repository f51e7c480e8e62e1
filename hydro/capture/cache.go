package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Flows cache: a gzip-framed binary snapshot of a discharge series, written
// once after a simulation so later analysis runs skip the engine entirely.
// Layout inside the gzip stream, all little-endian:
//
//	magic   uint32  "OGSF"
//	version uint32
//	step    float64 (seconds)
//	count   uint64
//	flows   count x float64 (CMS)

const (
	cacheMagic   uint32 = 0x4f475346 // "OGSF"
	cacheVersion uint32 = 1
)

// SaveSeries writes the series to path atomically (temp file + rename).
func SaveSeries(path string, series *DischargeSeries) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".flows-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if err := writeSeries(zw, series); err != nil {
		tmp.Close()
		return fmt.Errorf("write flows cache: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("close flows cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadSeries reads a series previously written by SaveSeries.
func LoadSeries(path string) (*DischargeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open flows cache %s: %w", path, err)
	}
	defer zr.Close()

	series, err := readSeries(zr)
	if err != nil {
		return nil, fmt.Errorf("read flows cache %s: %w", path, err)
	}
	return series, nil
}

func writeSeries(w io.Writer, series *DischargeSeries) error {
	hdr := make([]byte, 4+4+8+8)
	binary.LittleEndian.PutUint32(hdr[0:], cacheMagic)
	binary.LittleEndian.PutUint32(hdr[4:], cacheVersion)
	binary.LittleEndian.PutUint64(hdr[8:], math.Float64bits(series.StepSeconds))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(series.Flows)))
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	buf := make([]byte, 8*len(series.Flows))
	for i, f := range series.Flows {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(f))
	}
	_, err := w.Write(buf)
	return err
}

func readSeries(r io.Reader) (*DischargeSeries, error) {
	hdr := make([]byte, 4+4+8+8)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	if magic := binary.LittleEndian.Uint32(hdr[0:]); magic != cacheMagic {
		return nil, fmt.Errorf("bad magic 0x%08x", magic)
	}
	if v := binary.LittleEndian.Uint32(hdr[4:]); v != cacheVersion {
		return nil, fmt.Errorf("unsupported cache version %d", v)
	}
	step := math.Float64frombits(binary.LittleEndian.Uint64(hdr[8:]))
	count := binary.LittleEndian.Uint64(hdr[16:])
	if step <= 0 {
		return nil, fmt.Errorf("non-positive report step %g", step)
	}

	buf := make([]byte, 8*count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("truncated flow data: %w", err)
	}
	flows := make([]float64, count)
	for i := range flows {
		flows[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return &DischargeSeries{Flows: flows, StepSeconds: step}, nil
}
