package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "flows.bin.gz")
	series := &DischargeSeries{
		Flows:       []float64{0, 0.0015, 0.21, 0, 3.5e-4},
		StepSeconds: 3600,
	}

	require.NoError(t, SaveSeries(path, series))

	loaded, err := LoadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, series, loaded)
}

func TestCache_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.bin.gz")
	require.NoError(t, os.WriteFile(path, []byte("not a cache"), 0o644))

	_, err := LoadSeries(path)
	assert.Error(t, err)
}

func TestCache_MissingFile(t *testing.T) {
	_, err := LoadSeries(filepath.Join(t.TempDir(), "absent.bin.gz"))
	assert.Error(t, err)
}

func TestSeries_Scale(t *testing.T) {
	s := &DischargeSeries{Flows: []float64{0.01, 0.02}, StepSeconds: 3600}
	scaled := s.Scale(1.5)

	assert.InDelta(t, 0.015, scaled.Flows[0], 1e-12)
	assert.InDelta(t, 0.03, scaled.Flows[1], 1e-12)
	assert.Equal(t, s.StepSeconds, scaled.StepSeconds)
	// Source series untouched.
	assert.Equal(t, 0.01, s.Flows[0])
}
