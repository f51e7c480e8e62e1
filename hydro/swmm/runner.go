package swmm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stormwise/ogs-sizing/hydro/capture"
)

// Job describes one simulation run.
type Job struct {
	// Workdir holds the staged model and rainfall files and receives the
	// engine's report and binary output.
	Workdir string
	// ModelPath optionally overrides the built-in catchment model.
	ModelPath string
	// OutletLink is the conduit whose flow series is extracted.
	OutletLink string
}

// Runner runs the external hydrology engine and returns the outlet
// discharge series. The analyzer is tested against synthetic series through
// this seam, independent of engine availability.
type Runner interface {
	Run(ctx context.Context, job Job) (*capture.DischargeSeries, error)
}

// ExecRunner invokes the SWMM command-line binary (runswmm) as a
// subprocess. The engine call is blocking and synchronous; Timeout bounds it
// because an unattended multi-decade simulation that hangs would otherwise
// block the pipeline forever. Expiry is pipeline-fatal.
type ExecRunner struct {
	// Binary is the engine executable. Empty means "runswmm" on PATH.
	Binary  string
	Timeout time.Duration
}

// DefaultTimeout bounds a 30-year continuous simulation generously.
const DefaultTimeout = 30 * time.Minute

func (r *ExecRunner) binary() string {
	if r.Binary == "" {
		return "runswmm"
	}
	return r.Binary
}

func (r *ExecRunner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Run stages the model, executes the engine and parses the binary output.
// The rainfall DAT file must already exist in the working directory.
func (r *ExecRunner) Run(ctx context.Context, job Job) (*capture.DischargeSeries, error) {
	modelPath, err := StageModel(job.Workdir, job.ModelPath)
	if err != nil {
		return nil, err
	}
	rainPath := filepath.Join(job.Workdir, RainFileName)
	if _, err := os.Stat(rainPath); err != nil {
		return nil, fmt.Errorf("rainfall file missing: %w", err)
	}

	bin, err := exec.LookPath(r.binary())
	if err != nil {
		return nil, fmt.Errorf("engine binary %q not found: %w", r.binary(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	rptPath := filepath.Join(job.Workdir, ReportFileName)
	outPath := filepath.Join(job.Workdir, OutFileName)

	cmd := exec.CommandContext(ctx, bin, filepath.Base(modelPath), ReportFileName, OutFileName)
	cmd.Dir = job.Workdir
	logrus.Infof("running %s %s (timeout %s)", bin, strings.Join(cmd.Args[1:], " "), r.timeout())

	started := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("engine timed out after %s", r.timeout())
		}
		return nil, fmt.Errorf("engine failed: %w: %s", err, firstLine(output))
	}
	logrus.Infof("engine completed in %s", time.Since(started).Round(time.Second))

	if err := CheckReport(rptPath); err != nil {
		return nil, err
	}

	outlet := job.OutletLink
	if outlet == "" {
		outlet = DefaultOutletLink
	}
	return ReadLinkFlows(outPath, outlet)
}

// CheckReport scans the engine's text report for fatal error lines. SWMM can
// exit zero while still reporting a failed run, so the report is the
// authoritative completion signal.
func CheckReport(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open engine report: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "ERROR") {
			return fmt.Errorf("engine report error: %s", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan engine report: %w", err)
	}
	return nil
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
