package swmm

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// Default artifact names inside the working directory. The model file
// references the rain file by this relative name, so the two must sit side
// by side.
const (
	ModelFileName  = "calgary_model.inp"
	ReportFileName = "calgary_model.rpt"
	OutFileName    = "model_run.out"
	RainFileName   = "calgary_rainfall.dat"

	// DefaultOutletLink is the outlet conduit name in the built-in model.
	DefaultOutletLink = "Link_1"
)

// The catchment model is a fixed, versioned artifact. It is never generated
// at runtime; a custom model may be supplied by path instead.
//
//go:embed assets/calgary_model.inp
var builtinModel []byte

// StageModel places the model file into the working directory and returns
// its path. With modelPath empty the built-in Calgary model is written;
// otherwise the referenced file is copied in under the canonical name.
func StageModel(workdir, modelPath string) (string, error) {
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return "", fmt.Errorf("create workdir: %w", err)
	}
	dst := filepath.Join(workdir, ModelFileName)

	data := builtinModel
	if modelPath != "" {
		var err error
		data, err = os.ReadFile(modelPath)
		if err != nil {
			return "", fmt.Errorf("read model file: %w", err)
		}
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("stage model file: %w", err)
	}
	return dst, nil
}
