package capture

import (
	"errors"
	"fmt"
)

// ErrEmptySeries reports a discharge series with no wet-weather samples.
// The capture curve is undefined for an empty or all-dry series.
var ErrEmptySeries = errors.New("discharge series has no wet-weather samples")

// InvalidPercentageError reports a requested capture percentage outside [0, 100].
type InvalidPercentageError struct {
	Percent float64
}

func (e *InvalidPercentageError) Error() string {
	return fmt.Sprintf("capture percentage %g outside valid range [0, 100]", e.Percent)
}
