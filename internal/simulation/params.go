package simulation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every Params validation failure.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params describes one run.
type Params struct {
	Iterations  int
	Size        int
	Temperature float64
	PlotFlag    int
	// Seed 0 asks Run to pick a seed from the clock.
	Seed uint64
	// Workers bounds the goroutines used for energy and order reductions.
	Workers int
}

// Validate reports the first parameter that cannot describe a run.
func (p Params) Validate() error {
	if p.Size < 1 {
		return fmt.Errorf("%w: size must be at least 1, got %d", ErrInvalidParams, p.Size)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalidParams, p.Iterations)
	}
	if math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) || p.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be a finite non-negative number, got %v", ErrInvalidParams, p.Temperature)
	}
	return nil
}
