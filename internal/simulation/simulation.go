package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
	"github.com/specialistvlad/lebwohllasher/internal/lattice"
)

// initialRatio is the acceptance ratio recorded for step 0, before any move.
const initialRatio = 0.5

// Step is the state recorded after one Monte Carlo step.
type Step struct {
	Index  int
	Ratio  float64
	Energy float64
	Order  float64
}

// Observer is notified after the initial state and after every step.
type Observer interface {
	OnStep(ctx context.Context, step Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, step Step)

// OnStep implements Observer.
func (f ObserverFunc) OnStep(ctx context.Context, step Step) { f(ctx, step) }

// Result is the outcome of a completed run.
type Result struct {
	Params Params
	// Seed is the seed actually used, even when Params.Seed was 0.
	Seed    uint64
	Started time.Time
	Runtime time.Duration

	Ratio  []float64
	Energy []float64
	Order  []float64

	Initial *lattice.Lattice
	Final   *lattice.Lattice
}

// FinalOrder returns the order parameter after the last step.
func (r *Result) FinalOrder() float64 {
	return r.Order[len(r.Order)-1]
}

// FinalEnergy returns the total energy after the last step.
func (r *Result) FinalEnergy() float64 {
	return r.Energy[len(r.Energy)-1]
}

// MeanRatio averages the acceptance ratio over the performed steps. It is the
// initial ratio when no step was performed.
func (r *Result) MeanRatio() float64 {
	if len(r.Ratio) < 2 {
		return r.Ratio[0]
	}
	var sum float64
	for _, v := range r.Ratio[1:] {
		sum += v
	}
	return sum / float64(len(r.Ratio)-1)
}

// SummaryLine is the one-line report printed after a run.
func (r *Result) SummaryLine(program string) string {
	return fmt.Sprintf("%s: Size: %d, Steps: %d, T*: %5.3f: Order: %5.3f, Time: %8.6f s",
		program, r.Params.Size, r.Params.Iterations, r.Params.Temperature, r.FinalOrder(), r.Runtime.Seconds())
}

// Run performs one simulation. The context is checked between steps; a
// canceled run returns the context error and no result.
func Run(ctx context.Context, p Params, observers ...Observer) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger := ctxlog.FromContext(ctx).With("size", p.Size, "iterations", p.Iterations, "temperature", p.Temperature, "seed", seed)
	logger.Debug("Simulation starting.")

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	lat, err := lattice.Random(p.Size, rng)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Params:  p,
		Seed:    seed,
		Started: time.Now(),
		Ratio:   make([]float64, p.Iterations+1),
		Energy:  make([]float64, p.Iterations+1),
		Order:   make([]float64, p.Iterations+1),
		Initial: lat.Clone(),
	}

	record := func(i int, ratio float64) error {
		energy, err := lat.TotalEnergy(ctx, p.Workers)
		if err != nil {
			return err
		}
		order, err := lat.Order(ctx, p.Workers)
		if err != nil {
			return err
		}
		res.Ratio[i], res.Energy[i], res.Order[i] = ratio, energy, order
		step := Step{Index: i, Ratio: ratio, Energy: energy, Order: order}
		for _, o := range observers {
			o.OnStep(ctx, step)
		}
		return nil
	}

	if err := record(0, initialRatio); err != nil {
		return nil, err
	}

	start := time.Now()
	for i := 1; i <= p.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Simulation canceled.", "step", i)
			return nil, err
		}
		ratio := lat.MetropolisStep(p.Temperature, rng)
		if err := record(i, ratio); err != nil {
			return nil, err
		}
	}
	res.Runtime = time.Since(start)
	res.Final = lat

	logger.Debug("Simulation finished.", "order", res.FinalOrder(), "runtime", res.Runtime)
	return res, nil
}
