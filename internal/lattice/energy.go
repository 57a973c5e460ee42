package lattice

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// pairEnergy is the Lebwohl-Lasher interaction between two planar directors:
// 0.5·(1 − 3·cos²Δθ).
func pairEnergy(a, b float64) float64 {
	c := math.Cos(a - b)
	return 0.5 * (1.0 - 3.0*c*c)
}

// CellEnergy returns the energy of the cell at (x, y) with its four nearest
// neighbours.
func (l *Lattice) CellEnergy(x, y int) float64 {
	a := l.At(x, y)
	return pairEnergy(a, l.At(x+1, y)) +
		pairEnergy(a, l.At(x-1, y)) +
		pairEnergy(a, l.At(x, y+1)) +
		pairEnergy(a, l.At(x, y-1))
}

// TotalEnergy sums CellEnergy over every cell, so each bond is counted twice.
func (l *Lattice) TotalEnergy(ctx context.Context, workers int) (float64, error) {
	partials, err := l.reduceRows(ctx, workers, func(x int) float64 {
		var rowSum float64
		for y := 0; y < l.size; y++ {
			rowSum += l.CellEnergy(x, y)
		}
		return rowSum
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range partials {
		total += p
	}
	return total, nil
}

// EnergyMap returns the per-cell energies in row-major order.
func (l *Lattice) EnergyMap() []float64 {
	out := make([]float64, l.size*l.size)
	for x := 0; x < l.size; x++ {
		for y := 0; y < l.size; y++ {
			out[x*l.size+y] = l.CellEnergy(x, y)
		}
	}
	return out
}

// reduceRows splits the rows into at most workers contiguous bands, runs rowFn
// for every row and returns one partial sum per band in band order.
func (l *Lattice) reduceRows(ctx context.Context, workers int, rowFn func(x int) float64) ([]float64, error) {
	bands := workers
	if bands < 1 {
		bands = 1
	}
	if bands > l.size {
		bands = l.size
	}
	partials := make([]float64, bands)
	g, gctx := errgroup.WithContext(ctx)
	for b := 0; b < bands; b++ {
		lo := b * l.size / bands
		hi := (b + 1) * l.size / bands
		g.Go(func() error {
			var sum float64
			for x := lo; x < hi; x++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				sum += rowFn(x)
			}
			partials[b] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}
