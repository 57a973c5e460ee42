package lattice

import (
	"context"
	"math"
)

// qTensor holds the non-trivial in-plane components of the order tensor.
// Directors are l = (cosθ, sinθ, 0), so Q is block diagonal: a 2×2 in-plane
// block and Qzz = −1/2.
type qTensor struct {
	xx, xy, yy float64
}

// Order returns the largest eigenvalue of Q_ab = Σ(3·l_a·l_b − δ_ab) / (2N).
// It is 1 for a perfectly aligned lattice and about 0.25 for random angles.
func (l *Lattice) Order(ctx context.Context, workers int) (float64, error) {
	q, err := l.tensor(ctx, workers)
	if err != nil {
		return 0, err
	}
	return q.maxEigenvalue(), nil
}

func (l *Lattice) tensor(ctx context.Context, workers int) (qTensor, error) {
	component := func(f func(c, s float64) float64) func(x int) float64 {
		return func(x int) float64 {
			var sum float64
			for y := 0; y < l.size; y++ {
				s, c := math.Sincos(l.At(x, y))
				sum += f(c, s)
			}
			return sum
		}
	}

	sums := make([]float64, 3)
	fns := []func(c, s float64) float64{
		func(c, _ float64) float64 { return 3*c*c - 1 },
		func(c, s float64) float64 { return 3 * c * s },
		func(_, s float64) float64 { return 3*s*s - 1 },
	}
	for i, f := range fns {
		partials, err := l.reduceRows(ctx, workers, component(f))
		if err != nil {
			return qTensor{}, err
		}
		for _, p := range partials {
			sums[i] += p
		}
	}

	norm := 2.0 * float64(l.size*l.size)
	return qTensor{xx: sums[0] / norm, xy: sums[1] / norm, yy: sums[2] / norm}, nil
}

func (q qTensor) maxEigenvalue() float64 {
	mean := (q.xx + q.yy) / 2
	half := (q.xx - q.yy) / 2
	inPlane := mean + math.Hypot(half, q.xy)
	return math.Max(inPlane, -0.5)
}
