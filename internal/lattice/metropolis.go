package lattice

import (
	"math"
	"math/rand/v2"
)

// MetropolisStep performs size² trial rotations at sites drawn uniformly with
// replacement. Each rotation is drawn from N(0, (0.1+T)²) and accepted when it
// lowers the cell energy, otherwise with probability exp(−ΔE/T). At T = 0 every
// uphill move is rejected. It returns the fraction of accepted moves.
func (l *Lattice) MetropolisStep(temperature float64, rng *rand.Rand) float64 {
	scale := 0.1 + temperature
	trials := l.size * l.size
	accepted := 0

	for range trials {
		x := rng.IntN(l.size)
		y := rng.IntN(l.size)
		delta := rng.NormFloat64() * scale

		before := l.CellEnergy(x, y)
		l.Add(x, y, delta)
		after := l.CellEnergy(x, y)

		if after <= before {
			accepted++
			continue
		}
		if temperature > 0 {
			boltz := math.Exp(-(after - before) / temperature)
			if boltz >= rng.Float64() {
				accepted++
				continue
			}
		}
		l.Add(x, y, -delta)
	}

	return float64(accepted) / float64(trials)
}
