// Package lattice implements the two-dimensional Lebwohl-Lasher model: a
// square grid of planar director angles with periodic boundaries, the
// nearest-neighbour pair energy, the Q-tensor order parameter and a
// Metropolis Monte Carlo step.
//
// Energy and order are reductions over the whole grid and are computed in
// parallel over row bands. Partial sums are combined in band order, so for a
// fixed worker count the result is independent of goroutine scheduling.
package lattice
