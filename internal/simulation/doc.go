// Package simulation drives a single Lebwohl-Lasher run: it builds the random
// initial lattice, performs the requested number of Metropolis steps and
// records the acceptance ratio, total energy and order parameter after every
// step.
package simulation
