package lattice

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidSize is returned when a lattice is requested with a non-positive side.
var ErrInvalidSize = errors.New("lattice: size must be positive")

// Lattice is a size×size grid of director angles in radians, stored row-major.
type Lattice struct {
	size   int
	angles []float64
}

// New returns a lattice with every angle set to zero.
func New(size int) (*Lattice, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return &Lattice{size: size, angles: make([]float64, size*size)}, nil
}

// Random returns a lattice with angles drawn uniformly from [0, 2π).
func Random(size int, rng *rand.Rand) (*Lattice, error) {
	l, err := New(size)
	if err != nil {
		return nil, err
	}
	for i := range l.angles {
		l.angles[i] = rng.Float64() * 2 * math.Pi
	}
	return l, nil
}

// Aligned returns a lattice where every director points along angle.
func Aligned(size int, angle float64) (*Lattice, error) {
	l, err := New(size)
	if err != nil {
		return nil, err
	}
	for i := range l.angles {
		l.angles[i] = angle
	}
	return l, nil
}

// Size returns the side length.
func (l *Lattice) Size() int {
	return l.size
}

func (l *Lattice) index(x, y int) int {
	return wrap(x, l.size)*l.size + wrap(y, l.size)
}

// wrap applies the periodic boundary.
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// At returns the angle at (x, y). Coordinates wrap around the edges.
func (l *Lattice) At(x, y int) float64 {
	return l.angles[l.index(x, y)]
}

// Set stores the angle at (x, y).
func (l *Lattice) Set(x, y int, v float64) {
	l.angles[l.index(x, y)] = v
}

// Add rotates the director at (x, y) by d.
func (l *Lattice) Add(x, y int, d float64) {
	l.angles[l.index(x, y)] += d
}

// Angles returns a copy of the raw row-major angles.
func (l *Lattice) Angles() []float64 {
	out := make([]float64, len(l.angles))
	copy(out, l.angles)
	return out
}

// Clone returns a deep copy.
func (l *Lattice) Clone() *Lattice {
	return &Lattice{size: l.size, angles: l.Angles()}
}
