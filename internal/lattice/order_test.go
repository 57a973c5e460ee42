package lattice

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrder_AlignedIsOne(t *testing.T) {
	t.Parallel()

	for _, angle := range []float64{0, 0.7, math.Pi / 2, math.Pi, 5.0} {
		l, err := Aligned(8, angle)
		require.NoError(t, err)

		order, err := l.Order(context.Background(), 2)
		require.NoError(t, err)
		require.InDelta(t, 1.0, order, 1e-9, "angle=%v", angle)
	}
}

func TestOrder_RandomIsNearQuarter(t *testing.T) {
	t.Parallel()

	l, err := Random(100, rand.New(rand.NewPCG(21, 22)))
	require.NoError(t, err)

	order, err := l.Order(context.Background(), 4)
	require.NoError(t, err)
	require.InDelta(t, 0.25, order, 0.05)
}

func TestOrder_AlternatingPerpendicularStripes(t *testing.T) {
	t.Parallel()

	l, err := New(4)
	require.NoError(t, err)
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if x%2 == 1 {
				l.Set(x, y, math.Pi/2)
			}
		}
	}

	// Qxx = Qyy = 1/4 and Qxy = 0, so the in-plane eigenvalues are both 1/4.
	order, err := l.Order(context.Background(), 1)
	require.NoError(t, err)
	require.InDelta(t, 0.25, order, 1e-12)
}
