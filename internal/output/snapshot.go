package output

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/specialistvlad/lebwohllasher/internal/lattice"
)

// SnapshotMode selects which per-cell quantity a lattice snapshot holds.
type SnapshotMode int

const (
	SnapshotNone SnapshotMode = iota
	SnapshotEnergy
	SnapshotAngle
	SnapshotRaw
)

// ModeFromPlotFlag maps the launcher's plot flag onto a snapshot mode:
// 0 none, 1 cell energies, 2 angles folded into [0, π), anything else raw angles.
func ModeFromPlotFlag(flag int) SnapshotMode {
	switch flag {
	case 0:
		return SnapshotNone
	case 1:
		return SnapshotEnergy
	case 2:
		return SnapshotAngle
	default:
		return SnapshotRaw
	}
}

func (m SnapshotMode) String() string {
	switch m {
	case SnapshotNone:
		return "none"
	case SnapshotEnergy:
		return "energy"
	case SnapshotAngle:
		return "angle"
	default:
		return "raw"
	}
}

// WriteSnapshot writes one row of the lattice per line, values separated by a
// single space.
func WriteSnapshot(w io.Writer, l *lattice.Lattice, mode SnapshotMode) error {
	if mode == SnapshotNone {
		return nil
	}
	n := l.Size()
	var values []float64
	switch mode {
	case SnapshotEnergy:
		values = l.EnergyMap()
	default:
		values = l.Angles()
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s %dx%d\n", mode, n, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			v := values[x*n+y]
			if mode == SnapshotAngle {
				v = math.Mod(v, math.Pi)
				if v < 0 {
					v += math.Pi
				}
			}
			if y > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%.6f", v)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
