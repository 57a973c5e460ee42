package output

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/lebwohllasher/internal/simulation"
)

// StampLayout formats the creation time embedded in file names and headers.
const StampLayout = "Mon-02-Jan-2006-at-03-04-05PM"

const rule = "#====================================================="

// WriteData writes the run header followed by one line per recorded step.
func WriteData(w io.Writer, res *simulation.Result, created time.Time) error {
	bw := bufio.NewWriter(w)
	p := res.Params

	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "# File created:        %s\n", created.Format(StampLayout))
	fmt.Fprintf(bw, "# Size of lattice:     %dx%d\n", p.Size, p.Size)
	fmt.Fprintf(bw, "# Number of MC steps:  %d\n", p.Iterations)
	fmt.Fprintf(bw, "# Reduced temperature: %5.3f\n", p.Temperature)
	fmt.Fprintf(bw, "# Run time (s):        %8.6f\n", res.Runtime.Seconds())
	fmt.Fprintf(bw, "# Seed:                %d\n", res.Seed)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "# MC step:  Ratio:     Energy:   Order:")
	fmt.Fprintln(bw, rule)
	for i := range res.Ratio {
		fmt.Fprintf(bw, "   %05d    %6.4f %12.4f  %6.4f \n", i, res.Ratio[i], res.Energy[i], res.Order[i])
	}

	return bw.Flush()
}
