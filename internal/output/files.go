package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
	"github.com/specialistvlad/lebwohllasher/internal/lattice"
	"github.com/specialistvlad/lebwohllasher/internal/simulation"
)

// Writer places every artifact of one run in Dir. Name, when set, prefixes
// the timestamp so concurrent runs of a sweep do not collide.
type Writer struct {
	Dir     string
	Name    string
	Program string
	Summary bool
	Now     func() time.Time
}

// Artifacts lists the files written for a run.
type Artifacts struct {
	Data     string
	Summary  string
	Snapshot []string
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Writer) path(kind, suffix, stamp string) string {
	base := "LL-" + kind + "-"
	if w.Name != "" {
		base += w.Name + "-"
	}
	return filepath.Join(w.Dir, base+stamp+suffix)
}

// Write stores the data file, the snapshots requested by the plot flag and,
// when enabled, the YAML summary.
func (w *Writer) Write(ctx context.Context, res *simulation.Result) (*Artifacts, error) {
	logger := ctxlog.FromContext(ctx)
	created := w.now()
	stamp := created.Format(StampLayout)

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.Dir, err)
	}

	art := &Artifacts{Data: w.path("Output", ".txt", stamp)}
	if err := writeFile(art.Data, func(f io.Writer) error { return WriteData(f, res, created) }); err != nil {
		return nil, err
	}
	logger.Debug("Data file written.", "path", art.Data)

	if mode := ModeFromPlotFlag(res.Params.PlotFlag); mode != SnapshotNone {
		snaps := []struct {
			tag string
			lat *lattice.Lattice
		}{{"initial", res.Initial}, {"final", res.Final}}
		for _, snap := range snaps {
			path := w.path("Lattice", "-"+snap.tag+".txt", stamp)
			if err := writeFile(path, func(f io.Writer) error { return WriteSnapshot(f, snap.lat, mode) }); err != nil {
				return nil, err
			}
			art.Snapshot = append(art.Snapshot, path)
		}
		logger.Debug("Lattice snapshots written.", "mode", mode.String(), "count", len(art.Snapshot))
	}

	if w.Summary {
		art.Summary = w.path("Summary", ".yaml", stamp)
		sum := NewSummary(w.Name, w.Program, res, created, filepath.Base(art.Data))
		if err := writeFile(art.Summary, func(f io.Writer) error { return WriteSummary(f, sum) }); err != nil {
			return nil, err
		}
	}

	return art, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
