package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_Sweep(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	hclPath := filepath.Join(dir, "runs.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(`
sweep "scan" {
  iterations   = 2
  size         = 3
  temperatures = [0.2, 0.8]
}
`), 0o600))
	outDir := t.TempDir()
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"llsweep", "-output-dir", outDir, "-workers", "2", hclPath})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out.String(), "llsweep: Size: 3, Steps: 2"))
	matches, err := filepath.Glob(filepath.Join(outDir, "LL-Output-scan-*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestRun_SweepWithoutPathsPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"llsweep"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage: llsweep [options] <PATH>...")
}

func TestRun_SweepLoadFailure(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"llsweep", filepath.Join(t.TempDir(), "missing")})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load sweep")
}
