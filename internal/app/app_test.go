package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/lebwohllasher/internal/progress"
	"github.com/specialistvlad/lebwohllasher/internal/sweep"
)

var fixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

type entryCall struct {
	program     string
	iterations  int
	size        int
	temperature float64
	plotFlag    int
}

func TestRun_DispatchesToEntryPointOnce(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var calls []entryCall
	entry := func(_ context.Context, program string, iterations, size int, temperature float64, plotFlag int) error {
		calls = append(calls, entryCall{program, iterations, size, temperature, plotFlag})
		return nil
	}
	testApp, _, _ := SetupAppTest(t, Config{Program: "run_ll", Iterations: 50, Size: 30, Temperature: 0.5}, WithEntryPoint(entry))

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []entryCall{{"run_ll", 50, 30, 0.5, 0}}, calls)
}

func TestRun_PropagatesEntryPointError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	entry := func(context.Context, string, int, int, float64, int) error { return boom }
	testApp, _, _ := SetupAppTest(t, Config{Program: "ll"}, WithEntryPoint(entry))

	require.ErrorIs(t, testApp.Run(context.Background()), boom)
}

func TestRun_DefaultEntryPointSimulatesAndWritesResults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &progress.Recorder{}
	dir := t.TempDir()
	testApp, out, _ := SetupAppTest(t, Config{
		Program:      "ll",
		Iterations:   4,
		Size:         5,
		Temperature:  0.5,
		PlotFlag:     1,
		Seed:         7,
		WorkerCount:  2,
		OutputDir:    dir,
		WriteSummary: true,
	}, WithPublisher(rec), WithClock(fixedClock))

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^ll: Size: 5, Steps: 4, T\*: 0\.500: Order: \d\.\d{3}, Time: +\d+\.\d{6} s\n$`), out.String())

	stamp := "Tue-05-Mar-2024-at-02-07-09PM"
	require.FileExists(t, filepath.Join(dir, "LL-Output-"+stamp+".txt"))
	require.FileExists(t, filepath.Join(dir, "LL-Summary-"+stamp+".yaml"))
	require.FileExists(t, filepath.Join(dir, "LL-Lattice-"+stamp+"-initial.txt"))
	require.FileExists(t, filepath.Join(dir, "LL-Lattice-"+stamp+"-final.txt"))

	events := rec.Events()
	require.Len(t, events, 6)
	require.Equal(t, progress.EventFinished, events[5].Event)
	require.True(t, rec.Closed())

	status := testApp.Status()
	require.Equal(t, int64(1), status.RunsStarted)
	require.Equal(t, int64(1), status.RunsFinished)
	require.Equal(t, int64(4), status.LastStep)
}

func TestRun_DefaultEntryPointRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	testApp, out, _ := SetupAppTest(t, Config{Program: "ll", Iterations: 1, Size: 0, Temperature: 0.5})

	err := testApp.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "size must be at least 1")
	require.Empty(t, out.String())
	require.Equal(t, int64(1), testApp.Status().RunsFailed)
}

func TestRun_UploadsDataFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var (
		mu   sync.Mutex
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	testApp, _, _ := SetupAppTest(t, Config{
		Program:     "ll",
		Iterations:  2,
		Size:        3,
		Temperature: 0.5,
		Seed:        1,
		UploadURL:   srv.URL + "/results",
	}, WithHTTPClient(srv.Client()))

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, body, "# Size of lattice:     3x3")
}

func TestRunSweep_ExecutesEveryRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	hclPath := filepath.Join(dir, "sweep.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(`
defaults {
  iterations = 3
  size       = 4
}

run "cold" {
  temperature = 0.1
}

sweep "scan" {
  temperatures = [0.5, 1.0, 1.5]
}
`), 0o600))

	outDir := t.TempDir()
	rec := &progress.Recorder{}
	testApp, out, _ := SetupAppTest(t, Config{
		Program:     "ll-sweep",
		SweepPaths:  []string{hclPath},
		WorkerCount: 2,
		Seed:        11,
		OutputDir:   outDir,
	}, WithPublisher(rec), WithClock(fixedClock))

	// --- Act ---
	err := testApp.RunSweep(context.Background(), &sweep.Loader{Env: map[string]string{}})

	// --- Assert ---
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	stamp := "Tue-05-Mar-2024-at-02-07-09PM"
	for _, name := range []string{"cold", "scan-0", "scan-1", "scan-2"} {
		require.FileExists(t, filepath.Join(outDir, "LL-Output-"+name+"-"+stamp+".txt"))
	}

	finished := 0
	for _, ev := range rec.Events() {
		if ev.Event == progress.EventFinished {
			finished++
		}
	}
	require.Equal(t, 4, finished)
	require.Equal(t, int64(4), testApp.Status().RunsFinished)
}

func TestRunSweep_LoadError(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupAppTest(t, Config{SweepPaths: []string{filepath.Join(t.TempDir(), "missing.hcl")}})

	err := testApp.RunSweep(context.Background(), sweep.NewLoader())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load sweep")
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupAppTest(t, Config{})
	testApp.status.started.Add(2)
	testApp.status.finished.Add(1)
	testApp.status.lastStep.Store(17)
	mux := testApp.healthMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK\n", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var report StatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, StatusReport{RunsStarted: 2, RunsFinished: 1, LastStep: 17}, report)
}

func TestHealthcheckServer_DisabledByDefault(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupAppTest(t, Config{})
	testApp.startHealthcheckServer(context.Background())
	require.Nil(t, testApp.httpServer)
	require.NoError(t, testApp.closeHealthcheckServer(context.Background()))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestHealthcheckServer_StartStopRepeatedly(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupAppTest(t, Config{HealthcheckPort: freePort(t)})
	ctx := context.Background()

	for range 50 {
		testApp.startHealthcheckServer(ctx)
		require.NoError(t, testApp.closeHealthcheckServer(ctx))
		require.Nil(t, testApp.httpServer)
	}
}

func TestRun_HealthcheckServerAnswersDuringRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	port := freePort(t)
	var healthCode, statusCode int
	entry := func(ctx context.Context, _ string, _, _ int, _ float64, _ int) error {
		for path, code := range map[string]*int{"/health": &healthCode, "/status": &statusCode} {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d%s", port, path), nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			*code = resp.StatusCode
		}
		return nil
	}
	testApp, _, _ := SetupAppTest(t, Config{HealthcheckPort: port}, WithEntryPoint(entry))

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, healthCode)
	require.Equal(t, http.StatusOK, statusCode)
	require.Nil(t, testApp.httpServer)
}

func TestRun_FailingRunWithHealthcheckServer(t *testing.T) {
	t.Parallel()

	testApp, _, logs := SetupAppTest(t, Config{Program: "ll", Iterations: 0, Size: 0, Temperature: 0.5, HealthcheckPort: freePort(t)})

	err := testApp.Run(context.Background())

	require.Error(t, err)
	require.Contains(t, logs.String(), "Shutting down health check server")
}

func TestNewLogger_FormatAndLevel(t *testing.T) {
	t.Parallel()

	buf := &SafeBuffer{}
	logger := newLogger("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
	require.Contains(t, buf.String(), `"k":"v"`)
}
