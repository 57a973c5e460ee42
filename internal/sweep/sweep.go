package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
	"github.com/specialistvlad/lebwohllasher/internal/simulation"
)

// ErrNoRuns is returned when the loaded files define no run at all.
var ErrNoRuns = errors.New("sweep: no run or sweep blocks found")

// Run is one fully resolved simulation request.
type Run struct {
	Name   string
	Params simulation.Params
}

// Loader reads run definitions from .hcl files.
type Loader struct {
	// Env is exposed to expressions as env.NAME. Nil means the process environment.
	Env map[string]string
}

// NewLoader creates a loader bound to the process environment.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Defaults []*defaultsBlock `hcl:"defaults,block"`
	Runs     []*runBlock      `hcl:"run,block"`
	Sweeps   []*sweepBlock    `hcl:"sweep,block"`
}

type defaultsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type runBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type sweepBlock struct {
	Name         string    `hcl:"name,label"`
	Temperatures []float64 `hcl:"temperatures"`
	Body         hcl.Body  `hcl:",remain"`
}

// settings are the per-run attributes; unset fields stay nil so defaults can fill them.
type settings struct {
	Iterations  *int     `hcl:"iterations,optional"`
	Size        *int     `hcl:"size,optional"`
	Temperature *float64 `hcl:"temperature,optional"`
	Plot        *int     `hcl:"plot,optional"`
	Seed        *uint64  `hcl:"seed,optional"`
}

func (s settings) withDefaults(d settings) settings {
	if s.Iterations == nil {
		s.Iterations = d.Iterations
	}
	if s.Size == nil {
		s.Size = d.Size
	}
	if s.Temperature == nil {
		s.Temperature = d.Temperature
	}
	if s.Plot == nil {
		s.Plot = d.Plot
	}
	if s.Seed == nil {
		s.Seed = d.Seed
	}
	return s
}

func (s settings) params(name string) (simulation.Params, error) {
	var missing []string
	if s.Iterations == nil {
		missing = append(missing, "iterations")
	}
	if s.Size == nil {
		missing = append(missing, "size")
	}
	if s.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if len(missing) > 0 {
		return simulation.Params{}, fmt.Errorf("run %q: missing required attributes: %s", name, strings.Join(missing, ", "))
	}
	p := simulation.Params{Iterations: *s.Iterations, Size: *s.Size, Temperature: *s.Temperature}
	if s.Plot != nil {
		p.PlotFlag = *s.Plot
	}
	if s.Seed != nil {
		p.Seed = *s.Seed
	}
	if err := p.Validate(); err != nil {
		return simulation.Params{}, fmt.Errorf("run %q: %w", name, err)
	}
	return p, nil
}

type pending struct {
	name string
	set  settings
}

// Load parses every .hcl file under paths (files or directories) and returns
// the resolved runs in declaration order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]Run, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Sweep loader started.", "path_count", len(paths))

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx := l.evalContext()
	parser := hclparse.NewParser()

	var (
		defaults    settings
		hasDefaults bool
		queue       []pending
	)
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, d := range root.Defaults {
			if hasDefaults {
				return nil, fmt.Errorf("%s: only one defaults block is allowed", file)
			}
			if diags := gohcl.DecodeBody(d.Body, evalCtx, &defaults); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode defaults in %s: %w", file, diags)
			}
			hasDefaults = true
		}

		for _, r := range root.Runs {
			var s settings
			if diags := gohcl.DecodeBody(r.Body, evalCtx, &s); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode run %q in %s: %w", r.Name, file, diags)
			}
			queue = append(queue, pending{name: r.Name, set: s})
		}

		for _, sw := range root.Sweeps {
			var s settings
			if diags := gohcl.DecodeBody(sw.Body, evalCtx, &s); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode sweep %q in %s: %w", sw.Name, file, diags)
			}
			if s.Temperature != nil {
				return nil, fmt.Errorf("sweep %q in %s: use temperatures, not temperature", sw.Name, file)
			}
			if len(sw.Temperatures) == 0 {
				return nil, fmt.Errorf("sweep %q in %s: temperatures must not be empty", sw.Name, file)
			}
			for i, temp := range sw.Temperatures {
				expanded := s
				expanded.Temperature = &temp
				queue = append(queue, pending{name: fmt.Sprintf("%s-%d", sw.Name, i), set: expanded})
			}
		}
	}

	if len(queue) == 0 {
		return nil, ErrNoRuns
	}

	runs := make([]Run, 0, len(queue))
	seen := make(map[string]struct{}, len(queue))
	for _, p := range queue {
		if _, dup := seen[p.name]; dup {
			return nil, fmt.Errorf("duplicate run name %q", p.name)
		}
		seen[p.name] = struct{}{}
		params, err := p.set.withDefaults(defaults).params(p.name)
		if err != nil {
			return nil, err
		}
		runs = append(runs, Run{Name: p.name, Params: params})
	}

	logger.Debug("Sweep loading complete.", "runs", len(runs))
	return runs, nil
}

func (l *Loader) evalContext() *hcl.EvalContext {
	env := l.Env
	if env == nil {
		env = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		if hclIdentifier(k) {
			vals[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vals)},
	}
}

// hclIdentifier reports whether name can be used as env.<name> in an expression.
func hclIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// findHCLFiles walks all given paths and returns a sorted, de-duplicated list
// of .hcl files. Directories are searched recursively.
func findHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if _, ok := seen[path]; !ok {
				all = append(all, path)
				seen[path] = struct{}{}
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, p := range found {
			if _, ok := seen[p]; !ok {
				all = append(all, p)
				seen[p] = struct{}{}
			}
		}
	}
	return all, nil
}
