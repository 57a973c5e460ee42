package output

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/lebwohllasher/internal/simulation"
)

// Summary is the YAML document written next to the data file.
type Summary struct {
	Name        string  `yaml:"name,omitempty"`
	Program     string  `yaml:"program"`
	Created     string  `yaml:"created"`
	Size        int     `yaml:"size"`
	Iterations  int     `yaml:"iterations"`
	Temperature float64 `yaml:"temperature"`
	PlotFlag    int     `yaml:"plot_flag"`
	Seed        uint64  `yaml:"seed"`
	RuntimeSec  float64 `yaml:"runtime_seconds"`
	FinalEnergy float64 `yaml:"final_energy"`
	FinalOrder  float64 `yaml:"final_order"`
	MeanRatio   float64 `yaml:"mean_acceptance_ratio"`
	DataFile    string  `yaml:"data_file"`
}

// NewSummary collects the headline numbers of a run.
func NewSummary(name, program string, res *simulation.Result, created time.Time, dataFile string) Summary {
	return Summary{
		Name:        name,
		Program:     program,
		Created:     created.Format(time.RFC3339),
		Size:        res.Params.Size,
		Iterations:  res.Params.Iterations,
		Temperature: res.Params.Temperature,
		PlotFlag:    res.Params.PlotFlag,
		Seed:        res.Seed,
		RuntimeSec:  res.Runtime.Seconds(),
		FinalEnergy: res.FinalEnergy(),
		FinalOrder:  res.FinalOrder(),
		MeanRatio:   res.MeanRatio(),
		DataFile:    dataFile,
	}
}

// WriteSummary encodes s as YAML.
func WriteSummary(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return enc.Close()
}

// ReadSummary decodes a summary written by WriteSummary.
func ReadSummary(r io.Reader) (Summary, error) {
	var s Summary
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	return s, nil
}
