package progress

import (
	"context"
	"sync"

	"github.com/specialistvlad/lebwohllasher/internal/ctxlog"
	"github.com/specialistvlad/lebwohllasher/internal/simulation"
)

// Event names emitted by publishers.
const (
	EventStep     = "mc_step"
	EventFinished = "run_finished"
)

// StepEvent is the payload of EventStep.
type StepEvent struct {
	Run    string  `json:"run"`
	Step   int     `json:"step"`
	Ratio  float64 `json:"ratio"`
	Energy float64 `json:"energy"`
	Order  float64 `json:"order"`
}

// FinishedEvent is the payload of EventFinished.
type FinishedEvent struct {
	Run        string  `json:"run"`
	Seed       uint64  `json:"seed"`
	Energy     float64 `json:"energy"`
	Order      float64 `json:"order"`
	RuntimeSec float64 `json:"runtime_seconds"`
}

// Publisher delivers progress events.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, any) error {
	return nil
}

// Close implements Publisher.
func (Nop) Close() error {
	return nil
}

// Observer turns simulation steps into EventStep publications for run.
// Publish failures are logged and do not stop the simulation.
func Observer(pub Publisher, run string) simulation.Observer {
	return simulation.ObserverFunc(func(ctx context.Context, s simulation.Step) {
		ev := StepEvent{Run: run, Step: s.Index, Ratio: s.Ratio, Energy: s.Energy, Order: s.Order}
		if err := pub.Publish(ctx, EventStep, ev); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to publish progress.", "step", s.Index, "error", err)
		}
	})
}

// Finished publishes the EventFinished payload for a completed result.
func Finished(ctx context.Context, pub Publisher, run string, res *simulation.Result) error {
	return pub.Publish(ctx, EventFinished, FinishedEvent{
		Run:        run,
		Seed:       res.Seed,
		Energy:     res.FinalEnergy(),
		Order:      res.FinalOrder(),
		RuntimeSec: res.Runtime.Seconds(),
	})
}

// Recorded is one event captured by a Recorder.
type Recorded struct {
	Event   string
	Payload any
}

// Recorder keeps every published event in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
	closed bool
}

func (r *Recorder) Publish(_ context.Context, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Event: event, Payload: payload})
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
