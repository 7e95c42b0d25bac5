package harness

import "github.com/roach88/mathtables/internal/game"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace is every event the engine emitted, across rounds, in order.
	Trace []game.Event `json:"-"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the snapshot after the last step.
	Final game.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Kinds returns the kinds of the trace events in order.
func (r *Result) Kinds() []string {
	out := make([]string, len(r.Trace))
	for i, ev := range r.Trace {
		out[i] = string(ev.Kind)
	}
	return out
}
