package harness

import (
	"encoding/json"
	"fmt"

	"github.com/ptasker/gutenberg/internal/action"
)

// TraceEvent is one applied action in a scenario run: the wire
// discriminator, the payload fields, and a 1-based sequence number.
type TraceEvent struct {
	Seq  int            `json:"seq"`
	Type string         `json:"type"`
	Args map[string]any `json:"args,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true while no assertion has failed.
	Pass bool `json:"pass"`

	// Trace lists every applied action in order, including follow-ups the
	// coordinator enqueued and completions from gateway goroutines.
	Trace []TraceEvent `json:"trace"`

	// Errors holds assertion failure messages. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult returns an empty passing result.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}}
}

// AddError records a failure and marks the run failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// observe appends an applied action to the trace. The coordinator invokes
// the observer on its loop goroutine and Run reads the trace only after
// the loop exits, so no locking is needed.
func (r *Result) observe(a action.Action) {
	args, err := actionArgs(a)
	if err != nil {
		r.AddError(fmt.Sprintf("trace event %d: %v", len(r.Trace)+1, err))
		return
	}
	r.Trace = append(r.Trace, TraceEvent{
		Seq:  len(r.Trace) + 1,
		Type: string(a.Kind()),
		Args: args,
	})
}

// actionArgs flattens an action to its payload fields, dropping the
// discriminator the codec folds in. Payload-less actions yield nil.
func actionArgs(a action.Action) (map[string]any, error) {
	data, err := action.Marshal(a)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "type")
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}
