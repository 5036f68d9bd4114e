package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ptasker/gutenberg/internal/action"
)

// Scenario defines one conformance scenario: initial state, a dispatch
// sequence, and assertions over the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Initial seeds editor state before dispatching begins.
	Initial InitialState `yaml:"initial,omitempty"`

	// Remote seeds the reusable-block collection and scripts failures.
	Remote RemoteSetup `yaml:"remote,omitempty"`

	// Dispatch lists the actions to dispatch, in order. The runner settles
	// the coordinator after each step.
	Dispatch []DispatchStep `yaml:"dispatch"`

	// Assertions validate the applied trace and final state. May be empty
	// when the golden trace comparison is the only check.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// InitialState seeds the editor before the first dispatch.
type InitialState struct {
	// Post loads a post into state. Omitting it leaves nothing loaded, so
	// the autosave policy treats the editor as not ready.
	Post *PostSetup `yaml:"post,omitempty"`

	// Dirty marks unsaved edits.
	Dirty bool `yaml:"dirty,omitempty"`

	// Saving marks a save already in flight.
	Saving bool `yaml:"saving,omitempty"`

	// MetaBoxes lists panels with unflushed edits.
	MetaBoxes []string `yaml:"meta_boxes,omitempty"`

	// Blocks is the initial block list.
	Blocks []BlockSetup `yaml:"blocks,omitempty"`

	// Reusable stages reusable block records in state.
	Reusable []ReusableSetup `yaml:"reusable,omitempty"`
}

// PostSetup is the YAML form of a post record.
type PostSetup struct {
	ID      int64  `yaml:"id"`
	Status  string `yaml:"status"`
	Title   string `yaml:"title,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// BlockSetup is the YAML form of a block.
type BlockSetup struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// ReusableSetup is the YAML form of a staged reusable block.
type ReusableSetup struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title,omitempty"`
	Type       string         `yaml:"type"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// RemoteSetup seeds the remote collection. FailFetch and FailSave script
// structured errors for every subsequent fetch or save.
type RemoteSetup struct {
	Records   []RecordSetup `yaml:"records,omitempty"`
	FailFetch *FailureSetup `yaml:"fail_fetch,omitempty"`
	FailSave  *FailureSetup `yaml:"fail_save,omitempty"`
}

// RecordSetup is the YAML form of a remote record.
type RecordSetup struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// FailureSetup is a scripted remote error envelope.
type FailureSetup struct {
	Code    string `yaml:"code"`
	Message string `yaml:"message,omitempty"`
}

// DispatchStep names one action to dispatch. Args may be empty for
// payload-less actions.
type DispatchStep struct {
	Action string         `yaml:"action"`
	Args   map[string]any `yaml:"args,omitempty"`
}

// buildAction assembles the typed action for a step through the wire
// codec, so unknown kinds and unknown arg fields fail the same way
// malformed wire input does.
func (s DispatchStep) buildAction() (action.Action, error) {
	fields := make(map[string]any, len(s.Args)+1)
	for k, v := range s.Args {
		fields[k] = v
	}
	fields["type"] = s.Action

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return action.Unmarshal(data)
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type selects the assertion: trace_contains, trace_order,
	// trace_count, or final_state.
	Type string `yaml:"type"`

	// Action is the wire discriminator checked by trace_contains and
	// trace_count.
	Action string `yaml:"action,omitempty"`

	// Args are expected payload fields for trace_contains. Subset match:
	// only the listed fields are compared.
	Args map[string]any `yaml:"args,omitempty"`

	// Actions is the expected relative order for trace_order.
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number of occurrences for trace_count.
	// Zero asserts absence.
	Count int `yaml:"count,omitempty"`

	// Target names the state surface queried by final_state: post,
	// blocks, reusable_blocks, or remote_records.
	Target string `yaml:"target,omitempty"`

	// Where filters state rows by exact field match before comparing.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds expected field values for the single matching row.
	// Subset match: only the listed fields are compared.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// final_state targets.
const (
	TargetPost          = "post"
	TargetBlocks        = "blocks"
	TargetReusable      = "reusable_blocks"
	TargetRemoteRecords = "remote_records"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently dropping a section.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Initial.Post != nil && s.Initial.Post.Status == "" {
		return fmt.Errorf("initial.post: status is required")
	}
	for i, b := range s.Initial.Blocks {
		if b.ID == "" {
			return fmt.Errorf("initial.blocks[%d]: id is required", i)
		}
		if b.Type == "" {
			return fmt.Errorf("initial.blocks[%d]: type is required", i)
		}
	}
	for i, r := range s.Initial.Reusable {
		if r.ID == "" {
			return fmt.Errorf("initial.reusable[%d]: id is required", i)
		}
		if r.Type == "" {
			return fmt.Errorf("initial.reusable[%d]: type is required", i)
		}
	}

	for i, rec := range s.Remote.Records {
		if rec.ID == "" {
			return fmt.Errorf("remote.records[%d]: id is required", i)
		}
	}
	if s.Remote.FailFetch != nil && s.Remote.FailFetch.Code == "" {
		return fmt.Errorf("remote.fail_fetch: code is required")
	}
	if s.Remote.FailSave != nil && s.Remote.FailSave.Code == "" {
		return fmt.Errorf("remote.fail_save: code is required")
	}

	if len(s.Dispatch) == 0 {
		return fmt.Errorf("dispatch list is required and must be non-empty")
	}
	kinds := action.Kinds()
	for i, step := range s.Dispatch {
		if step.Action == "" {
			return fmt.Errorf("dispatch[%d]: action is required", i)
		}
		if !slices.Contains(kinds, action.Kind(step.Action)) {
			return fmt.Errorf("dispatch[%d]: unknown action %q", i, step.Action)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		switch a.Target {
		case TargetPost, TargetBlocks, TargetReusable, TargetRemoteRecords:
		case "":
			return fmt.Errorf("assertions[%d]: target is required for final_state", index)
		default:
			return fmt.Errorf("assertions[%d]: unknown final_state target %q", index, a.Target)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
