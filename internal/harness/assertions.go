package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/ptasker/gutenberg/internal/editor"
	"github.com/ptasker/gutenberg/internal/remote"
)

// AssertionError is returned when an assertion fails. It carries the full
// trace so the failure message shows what actually happened.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for _, event := range e.Trace {
			if event.Args == nil {
				fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, event.Type)
				continue
			}
			fmt.Fprintf(&buf, "  [%d] %s %v\n", event.Seq, event.Type, event.Args)
		}
	}
	return buf.String()
}

// AssertionContext exposes the final state surfaces to final_state
// assertions.
type AssertionContext struct {
	Editor *editor.Memory
	Remote *remote.Memory
}

// EvaluateAssertions evaluates all assertions against the run result.
// Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, state *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if state == nil {
				err = fmt.Errorf("assertions[%d]: final_state requires state context", i)
			} else {
				err = assertFinalState(state, assertion)
			}
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

// assertTraceContains checks that some event matches the action kind and
// the expected args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == assertion.Action && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions appear in the given relative
// order. Intervening events are allowed; positions use each action's first
// occurrence.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		for _, expected := range assertion.Actions {
			if event.Type == expected && positions[expected] == 0 {
				positions[expected] = i + 1
			}
		}
	}

	for _, name := range assertion.Actions {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev, curr := assertion.Actions[i-1], assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the action appears exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == assertion.Action {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState filters the target's rows by Where, requires exactly
// one match, and compares the Expect fields (subset semantics).
func assertFinalState(state *AssertionContext, assertion Assertion) error {
	rows, err := stateRows(state, assertion.Target)
	if err != nil {
		return err
	}

	var matched []map[string]any
	for _, row := range rows {
		if matchArgs(row, assertion.Where) {
			matched = append(matched, row)
		}
	}

	whereDesc := formatWhere(assertion.Where)
	if len(matched) == 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Target, whereDesc),
			Actual:   "row not found",
		}
	}
	if len(matched) > 1 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Target, whereDesc),
			Actual:   fmt.Sprintf("%d rows matched (assertion is ambiguous)", len(matched)),
		}
	}

	row := matched[0]
	for key, expected := range assertion.Expect {
		actual, exists := row[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist in %s", key, assertion.Target),
				Actual:   fmt.Sprintf("row has fields %v", rowKeys(row)),
			}
		}
		if !valuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v", key, expected),
				Actual:   fmt.Sprintf("field %q = %v", key, actual),
			}
		}
	}
	return nil
}

// stateRows projects one state surface into generic rows for filtering and
// subset comparison.
func stateRows(state *AssertionContext, target string) ([]map[string]any, error) {
	switch target {
	case TargetPost:
		p := state.Editor.Post()
		return []map[string]any{{
			"id":       p.ID,
			"title":    p.Title.Raw,
			"content":  p.Content.Raw,
			"status":   string(p.Status),
			"dirty":    state.Editor.IsPostDirty(),
			"new":      state.Editor.IsPostNew(),
			"saveable": state.Editor.IsPostSaveable(),
		}}, nil

	case TargetBlocks:
		blocks := state.Editor.Blocks()
		rows := make([]map[string]any, 0, len(blocks))
		for _, b := range blocks {
			rows = append(rows, map[string]any{
				"id":         b.ID,
				"type":       b.Type,
				"attributes": map[string]any(b.Attributes),
			})
		}
		return rows, nil

	case TargetReusable:
		reusable := state.Editor.ReusableBlocks()
		rows := make([]map[string]any, 0, len(reusable))
		for _, r := range reusable {
			rows = append(rows, map[string]any{
				"id":         r.ID,
				"title":      r.Title,
				"type":       r.Type,
				"attributes": map[string]any(r.Attributes),
			})
		}
		return rows, nil

	case TargetRemoteRecords:
		records := state.Remote.Records()
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, map[string]any{
				"id":      rec.ID,
				"name":    rec.Name,
				"content": rec.Content,
			})
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unknown final_state target %q", target)
}

// matchArgs checks that actual carries every expected field with an equal
// value. Extra fields in actual are ignored.
func matchArgs(actual map[string]any, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists || !valuesEqual(expectedVal, actualVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares a YAML-sourced expected value against an actual
// value from the trace or state. Numbers compare across int and float64,
// since YAML decodes integers as int while JSON round-trips yield float64.
// Nested maps and slices must match exactly.
func valuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if en, ok := toFloat(expected); ok {
		an, aok := toFloat(actual)
		return aok && en == an
	}

	switch exp := expected.(type) {
	case string:
		act, ok := actual.(string)
		return ok && exp == act
	case bool:
		act, ok := actual.(bool)
		return ok && exp == act
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !valuesEqual(exp[i], act[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for k, v := range exp {
			av, present := act[k]
			if !present || !valuesEqual(v, av) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(expected, actual)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func rowKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
