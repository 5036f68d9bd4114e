// Package harness runs YAML conformance scenarios against the effect
// coordinator.
//
// A scenario seeds editor and remote state, dispatches a sequence of
// actions, and validates assertions over the applied-action trace and the
// final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario-name
//	description: "What this scenario validates"
//	initial:
//	  post: { id: 1, status: draft, title: "Hello" }
//	  dirty: true
//	  blocks:
//	    - id: b1
//	      type: core/paragraph
//	      attributes: { content: "Hi" }
//	remote:
//	  records:
//	    - id: r1
//	      name: Callout
//	      content: '<!-- wp:quote {"value":"Be kind."} /-->'
//	  fail_save: { code: rest_cannot_update, message: "Sorry." }
//	dispatch:
//	  - action: MERGE_BLOCKS
//	    args: { blockA: {...}, blockB: {...} }
//	assertions:
//	  - type: trace_order
//	    actions: [MERGE_BLOCKS, FOCUS_BLOCK, REPLACE_BLOCKS]
//	  - type: final_state
//	    target: blocks
//	    where: { id: b1 }
//	    expect: { type: core/paragraph }
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given relative order
//   - trace_count: an action appears exactly N times
//   - final_state: a state row (post, blocks, reusable_blocks, or
//     remote_records) carries the expected values
//
// # Deterministic Runs
//
// Every run uses a fixed id sequence ("id-1", "id-2", ...) in place of
// UUIDs, and the runner settles the coordinator after each dispatch step so
// async gateway completions land in the trace at a stable position. Traces
// are therefore byte-stable and compared against golden files.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/merge.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
