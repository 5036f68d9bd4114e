// Package effects implements the editor's side-effect coordination layer.
//
// Every state change travels as an action through a single dispatch
// pipeline: merge resolution, the autosave policy, the reusable-block
// gateway, block conversion, and editor setup all consume actions and
// emit follow-up actions.
//
// ARCHITECTURE:
//
// Single-Writer Dispatch Loop:
// The coordinator processes all actions in a single goroutine for
// deterministic behavior. This ensures:
// - Every handler reads state with the actions ahead of it already applied
// - Synchronous follow-ups land in emission order
// - Traces replay identically for the same inputs
//
// Action Processing Flow:
// 1. Actions enqueued to a FIFO queue (Dispatch, safe from any goroutine)
// 2. Coordinator.Run() dequeues actions one at a time
// 3. The external reducer applies the action to editor state
// 4. The router hands the action to its handler, if any consumes it
// 5. Synchronous handlers return follow-up actions, dispatched in order
//
// Remote calls are the only suspension points. Fetch and save handlers
// start a goroutine per call and re-enter through Dispatch when the call
// settles; there is no ordering guarantee across in-flight remote work
// and no cancellation of calls already started.
//
// Handler failures (unknown block ids, transform application errors) are
// logged with full action context and the loop continues. They are never
// converted into failure actions; only remote-boundary failures are.
package effects
