// Package journal records harness runs in SQLite.
//
// A run is one scenario execution. Its events are the canonical trace the
// harness produced: step markers plus every change and error event the form
// emitted, in sequence order. Payloads are canonical JSON so equal traces
// store identical bytes.
//
// The form engine never writes here. Only tooling (the harness and the
// stateform CLI) does, so that a failing scenario can be inspected after the
// fact with `stateform trace`.
//
// # Schema
//
//	runs(id, scenario, pass, finished, errors)
//	events(run_id, seq, kind, path, payload)
//
// Schema changes are applied on Open and tracked with PRAGMA user_version.
package journal
