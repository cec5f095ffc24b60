// Package harness runs scripted form interactions against a live engine and
// checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: signup_blur
//	description: "errors appear on blur, not on change"
//	form: ../forms/signup.cue   # or inline defaults:
//	mode: blur
//	steps:
//	  - do: register
//	    path: name
//	    type: text
//	    options: { required: true, minLength: 3 }
//	  - do: change
//	    path: name
//	    value: ab
//	  - do: blur
//	    path: name
//	assertions:
//	  - type: errors
//	    path: name
//	    expect:
//	      - { message: common.validation.minLength, params: { minLength: 3 } }
//	  - type: event_order
//	    events: ["change:name", "error:name"]
//
// Steps: register, unregister, change, blur, set, append, remove, submit,
// trigger, reset, set_error, clear_errors. A step that is expected to fail
// declares expect_error with a substring of the error.
//
// # Assertion Types
//
//   - value: the current value at path equals expect
//   - errors: the visible errors at path equal expect
//   - dirty: the dirty field set equals expect
//   - submit: the last submit's outcome and the number of submits
//   - event_emitted: an event of kind reached path
//   - event_count: exactly count events of kind reached path
//   - event_order: first occurrences of "kind:path" appear in order
//
// # Deterministic Testing
//
// Every run uses sequential field ids and a logical clock for trace
// sequence numbers, so identical scenarios produce identical traces. Traces
// render as canonical JSON (Snapshot) for golden comparison with goldie, and
// can be recorded in a journal (WithJournal).
package harness
