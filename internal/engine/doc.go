// Package engine is the form-state engine: it owns the current and initial
// value trees, the field registry, the error store and the event bus, and
// exposes the public operations a UI binding calls.
//
// ARCHITECTURE:
//
// Single-Writer Units of Work:
// Every public mutating call runs as one unit of work. A unit mutates the
// current tree, recomputes dirty flags, emits change events for the minimal
// set of changed paths, then validates. Listeners may re-enter the engine;
// nested calls join the enclosing unit.
//
// Deferred Tasks:
// Work that must observe a settled tree (coalesced multi-path delivery,
// ChangeStateDirectly) is queued and drained in FIFO order when the
// outermost unit ends. Batch groups several calls into one unit.
//
// Mutation Pipeline:
//  1. clone the pre-mutation tree
//  2. write the new value at the path (materializing intermediates)
//  3. diff the clone against the new tree
//  4. recompute dirty flags for every registered field
//  5. emit one change event per changed path and notation, then one on the
//     form key
//
// Ownership:
// Values passed in are converted and cloned; values handed out are clones.
// Callers can never alias the engine's trees.
//
// The engine is not safe for concurrent use. Wrap it, or confine it to one
// goroutine, the way a UI event loop does.
package engine
