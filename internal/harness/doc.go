// Package harness provides a scenario-driven conformance harness for the
// persistence layer.
//
// Scenarios are YAML files describing a sequence of steps - attach sessions,
// insert entries, fetch, compact, touch metadata, detach - executed against a
// real temp-backed store with the deterministic testdoc model standing in for
// the merge engine. Every step appends a seq-stamped event to a trace;
// declarative assertions then validate row counts, document state, metadata
// and sync status, and golden files pin the full trace byte-for-byte.
//
// Determinism: sessions run with a zero trim debounce (threshold compaction
// is synchronous), fixed origin tokens derived from the session label, and a
// harness-owned logical seq counter. The same scenario therefore produces an
// identical trace on every run, which is what makes golden comparison
// meaningful.
package harness
