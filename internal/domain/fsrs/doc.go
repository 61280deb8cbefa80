// Package fsrs implements the memory model used by the scheduling engine:
// an FSRS-family algorithm tracking stability, difficulty and
// retrievability per item. All functions are pure and deterministic; the
// package performs no I/O and holds no mutable state.
package fsrs
