// Package dynamo provides the shared primitives of the molecule simulator.
//
// The package defines the value types and small interfaces every other
// package builds on:
//
//   - [Particle]: position, velocity and spin state of one molecule
//   - [Diagnostics]: per-step pair-check and collision counters
//   - [Snapshot]: a sampled copy of the population at a point in time
//   - [Metric] and [Observer]: read-only consumers of stepped state
//   - [Configurable]: name/value access to runtime tunables
//
// # Numerical Fallbacks
//
// Normalization never produces NaN. [NormalizeOr] returns a fixed axis for
// near-zero input:
//
//	n := dynamo.NormalizeOr(a.Sub(b), dynamo.AxisX)
//
// # Thread Safety
//
// Particles are plain values mutated in place by the stepper. A population
// slice must have a single writer; [ParallelFor] is only used for passes
// where each index is touched by exactly one worker.
package dynamo
