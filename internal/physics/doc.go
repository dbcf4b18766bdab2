// Package physics advances molecules inside a cylindrical, optionally tilted
// vessel.
//
// A step is a fixed sequence:
//
//  1. reset [dynamo.Diagnostics]
//  2. per particle: gravity, position, spin angle, then boundary reflection
//     in the vessel's local [Frame]
//  3. per unordered pair: soft forces (repulsion, cohesion, viscosity) then
//     hard-sphere collision, always in that order
//  4. global damping and the optional speed clamp
//
// The pair passes are O(n²) with no spatial index and run on the calling
// goroutine. Only step 2 may run in parallel.
//
// # Parameters
//
// [Params] is passed by value. Tunables are changed by deriving a new
// snapshot:
//
//	p, err := physics.DefaultParams().With("viscosity", 0.8)
//
// # Population
//
// [Factory] draws particles from an injected random source. [Resize] shrinks
// by truncation, so the newest particles are removed first.
package physics
