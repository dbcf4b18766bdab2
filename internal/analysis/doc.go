// Package analysis turns recorded frames into derived series.
//
//   - [CenterSeries]: centre-of-mass coordinate over time
//   - [PhasePortrait]: centre-of-mass position against velocity
//   - [DominantFrequency]: strongest oscillation of a series, e.g. sloshing
//
// A rocking vessel drives the liquid at the rocking frequency, so
//
//	_, x := analysis.CenterSeries(frames, 0)
//	f, _ := analysis.DominantFrequency(x, sampleInterval)
//
// should land near 1/period once the transient has died out.
package analysis
