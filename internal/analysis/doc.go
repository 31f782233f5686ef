// Package analysis turns recorded runs into summaries.
//
//   - [PowerSpectrum] and [DominantFrequency]: periodicity of a sampled signal
//   - [BouncePeriods]: time between floor bounces from vertical velocity
//   - [NewPhasePortrait]: one particle's trajectory in a plane of its state
//
// A particle dropped under gravity bounces with period 2·sqrt(2h/g):
//
//	periods := analysis.BouncePeriods(times, vy)
package analysis
