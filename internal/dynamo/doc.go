// Package dynamo provides the core simulation primitives shared by the
// physics, integration and host packages.
//
//   - [Particle]: planar kinematic state (z is always 0)
//   - [Frame]: render-sink view of one instant
//   - sentinel errors and [SimulationError]
//
// # Thread Safety
//
// Values in this package carry no locks. A [Particle] is owned by exactly
// one simulator; hosts only ever read copies handed out through [Frame].
package dynamo
