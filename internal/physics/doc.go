// Package physics is the particle sandbox core: gravity, wall reflection and
// the drawable wall geometry derived from the configuration.
//
//   - [ApplyGravity]: accumulates the downward acceleration into velocity
//   - [Reflector]: flips velocity components at the boundary planes
//   - [GeometrySync]: keeps the four [Wall] shapes in step with [config.Params]
//
// Every function here is total over finite inputs and never returns an
// error. Callers pass a fresh [config.Params] snapshot on each call; nothing
// in this package caches configuration across ticks except [GeometrySync],
// which keeps the last snapshot only to detect changes.
package physics
