package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/particlebox/internal/integrators"
	"github.com/san-kum/particlebox/internal/metrics"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/sim"
)

type Registry struct {
	collisions map[string]func(clamp bool) *physics.Reflector
	schemes    map[string]func() integrators.Scheme
}

func NewRegistry() *Registry {
	r := &Registry{
		collisions: make(map[string]func(bool) *physics.Reflector),
		schemes:    make(map[string]func() integrators.Scheme),
	}

	r.collisions["box"] = func(clamp bool) *physics.Reflector {
		rf := physics.Box()
		rf.Clamp = clamp
		return rf
	}
	r.collisions["floor"] = func(clamp bool) *physics.Reflector {
		rf := physics.FloorOnly()
		rf.Clamp = clamp
		return rf
	}

	r.schemes["explicit"] = func() integrators.Scheme { return integrators.NewExplicit() }
	r.schemes["semi_implicit"] = func() integrators.Scheme { return integrators.NewSemiImplicit() }

	return r
}

func (r *Registry) GetCollision(name string, clamp bool) (*physics.Reflector, error) {
	fn, ok := r.collisions[name]
	if !ok {
		return nil, fmt.Errorf("unknown collision mode: %s", name)
	}
	return fn(clamp), nil
}

func (r *Registry) GetScheme(name string) (integrators.Scheme, error) {
	fn, ok := r.schemes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scheme: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListCollisions() []string { return sortedKeys(r.collisions) }
func (r *Registry) ListSchemes() []string    { return sortedKeys(r.schemes) }

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewBounces(),
		metrics.NewPeakSpeed(),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
