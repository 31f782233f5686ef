package sim

import (
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
)

// ParamSource hands out the configuration for the next tick.
// *config.Store satisfies it.
type ParamSource interface {
	Snapshot() config.Params
}

// Static is a ParamSource that never changes.
type Static config.Params

func (s Static) Snapshot() config.Params { return config.Params(s).Clamp() }

// Step describes one completed fixed tick. Particles and Hits alias the
// simulator's buffers and are only valid during the call that receives them.
type Step struct {
	Tick      uint64
	Time      float64
	Dt        float64
	Params    config.Params
	Particles []dynamo.Particle
	Hits      []physics.Hits
}

type Metric interface {
	Name() string
	Observe(s Step)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Step)
}

type Config struct {
	Dt            float64
	Duration      float64
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            config.DefaultDt,
		Duration:      config.DefaultDuration,
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Bounce records one wall reflection.
type Bounce struct {
	Tick     uint64           `json:"tick"`
	Time     float64          `json:"time"`
	Particle int              `json:"particle"`
	Location physics.Location `json:"location"`
	Speed    float64          `json:"speed"`
}

type Result struct {
	States     [][]dynamo.Particle
	Times      []float64
	Bounces    []Bounce
	Metrics    map[string]float64
	StepsTaken int
	Skipped    int
	Errors     []error
}
