package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlebox/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.02
	DefaultDuration  = 10.0
	DefaultFrameRate = 60
	DefaultWindowW   = 800
	DefaultWindowH   = 800
	DefaultCollision = "box"
	DefaultScheme    = "explicit"

	// MaxSteps bounds Duration/Dt for one run.
	MaxSteps = math.MaxInt32
)

type Config struct {
	Params      Params           `yaml:"params"`
	Dt          float64          `yaml:"dt"`
	Duration    float64          `yaml:"duration"`
	FrameRate   int              `yaml:"frame_rate"`
	Collision   string           `yaml:"collision"`
	Scheme      string           `yaml:"scheme"`
	ClampToWall bool             `yaml:"clamp_to_wall"`
	Seed        int64            `yaml:"seed"`
	Scatter     int              `yaml:"scatter"`
	Window      WindowConfig     `yaml:"window"`
	Particles   []ParticleConfig `yaml:"particles"`
}

// WindowConfig is the host window size in world units. It only affects how
// a viewer scales the scene.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ParticleConfig struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:    DefaultParams(),
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		FrameRate: DefaultFrameRate,
		Collision: DefaultCollision,
		Scheme:    DefaultScheme,
		Window:    WindowConfig{Width: DefaultWindowW, Height: DefaultWindowH},
		Particles: []ParticleConfig{{}},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver overlays the file at path on base and returns base. Keys absent
// from the file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level settings. Physics parameters are never
// rejected; they are clamped when a snapshot is taken.
func (c *Config) Validate() error {
	if !dynamo.Finite(c.Dt) || c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidConfig, c.Dt)
	}
	if !dynamo.Finite(c.Duration) || c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidConfig, c.Duration)
	}
	if n := c.Duration / c.Dt; n > MaxSteps {
		return fmt.Errorf("%w: %.3g steps exceeds the limit of %d", dynamo.ErrInvalidConfig, n, MaxSteps)
	}
	if len(c.Particles) == 0 && c.Scatter <= 0 {
		return fmt.Errorf("%w: no particles", dynamo.ErrInvalidConfig)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("%w: frame rate must not be negative", dynamo.ErrInvalidConfig)
	}
	return nil
}

// InitialParticles converts the configured particles into simulation state.
func (c *Config) InitialParticles() []dynamo.Particle {
	ps := make([]dynamo.Particle, len(c.Particles))
	for i, p := range c.Particles {
		ps[i] = dynamo.NewParticle(p.X, p.Y, p.VX, p.VY)
	}
	return ps
}

// WindowExtents returns the window half-size, falling back to the defaults.
func (c *Config) WindowExtents() mgl64.Vec2 {
	w, h := c.Window.Width, c.Window.Height
	if w <= 0 {
		w = DefaultWindowW
	}
	if h <= 0 {
		h = DefaultWindowH
	}
	return mgl64.Vec2{float64(w) / 2, float64(h) / 2}
}
