package sim

import "github.com/san-kum/particlebox/internal/dynamo"

// DefaultMaxCatchUp bounds the ticks a single frame may trigger.
const DefaultMaxCatchUp = 8

// FixedClock turns variable frame deltas into whole fixed ticks. Time left
// over after the last whole tick carries into the next frame.
type FixedClock struct {
	step       float64
	acc        float64
	maxCatchUp int
	paused     bool
	ticks      uint64
}

func NewFixedClock(step float64) *FixedClock {
	return &FixedClock{step: step, maxCatchUp: DefaultMaxCatchUp}
}

func (c *FixedClock) Step() float64 { return c.step }

// SetMaxCatchUp changes the per-frame tick cap. n < 1 disables the cap.
func (c *FixedClock) SetMaxCatchUp(n int) { c.maxCatchUp = n }

// Advance adds frameDt to the accumulator and returns how many fixed ticks
// are due. Backlog beyond the catch-up cap is dropped. Invalid deltas and a
// paused clock yield zero.
func (c *FixedClock) Advance(frameDt float64) int {
	if c.paused || c.step <= 0 || !dynamo.Finite(frameDt) || frameDt < 0 {
		return 0
	}
	c.acc += frameDt
	n := 0
	for c.acc >= c.step {
		if c.maxCatchUp > 0 && n >= c.maxCatchUp {
			c.acc = 0
			break
		}
		c.acc -= c.step
		n++
	}
	c.ticks += uint64(n)
	return n
}

// Alpha is the fraction of a tick sitting in the accumulator.
func (c *FixedClock) Alpha() float64 {
	if c.step <= 0 {
		return 0
	}
	return c.acc / c.step
}

func (c *FixedClock) Ticks() uint64 { return c.ticks }
func (c *FixedClock) Paused() bool  { return c.paused }
func (c *FixedClock) Pause()        { c.paused = true }
func (c *FixedClock) Resume()       { c.paused = false }
func (c *FixedClock) Toggle()       { c.paused = !c.paused }

func (c *FixedClock) Reset() {
	c.acc = 0
	c.ticks = 0
}
