package sim

import (
	"math"
	"testing"
)

func TestFixedClockAdvance(t *testing.T) {
	c := NewFixedClock(0.25)

	tests := []struct {
		frame float64
		want  int
	}{
		{0.125, 0},
		{0.125, 1},
		{0.5, 2},
		{0.75, 3},
		{0, 0},
	}

	for i, tt := range tests {
		if got := c.Advance(tt.frame); got != tt.want {
			t.Errorf("frame %d: Advance(%v) = %d, want %d", i, tt.frame, got, tt.want)
		}
	}
	if c.Ticks() != 6 {
		t.Errorf("expected 6 ticks, got %d", c.Ticks())
	}
}

func TestFixedClockInvalidFrame(t *testing.T) {
	c := NewFixedClock(0.25)
	for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
		if n := c.Advance(dt); n != 0 {
			t.Errorf("Advance(%v) = %d, want 0", dt, n)
		}
	}
	if c.Alpha() != 0 {
		t.Error("invalid frames must not leave time in the accumulator")
	}
}

func TestFixedClockCatchUpCap(t *testing.T) {
	c := NewFixedClock(0.25)
	c.SetMaxCatchUp(4)
	if n := c.Advance(10); n != 4 {
		t.Errorf("expected capped 4 ticks, got %d", n)
	}
	if c.Alpha() != 0 {
		t.Errorf("backlog should be dropped, alpha = %v", c.Alpha())
	}
}

func TestFixedClockPause(t *testing.T) {
	c := NewFixedClock(0.25)
	c.Pause()
	if n := c.Advance(1); n != 0 {
		t.Errorf("paused clock ticked %d times", n)
	}
	c.Toggle()
	if c.Paused() {
		t.Error("toggle should resume")
	}
	if n := c.Advance(0.5); n != 2 {
		t.Errorf("expected 2 ticks, got %d", n)
	}
}

func TestFixedClockAlpha(t *testing.T) {
	c := NewFixedClock(0.5)
	c.Advance(0.75)
	if math.Abs(c.Alpha()-0.5) > 1e-12 {
		t.Errorf("expected alpha 0.5, got %v", c.Alpha())
	}
	c.Reset()
	if c.Alpha() != 0 || c.Ticks() != 0 {
		t.Error("reset should clear the clock")
	}
}
