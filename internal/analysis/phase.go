package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/particlebox/internal/dynamo"
)

// Point is one sample in a 2D plot.
type Point struct{ X, Y float64 }

// Column picks one of a particle's planar components: 0 x, 1 y, 2 vx, 3 vy.
type Column int

const (
	ColX Column = iota
	ColY
	ColVX
	ColVY
)

var columnNames = [...]string{"x", "y", "vx", "vy"}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return "?"
	}
	return columnNames[c]
}

// ParseColumn maps a column name back to its Column.
func ParseColumn(name string) (Column, error) {
	for i, n := range columnNames {
		if n == name {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("unknown column %q (want x, y, vx or vy)", name)
}

// PhasePortrait2D holds one particle's trajectory in a plane of its state.
type PhasePortrait2D struct {
	X, Y   Column
	Points []Point
}

// NewPhasePortrait collects particle i's (x, y) columns from recorded
// states. States without particle i are skipped.
func NewPhasePortrait(states [][]dynamo.Particle, i int, x, y Column) *PhasePortrait2D {
	portrait := &PhasePortrait2D{X: x, Y: y, Points: make([]Point, 0, len(states))}
	for _, s := range states {
		if i >= len(s) {
			continue
		}
		row := s[i].Row()
		portrait.Points = append(portrait.Points, Point{X: row[x], Y: row[y]})
	}
	return portrait
}

// Bounds returns the extent of the points with 10% padding on each side.
func Bounds(points []Point) (minX, maxX, minY, maxY float64) {
	if len(points) == 0 {
		return 0, 1, 0, 1
	}
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// ToASCII draws the portrait with axes where they cross the visible area.
func (p *PhasePortrait2D) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := Bounds(p.Points)
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
