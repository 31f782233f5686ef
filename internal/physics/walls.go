package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
)

// WallThickness is the drawn depth of every wall.
const WallThickness = 10.0

// Location identifies a wall. It is assigned once when the wall is created.
type Location uint8

const (
	Left Location = iota
	Right
	Top
	Bottom
)

// Locations lists every wall in creation order.
var Locations = [4]Location{Left, Right, Top, Bottom}

func (l Location) String() string {
	switch l {
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return fmt.Sprintf("location(%d)", uint8(l))
}

func ParseLocation(s string) (Location, error) {
	for _, loc := range Locations {
		if loc.String() == s {
			return loc, nil
		}
	}
	return 0, fmt.Errorf("unknown wall location: %s", s)
}

func (l Location) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Location) UnmarshalText(b []byte) error {
	loc, err := ParseLocation(string(b))
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// Wall is a drawable boundary. Position and Size are derived from the
// configuration and carry no physical meaning of their own.
type Wall struct {
	Location Location
	Position mgl64.Vec2
	Size     mgl64.Vec2
}

// Layout recomputes the wall's geometry. Left/right use the horizontal
// extent and top/bottom the vertical one.
func (w *Wall) Layout(params config.Params) {
	hw, hh := params.HalfExtents[0], params.HalfExtents[1]
	switch w.Location {
	case Left:
		w.Position = mgl64.Vec2{-hw / 2, 0}
	case Right:
		w.Position = mgl64.Vec2{hw / 2, 0}
	case Bottom:
		w.Position = mgl64.Vec2{0, -hh / 2}
	case Top:
		w.Position = mgl64.Vec2{0, hh / 2}
	}
	switch w.Location {
	case Left, Right:
		w.Size = mgl64.Vec2{WallThickness, hh*2 + WallThickness}
	default:
		w.Size = mgl64.Vec2{hw*2 + WallThickness, WallThickness}
	}
}

func (w Wall) View() dynamo.WallView {
	return dynamo.WallView{Location: w.Location.String(), Position: w.Position, Size: w.Size}
}

// NewWalls creates the four walls laid out for params.
func NewWalls(params config.Params) []Wall {
	walls := make([]Wall, len(Locations))
	for i, loc := range Locations {
		walls[i] = Wall{Location: loc}
		walls[i].Layout(params)
	}
	return walls
}

// GeometrySync relays the walls only when the configuration has changed by
// value since the last relayout.
type GeometrySync struct {
	walls      []Wall
	last       config.Params
	recomputes int
}

func NewGeometrySync(params config.Params) *GeometrySync {
	params = params.Clamp()
	return &GeometrySync{walls: NewWalls(params), last: params}
}

// Sync relays every wall if params differs from the previous snapshot and
// reports whether it did any work.
func (g *GeometrySync) Sync(params config.Params) bool {
	params = params.Clamp()
	if params == g.last {
		return false
	}
	for i := range g.walls {
		g.walls[i].Layout(params)
	}
	g.last = params
	g.recomputes++
	return true
}

// Recomputes counts the relayouts performed after construction.
func (g *GeometrySync) Recomputes() int { return g.recomputes }

// Walls returns a copy of the current walls.
func (g *GeometrySync) Walls() []Wall {
	return append([]Wall(nil), g.walls...)
}

// Wall returns the wall tagged loc.
func (g *GeometrySync) Wall(loc Location) Wall {
	for _, w := range g.walls {
		if w.Location == loc {
			return w
		}
	}
	return Wall{Location: loc}
}

func (g *GeometrySync) Views() []dynamo.WallView {
	views := make([]dynamo.WallView, len(g.walls))
	for i, w := range g.walls {
		views[i] = w.View()
	}
	return views
}
