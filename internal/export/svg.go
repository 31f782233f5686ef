package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/viz"
)

// Palette cycles across particle paths.
var Palette = []string{"#00ff88", "#ff6b6b", "#4ecdc4", "#ffd93d", "#c792ea"}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.Dots()
	width := float64(dw) * scale
	height := float64(dh) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the walls laid out for params and the path of every
// particle through states. The view is centred on the origin and fits the
// walls plus anything that left them.
func TrajectoryToSVG(states [][]dynamo.Particle, params config.Params, width, height int) string {
	if len(states) < 2 || len(states[0]) == 0 {
		return ""
	}
	params = params.Clamp()

	ext := viewExtents(params.HalfExtents[0]+physics.WallThickness, params.HalfExtents[1]+physics.WallThickness, states)
	scale := math.Min(float64(width)/(2*ext[0]), float64(height)/(2*ext[1]))
	project := func(x, y float64) (float64, float64) {
		return float64(width)/2 + x*scale, float64(height)/2 - y*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, w := range physics.NewWalls(params) {
		x, y := project(w.Position[0]-w.Size[0]/2, w.Position[1]+w.Size[1]/2)
		fmt.Fprintf(&sb, "<rect class=\"wall\" data-location=\"%s\" x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"#444444\"/>\n",
			w.Location, x, y, w.Size[0]*scale, w.Size[1]*scale)
	}

	for i := range states[0] {
		var d strings.Builder
		for _, state := range states {
			if i >= len(state) || !state[i].IsValid() {
				continue
			}
			x, y := project(state[i].Position.X(), state[i].Position.Y())
			if d.Len() == 0 {
				fmt.Fprintf(&d, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&d, " L%.1f,%.1f", x, y)
			}
		}
		if d.Len() == 0 {
			continue
		}
		fmt.Fprintf(&sb, "<path class=\"particle\" fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"%s\"/>\n",
			Palette[i%len(Palette)], d.String())
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// viewExtents returns the larger of the given extents and the farthest reach of
// any particle on each axis.
func viewExtents(hw, hh float64, states [][]dynamo.Particle) [2]float64 {
	ext := [2]float64{math.Max(hw, 1), math.Max(hh, 1)}
	for _, state := range states {
		for _, p := range state {
			if !p.IsValid() {
				continue
			}
			ext[0] = math.Max(ext[0], math.Abs(p.Position.X()))
			ext[1] = math.Max(ext[1], math.Abs(p.Position.Y()))
		}
	}
	return ext
}
