// Package network draws the keyword co-occurrence graph onto a 2D surface.
//
// Layout is a single uniform-random placement per draw, not a force
// simulation. Pass a seeded *rand.Rand to get a reproducible picture.
package network

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hoanghai1803/newsdash/internal/models"
)

// Node sizing: radius = max(sqrt(value)*RadiusScale, MinRadius).
const (
	RadiusScale = 2.0
	MinRadius   = 5.0
	labelGap    = 4.0
)

// Surface is a drawing target.
type Surface interface {
	Line(x1, y1, x2, y2 float64, c color.Color)
	Circle(cx, cy, r float64, c color.Color)
	// Text draws s horizontally centred on x with its baseline at y.
	Text(x, y float64, s string, c color.Color)
}

// Clearer is implemented by surfaces that keep pixels between draws.
type Clearer interface {
	Clear(c color.Color)
}

// Result tells the caller what a render did.
type Result int

const (
	// Rendered means the graph was drawn.
	Rendered Result = iota
	// InsufficientData means there were no nodes or no edges; nothing was
	// drawn and the caller should show a placeholder.
	InsufficientData
	// NoSurface means there was nothing to draw on yet.
	NoSurface
)

func (r Result) String() string {
	switch r {
	case Rendered:
		return "rendered"
	case InsufficientData:
		return "insufficient_data"
	case NoSurface:
		return "no_surface"
	}
	return "unknown"
}

// Point is a node position.
type Point struct {
	X, Y float64
}

// Render draws g onto s. Edges go first so nodes and labels sit on top.
// Edges naming an unknown node are skipped.
func Render(s Surface, g *models.NetworkGraph, width, height int, p Palette, rng *rand.Rand) Result {
	if g.Empty() {
		return InsufficientData
	}
	if s == nil || width <= 0 || height <= 0 {
		return NoSurface
	}

	if c, ok := s.(Clearer); ok && p.Background != nil {
		c.Clear(p.Background)
	}

	pos := Layout(g, width, height, rng)

	for _, e := range g.Edges {
		from, ok := pos[e.Source]
		if !ok {
			continue
		}
		to, ok := pos[e.Target]
		if !ok {
			continue
		}
		s.Line(from.X, from.Y, to.X, to.Y, p.Divider)
	}

	for _, n := range g.Nodes {
		pt := pos[n.ID]
		r := Radius(n.Value)
		s.Circle(pt.X, pt.Y, r, p.Accent)
		s.Text(pt.X, pt.Y-r-labelGap, n.Label, p.Foreground)
	}
	return Rendered
}

// Layout places every node uniformly at random in [0,width)×[0,height).
// A nil rng uses the package-level random source.
func Layout(g *models.NetworkGraph, width, height int, rng *rand.Rand) map[string]Point {
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}

	pos := make(map[string]Point, len(g.Nodes))
	for _, n := range g.Nodes {
		pos[n.ID] = Point{X: next() * float64(width), Y: next() * float64(height)}
	}
	return pos
}

// Radius returns the circle radius for a node value.
func Radius(value float64) float64 {
	if !(value > 0) {
		return MinRadius
	}
	return math.Max(math.Sqrt(value)*RadiusScale, MinRadius)
}
