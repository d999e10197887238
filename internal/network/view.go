package network

import (
	"math/rand/v2"
	"sync"

	"github.com/hoanghai1803/newsdash/internal/models"
)

// View keeps the current graph and palette and redraws whenever either
// changes. The surface is looked up on every redraw; a nil surface (not
// mounted yet) makes the redraw a silent no-op that the next change retries.
type View struct {
	mu      sync.Mutex
	mount   func() Surface
	width   int
	height  int
	graph   *models.NetworkGraph
	palette Palette
	rng     *rand.Rand
	last    Result
}

// NewView creates a view of the given size. rng may be nil for a fresh
// random layout on every redraw.
func NewView(width, height int, palette Palette, mount func() Surface, rng *rand.Rand) *View {
	return &View{
		mount:   mount,
		width:   width,
		height:  height,
		palette: palette,
		rng:     rng,
		last:    InsufficientData,
	}
}

// SetGraph replaces the graph and redraws.
func (v *View) SetGraph(g *models.NetworkGraph) Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.graph = g
	return v.redraw()
}

// SetPalette replaces the palette and redraws.
func (v *View) SetPalette(p Palette) Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.palette = p
	return v.redraw()
}

// Redraw draws the current graph again with a new layout.
func (v *View) Redraw() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redraw()
}

// Palette returns the active palette.
func (v *View) Palette() Palette {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.palette
}

// Read calls fn with the mounted surface and the last redraw result while
// holding the view lock, so fn never sees a half-drawn surface.
func (v *View) Read(fn func(s Surface, last Result) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	var s Surface
	if v.mount != nil {
		s = v.mount()
	}
	return fn(s, v.last)
}

func (v *View) redraw() Result {
	var s Surface
	if v.mount != nil {
		s = v.mount()
	}
	v.last = Render(s, v.graph, v.width, v.height, v.palette, v.rng)
	return v.last
}
