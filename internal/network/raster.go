package network

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Compile-time interface checks.
var (
	_ Surface = (*Raster)(nil)
	_ Clearer = (*Raster)(nil)
)

const (
	lineWidth      = 1.5
	circleSegments = 48
)

// Raster is an in-memory RGBA surface with anti-aliased shapes.
type Raster struct {
	img  *image.RGBA
	rast *vector.Rasterizer
	face font.Face
}

// NewRaster creates a transparent width×height surface.
func NewRaster(width, height int) *Raster {
	return &Raster{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		rast: vector.NewRasterizer(width, height),
		face: basicfont.Face7x13,
	}
}

// Image returns the underlying image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Clear fills the whole surface with c.
func (r *Raster) Clear(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Line draws a segment as a thin filled quad.
func (r *Raster) Line(x1, y1, x2, y2 float64, c color.Color) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Unit normal scaled to half the stroke width.
	nx, ny := -dy/length*lineWidth/2, dx/length*lineWidth/2

	r.begin()
	r.rast.MoveTo(float32(x1+nx), float32(y1+ny))
	r.rast.LineTo(float32(x2+nx), float32(y2+ny))
	r.rast.LineTo(float32(x2-nx), float32(y2-ny))
	r.rast.LineTo(float32(x1-nx), float32(y1-ny))
	r.rast.ClosePath()
	r.fill(c)
}

// Circle draws a filled circle approximated by a regular polygon.
func (r *Raster) Circle(cx, cy, radius float64, c color.Color) {
	if radius <= 0 {
		return
	}
	r.begin()
	for i := 0; i < circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		x := float32(cx + radius*math.Cos(theta))
		y := float32(cy + radius*math.Sin(theta))
		if i == 0 {
			r.rast.MoveTo(x, y)
		} else {
			r.rast.LineTo(x, y)
		}
	}
	r.rast.ClosePath()
	r.fill(c)
}

// Text draws s centred on x with its baseline at y. The built-in face only
// covers ASCII; other runes render as the face's fallback glyph.
func (r *Raster) Text(x, y float64, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
	}
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(x*64) - width/2,
		Y: fixed.Int26_6(y * 64),
	}
	d.DrawString(s)
}

// EncodePNG writes the surface as a PNG image.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func (r *Raster) begin() {
	b := r.img.Bounds()
	r.rast.Reset(b.Dx(), b.Dy())
}

func (r *Raster) fill(c color.Color) {
	r.rast.DrawOp = draw.Over
	r.rast.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}
