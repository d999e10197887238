package network

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
)

var (
	_ Surface = (*SVG)(nil)
	_ Clearer = (*SVG)(nil)
)

// SVG records drawing calls as SVG elements.
type SVG struct {
	width, height int
	background    string
	body          bytes.Buffer
}

// NewSVG creates an empty width×height SVG document.
func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height}
}

// Clear drops everything drawn so far and sets the background.
func (s *SVG) Clear(c color.Color) {
	s.body.Reset()
	hex, alpha := hexColor(c)
	s.background = fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s" fill-opacity="%.3g"/>`, hex, alpha)
}

func (s *SVG) Line(x1, y1, x2, y2 float64, c color.Color) {
	hex, alpha := hexColor(c)
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3g" stroke-width="%.1f"/>`+"\n",
		x1, y1, x2, y2, hex, alpha, lineWidth)
}

func (s *SVG) Circle(cx, cy, r float64, c color.Color) {
	hex, alpha := hexColor(c)
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3g"/>`+"\n",
		cx, cy, r, hex, alpha)
}

func (s *SVG) Text(x, y float64, text string, c color.Color) {
	hex, alpha := hexColor(c)
	fmt.Fprintf(&s.body, `<text x="%.2f" y="%.2f" text-anchor="middle" font-size="12" fill="%s" fill-opacity="%.3g">`,
		x, y, hex, alpha)
	_ = xml.EscapeText(&s.body, []byte(text))
	s.body.WriteString("</text>\n")
}

// WriteTo writes the complete SVG document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var doc bytes.Buffer
	fmt.Fprintf(&doc, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.width, s.height, s.width, s.height)
	if s.background != "" {
		doc.WriteString(s.background + "\n")
	}
	doc.Write(s.body.Bytes())
	doc.WriteString("</svg>\n")
	return doc.WriteTo(w)
}
