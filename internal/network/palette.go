package network

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette is the set of theme colours the renderer reads at draw time.
// Built-in and parsed colours are non-premultiplied NRGBA values.
type Palette struct {
	Background color.Color
	Accent     color.Color
	Foreground color.Color
	Divider    color.Color
}

// Built-in themes.
var (
	LightPalette = Palette{
		Background: color.NRGBA{0xff, 0xff, 0xff, 0xff},
		Accent:     color.NRGBA{0x19, 0x76, 0xd2, 0xff},
		Foreground: color.NRGBA{0x21, 0x21, 0x21, 0xff},
		Divider:    color.NRGBA{0x00, 0x00, 0x00, 0x1f},
	}
	DarkPalette = Palette{
		Background: color.NRGBA{0x12, 0x12, 0x12, 0xff},
		Accent:     color.NRGBA{0x90, 0xca, 0xf9, 0xff},
		Foreground: color.NRGBA{0xff, 0xff, 0xff, 0xff},
		Divider:    color.NRGBA{0xff, 0xff, 0xff, 0x1f},
	}
)

// PaletteFor returns the built-in palette for a theme name.
func PaletteFor(theme string) (Palette, bool) {
	switch strings.ToLower(theme) {
	case "light":
		return LightPalette, true
	case "dark":
		return DarkPalette, true
	}
	return Palette{}, false
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa". The alpha byte is
// straight (not premultiplied), as in CSS.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// hexColor formats c as "#rrggbb" plus its opacity in [0,1].
func hexColor(c color.Color) (string, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 0xff
}

// Override returns p with every non-empty hex value applied.
func (p Palette) Override(background, accent, foreground, divider string) (Palette, error) {
	out := p
	for _, o := range []struct {
		hex string
		dst *color.Color
	}{
		{background, &out.Background},
		{accent, &out.Accent},
		{foreground, &out.Foreground},
		{divider, &out.Divider},
	} {
		if o.hex == "" {
			continue
		}
		c, err := ParseHexColor(o.hex)
		if err != nil {
			return Palette{}, err
		}
		*o.dst = c
	}
	return out, nil
}
