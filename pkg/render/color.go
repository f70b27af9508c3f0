package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorRed     = color.RGBA{255, 0, 0, 255}
	ColorGreen   = color.RGBA{0, 255, 0, 255}
	ColorBlue    = color.RGBA{0, 0, 255, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Color4 is a floating-point RGBA color with components nominally in [0, 1].
// Vertex colors, lighting terms and interpolated span colors use it; it is
// converted to a Color only when a fragment is written.
type Color4 struct {
	R, G, B, A float64
}

// C4 creates a new Color4.
func C4(r, g, b, a float64) Color4 {
	return Color4{r, g, b, a}
}

// Gray returns an opaque gray of intensity v.
func Gray(v float64) Color4 {
	return Color4{v, v, v, 1}
}

// Color4FromRGBA converts an 8-bit color.
func Color4FromRGBA(c color.RGBA) Color4 {
	return Color4{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
		float64(c.A) / 255,
	}
}

// Add returns the component-wise sum.
func (a Color4) Add(b Color4) Color4 {
	return Color4{a.R + b.R, a.G + b.G, a.B + b.B, a.A + b.A}
}

// Sub returns the component-wise difference.
func (a Color4) Sub(b Color4) Color4 {
	return Color4{a.R - b.R, a.G - b.G, a.B - b.B, a.A - b.A}
}

// Mul returns the component-wise product.
func (a Color4) Mul(b Color4) Color4 {
	return Color4{a.R * b.R, a.G * b.G, a.B * b.B, a.A * b.A}
}

// Scale multiplies every component by s.
func (a Color4) Scale(s float64) Color4 {
	return Color4{a.R * s, a.G * s, a.B * s, a.A * s}
}

// AddScaled returns a + d*s.
func (a Color4) AddScaled(d Color4, s float64) Color4 {
	return Color4{a.R + d.R*s, a.G + d.G*s, a.B + d.B*s, a.A + d.A*s}
}

// ToRGBA clamps the color to [0, 1] and quantizes it to 8 bits per channel.
func (a Color4) ToRGBA() color.RGBA {
	return color.RGBA{quantize(a.R), quantize(a.G), quantize(a.B), quantize(a.A)}
}

func quantize(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Floor(v*255 + 0.5))
}
