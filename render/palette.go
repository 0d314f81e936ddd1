package render

import (
	"image/color"
	"math"
)

// waterfallPalette runs black, blue, cyan, green, yellow, red, dark red.
var waterfallPalette = [...]color.RGBA{
	{0, 0, 0, 0xff}, {0, 0, 32, 0xff}, {0, 0, 64, 0xff}, {0, 0, 128, 0xff},
	{0, 0, 255, 0xff}, {0, 127, 255, 0xff}, {0, 191, 255, 0xff}, {0, 255, 255, 0xff},
	{0, 255, 191, 0xff}, {0, 255, 127, 0xff}, {0, 255, 63, 0xff}, {0, 255, 0, 0xff},
	{63, 255, 0, 0xff}, {127, 255, 0, 0xff}, {191, 255, 0, 0xff}, {255, 255, 0, 0xff},
	{255, 191, 0, 0xff}, {255, 127, 0, 0xff}, {255, 63, 0, 0xff}, {255, 0, 0, 0xff},
	{191, 0, 0, 0xff}, {127, 0, 0, 0xff}, {95, 0, 0, 0xff}, {63, 0, 0, 0xff},
}

// PaletteSize is the number of stops in the waterfall colormap.
const PaletteSize = len(waterfallPalette)

// Colour maps a normalized power n in [0,1] onto the waterfall palette by
// interpolating linearly between the two nearest stops. Out of range and
// non-finite values are clamped.
func Colour(n float64) color.RGBA {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	x := math.Min(1, math.Max(0, n)) * float64(PaletteSize-1)
	i := int(math.Floor(x))
	if i >= PaletteSize-1 {
		return waterfallPalette[PaletteSize-1]
	}
	t := x - float64(i)
	a, b := waterfallPalette[i], waterfallPalette[i+1]
	return color.RGBA{
		R: lerpByte(a.R, b.R, t),
		G: lerpByte(a.G, b.G, t),
		B: lerpByte(a.B, b.B, t),
		A: 0xff,
	}
}

// PaletteStop returns stop i of the colormap.
func PaletteStop(i int) color.RGBA {
	return waterfallPalette[i]
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
}
