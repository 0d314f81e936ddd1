package render

import (
	"image/color"
	"math"

	"github.com/tinne26/badcolor"
)

// Gradient is a vertical multi-stop gradient. Hue is blended in Oklab and
// alpha linearly.
type Gradient struct {
	stops  []badcolor.Oklab
	alphas []float64
	lut    [256]color.NRGBA
}

// NewGradient builds a gradient from top to bottom through stops. Stops with
// alpha are honoured.
func NewGradient(stops ...color.Color) *Gradient {
	g := &Gradient{}
	for _, s := range stops {
		n := color.NRGBAModel.Convert(s).(color.NRGBA)
		g.alphas = append(g.alphas, float64(n.A)/255)
		g.stops = append(g.stops, badcolor.ToOklab(color.NRGBA{n.R, n.G, n.B, 0xff}))
	}
	for i := range g.lut {
		g.lut[i] = g.eval(float64(i) / 255)
	}
	return g
}

// At returns the colour at t in [0,1] (0 is the top).
func (g *Gradient) At(t float64) color.NRGBA {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Min(1, math.Max(0, t))
	return g.lut[int(math.Round(t*255))]
}

func (g *Gradient) eval(t float64) color.NRGBA {
	switch len(g.stops) {
	case 0:
		return color.NRGBA{}
	case 1:
		return withAlpha(g.stops[0].RGBA8(), g.alphas[0])
	}
	pos := t * float64(len(g.stops)-1)
	floor := math.Floor(pos)
	i := int(floor)
	if i >= len(g.stops)-1 {
		last := len(g.stops) - 1
		return withAlpha(g.stops[last].RGBA8(), g.alphas[last])
	}
	lerp := pos - floor
	blended := g.stops[i].Interpolate(g.stops[i+1], lerp)
	a := g.alphas[i] + (g.alphas[i+1]-g.alphas[i])*lerp
	return withAlpha(blended.RGBA8(), a)
}

func withAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(a * 255))
	return n
}
