package render

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/corecast/client/coords"
)

const (
	psdGridSpacing = 45
	psdMinRange    = 1e-3
)

var (
	psdGrid       = color.NRGBA{0xff, 0xff, 0xff, 0x40}
	psdFillTop    = color.NRGBA{37, 117, 255, 230}
	psdFillBottom = color.NRGBA{0, 0, 0, 26}
	psdLine       = color.NRGBA{0x25, 0x90, 0xff, 0xff}
	psdPeak       = color.NRGBA{0x00, 0xc9, 0xa7, 0xff}
	psdOverFill   = color.NRGBA{207, 200, 17, 38}
	psdCenterLine = color.NRGBA{0xc9, 0x0d, 0x6b, 0xff}
)

// PSD draws the live power spectral density trace with its peak hold and the
// tuned-window overlay.
type PSD struct {
	fill *Gradient
}

func NewPSD() *PSD {
	return &PSD{fill: NewGradient(psdFillTop, psdFillBottom)}
}

// Normalize returns the minimum of data and the range used to scale it. The
// range is never below 1e-3 so that a flat spectrum does not divide by zero.
func Normalize(data []float64) (lo, rng float64) {
	if len(data) == 0 {
		return 0, psdMinRange
	}
	lo, hi := floats.Min(data), floats.Max(data)
	rng = math.Max(psdMinRange, hi-lo)
	if math.IsNaN(rng) || math.IsInf(rng, 0) {
		return 0, psdMinRange
	}
	return lo, rng
}

// Trace maps data onto a w×h canvas, stretching the bin index range across
// the full width. Values at lo land on the bottom edge.
func Trace(data []float64, lo, rng float64, w, h int) []Point {
	n := len(data)
	if n == 0 {
		return nil
	}
	fh := float64(h)
	y := func(v float64) float32 {
		yy := fh - (v-lo)/rng*fh
		if math.IsNaN(yy) {
			yy = fh
		}
		return float32(yy)
	}
	if n == 1 {
		return []Point{{0, y(data[0])}, {float32(w), y(data[0])}}
	}
	xScale := float64(w) / float64(n-1)
	pts := make([]Point, n)
	for i, v := range data {
		pts[i] = Point{float32(float64(i) * xScale), y(v)}
	}
	return pts
}

// Draw renders the grid, the filled smoothed trace, its outline, the peak
// trace and, when span and window are usable, the tuned-window overlay.
func (p *PSD) Draw(s Surface, smoothed, peak []float64, span coords.Span, win coords.Window) {
	w, h := s.Size()
	s.Clear()
	drawGrid(s, w, h)

	if len(smoothed) > 0 {
		lo, rng := Normalize(smoothed)
		live := Trace(smoothed, lo, rng, w, h)

		area := make([]Point, 0, len(live)+2)
		area = append(area, Point{0, float32(h)})
		area = append(area, live...)
		area = append(area, Point{float32(w), float32(h)})
		s.FillPath(area, p.fill)
		s.Polyline(live, 1.5, psdLine)

		if len(peak) == len(smoothed) {
			s.Polyline(Trace(peak, lo, rng, w, h), 2, psdPeak)
		}
	}

	p.drawOverlay(s, w, h, span, win)
}

func (p *PSD) drawOverlay(s Surface, w, h int, span coords.Span, win coords.Window) {
	m, ok := coords.NewMapper(span, float64(w))
	if !ok {
		return
	}
	x, bw, ok := m.Box(win)
	if !ok {
		return
	}
	s.FillRect(float32(x), 0, float32(bw), float32(h), psdOverFill)
	cx := float32(m.HzToPx(win.Freq))
	s.Line(cx, 0, cx, float32(h), 2, psdCenterLine)
}

func drawGrid(s Surface, w, h int) {
	for x := 0; x <= w; x += psdGridSpacing {
		s.Line(float32(x)+0.5, 0, float32(x)+0.5, float32(h), 1, psdGrid)
	}
	for y := 0; y <= h; y += psdGridSpacing {
		s.Line(0, float32(y)+0.5, float32(w), float32(y)+0.5, 1, psdGrid)
	}
}
