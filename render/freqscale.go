package render

import (
	"image/color"
	"math"

	"golang.org/x/image/colornames"

	"github.com/corecast/client/coords"
	"github.com/corecast/client/pkg/format"
)

const scaleTickTargetPx = 60

var (
	scaleBaseline  = colornames.Darkgray
	scaleTick      = color.RGBA{0x88, 0x88, 0x88, 0xff}
	scaleLabel     = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	scaleBoxFill   = color.NRGBA{0xff, 0xff, 0x00, 64}
	scaleBoxStroke = color.NRGBA{0xff, 0xff, 0x00, 230}
)

// NiceStep rounds raw up to the next 1, 2 or 5 times a power of ten.
func NiceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	exp := math.Floor(math.Log10(raw))
	pow := math.Pow(10, exp)
	base := raw / pow
	var nice float64
	switch {
	case base <= 1:
		nice = 1
	case base <= 2:
		nice = 2
	case base <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * pow
}

// Tick is one mark on the frequency scale.
type Tick struct {
	Hz    float64
	X     float64
	Major bool
}

// ScaleTicks lays out ticks roughly every 60 px, with every second one
// labelled.
func ScaleTicks(m coords.Mapper) []Tick {
	major := NiceStep(scaleTickTargetPx / m.PxPerHz())
	label := major * 2
	span := m.Span()
	first := math.Ceil(span.MinHz/major) * major

	var ticks []Tick
	for i := 0; ; i++ {
		f := first + float64(i)*major
		if f > span.MaxHz {
			break
		}
		ticks = append(ticks, Tick{
			Hz:    f,
			X:     math.Round(m.HzToPx(f)) + 0.5,
			Major: math.Abs(math.Remainder(f, label)) < major*1e-6,
		})
	}
	return ticks
}

// DrawFreqScale renders the baseline, ticks and labels, then the tuned window
// box with its centre caret.
func DrawFreqScale(s Surface, span coords.Span, win coords.Window) {
	w, h := s.Size()
	s.Clear()
	fh := float32(h)
	s.Line(0, fh-0.5, float32(w), fh-0.5, 1, scaleBaseline)

	m, ok := coords.NewMapper(span, float64(w))
	if !ok {
		return
	}
	for _, t := range ScaleTicks(m) {
		x := float32(t.X)
		length := float32(6)
		if t.Major {
			length = 10
		}
		s.Line(x, fh, x, fh-length, 1, scaleTick)
		if t.Major {
			s.Text(x, fh-12, format.MHzLabel(t.Hz), scaleLabel, AlignCenter)
		}
	}

	x, bw, ok := m.Box(win)
	if !ok {
		return
	}
	s.FillRect(float32(x), 0, float32(bw), fh, scaleBoxFill)
	s.StrokeRect(float32(x), 0, float32(bw), fh, 2, scaleBoxStroke)
	cx := float32(x + bw/2)
	s.Line(cx, 0, cx, fh, 2, scaleBoxStroke)
}
