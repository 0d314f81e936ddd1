package render

import (
	"image/color"
	"math"

	"github.com/corecast/client/coords"
)

const (
	DefaultWaterfallSmooth = 3
	DefaultMinDb           = -120
	DefaultMaxDb           = -40
)

var (
	wfOverlayStroke = color.NRGBA{0xff, 0xff, 0x00, 242}
	wfOverlayFill   = color.NRGBA{0xff, 0xff, 0x00, 38}
)

// Waterfall keeps the scrolling spectrogram as a ring of RGBA rows. The
// newest row is always drawn at the top and rows age downwards.
type Waterfall struct {
	width  int
	height int
	smooth int
	minDb  float64
	maxDb  float64

	arena []byte
	head  int
	rows  int

	smoothed []float64
	line     []float64
}

// NewWaterfall allocates a width×height ring.
func NewWaterfall(width, height int) *Waterfall {
	w := &Waterfall{
		smooth: DefaultWaterfallSmooth,
		minDb:  DefaultMinDb,
		maxDb:  DefaultMaxDb,
	}
	w.Resize(width, height)
	return w
}

func (w *Waterfall) Width() int  { return w.width }
func (w *Waterfall) Height() int { return w.height }

// Rows returns how many rows hold data.
func (w *Waterfall) Rows() int { return w.rows }

// SetRange sets the dB range mapped onto the palette. maxDb below minDb
// inverts the palette.
func (w *Waterfall) SetRange(minDb, maxDb float64) {
	w.minDb, w.maxDb = minDb, maxDb
}

// SetSmooth sets the width of the box filter applied across bins. Values of
// one or less disable it.
func (w *Waterfall) SetSmooth(n int) {
	w.smooth = n
}

// Resize changes the bitmap geometry, keeping the newest rows. Kept rows are
// resampled horizontally when the width changes.
func (w *Waterfall) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == w.width && height == w.height {
		return
	}
	arena := make([]byte, width*height*4)
	keep := min(w.rows, height)
	for age := 0; age < keep; age++ {
		src := w.Row(age)
		dst := arena[age*width*4 : (age+1)*width*4]
		if width == w.width {
			copy(dst, src)
			continue
		}
		ratio := float64(w.width) / float64(width)
		for x := 0; x < width; x++ {
			sx := int(float64(x) * ratio)
			copy(dst[4*x:4*x+4], src[4*sx:4*sx+4])
		}
	}
	w.arena = arena
	w.width, w.height = width, height
	w.head = 0
	w.rows = keep
}

// Push colours frame into a new row at the top and returns that row. The
// returned slice aliases the ring and is overwritten once the ring wraps.
func (w *Waterfall) Push(frame []float64) []byte {
	if len(frame) == 0 {
		return nil
	}
	w.smoothed = smoothRow(w.smoothed, frame, w.smooth)
	w.line = resample(w.line, w.smoothed, w.width)

	w.head = (w.head - 1 + w.height) % w.height
	w.rows = min(w.rows+1, w.height)
	row := w.arena[w.head*w.width*4 : (w.head+1)*w.width*4]

	lo, hi := w.minDb, w.maxDb
	rng := hi - lo
	if math.Abs(rng) < psdMinRange {
		rng = psdMinRange
	}
	low, high := math.Min(lo, hi), math.Max(lo, hi)
	for x, v := range w.line {
		v = math.Min(high, math.Max(low, v))
		c := Colour((v - lo) / rng)
		row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = c.R, c.G, c.B, 0xff
	}
	return row
}

// Row returns the row of the given age, zero being the newest. Rows that
// have not been filled yet are transparent black.
func (w *Waterfall) Row(age int) []byte {
	idx := ((w.head+age)%w.height + w.height) % w.height
	return w.arena[idx*w.width*4 : (idx+1)*w.width*4]
}

// Head is the arena row holding the newest data.
func (w *Waterfall) Head() int { return w.head }

// Pixels returns the whole arena in storage order. Row Head() is the newest
// and rows age with increasing index, wrapping at the bottom.
func (w *Waterfall) Pixels() []byte { return w.arena }

// Clear drops all history.
func (w *Waterfall) Clear() {
	clear(w.arena)
	w.head, w.rows = 0, 0
}

// Shift moves every stored row dx columns to the right, filling exposed
// columns with transparent black.
func (w *Waterfall) Shift(dx int) {
	if dx == 0 {
		return
	}
	if dx >= w.width || -dx >= w.width {
		clear(w.arena)
		return
	}
	stride := w.width * 4
	n := abs(dx) * 4
	for y := 0; y < w.height; y++ {
		row := w.arena[y*stride : (y+1)*stride]
		if dx > 0 {
			copy(row[n:], row[:stride-n])
			clear(row[:n])
		} else {
			copy(row, row[n:])
			clear(row[stride-n:])
		}
	}
}

// Draw blits the ring onto s, newest row first.
func (w *Waterfall) Draw(s Surface) {
	_, h := s.Size()
	for y := 0; y < h && y < w.height; y++ {
		s.PutRow(y, w.Row(y))
	}
}

// DrawWaterfallOverlay outlines the tuned window over the full height of s.
func DrawWaterfallOverlay(s Surface, span coords.Span, win coords.Window) {
	w, h := s.Size()
	s.Clear()
	m, ok := coords.NewMapper(span, float64(w))
	if !ok {
		return
	}
	x, bw, ok := m.Box(win)
	if !ok {
		return
	}
	s.StrokeRect(float32(x), 0, float32(bw), float32(h), 2, wfOverlayStroke)
	s.FillRect(float32(x), 0, float32(bw), float32(h), wfOverlayFill)
}

// smoothRow box-filters src into dst with a radius of n>>1 bins, clamping at
// the edges.
func smoothRow(dst, src []float64, n int) []float64 {
	dst = grow(dst, len(src))
	if n <= 1 {
		copy(dst, src)
		return dst
	}
	half := n >> 1
	last := len(src) - 1
	count := float64(2*half + 1)
	for i := range src {
		sum := 0.0
		for j := -half; j <= half; j++ {
			k := min(last, max(0, i+j))
			sum += src[k]
		}
		dst[i] = sum / count
	}
	return dst
}

// resample picks the nearest source bin for every destination column.
func resample(dst, src []float64, width int) []float64 {
	dst = grow(dst, width)
	if len(src) == width {
		copy(dst, src)
		return dst
	}
	ratio := float64(len(src)) / float64(width)
	for x := 0; x < width; x++ {
		dst[x] = src[min(len(src)-1, int(float64(x)*ratio))]
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func grow(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
