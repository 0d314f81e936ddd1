// Package control turns pointer gestures on the spectral displays into new
// tuning and span values.
package control

import (
	"math"

	"github.com/corecast/client/coords"
)

const (
	EdgeTolerancePx  = 6
	CaretTolerancePx = 4

	MinBandwidthHz = 10e3
	MinSpanHz      = 20e3
	ZoomFactor     = 1.2
)

// Mode is what a drag manipulates.
type Mode int

const (
	ModeNone Mode = iota
	ModeLeftEdge
	ModeRightEdge
	ModeCenter
	ModePan
)

func (m Mode) String() string {
	switch m {
	case ModeLeftEdge:
		return "left-edge"
	case ModeRightEdge:
		return "right-edge"
	case ModeCenter:
		return "center"
	case ModePan:
		return "pan"
	}
	return "none"
}

// Cursor is the pointer affordance a widget wants shown.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorResize
	CursorMove
	CursorGrab
)

// State is Idle when Mode is ModeNone, Dragging otherwise.
type State struct {
	Mode Mode
}

func (s State) Dragging() bool { return s.Mode != ModeNone }

// Cursor returns the affordance for the state.
func (s State) Cursor() Cursor {
	switch s.Mode {
	case ModeLeftEdge, ModeRightEdge:
		return CursorResize
	case ModeCenter:
		return CursorMove
	case ModePan:
		return CursorGrab
	}
	return CursorDefault
}

// drag holds everything frozen at pointer-down. Moves are computed against
// it so re-renders mid-drag do not feed back into the gesture.
type drag struct {
	mode   Mode
	startX float64
	m      coords.Mapper
	span   coords.Span
	win    coords.Window
}

func (d *drag) deltaHz(x float64) float64 {
	return d.m.DeltaHz(x - d.startX)
}

// Scale drives the frequency-scale widget: dragging an edge of the tuned
// window resizes it symmetrically, dragging the centre caret retunes.
type Scale struct {
	drag *drag
}

// HitTest reports which part of the tuned window sits under x. Edges win
// over the caret when they overlap.
func HitTest(m coords.Mapper, win coords.Window, x float64) Mode {
	bx, bw, ok := m.Box(win)
	if !ok {
		return ModeNone
	}
	switch {
	case math.Abs(x-bx) < EdgeTolerancePx:
		return ModeLeftEdge
	case math.Abs(x-(bx+bw)) < EdgeTolerancePx:
		return ModeRightEdge
	case math.Abs(x-(bx+bw/2)) < CaretTolerancePx:
		return ModeCenter
	}
	return ModeNone
}

// Hover returns the cursor for a pointer at x that is not dragging.
func (s *Scale) Hover(span coords.Span, widthPx float64, win coords.Window, x float64) Cursor {
	if s.drag != nil {
		return State{Mode: s.drag.mode}.Cursor()
	}
	m, ok := coords.NewMapper(span, widthPx)
	if !ok {
		return CursorDefault
	}
	return State{Mode: HitTest(m, win, x)}.Cursor()
}

// Down starts a drag when x hits an edge or the caret. It reports whether a
// drag began.
func (s *Scale) Down(span coords.Span, widthPx float64, win coords.Window, x float64) bool {
	m, ok := coords.NewMapper(span, widthPx)
	if !ok {
		return false
	}
	mode := HitTest(m, win, x)
	if mode == ModeNone {
		return false
	}
	s.drag = &drag{mode: mode, startX: x, m: m, span: span, win: win}
	return true
}

// Move returns the tuned window for a pointer at x. ok is false when no drag
// is active or no valid window exists.
func (s *Scale) Move(x float64) (coords.Window, bool) {
	d := s.drag
	if d == nil {
		return coords.Window{}, false
	}
	dHz := d.deltaHz(x)
	switch d.mode {
	case ModeCenter:
		return coords.Window{Freq: centerFreq(d.span, d.win.Bandwidth, d.win.Freq+dHz), Bandwidth: d.win.Bandwidth}, true
	case ModeLeftEdge, ModeRightEdge:
		if d.mode == ModeLeftEdge {
			dHz = -dHz
		}
		bw, ok := edgeBandwidth(d.span, d.win.Freq, d.win.Bandwidth+2*dHz)
		if !ok {
			return coords.Window{}, false
		}
		return coords.Window{Freq: d.win.Freq, Bandwidth: bw}, true
	}
	return coords.Window{}, false
}

// Up ends the drag and returns the cursor to its default.
func (s *Scale) Up() Cursor {
	s.drag = nil
	return CursorDefault
}

// State returns the current drag state.
func (s *Scale) State() State {
	if s.drag == nil {
		return State{}
	}
	return State{Mode: s.drag.mode}
}

// centerFreq keeps a window of width bw inside span. A window wider than the
// span is pinned to the span's midpoint.
func centerFreq(span coords.Span, bw, freq float64) float64 {
	lo, hi := span.MinHz+bw/2, span.MaxHz-bw/2
	if lo > hi {
		return span.Center()
	}
	return coords.Clamp(freq, lo, hi)
}

// edgeBandwidth floors bw at MinBandwidthHz, then caps it so neither edge
// leaves span. ok is false when freq lies outside span.
func edgeBandwidth(span coords.Span, freq, bw float64) (float64, bool) {
	maxBw := 2 * math.Min(freq-span.MinHz, span.MaxHz-freq)
	if !(maxBw > 0) {
		return 0, false
	}
	bw = math.Max(MinBandwidthHz, bw)
	return math.Min(bw, maxBw), true
}

// Pan drives background drags on the waterfall. Dragging right reveals lower
// frequencies.
type Pan struct {
	drag *drag
}

// Down starts a pan at x.
func (p *Pan) Down(span coords.Span, widthPx float64, x float64) bool {
	m, ok := coords.NewMapper(span, widthPx)
	if !ok {
		return false
	}
	p.drag = &drag{mode: ModePan, startX: x, m: m, span: span}
	return true
}

// Move returns the span for a pointer at x.
func (p *Pan) Move(x float64) (coords.Span, bool) {
	if p.drag == nil {
		return coords.Span{}, false
	}
	return p.drag.span.Shift(-p.drag.deltaHz(x)), true
}

func (p *Pan) Up() Cursor {
	p.drag = nil
	return CursorDefault
}

func (p *Pan) State() State {
	if p.drag == nil {
		return State{}
	}
	return State{Mode: ModePan}
}

// Zoom rescales span around the frequency under cursorX. Positive notches
// zoom in by ZoomFactor each. The result is never narrower than MinSpanHz.
func Zoom(span coords.Span, cursorX, widthPx, notches float64) (coords.Span, bool) {
	m, ok := coords.NewMapper(span, widthPx)
	if !ok || notches == 0 || math.IsNaN(notches) {
		return span, false
	}
	frac := coords.Clamp(cursorX/widthPx, 0, 1)
	anchor := m.PxToHz(frac * widthPx)
	width := math.Max(MinSpanHz, span.Width()/math.Pow(ZoomFactor, notches))
	if math.IsInf(width, 0) {
		return span, false
	}
	lo := anchor - width*frac
	return coords.Span{MinHz: lo, MaxHz: lo + width}, true
}
