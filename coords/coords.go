// Package coords maps between frequency and pixel space for a visible span.
package coords

import "math"

// Span is the visible frequency window, in Hz.
type Span struct {
	MinHz float64
	MaxHz float64
}

// Width returns the span width in Hz. It is not clamped.
func (s Span) Width() float64 {
	return s.MaxHz - s.MinHz
}

// Center returns the midpoint of the span.
func (s Span) Center() float64 {
	return (s.MinHz + s.MaxHz) / 2
}

// Valid reports whether the span is finite and MaxHz > MinHz.
func (s Span) Valid() bool {
	return finite(s.MinHz) && finite(s.MaxHz) && s.MaxHz > s.MinHz
}

// Shift moves both edges of the span by deltaHz.
func (s Span) Shift(deltaHz float64) Span {
	return Span{MinHz: s.MinHz + deltaHz, MaxHz: s.MaxHz + deltaHz}
}

// Window is a tuned window: a centre frequency and a bandwidth.
type Window struct {
	Freq      float64
	Bandwidth float64
}

// Edges returns the low and high edge of the window.
func (w Window) Edges() (lo, hi float64) {
	return w.Freq - w.Bandwidth/2, w.Freq + w.Bandwidth/2
}

// Valid reports whether the window has a finite centre and a positive
// bandwidth.
func (w Window) Valid() bool {
	return finite(w.Freq) && finite(w.Bandwidth) && w.Bandwidth > 0
}

// Mapper converts between Hz and pixel columns for a fixed span and width.
// The zero value is inactive; use NewMapper.
type Mapper struct {
	span    Span
	width   float64
	pxPerHz float64
}

// NewMapper builds a mapper for span drawn across widthPx pixels. ok is false
// when the span is empty, inverted or non-finite, or when widthPx is not
// positive; callers should then skip anything that depends on the mapping.
func NewMapper(span Span, widthPx float64) (m Mapper, ok bool) {
	if !span.Valid() || !finite(widthPx) || widthPx <= 0 {
		return Mapper{}, false
	}
	pph := widthPx / span.Width()
	if !finite(pph) || pph <= 0 {
		return Mapper{}, false
	}
	return Mapper{span: span, width: widthPx, pxPerHz: pph}, true
}

// Span returns the span the mapper was built for.
func (m Mapper) Span() Span { return m.span }

// Width returns the pixel width the mapper was built for.
func (m Mapper) Width() float64 { return m.width }

// PxPerHz returns the horizontal scale.
func (m Mapper) PxPerHz() float64 { return m.pxPerHz }

// HzToPx maps a frequency to a pixel column. Columns outside [0, width] are
// returned as-is.
func (m Mapper) HzToPx(f float64) float64 {
	return (f - m.span.MinHz) * m.pxPerHz
}

// PxToHz maps a pixel column to a frequency.
func (m Mapper) PxToHz(x float64) float64 {
	if m.pxPerHz == 0 {
		return m.span.MinHz
	}
	return m.span.MinHz + x/m.pxPerHz
}

// DeltaHz converts a pixel distance into a frequency distance.
func (m Mapper) DeltaHz(dx float64) float64 {
	if m.pxPerHz == 0 {
		return 0
	}
	return dx / m.pxPerHz
}

// Box returns the pixel x and width of the tuned window. ok is false when the
// mapper is inactive or the window is invalid.
func (m Mapper) Box(w Window) (x, width float64, ok bool) {
	if m.pxPerHz == 0 || !w.Valid() {
		return 0, 0, false
	}
	x = m.HzToPx(w.Freq - w.Bandwidth/2)
	width = w.Bandwidth * m.pxPerHz
	if !finite(x) || !finite(width) {
		return 0, 0, false
	}
	return x, width, true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
