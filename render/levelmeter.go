package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	meterTrack  = color.RGBA{0x10, 0x10, 0x10, 0xff}
	meterFill   = color.RGBA{0x11, 0x4a, 0x00, 0xff}
	meterMajor  = color.White
	meterMinor  = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
	meterMarker = color.RGBA{0xff, 0xff, 0x00, 0xff}
)

// LevelMeter draws a horizontal dB bar between MinDb and MaxDb.
type LevelMeter struct {
	MinDb float64
	MaxDb float64
}

// Position maps db onto [0,width], clamped to the track.
func (lm LevelMeter) Position(db, width float64) float64 {
	rng := lm.MaxDb - lm.MinDb
	if rng <= 0 || math.IsNaN(db) {
		return 0
	}
	return width * math.Min(1, math.Max(0, (db-lm.MinDb)/rng))
}

// Ticks returns the x positions of the 2 dB sub ticks and the 10 dB major
// ticks across width.
func (lm LevelMeter) Ticks(width float64) (major, minor []float64) {
	if lm.MaxDb <= lm.MinDb {
		return nil, nil
	}
	start := math.Ceil(lm.MinDb/2) * 2
	n := int((lm.MaxDb-start)/2) + 1
	if n <= 0 {
		return nil, nil
	}
	dbs := []float64{start}
	if n > 1 {
		dbs = floats.Span(make([]float64, n), start, start+float64(n-1)*2)
	}
	for _, d := range dbs {
		x := lm.Position(d, width)
		if math.Mod(math.Round(d), 10) == 0 {
			major = append(major, x)
		} else {
			minor = append(minor, x)
		}
	}
	return major, minor
}

// Draw renders the track, the filled level, tick marks with labels and the
// live marker.
func (lm LevelMeter) Draw(s Surface, db float64) {
	w, h := s.Size()
	fw, fh := float64(w), float32(h)
	s.Clear()
	s.FillRect(0, 0, float32(w), fh, meterTrack)

	cur := float32(lm.Position(db, fw))
	s.FillRect(0, 0, cur, fh, meterFill)

	major, minor := lm.Ticks(fw)
	for _, x := range minor {
		s.Line(float32(x), 0, float32(x), fh*0.35, 1, meterMinor)
	}
	for _, x := range major {
		s.Line(float32(x), 0, float32(x), fh*0.65, 2, meterMajor)
		d := lm.MinDb + x/fw*(lm.MaxDb-lm.MinDb)
		s.Text(float32(x), fh-2, fmt.Sprintf("%.0f", d), meterMajor, AlignCenter)
	}
	s.Line(cur, 0, cur, fh, 3, meterMarker)
}
