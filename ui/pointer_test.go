package ui

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/corecast/client/control"
	"github.com/corecast/client/coords"
	"github.com/corecast/client/session"
)

type fakeTuner struct {
	tuning  session.Tuning
	span    coords.Span
	retunes int
	spans   int
}

func (f *fakeTuner) Tuning() session.Tuning { return f.tuning }
func (f *fakeTuner) Span() coords.Span      { return f.span }

func (f *fakeTuner) SetTuning(t session.Tuning) error {
	if t.Bandwidth <= 0 {
		return errors.New("bad bandwidth")
	}
	f.tuning = t
	f.retunes++
	return nil
}

func (f *fakeTuner) SetSpan(s coords.Span) error {
	if !s.Valid() {
		return errors.New("bad span")
	}
	f.span = s
	f.spans++
	return nil
}

// 2 MHz across 1000 px puts the 200 kHz window at 450..500..550.
func newTestRouter() (*pointerRouter, *fakeTuner) {
	tuner := &fakeTuner{
		tuning: session.Tuning{Freq: 101e6, Mode: session.ModeWBFM, Bandwidth: 200e3},
		span:   coords.Span{MinHz: 100e6, MaxHz: 102e6},
	}
	return newPointerRouter(tuner, zap.NewNop()), tuner
}

func TestScaleHoverCursor(t *testing.T) {
	r, _ := newTestRouter()
	cases := map[float64]control.Cursor{
		450: control.CursorResize,
		550: control.CursorResize,
		500: control.CursorMove,
		300: control.CursorDefault,
	}
	for x, want := range cases {
		if got := r.Hover(regionScale, x, 1000); got != want {
			t.Fatalf("hover at %v = %v, want %v", x, got, want)
		}
	}
	if got := r.Hover(regionWaterfall, 500, 1000); got != control.CursorDefault {
		t.Fatalf("waterfall hover = %v", got)
	}
}

func TestScaleCaretDragRetunes(t *testing.T) {
	r, tuner := newTestRouter()
	r.Down(regionScale, 500, 1000)
	if !r.dragging() {
		t.Fatal("caret press did not start a drag")
	}
	r.Move(550)
	if math.Abs(tuner.tuning.Freq-101.1e6) > 1e-3 || tuner.tuning.Bandwidth != 200e3 {
		t.Fatalf("tuning after drag = %+v", tuner.tuning)
	}
	if got := r.Hover(regionNone, 0, 0); got != control.CursorMove {
		t.Fatalf("cursor while dragging = %v", got)
	}
	r.Up()
	if r.dragging() {
		t.Fatal("still dragging after release")
	}
	if tuner.tuning.Mode != session.ModeWBFM {
		t.Fatal("drag changed the mode")
	}
}

func TestScaleEdgeDragWidens(t *testing.T) {
	r, tuner := newTestRouter()
	r.Down(regionScale, 550, 1000)
	r.Move(600)
	if math.Abs(tuner.tuning.Bandwidth-400e3) > 1e-3 || tuner.tuning.Freq != 101e6 {
		t.Fatalf("tuning after edge drag = %+v", tuner.tuning)
	}
}

func TestScaleMissDoesNothing(t *testing.T) {
	r, tuner := newTestRouter()
	r.Down(regionScale, 100, 1000)
	r.Move(200)
	if r.dragging() || tuner.retunes != 0 {
		t.Fatal("press outside the window started a gesture")
	}
}

func TestWaterfallDragPans(t *testing.T) {
	r, tuner := newTestRouter()
	r.Down(regionWaterfall, 500, 1000)
	r.Move(600)
	want := coords.Span{MinHz: 99.8e6, MaxHz: 101.8e6}
	if math.Abs(tuner.span.MinHz-want.MinHz) > 1e-3 || math.Abs(tuner.span.MaxHz-want.MaxHz) > 1e-3 {
		t.Fatalf("span after pan = %+v, want %+v", tuner.span, want)
	}
	if got := r.Hover(regionScale, 500, 1000); got != control.CursorGrab {
		t.Fatalf("cursor while panning = %v", got)
	}
	r.Up()
	r.Move(900)
	if tuner.spans != 1 {
		t.Fatalf("moves after release changed the span %d times", tuner.spans)
	}
}

func TestWheelZoomAnchored(t *testing.T) {
	r, tuner := newTestRouter()
	r.Wheel(regionPSD, 250, 1000, 1)
	anchor := 100.5e6
	m, _ := coords.NewMapper(tuner.span, 1000)
	if math.Abs(m.PxToHz(250)-anchor) > 1e-3 {
		t.Fatalf("anchor moved to %v", m.PxToHz(250))
	}
	if math.Abs(tuner.span.Width()-2e6/1.2) > 1e-3 {
		t.Fatalf("width = %v", tuner.span.Width())
	}

	r.Wheel(regionNone, 250, 1000, 1)
	if tuner.spans != 1 {
		t.Fatal("wheel outside the panes zoomed")
	}
}

func TestCentre(t *testing.T) {
	r, tuner := newTestRouter()
	tuner.tuning.Freq = 101.5e6
	r.Centre()
	if tuner.span.Center() != 101.5e6 || tuner.span.Width() != 2e6 {
		t.Fatalf("span after centre = %+v", tuner.span)
	}
}
