package control

import (
	"math"
	"testing"

	"github.com/corecast/client/coords"
)

var (
	testSpan  = coords.Span{MinHz: 100e6, MaxHz: 102.048e6}
	testWidth = 1024.0 // 2 kHz per pixel
)

func TestHitTest(t *testing.T) {
	m, _ := coords.NewMapper(testSpan, testWidth)
	win := coords.Window{Freq: 101e6, Bandwidth: 150e3} // box 462.5..537.5
	cases := map[float64]Mode{
		465:   ModeLeftEdge,
		457:   ModeLeftEdge,
		535:   ModeRightEdge,
		501:   ModeCenter,
		480:   ModeNone,
		100:   ModeNone,
		543.5: ModeNone,
	}
	for x, want := range cases {
		if got := HitTest(m, win, x); got != want {
			t.Fatalf("HitTest(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestHoverCursor(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 101e6, Bandwidth: 150e3}
	if c := s.Hover(testSpan, testWidth, win, 463); c != CursorResize {
		t.Fatalf("edge cursor = %v", c)
	}
	if c := s.Hover(testSpan, testWidth, win, 500); c != CursorMove {
		t.Fatalf("caret cursor = %v", c)
	}
	if c := s.Hover(testSpan, testWidth, win, 10); c != CursorDefault {
		t.Fatalf("background cursor = %v", c)
	}
	if c := s.Hover(coords.Span{}, testWidth, win, 500); c != CursorDefault {
		t.Fatalf("invalid span cursor = %v", c)
	}
}

func TestEdgeDragClampsToSpan(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 100.1e6, Bandwidth: 50e3} // box 37.5..62.5
	if !s.Down(testSpan, testWidth, win, 62.5) {
		t.Fatal("right edge not hit")
	}
	if st := s.State(); st.Mode != ModeRightEdge || !st.Dragging() {
		t.Fatalf("state = %+v", st)
	}
	got, ok := s.Move(162.5)
	if !ok {
		t.Fatal("move rejected")
	}
	// Requested 450 kHz; the window may not exceed twice the 100 kHz gap to
	// the lower span edge.
	if got.Bandwidth != 200e3 || got.Freq != 100.1e6 {
		t.Fatalf("got %+v", got)
	}
}

func TestEdgeDragFloorsBandwidth(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 100.1e6, Bandwidth: 50e3}
	s.Down(testSpan, testWidth, win, 62.5)
	got, _ := s.Move(-37.5)
	if got.Bandwidth != MinBandwidthHz {
		t.Fatalf("bandwidth %v, want floor", got.Bandwidth)
	}
}

func TestLeftEdgeDraggedLeftGrows(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 100.1e6, Bandwidth: 50e3}
	if !s.Down(testSpan, testWidth, win, 37.5) || s.State().Mode != ModeLeftEdge {
		t.Fatal("left edge not hit")
	}
	got, _ := s.Move(27.5)
	if math.Abs(got.Bandwidth-90e3) > 1e-6 {
		t.Fatalf("bandwidth %v, want 90 kHz", got.Bandwidth)
	}
}

func TestCenterDragStaysInside(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 101e6, Bandwidth: 150e3}
	if !s.Down(testSpan, testWidth, win, 500) || s.State().Mode != ModeCenter {
		t.Fatal("caret not hit")
	}
	got, _ := s.Move(2500)
	if math.Abs(got.Freq-(testSpan.MaxHz-75e3)) > 1e-6 || got.Bandwidth != 150e3 {
		t.Fatalf("right clamp got %+v", got)
	}
	got, _ = s.Move(-1500)
	if math.Abs(got.Freq-(testSpan.MinHz+75e3)) > 1e-6 {
		t.Fatalf("left clamp got %+v", got)
	}
	got, _ = s.Move(510)
	if math.Abs(got.Freq-(101e6+20e3)) > 1e-6 {
		t.Fatalf("free move got %+v", got)
	}
}

func TestCenterDragWideWindowPinsToMidpoint(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 101e6, Bandwidth: 3e6}
	if !s.Down(testSpan, testWidth, win, 500) {
		t.Fatal("caret not hit")
	}
	got, _ := s.Move(600)
	if got.Freq != testSpan.Center() {
		t.Fatalf("freq %v, want span midpoint", got.Freq)
	}
}

func TestUpReturnsToIdle(t *testing.T) {
	var s Scale
	s.Down(testSpan, testWidth, coords.Window{Freq: 101e6, Bandwidth: 150e3}, 500)
	if c := s.Up(); c != CursorDefault {
		t.Fatalf("cursor after up = %v", c)
	}
	if s.State().Dragging() {
		t.Fatal("still dragging")
	}
	if _, ok := s.Move(600); ok {
		t.Fatal("move accepted while idle")
	}
	if s.Down(testSpan, testWidth, coords.Window{Freq: 101e6, Bandwidth: 150e3}, 10) {
		t.Fatal("background press started a scale drag")
	}
}

func TestDragUsesFrozenGeometry(t *testing.T) {
	var s Scale
	win := coords.Window{Freq: 101e6, Bandwidth: 150e3}
	s.Down(testSpan, testWidth, win, 500)
	first, _ := s.Move(510)
	// Moving back and forth lands on the same result no matter what was
	// emitted in between.
	s.Move(700)
	again, _ := s.Move(510)
	if first != again {
		t.Fatalf("%+v != %+v", first, again)
	}
}

func TestPanSign(t *testing.T) {
	var p Pan
	if !p.Down(testSpan, testWidth, 100) {
		t.Fatal("pan did not start")
	}
	if p.State().Cursor() != CursorGrab {
		t.Fatal("pan cursor")
	}
	got, ok := p.Move(150)
	if !ok {
		t.Fatal("move rejected")
	}
	// Dragging right by 50 px (100 kHz) exposes lower frequencies.
	want := coords.Span{MinHz: 99.9e6, MaxHz: 101.948e6}
	if math.Abs(got.MinHz-want.MinHz) > 1e-6 || math.Abs(got.MaxHz-want.MaxHz) > 1e-6 {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	p.Up()
	if _, ok := p.Move(200); ok {
		t.Fatal("move accepted after up")
	}
}

func TestZoomKeepsCursorHz(t *testing.T) {
	for _, notches := range []float64{1, -1, 3, -2} {
		for _, x := range []float64{0, 256, 512, 1000} {
			before, _ := coords.NewMapper(testSpan, testWidth)
			got, ok := Zoom(testSpan, x, testWidth, notches)
			if !ok {
				t.Fatalf("zoom %v at %v rejected", notches, x)
			}
			after, ok := coords.NewMapper(got, testWidth)
			if !ok {
				t.Fatalf("zoom produced invalid span %+v", got)
			}
			if d := math.Abs(after.PxToHz(x) - before.PxToHz(x)); d > 1e-3 {
				t.Fatalf("notches=%v x=%v: anchor moved by %v Hz", notches, x, d)
			}
			wantW := testSpan.Width() / math.Pow(ZoomFactor, notches)
			if math.Abs(got.Width()-wantW) > 1e-3 {
				t.Fatalf("width %v, want %v", got.Width(), wantW)
			}
		}
	}
}

func TestZoomFloor(t *testing.T) {
	span := coords.Span{MinHz: 100e6, MaxHz: 100.03e6}
	got, ok := Zoom(span, 512, 1024, 10)
	if !ok {
		t.Fatal("zoom rejected")
	}
	if math.Abs(got.Width()-MinSpanHz) > 1e-6 {
		t.Fatalf("width %v, want floor %v", got.Width(), MinSpanHz)
	}
	if _, ok := Zoom(coords.Span{MinHz: 5, MaxHz: 5}, 10, 100, 1); ok {
		t.Fatal("zoom accepted empty span")
	}
}
