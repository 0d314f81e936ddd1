package ui

import (
	"go.uber.org/zap"

	"github.com/corecast/client/control"
	"github.com/corecast/client/coords"
	"github.com/corecast/client/errutil"
	"github.com/corecast/client/session"
)

// Tuner is the part of the session the pointer gestures drive.
type Tuner interface {
	Tuning() session.Tuning
	SetTuning(session.Tuning) error
	Span() coords.Span
	SetSpan(coords.Span) error
}

type region int

const (
	regionNone region = iota
	regionScale
	regionPSD
	regionWaterfall
)

// pointerRouter turns raw pointer samples into control gestures. A drag stays
// bound to the region it started in until the button is released.
type pointerRouter struct {
	tuner  Tuner
	log    *zap.Logger
	scale  control.Scale
	pan    control.Pan
	active region
}

func newPointerRouter(tuner Tuner, log *zap.Logger) *pointerRouter {
	return &pointerRouter{tuner: tuner, log: log}
}

func (r *pointerRouter) dragging() bool {
	return r.active != regionNone
}

// Hover returns the cursor for a pointer at x inside reg.
func (r *pointerRouter) Hover(reg region, x, width float64) control.Cursor {
	switch r.active {
	case regionScale:
		return r.scale.State().Cursor()
	case regionWaterfall:
		return r.pan.State().Cursor()
	}
	if reg == regionScale {
		return r.scale.Hover(r.tuner.Span(), width, r.tuner.Tuning().Window(), x)
	}
	return control.CursorDefault
}

// Down starts a gesture. Presses on the scale that miss the tuned window do
// nothing; presses on the waterfall always pan.
func (r *pointerRouter) Down(reg region, x, width float64) {
	switch reg {
	case regionScale:
		if r.scale.Down(r.tuner.Span(), width, r.tuner.Tuning().Window(), x) {
			r.active = regionScale
		}
	case regionWaterfall:
		if r.pan.Down(r.tuner.Span(), width, x) {
			r.active = regionWaterfall
		}
	}
}

// Move feeds the active gesture.
func (r *pointerRouter) Move(x float64) {
	switch r.active {
	case regionScale:
		win, ok := r.scale.Move(x)
		if !ok {
			return
		}
		if err := r.tuner.SetTuning(r.tuner.Tuning().WithWindow(win)); err != nil {
			errutil.LogError(r.log, "retune", err)
		}
	case regionWaterfall:
		span, ok := r.pan.Move(x)
		if !ok {
			return
		}
		if err := r.tuner.SetSpan(span); err != nil {
			errutil.LogError(r.log, "pan", err)
		}
	}
}

// Up ends whatever gesture is active.
func (r *pointerRouter) Up() {
	r.scale.Up()
	r.pan.Up()
	r.active = regionNone
}

// Wheel zooms around x by notches. It works over every spectral pane.
func (r *pointerRouter) Wheel(reg region, x, width, notches float64) {
	if reg == regionNone {
		return
	}
	r.zoom(x, width, notches)
}

func (r *pointerRouter) zoom(x, width, notches float64) {
	span, ok := control.Zoom(r.tuner.Span(), x, width, notches)
	if !ok {
		return
	}
	if err := r.tuner.SetSpan(span); err != nil {
		errutil.LogError(r.log, "zoom", err)
	}
}

// Centre pans so the tuned frequency sits in the middle of the span.
func (r *pointerRouter) Centre() {
	span := r.tuner.Span()
	span = span.Shift(r.tuner.Tuning().Freq - span.Center())
	if err := r.tuner.SetSpan(span); err != nil {
		errutil.LogError(r.log, "centre", err)
	}
}
