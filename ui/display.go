package ui

import (
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/corecast/client/control"
	"github.com/corecast/client/render"
)

// Display stacks the frequency scale, the PSD trace and the waterfall. All
// three share the same horizontal mapping.
type Display struct {
	Container *widget.Container
	Scale     *pane
	PSD       *pane
	Waterfall *Waterfall

	psd     *render.PSD
	touchID ebiten.TouchID
	touched bool
	cursor  control.Cursor
}

func (u *UI) MakeDisplay() *Display {
	d := &Display{
		Scale:     newPane(36),
		PSD:       newPane(120),
		Waterfall: u.MakeWaterfall(),
		psd:       render.NewPSD(),
	}
	d.Container = widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewGridLayout(
			widget.GridLayoutOpts.Columns(1),
			widget.GridLayoutOpts.Stretch([]bool{true}, []bool{false, true, true}),
			widget.GridLayoutOpts.Spacing(0, 2),
		)),
	)
	d.Container.AddChild(d.Scale.Widget, d.PSD.Widget, d.Waterfall.Widget)
	return d
}

// Update redraws the panes from the session state and runs the pointer. It
// uses the rects from the previous layout pass.
func (d *Display) Update(u *UI) {
	span := u.sess.Span()
	win := u.sess.Tuning().Window()

	d.Scale.fit(u)
	if d.Scale.ready() {
		render.DrawFreqScale(d.Scale.Surface, span, win)
	}
	d.PSD.fit(u)
	if d.PSD.ready() {
		d.psd.Draw(d.PSD.Surface, u.sess.Smoothed(), u.sess.Peak(), span, win)
	}
	d.Waterfall.Update(u, span, win)

	d.handlePointer(u)
}

func (d *Display) locate(x, y int) (region, *pane) {
	switch {
	case d.Scale.contains(x, y):
		return regionScale, d.Scale
	case d.PSD.contains(x, y):
		return regionPSD, d.PSD
	case d.Waterfall.contains(x, y):
		return regionWaterfall, d.Waterfall.pane
	}
	return regionNone, nil
}

// pointer reads the mouse, or the first touch in touch mode.
func (d *Display) pointer(u *UI) (x, y int, pressed, released bool) {
	if !u.cfg.Touch {
		x, y = ebiten.CursorPosition()
		return x, y, inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
			inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	}
	if !d.touched {
		ids := inpututil.AppendJustPressedTouchIDs(nil)
		if len(ids) == 0 {
			return -1, -1, false, false
		}
		d.touchID, d.touched = ids[0], true
		x, y = ebiten.TouchPosition(d.touchID)
		return x, y, true, false
	}
	if inpututil.IsTouchJustReleased(d.touchID) {
		d.touched = false
		x, y = inpututil.TouchPositionInPreviousTick(d.touchID)
		return x, y, false, true
	}
	x, y = ebiten.TouchPosition(d.touchID)
	return x, y, false, false
}

func (d *Display) handlePointer(u *UI) {
	r := u.pointer
	x, y, pressed, released := d.pointer(u)
	reg, p := d.locate(x, y)

	if pressed && p != nil {
		r.Down(reg, p.local(x), float64(p.Width))
	}
	if r.dragging() {
		// Drags keep their own pane's origin even when the pointer leaves it.
		dp := d.Scale
		if r.active == regionWaterfall {
			dp = d.Waterfall.pane
		}
		r.Move(dp.local(x))
	}
	if released {
		r.Up()
	}
	if _, dy := ebiten.Wheel(); dy != 0 && p != nil {
		r.Wheel(reg, p.local(x), float64(p.Width), dy)
	}

	if p == nil {
		d.setCursor(r.Hover(regionNone, 0, 0))
		return
	}
	d.setCursor(r.Hover(reg, p.local(x), float64(p.Width)))
}

func (d *Display) setCursor(c control.Cursor) {
	if c == d.cursor {
		return
	}
	d.cursor = c
	switch c {
	case control.CursorResize:
		ebiten.SetCursorShape(ebiten.CursorShapeEWResize)
	case control.CursorMove:
		ebiten.SetCursorShape(ebiten.CursorShapeMove)
	case control.CursorGrab:
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	default:
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}
