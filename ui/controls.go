package ui

import (
	"context"

	"github.com/ebitenui/ebitenui/widget"

	"github.com/corecast/client/errutil"
)

const zoomStepNotches = 2

type Controls struct {
	Container *widget.Container
	Exit      *widget.Button
	Play      *widget.Button
	ZoomOut   *widget.Button
	ZoomIn    *widget.Button
	Centre    *widget.Button
	Volume    *widget.Slider
}

func (u *UI) MakeControls() *Controls {
	c := &Controls{}
	c.Container = widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewGridLayout(
			widget.GridLayoutOpts.Columns(6),
			widget.GridLayoutOpts.Spacing(8, 8),
			widget.GridLayoutOpts.Stretch([]bool{false, false, false, false, false, true}, []bool{false}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(
				widget.GridLayoutData{
					HorizontalPosition: widget.GridLayoutPositionStart,
					VerticalPosition:   widget.GridLayoutPositionEnd,
				},
			),
		),
	)
	c.Exit = u.MakeButton("Go-Medium-16", "Exit", func(args *widget.ButtonClickedEventArgs) {
		u.exit = true
	})
	c.Play = u.MakeToggleButton("Go-Medium-16", "Play", func(args *widget.ButtonChangedEventArgs) {
		// Programmatic SetState from a PlayStateChanged event.
		if args.OffsetX == -1 {
			return
		}
		if args.State != widget.WidgetChecked {
			u.sess.Stop()
			return
		}
		if err := u.sess.Play(context.Background()); err != nil {
			errutil.LogError(u.log, "start playback", err)
			u.Defer(func() { u.SetPlaying(false) })
		}
	})
	c.ZoomOut = u.MakeButton("Go-Medium-16", "Zoom -", func(args *widget.ButtonClickedEventArgs) {
		u.pointer.zoom(float64(u.Width)/2, float64(u.Width), -zoomStepNotches)
	})
	c.ZoomIn = u.MakeButton("Go-Medium-16", "Zoom +", func(args *widget.ButtonClickedEventArgs) {
		u.pointer.zoom(float64(u.Width)/2, float64(u.Width), zoomStepNotches)
	})
	c.Centre = u.MakeButton("Go-Medium-16", "Centre", func(args *widget.ButtonClickedEventArgs) {
		u.pointer.Centre()
	})
	c.Volume = u.MakeSlider(int(u.sess.Volume()), func(v int) {
		u.sess.SetVolume(float64(v))
	}, widget.WidgetOpts.MinSize(160, 20))

	c.Container.AddChild(
		c.Exit,
		c.Play,
		c.ZoomOut,
		c.ZoomIn,
		c.Centre,
		c.Volume,
	)
	return c
}

// SetPlaying moves the play toggle without running its handler.
func (u *UI) SetPlaying(playing bool) {
	state := widget.WidgetUnchecked
	if playing {
		state = widget.WidgetChecked
	}
	u.Widgets.Controls.Play.SetState(state)
}
