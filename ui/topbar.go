package ui

import (
	"fmt"

	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"golang.org/x/image/colornames"

	"github.com/corecast/client/errutil"
	"github.com/corecast/client/pkg/format"
	"github.com/corecast/client/render"
)

type TopBar struct {
	Container *widget.Container
	Frequency *widget.Text
	Mode      *widget.Text
	Bandwidth *widget.Text
	Status    *widget.Text
	Meter     *pane

	meter render.LevelMeter
	db    float64
}

func (u *UI) MakeTopBar() *TopBar {
	tb := &TopBar{
		Meter: &pane{Widget: widget.NewGraphic(
			widget.GraphicOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(240, 24),
				widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}),
			),
		)},
		meter: render.LevelMeter{MinDb: -120, MaxDb: 0},
		db:    -120,
	}
	tb.Container = widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Spacing(12),
			widget.RowLayoutOpts.Padding(widget.Insets{Left: 8, Right: 8, Top: 4, Bottom: 4}),
		)),
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(colornames.Black)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(0, 32),
		),
	)

	center := widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}))
	freqBox := u.MakeRoundedRect(colornames.Darkslategray, colornames.Black, 4)
	tb.Frequency = u.MakeText("Go-Mono-24", colornames.Seashell)
	freqBox.AddChild(tb.Frequency)
	tb.Mode = u.MakeText("Go-Medium-16", colornames.Lightgray, center)
	tb.Mode.GetWidget().MouseButtonPressedEvent.AddHandler(func(_ any) {
		t := u.sess.Tuning()
		t.Mode = t.Mode.Next()
		if err := u.sess.SetTuning(t); err != nil {
			errutil.LogError(u.log, "set mode", err)
		}
	})
	tb.Bandwidth = u.MakeText("Go-16", colornames.Lightskyblue, center)
	tb.Status = u.MakeText("Go-14", colornames.Orangered, center)

	tb.Container.AddChild(freqBox, tb.Mode, tb.Bandwidth, tb.Meter.Widget, tb.Status)
	tb.SetTuning(u.sess.Tuning().Freq, string(u.sess.Tuning().Mode), u.sess.Tuning().Bandwidth)
	return tb
}

func (tb *TopBar) SetTuning(freq float64, mode string, bw float64) {
	tb.Frequency.Label = format.Frequency(freq)
	tb.Mode.Label = mode
	tb.Bandwidth.Label = format.Bandwidth(bw)
}

func (tb *TopBar) SetLevel(db float64) {
	tb.db = db
}

// SetStatus shows the last connection problem; empty clears it.
func (tb *TopBar) SetStatus(stream string, err error) {
	if err == nil {
		tb.Status.Label = ""
		return
	}
	tb.Status.Label = fmt.Sprintf("%s: %v", stream, err)
}

func (tb *TopBar) Update(u *UI) {
	tb.Meter.fit(u)
	if tb.Meter.ready() {
		tb.meter.Draw(tb.Meter.Surface, tb.db)
	}
}
