package ui

import (
	"image/color"

	"golang.org/x/image/colornames"

	ebimage "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

func buttonImage() *widget.ButtonImage {
	return &widget.ButtonImage{
		Idle:         ebimage.NewNineSliceColor(colornames.Dimgray),
		Hover:        ebimage.NewNineSliceColor(colornames.Dimgray),
		Pressed:      ebimage.NewNineSliceColor(colornames.Darkslategray),
		PressedHover: ebimage.NewNineSliceColor(colornames.Darkslategray),
		Disabled:     ebimage.NewNineSliceColor(colornames.Dimgray),
	}
}

func buttonTextColor() *widget.ButtonTextColor {
	return &widget.ButtonTextColor{
		Idle:     colornames.White,
		Disabled: colornames.Gray,
		Hover:    colornames.Lightskyblue,
		Pressed:  colornames.Yellow,
	}
}

func (u *UI) MakeButton(fontName string, text string, handler func(*widget.ButtonClickedEventArgs), wopts ...widget.WidgetOpt) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.Text(text, u.Font(fontName), buttonTextColor()),
		widget.ButtonOpts.TextPadding(widget.NewInsetsSimple(4)),
		widget.ButtonOpts.Image(buttonImage()),
		widget.ButtonOpts.ClickedHandler(handler),
		widget.ButtonOpts.WidgetOpts(wopts...),
	)
}

func (u *UI) MakeToggleButton(fontName string, text string, handler func(*widget.ButtonChangedEventArgs), wopts ...widget.WidgetOpt) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.Text(text, u.Font(fontName), buttonTextColor()),
		widget.ButtonOpts.TextPadding(widget.NewInsetsSimple(4)),
		widget.ButtonOpts.Image(buttonImage()),
		widget.ButtonOpts.ToggleMode(),
		widget.ButtonOpts.StateChangedHandler(handler),
		widget.ButtonOpts.WidgetOpts(wopts...),
	)
}

func (u *UI) MakeText(fontName string, fgColor color.Color, opts ...widget.TextOpt) *widget.Text {
	opts = append(
		[]widget.TextOpt{
			widget.TextOpts.Text("", u.Font(fontName), fgColor),
		},
		opts...,
	)
	return widget.NewText(opts...)
}

// MakeSlider returns a horizontal 0-100 slider.
func (u *UI) MakeSlider(initial int, handler func(int), wopts ...widget.WidgetOpt) *widget.Slider {
	s := widget.NewSlider(
		widget.SliderOpts.Orientation(widget.DirectionHorizontal),
		widget.SliderOpts.MinMax(0, 100),
		widget.SliderOpts.InitialCurrent(initial),
		widget.SliderOpts.Images(&widget.SliderTrackImage{
			Idle:  ebimage.NewNineSliceColor(colornames.Dimgray),
			Hover: ebimage.NewNineSliceColor(colornames.Dimgray),
		}, sliderImage()),
		widget.SliderOpts.MinHandleSize(8),
		widget.SliderOpts.TrackPadding(widget.NewInsetsSimple(2)),
		widget.SliderOpts.WidgetOpts(wopts...),
	)
	s.ChangedEvent.AddHandler(func(e interface{}) {
		handler(e.(*widget.SliderChangedEventArgs).Current)
	})
	return s
}

func (u *UI) MakeRoundedRect(fg color.Color, bg color.Color, radius int, opts ...widget.ContainerOpt) *widget.Container {
	img := ebiten.NewImage(2*radius+1, 2*radius+1)
	r := float32(radius)
	img.Fill(bg)
	vector.DrawFilledCircle(img, r, r, r, fg, true)
	nineslice := ebimage.NewNineSliceSimple(img, radius, 1)
	opts = append([]widget.ContainerOpt{
		widget.ContainerOpts.Layout(widget.NewAnchorLayout(
			widget.AnchorLayoutOpts.Padding(widget.Insets{
				Left:  radius,
				Right: radius,
			}),
		)),
		widget.ContainerOpts.BackgroundImage(nineslice)},
		opts...,
	)
	return widget.NewContainer(opts...)
}

func sliderImage() *widget.ButtonImage {
	return &widget.ButtonImage{
		Idle:    ebimage.NewNineSliceColor(colornames.Lightgray),
		Hover:   ebimage.NewNineSliceColor(colornames.Seashell),
		Pressed: ebimage.NewNineSliceColor(colornames.Seashell),
	}
}
