package ui

import (
	"image"
	"math"

	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/corecast/client/coords"
	"github.com/corecast/client/render"
)

// pane is a graphic widget whose image always matches its layout rect.
type pane struct {
	Widget  *widget.Graphic
	Img     *ebiten.Image
	Surface *ebitenSurface
	Width   int
	Height  int
}

func newPane(minHeight int) *pane {
	return &pane{
		Widget: widget.NewGraphic(
			widget.GraphicOpts.WidgetOpts(widget.WidgetOpts.MinSize(0, minHeight)),
		),
	}
}

// fit reallocates the image after a layout change and reports whether it
// did.
func (p *pane) fit(u *UI) bool {
	rect := p.Widget.GetWidget().Rect
	width, height := rect.Dx(), rect.Dy()
	if width <= 0 || height <= 0 || (width == p.Width && height == p.Height) {
		return false
	}
	if p.Img != nil {
		p.Img.Deallocate()
	}
	p.Width, p.Height = width, height
	p.Img = ebiten.NewImage(width, height)
	p.Widget.Image = p.Img
	p.Surface = newEbitenSurface(p.Img, u.Font("Go-Mono-11"))
	return true
}

func (p *pane) ready() bool {
	return p.Img != nil
}

func (p *pane) contains(x, y int) bool {
	return image.Pt(x, y).In(p.Widget.GetWidget().Rect)
}

// local converts a screen x into pane pixels.
func (p *pane) local(x int) float64 {
	return float64(x - p.Widget.GetWidget().Rect.Min.X)
}

// Waterfall mirrors the row ring into a back buffer with the same layout, so
// each new row costs a single WritePixels and the front image is drawn in two
// parts around the scroll position.
type Waterfall struct {
	*pane
	Ring              *render.Waterfall
	BackBuffer        *ebiten.Image
	Overlay           *ebiten.Image
	OverlaySurface    *ebitenSurface
	PrevSpan          coords.Span
	ScrollAccumulator float64
	minDb, maxDb      float64
}

func (u *UI) MakeWaterfall() *Waterfall {
	d := u.sess.Display()
	return &Waterfall{
		pane:  newPane(120),
		minDb: d.MinDb,
		maxDb: d.MaxDb,
	}
}

func (wf *Waterfall) SetRange(minDb, maxDb float64) {
	wf.minDb, wf.maxDb = minDb, maxDb
	if wf.Ring != nil {
		wf.Ring.SetRange(minDb, maxDb)
	}
}

// AddRow colours a spectrum frame into the newest row.
func (wf *Waterfall) AddRow(bins []float64) {
	if wf.Ring == nil {
		return
	}
	row := wf.Ring.Push(bins)
	if row == nil {
		return
	}
	head := wf.Ring.Head()
	wf.BackBuffer.SubImage(image.Rect(0, head, wf.Width, head+1)).(*ebiten.Image).WritePixels(row)
}

// sync rewrites the whole back buffer from the ring.
func (wf *Waterfall) sync() {
	wf.BackBuffer.WritePixels(wf.Ring.Pixels())
}

func (wf *Waterfall) Update(u *UI, span coords.Span, win coords.Window) {
	if wf.fit(u) {
		u.log.Debug("waterfall rect", zap.Int("width", wf.Width), zap.Int("height", wf.Height))
		if wf.Ring == nil {
			wf.Ring = render.NewWaterfall(wf.Width, wf.Height)
			wf.Ring.SetRange(wf.minDb, wf.maxDb)
		} else {
			// Keeps the newest rows and moves the head to zero.
			wf.Ring.Resize(wf.Width, wf.Height)
		}
		if wf.BackBuffer != nil {
			wf.BackBuffer.Deallocate()
			wf.Overlay.Deallocate()
		}
		wf.BackBuffer = ebiten.NewImage(wf.Width, wf.Height)
		wf.Overlay = ebiten.NewImage(wf.Width, wf.Height)
		wf.OverlaySurface = newEbitenSurface(wf.Overlay, nil)
		wf.sync()
	}
	if wf.Ring == nil {
		return
	}

	if span != wf.PrevSpan && wf.PrevSpan.Valid() {
		newSpan, oldSpan := span.Width(), wf.PrevSpan.Width()
		if math.Abs(newSpan-oldSpan)/(newSpan+oldSpan) > 0.01 {
			// Zoomed: old rows no longer line up with the scale.
			wf.Ring.Clear()
			wf.ScrollAccumulator = 0
			wf.sync()
		} else {
			wf.ScrollAccumulator += (wf.PrevSpan.MinHz - span.MinHz) * float64(wf.Width) / newSpan
			shift := int(wf.ScrollAccumulator)
			wf.ScrollAccumulator -= float64(shift)
			if shift != 0 {
				wf.Ring.Shift(shift)
				wf.sync()
			}
		}
	}
	wf.PrevSpan = span

	scrollPos := wf.Ring.Head()
	wf.Img.Clear()
	wf.Img.DrawImage(
		wf.BackBuffer.SubImage(image.Rect(0, scrollPos, wf.Width, wf.Height)).(*ebiten.Image),
		nil,
	)
	if scrollPos != 0 {
		geom := ebiten.GeoM{}
		geom.Translate(0, float64(wf.Height-scrollPos))
		wf.Img.DrawImage(
			wf.BackBuffer.SubImage(image.Rect(0, 0, wf.Width, scrollPos)).(*ebiten.Image),
			&ebiten.DrawImageOptions{GeoM: geom},
		)
	}

	render.DrawWaterfallOverlay(wf.OverlaySurface, span, win)
	wf.Img.DrawImage(wf.Overlay, nil)
}
