package ui

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/corecast/client/render"
)

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

func whiteSource() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// ebitenSurface draws the render engines straight onto an ebiten image.
type ebitenSurface struct {
	img  *ebiten.Image
	face *text.Face

	path     vector.Path
	vertices []ebiten.Vertex
	indices  []uint16
}

func newEbitenSurface(img *ebiten.Image, face *text.Face) *ebitenSurface {
	return &ebitenSurface{img: img, face: face}
}

func (s *ebitenSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *ebitenSurface) Clear() {
	s.img.Clear()
}

func (s *ebitenSurface) Line(x0, y0, x1, y1, width float32, c color.Color) {
	vector.StrokeLine(s.img, x0, y0, x1, y1, width, c, true)
}

func (s *ebitenSurface) Polyline(pts []render.Point, width float32, c color.Color) {
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(s.img, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, width, c, true)
	}
}

func (s *ebitenSurface) FillRect(x, y, w, h float32, c color.Color) {
	vector.DrawFilledRect(s.img, x, y, w, h, c, false)
}

func (s *ebitenSurface) StrokeRect(x, y, w, h, width float32, c color.Color) {
	vector.StrokeRect(s.img, x, y, w, h, width, c, false)
}

func (s *ebitenSurface) FillPath(pts []render.Point, g *render.Gradient) {
	if len(pts) < 3 {
		return
	}
	s.path = vector.Path{}
	s.path.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.path.LineTo(p.X, p.Y)
	}
	s.path.Close()

	_, h := s.Size()
	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	for i := range s.vertices {
		v := &s.vertices[i]
		c := g.At(float64(v.DstY) / float64(h))
		v.SrcX, v.SrcY = 1, 1
		v.ColorR = float32(c.R) / 0xff
		v.ColorG = float32(c.G) / 0xff
		v.ColorB = float32(c.B) / 0xff
		v.ColorA = float32(c.A) / 0xff
	}
	s.img.DrawTriangles(s.vertices, s.indices, whiteSource(), &ebiten.DrawTrianglesOptions{
		FillRule:  ebiten.FillRuleEvenOdd,
		AntiAlias: true,
	})
}

func (s *ebitenSurface) PutRow(y int, pix []byte) {
	w, _ := s.Size()
	b := s.img.Bounds()
	s.img.SubImage(image.Rect(b.Min.X, b.Min.Y+y, b.Min.X+w, b.Min.Y+y+1)).(*ebiten.Image).WritePixels(pix)
}

func (s *ebitenSurface) Text(x, y float32, str string, c color.Color, align render.Align) {
	if s.face == nil {
		return
	}
	face := *s.face
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y)-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(c)
	switch align {
	case render.AlignCenter:
		op.PrimaryAlign = text.AlignCenter
	case render.AlignEnd:
		op.PrimaryAlign = text.AlignEnd
	}
	text.Draw(s.img, str, face, op)
}
