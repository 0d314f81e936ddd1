package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Raster is a software Surface backed by an *image.RGBA.
type Raster struct {
	img  *image.RGBA
	z    *vector.Rasterizer
	face font.Face
}

// NewRaster allocates a w×h transparent surface.
func NewRaster(w, h int) *Raster {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Raster{
		img:  image.NewRGBA(image.Rect(0, 0, w, h)),
		z:    vector.NewRasterizer(w, h),
		face: basicfont.Face7x13,
	}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Clear() {
	clear(r.img.Pix)
}

func (r *Raster) Line(x0, y0, x1, y1, width float32, c color.Color) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 || width <= 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	r.fill([]Point{
		{x0 + nx, y0 + ny},
		{x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny},
		{x0 - nx, y0 - ny},
	}, image.NewUniform(c))
}

func (r *Raster) Polyline(pts []Point, width float32, c color.Color) {
	for i := 1; i < len(pts); i++ {
		r.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, width, c)
	}
}

func (r *Raster) FillRect(x, y, w, h float32, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r.fill([]Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}, image.NewUniform(c))
}

func (r *Raster) StrokeRect(x, y, w, h, width float32, c color.Color) {
	r.Line(x, y, x+w, y, width, c)
	r.Line(x+w, y, x+w, y+h, width, c)
	r.Line(x+w, y+h, x, y+h, width, c)
	r.Line(x, y+h, x, y, width, c)
}

func (r *Raster) FillPath(pts []Point, g *Gradient) {
	_, h := r.Size()
	r.fill(pts, &gradientImage{g: g, bounds: r.img.Bounds(), h: float64(h)})
}

func (r *Raster) PutRow(y int, pix []byte) {
	b := r.img.Bounds()
	if y < 0 || y >= b.Dy() {
		return
	}
	off := y * r.img.Stride
	copy(r.img.Pix[off:off+4*b.Dx()], pix)
}

func (r *Raster) Text(x, y float32, s string, c color.Color, align Align) {
	d := font.Drawer{Dst: r.img, Src: image.NewUniform(c), Face: r.face}
	adv := d.MeasureString(s)
	switch align {
	case AlignCenter:
		x -= float32(adv.Round()) / 2
	case AlignEnd:
		x -= float32(adv.Round())
	}
	d.Dot = fixed.P(int(math.Round(float64(x))), int(math.Round(float64(y))))
	d.DrawString(s)
}

func (r *Raster) fill(pts []Point, src image.Image) {
	if len(pts) < 3 {
		return
	}
	w, h := r.Size()
	r.z.Reset(w, h)
	r.z.DrawOp = draw.Over
	clampPt := func(p Point) (float32, float32) {
		return min(max(p.X, 0), float32(w)), min(max(p.Y, 0), float32(h))
	}
	r.z.MoveTo(clampPt(pts[0]))
	for _, p := range pts[1:] {
		r.z.LineTo(clampPt(p))
	}
	r.z.ClosePath()
	r.z.Draw(r.img, r.img.Bounds(), src, image.Point{})
}

// gradientImage exposes a vertical Gradient as an image source.
type gradientImage struct {
	g      *Gradient
	bounds image.Rectangle
	h      float64
}

func (gi *gradientImage) ColorModel() color.Model { return color.NRGBAModel }
func (gi *gradientImage) Bounds() image.Rectangle { return gi.bounds }
func (gi *gradientImage) At(_, y int) color.Color {
	return gi.g.At((float64(y) + 0.5) / gi.h)
}
