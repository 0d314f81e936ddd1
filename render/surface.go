// Package render draws the spectral displays onto an abstract 2D raster
// surface so the same engines serve the ebiten UI and headless snapshots.
package render

import "image/color"

// Point is a surface coordinate in pixels.
type Point struct {
	X, Y float32
}

// Align selects horizontal text anchoring.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Surface is the drawing capability the render engines need. x grows right
// and y grows down; (0,0) is the top-left pixel.
type Surface interface {
	Size() (w, h int)
	Clear()
	Line(x0, y0, x1, y1, width float32, c color.Color)
	Polyline(pts []Point, width float32, c color.Color)
	FillRect(x, y, w, h float32, c color.Color)
	StrokeRect(x, y, w, h, width float32, c color.Color)
	// FillPath fills the closed polygon pts with a vertical gradient spanning
	// the surface height.
	FillPath(pts []Point, g *Gradient)
	// PutRow replaces row y with RGBA pixels, 4 bytes per column.
	PutRow(y int, pix []byte)
	// Text draws s with its baseline at y.
	Text(x, y float32, s string, c color.Color, align Align)
}
