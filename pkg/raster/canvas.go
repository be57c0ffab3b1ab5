package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gardar/gtoverlay/pkg/overlay"
)

// Canvas is a mutable page raster. Draw calls are composited over the
// existing pixels and clipped to the raster bounds.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas copies img into a new RGBA canvas.
func NewCanvas(img image.Image) *Canvas {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return &Canvas{img: rgba}
}

// NewBlankCanvas creates a white canvas of the given size.
func NewBlankCanvas(width, height int) *Canvas {
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &Canvas{img: rgba}
}

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *Canvas) Image() image.Image { return c.img }

// Fill composites col over the pixels of r.
func (c *Canvas) Fill(r overlay.Rect, col color.Color) {
	c.blend(image.Rect(r.Left, r.Top, r.Right(), r.Bottom()), col)
}

// Outline strokes the border of r. The stroke is centred on the edge pixels,
// which means column Right() and row Bottom() are part of the border. Every
// pixel of the border is blended exactly once.
func (c *Canvas) Outline(r overlay.Rect, col color.Color, width float64) {
	t := int(math.Round(width))
	if t < 1 {
		t = 1
	}
	a := t / 2

	x0, y0 := r.Left-a, r.Top-a
	x1, y1 := r.Right()-a+t, r.Bottom()-a+t

	// border thicker than the box: a solid block
	if x1-x0 <= 2*t || y1-y0 <= 2*t {
		c.blend(image.Rect(x0, y0, x1, y1), col)
		return
	}

	c.blend(image.Rect(x0, y0, x1, y0+t), col)     // top
	c.blend(image.Rect(x0, y1-t, x1, y1), col)     // bottom
	c.blend(image.Rect(x0, y0+t, x0+t, y1-t), col) // left
	c.blend(image.Rect(x1-t, y0+t, x1, y1-t), col) // right
}

func (c *Canvas) blend(r image.Rectangle, col color.Color) {
	r = r.Canon().Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}
