package overlay

import (
	"math"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Rect is an integer rectangle in raster space.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Right is Left+Width, never an independently rounded edge.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom is Top+Height.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Box converts the rectangle back to a source-space box.
func (r Rect) Box() groundtruth.BoundingBox {
	return groundtruth.NewBoundingBox(float64(r.Left), float64(r.Top), float64(r.Right()), float64(r.Bottom()))
}

// Transform maps source coordinates of one page to raster coordinates.
type Transform struct {
	SX         float64
	SY         float64
	OffsetX    float64 // x1 - page box left
	OffsetY    float64 // y1 - page box top
	OriginX    float64 // page box left
	OriginY    float64 // page box top
	Calibrated bool    // false selects the truncating identity mapping
}

// Identity returns the transform used for pages without calibration.
func Identity() Transform {
	return Transform{SX: 1, SY: 1}
}

// Map converts a source box to a raster rectangle.
//
// Identity transforms truncate toward zero and derive width and height from
// the truncated edges. Calibrated transforms scale relative to the page box
// origin, place it on the calibration anchor and round half up; width and
// height are rounded from the scaled source extent.
func (t Transform) Map(b groundtruth.BoundingBox) Rect {
	if !t.Calibrated {
		left := int(b.Left)
		top := int(b.Top)
		return Rect{
			Left:   left,
			Top:    top,
			Width:  int(b.Right) - left,
			Height: int(b.Bottom) - top,
		}
	}

	return Rect{
		Left:   roundHalfUp(t.SX*(b.Left-t.OriginX) + t.OriginX + t.OffsetX),
		Top:    roundHalfUp(t.SY*(b.Top-t.OriginY) + t.OriginY + t.OffsetY),
		Width:  roundHalfUp(t.SX * (b.Right - b.Left)),
		Height: roundHalfUp(t.SY * (b.Bottom - b.Top)),
	}
}

// roundHalfUp rounds to the nearest integer, ties toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
