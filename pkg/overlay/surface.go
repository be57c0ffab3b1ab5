package overlay

import (
	"image"
	"image/color"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Surface is a page raster that accepts draw calls.
type Surface interface {
	Bounds() image.Rectangle
	Image() image.Image
	Fill(r Rect, c color.Color)
	Outline(r Rect, c color.Color, width float64)
}

// Document provides the page rasters of the source document.
type Document interface {
	PageCount() int
	RenderPage(index int) (Surface, error)
}

// PageBoxer is implemented by documents that know the declared box of each
// page. It is consulted when a sheet has no bbox of its own.
type PageBoxer interface {
	PageBox(index int) (groundtruth.BoundingBox, bool)
}

// Output receives every annotated page, in page order.
type Output interface {
	AddPage(index int, s Surface) error
}
