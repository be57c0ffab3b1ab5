package overlay

import (
	"errors"
	"image"
	"image/color"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// drawCall is one call issued against a recordingSurface.
type drawCall struct {
	op    string // "fill" or "outline"
	rect  Rect
	color color.Color
	width float64
}

// recordingSurface remembers every draw call instead of touching pixels.
type recordingSurface struct {
	bounds image.Rectangle
	calls  []drawCall
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{bounds: image.Rect(0, 0, w, h)}
}

func (s *recordingSurface) Bounds() image.Rectangle { return s.bounds }
func (s *recordingSurface) Image() image.Image      { return image.NewRGBA(s.bounds) }

func (s *recordingSurface) Fill(r Rect, c color.Color) {
	s.calls = append(s.calls, drawCall{op: "fill", rect: r, color: c})
}

func (s *recordingSurface) Outline(r Rect, c color.Color, width float64) {
	s.calls = append(s.calls, drawCall{op: "outline", rect: r, color: c, width: width})
}

// fakeDocument hands out recording surfaces and can fail on a given page.
type fakeDocument struct {
	pages    int
	boxes    map[int]groundtruth.BoundingBox
	failPage int
	rendered []*recordingSurface
}

func newFakeDocument(pages int) *fakeDocument {
	return &fakeDocument{pages: pages, failPage: -1}
}

func (d *fakeDocument) PageCount() int { return d.pages }

func (d *fakeDocument) RenderPage(index int) (Surface, error) {
	if index == d.failPage {
		return nil, errors.New("render failed")
	}
	s := newRecordingSurface(1000, 1000)
	d.rendered = append(d.rendered, s)
	return s, nil
}

// boxedDocument also implements PageBoxer.
type boxedDocument struct {
	*fakeDocument
}

func (d boxedDocument) PageBox(index int) (groundtruth.BoundingBox, bool) {
	b, ok := d.boxes[index]
	return b, ok
}

// fakeOutput records the page order it was handed.
type fakeOutput struct {
	pages []int
	err   error
}

func (o *fakeOutput) AddPage(index int, s Surface) error {
	if o.err != nil {
		return o.err
	}
	o.pages = append(o.pages, index)
	return nil
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func box(l, t, r, b float64) groundtruth.BoundingBox {
	return groundtruth.NewBoundingBox(l, t, r, b)
}
