package raster

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/gardar/gtoverlay/pkg/overlay"
)

// PDFOutput collects annotated pages into a PDF document with one page per
// raster. Page size is the raster size at the configured DPI; the raster is
// embedded as JPEG. Nothing is written until Close.
type PDFOutput struct {
	w       io.Writer
	pdf     *fpdf.Fpdf
	dpi     float64
	originX float64
	originY float64
	quality int
}

// NewPDFOutput creates a PDF output that writes to w on Close.
func NewPDFOutput(w io.Writer, cfg overlay.Config, title string) *PDFOutput {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("gtoverlay", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	return &PDFOutput{
		w:       w,
		pdf:     pdf,
		dpi:     cfg.DPI,
		originX: cfg.OriginX,
		originY: cfg.OriginY,
		quality: cfg.JPEGQuality,
	}
}

// AddPage appends s as a new page.
func (o *PDFOutput) AddPage(index int, s overlay.Surface) error {
	bounds := s.Bounds()
	w := float64(bounds.Dx()) * 72 / o.dpi
	h := float64(bounds.Dy()) * 72 / o.dpi
	if w <= 0 || h <= 0 {
		return fmt.Errorf("page %d has an empty raster", index)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.Image(), imaging.JPEG, imaging.JPEGQuality(o.quality)); err != nil {
		return fmt.Errorf("failed to encode page %d: %w", index, err)
	}

	o.pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

	imageName := fmt.Sprintf("page%d", index)
	opts := fpdf.ImageOptions{ImageType: "JPG", ReadDpi: false, AllowNegativePosition: true}
	o.pdf.RegisterImageOptionsReader(imageName, opts, &buf)
	o.pdf.ImageOptions(imageName, o.originX, o.originY, w, h, false, opts, 0, "")

	if o.pdf.Err() {
		return o.pdf.Error()
	}
	return nil
}

// PageCount returns the number of pages added so far.
func (o *PDFOutput) PageCount() int { return o.pdf.PageCount() }

// Close writes the document.
func (o *PDFOutput) Close() error {
	if err := o.pdf.Output(o.w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

// ImageDirOutput writes every annotated page to dir as page_NNN.<format>,
// numbered from 1.
type ImageDirOutput struct {
	dir     string
	format  string
	quality int
}

// NewImageDirOutput creates dir if needed. Format is png, jpg or webp.
func NewImageDirOutput(dir, format string, quality int) (*ImageDirOutput, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case "png", "jpg", "webp":
	case "jpeg":
		format = "jpg"
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &ImageDirOutput{dir: dir, format: format, quality: quality}, nil
}

// PagePath returns the file a page is written to.
func (o *ImageDirOutput) PagePath(index int) string {
	return filepath.Join(o.dir, fmt.Sprintf("page_%03d.%s", index+1, o.format))
}

// AddPage writes s to its page file.
func (o *ImageDirOutput) AddPage(index int, s overlay.Surface) error {
	path := o.PagePath(index)

	switch o.format {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := webp.Encode(f, s.Image(), &webp.Options{Quality: float32(o.quality)}); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		return f.Close()
	case "jpg":
		return imaging.Save(s.Image(), path, imaging.JPEGQuality(o.quality))
	default:
		return imaging.Save(s.Image(), path)
	}
}

// Close is a no-op; every page is written by AddPage.
func (o *ImageDirOutput) Close() error { return nil }

// MultiOutput hands every page to each of its outputs in turn.
type MultiOutput []overlay.Output

func (m MultiOutput) AddPage(index int, s overlay.Surface) error {
	for _, out := range m {
		if err := out.AddPage(index, s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every output that has a Close method and returns the first
// error.
func (m MultiOutput) Close() error {
	var first error
	for _, out := range m {
		if c, ok := out.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
