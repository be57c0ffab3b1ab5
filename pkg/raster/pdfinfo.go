package raster

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// PDFInfo holds the declared MediaBox of every page of a PDF.
type PDFInfo struct {
	Boxes PageBoxes
}

// PageCount returns the number of pages of the PDF.
func (p *PDFInfo) PageCount() int { return len(p.Boxes) }

// PageBox returns the MediaBox of a 0-based page index.
func (p *PDFInfo) PageBox(index int) (groundtruth.BoundingBox, bool) {
	return p.Boxes.PageBox(index)
}

// OpenPDFInfo reads the page boxes of a PDF file.
func OpenPDFInfo(path string) (*PDFInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input PDF: %w", err)
	}
	return ReadPDFInfo(data)
}

// ReadPDFInfo reads the page boxes of a PDF held in memory.
func ReadPDFInfo(pdfData []byte) (info *PDFInfo, err error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	// the importer panics on input it cannot parse
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "A4", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(pdfData))
	importer.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if pdf.Err() {
		return nil, fmt.Errorf("failed to parse PDF: %w", pdf.Error())
	}

	sizes := importer.GetPageSizes()
	boxes := make(PageBoxes, len(sizes))
	for pageNo, pageBoxes := range sizes {
		mediaBox, ok := pageBoxes["/MediaBox"]
		if !ok || pageNo < 1 || pageNo > len(boxes) {
			continue
		}
		llx, lly := mediaBox["llx"], mediaBox["lly"]
		boxes[pageNo-1] = groundtruth.NewBoundingBox(llx, lly, llx+mediaBox["w"], lly+mediaBox["h"])
	}

	return &PDFInfo{Boxes: boxes}, nil
}
