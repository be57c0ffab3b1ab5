package overlay

import (
	"context"
	"fmt"

	"github.com/gardar/gtoverlay/internal/logging"
	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Summary describes a finished run.
type Summary struct {
	Pages      int // Pages handed to the output
	Calibrated int // Pages mapped with a calibrated transform
	Annotated  int // Pages that had a sheet in the ground truth
	Stats      Stats
}

// Assembler annotates a document page by page. Pages are processed strictly
// in order on the calling goroutine.
type Assembler struct {
	doc     Document
	out     Output
	records *RecordEmitter
	visitor *Visitor
	log     *logging.Logger
}

// NewAssembler wires a document, an output and the record streams.
func NewAssembler(cfg Config, doc Document, out Output, records *RecordEmitter) *Assembler {
	if records == nil {
		records = NewRecordEmitter(nil, nil)
	}
	return &Assembler{
		doc:     doc,
		out:     out,
		records: records,
		visitor: NewVisitor(cfg, records),
		log:     cfg.logger(),
	}
}

// Run annotates every page of the document. Any failure aborts the run; the
// output may then hold a partial document.
func (a *Assembler) Run(ctx context.Context, ann *groundtruth.Annotations, cal Calibration) (Summary, error) {
	var summary Summary

	pages := a.doc.PageCount()
	sheets := 0
	if ann != nil {
		sheets = len(ann.Sheets)
	}
	if sheets > pages {
		return summary, newPageCountMismatchError(sheets, pages)
	}
	if sheets == 0 {
		a.log.Warn("no annotations found, pages are passed through unannotated", "pages", pages)
	} else if sheets < pages {
		a.log.Warn("ground truth covers fewer pages than the document", "sheets", sheets, "pages", pages)
	}

	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("annotation cancelled before page %d: %w", i, err)
		}

		// Pages without a sheet draw nothing, so they never need a page box
		t := Identity()
		sheet, ok := ann.Sheet(i)
		if ok {
			summary.Annotated++
			pageBox := a.pageBox(i, sheet)
			var err error
			t, err = cal.TransformFor(i, pageBox)
			if err != nil {
				return summary, err
			}
			if t.Calibrated {
				summary.Calibrated++
			}
			a.log.Info("page", "id", i, "mediabox", pageBox, "calibrated", t.Calibrated)
		} else {
			a.log.Info("page", "id", i, "annotated", false)
		}
		a.log.Debug("transform", "page", i, "sx", t.SX, "sy", t.SY, "offset_x", t.OffsetX, "offset_y", t.OffsetY)

		surface, err := a.doc.RenderPage(i)
		if err != nil {
			return summary, newDocumentLoadError(i, err)
		}

		stats, err := a.visitor.VisitSheet(i, sheet, t, surface)
		if err != nil {
			return summary, err
		}
		if err := a.records.Flush(); err != nil {
			return summary, newRecordWriteError(i, err)
		}
		summary.Stats.Add(stats)
		a.log.Debug("page annotated", "page", i, "fills", stats.Fills, "outlines", stats.Outlines,
			"math_records", stats.MathRecords, "char_records", stats.CharRecords)

		if err := a.out.AddPage(i, surface); err != nil {
			return summary, newOutputError(i, err)
		}
		summary.Pages++
	}

	return summary, nil
}

// pageBox returns the sheet's declared box, or the document's page box when
// the sheet has none.
func (a *Assembler) pageBox(page int, sheet groundtruth.Sheet) groundtruth.BoundingBox {
	if !sheet.BBox.IsZero() {
		return sheet.BBox
	}
	if boxer, ok := a.doc.(PageBoxer); ok {
		if box, ok := boxer.PageBox(page); ok {
			return box
		}
	}
	return sheet.BBox
}
