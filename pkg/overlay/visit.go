package overlay

import (
	"image/color"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Stats counts what a traversal visited and issued.
type Stats struct {
	TextRegions int
	MathRegions int
	Lines       int
	Chars       int
	Images      int
	Fills       int
	Outlines    int
	MathRecords int
	CharRecords int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.TextRegions += other.TextRegions
	s.MathRegions += other.MathRegions
	s.Lines += other.Lines
	s.Chars += other.Chars
	s.Images += other.Images
	s.Fills += other.Fills
	s.Outlines += other.Outlines
	s.MathRecords += other.MathRecords
	s.CharRecords += other.CharRecords
}

// Visitor walks the annotation tree of a sheet, draws every node and emits
// records for math regions and characters.
type Visitor struct {
	palette Palette
	stroke  float64
	records *RecordEmitter
}

// NewVisitor creates a visitor drawing with the config's palette and stroke.
// A nil emitter discards records.
func NewVisitor(cfg Config, records *RecordEmitter) *Visitor {
	if records == nil {
		records = NewRecordEmitter(nil, nil)
	}
	return &Visitor{
		palette: cfg.Palette,
		stroke:  cfg.StrokeWidth,
		records: records,
	}
}

// VisitSheet traverses the regions of a sheet depth first, parent before
// children and siblings in source order, then its image regions.
func (v *Visitor) VisitSheet(page int, sheet groundtruth.Sheet, t Transform, s Surface) (Stats, error) {
	pv := &pageVisit{Visitor: v, page: page, t: t, surface: s}

	for _, region := range sheet.Regions {
		if err := pv.visitRegion(region); err != nil {
			return pv.stats, newRecordWriteError(page, err)
		}
	}
	for _, img := range sheet.Images {
		pv.visitImage(img)
	}

	return pv.stats, nil
}

// pageVisit carries the per-page state of one traversal.
type pageVisit struct {
	*Visitor
	page    int
	t       Transform
	surface Surface
	stats   Stats
}

func (pv *pageVisit) visitRegion(region groundtruth.Region) error {
	switch region.Kind {
	case groundtruth.KindMath:
		pv.stats.MathRegions++
		r := pv.t.Map(region.BBox)
		if err := pv.records.EmitMath(pv.page, r); err != nil {
			return err
		}
		pv.stats.MathRecords++
		pv.fillAndOutline(r, pv.palette.Math)
		return nil

	default:
		pv.stats.TextRegions++
		pv.outline(pv.t.Map(region.BBox), pv.palette.Text)
		for _, line := range region.Lines {
			if err := pv.visitLine(line); err != nil {
				return err
			}
		}
		return nil
	}
}

func (pv *pageVisit) visitLine(line groundtruth.Line) error {
	pv.stats.Lines++
	pv.outline(pv.t.Map(line.BBox), pv.palette.Line)
	for _, char := range line.Chars {
		if err := pv.visitChar(char); err != nil {
			return err
		}
	}
	return nil
}

func (pv *pageVisit) visitChar(char groundtruth.Char) error {
	pv.stats.Chars++
	r := pv.t.Map(char.BBox)
	if err := pv.records.EmitChar(pv.page, char, r); err != nil {
		return err
	}
	pv.stats.CharRecords++

	c := pv.palette.CharText
	if char.Mode.IsMath() {
		c = pv.palette.CharMath
	}
	pv.fillAndOutline(r, c)
	return nil
}

func (pv *pageVisit) visitImage(img groundtruth.Image) {
	pv.stats.Images++
	pv.outline(pv.t.Map(img.BBox), pv.palette.Image)
}

// fillAndOutline draws a translucent fill with a border of the same color.
func (pv *pageVisit) fillAndOutline(r Rect, c color.Color) {
	pv.surface.Fill(r, c)
	pv.stats.Fills++
	pv.outline(r, c)
}

func (pv *pageVisit) outline(r Rect, c color.Color) {
	pv.surface.Outline(r, c, pv.stroke)
	pv.stats.Outlines++
}
