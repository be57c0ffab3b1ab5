package gdocai

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// DocumentFromProto converts a Document AI response into our structure
func DocumentFromProto(doc *documentaipb.Document, opts ConvertOptions) (*Document, error) {
	ann, err := AnnotationsFromProto(doc, opts)
	if err != nil {
		return nil, err
	}
	return &Document{
		Raw:         doc,
		Pages:       doc.Pages,
		Annotations: ann,
		Text:        doc.Text,
	}, nil
}

// AnnotationsFromProto converts a Document AI proto to ground truth
func AnnotationsFromProto(docProto *documentaipb.Document, opts ConvertOptions) (*groundtruth.Annotations, error) {
	if docProto == nil {
		return nil, fmt.Errorf("no document provided")
	}

	sheets := make([]groundtruth.Sheet, 0, len(docProto.Pages))
	for i, page := range docProto.Pages {
		pageNumber := int(page.PageNumber)
		if pageNumber == 0 {
			pageNumber = i + 1
		}
		sheet, err := SheetFromProto(page, docProto.Text, pageNumber, opts)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}

	return newAnnotations(opts.Title, getDocumentLanguage(docProto), sheets), nil
}

// newAnnotations wraps sheets with the document level metadata.
func newAnnotations(title, lang string, sheets []groundtruth.Sheet) *groundtruth.Annotations {
	result := &groundtruth.Annotations{
		Title: title,
		Metadata: map[string]string{
			"ocr-system":          "Document AI OCR",
			"ocr-number-of-pages": fmt.Sprintf("%d", len(sheets)),
			"ocr-capabilities":    "ocr_page ocr_carea ocr_math ocr_line ocrx_cinfo ocr_image",
		},
		Sheets: sheets,
	}
	if lang != "" {
		result.Metadata["ocr-langs"] = lang
	}
	return result
}

// SheetFromProto converts a single Document AI page to a ground truth sheet.
//
// Blocks become text regions holding the lines whose text anchor lies
// within the block; lines outside every block are collected in one extra
// region. Characters come from the page symbols, or from the tokens when
// the processor returned no symbols. Visual elements become math or image
// regions by type, and every character whose centre lies in a math region
// is marked as a math symbol.
func SheetFromProto(page *documentaipb.Document_Page, fullText string, pageNumber int, opts ConvertOptions) (groundtruth.Sheet, error) {
	if page == nil {
		return groundtruth.Sheet{}, fmt.Errorf("page %d: no documentai page provided", pageNumber)
	}

	sheet := groundtruth.Sheet{
		ID:       fmt.Sprintf("page_%d", pageNumber),
		Number:   pageNumber,
		Metadata: make(map[string]string),
	}
	if dim := page.Dimension; dim != nil {
		sheet.BBox = groundtruth.NewBoundingBox(0, 0, roundCoord(float64(dim.Width)), roundCoord(float64(dim.Height)))
	}
	if len(page.DetectedLanguages) > 0 {
		sheet.Metadata["lang"] = page.DetectedLanguages[0].LanguageCode
	}

	// Visual elements first, characters need the math regions
	var mathRegions []groundtruth.Region
	for vidx, element := range page.VisualElements {
		bbox, ok := boundingBoxFromLayout(element.Layout, page.Dimension)
		if !ok {
			continue
		}
		switch {
		case containsType(opts.MathTypes, element.Type):
			mathRegions = append(mathRegions, groundtruth.Region{
				ID:   fmt.Sprintf("math_%d_%d", pageNumber, vidx),
				Kind: groundtruth.KindMath,
				BBox: bbox,
			})
		case containsType(opts.ImageTypes, element.Type):
			sheet.Images = append(sheet.Images, groundtruth.Image{
				ID:   fmt.Sprintf("image_%d_%d", pageNumber, vidx),
				BBox: bbox,
			})
		}
	}

	conv := &pageConverter{
		page:        page,
		fullText:    fullText,
		pageNumber:  pageNumber,
		mathRegions: mathRegions,
		assigned:    make(map[int]bool),
	}

	for bidx, block := range page.Blocks {
		region := groundtruth.Region{
			ID:   fmt.Sprintf("carea_%d_%d", pageNumber, bidx),
			Kind: groundtruth.KindText,
		}
		region.BBox, _ = boundingBoxFromLayout(block.Layout, page.Dimension)

		for lidx, line := range page.Lines {
			if conv.assigned[lidx] || !isElementInParent(line.Layout, block.Layout) {
				continue
			}
			conv.assigned[lidx] = true
			region.Lines = append(region.Lines, conv.convertLine(line, lidx))
		}
		sheet.Regions = append(sheet.Regions, region)
	}

	// Lines not contained in any block
	orphans := groundtruth.Region{
		ID:   fmt.Sprintf("carea_%d_direct", pageNumber),
		Kind: groundtruth.KindText,
	}
	for lidx, line := range page.Lines {
		if conv.assigned[lidx] {
			continue
		}
		l := conv.convertLine(line, lidx)
		orphans.BBox = unionBox(orphans.BBox, l.BBox)
		orphans.Lines = append(orphans.Lines, l)
	}
	if len(orphans.Lines) > 0 {
		sheet.Regions = append(sheet.Regions, orphans)
	}

	sheet.Regions = append(sheet.Regions, mathRegions...)
	return sheet, nil
}

// pageConverter carries the per-page state of a conversion.
type pageConverter struct {
	page        *documentaipb.Document_Page
	fullText    string
	pageNumber  int
	mathRegions []groundtruth.Region
	assigned    map[int]bool
}

// charSource is a layout element that becomes one character.
type charSource struct {
	index  int
	layout *documentaipb.Document_Page_Layout
}

// charSources returns the symbols of the page, or its tokens when the
// processor did not return symbols.
func (c *pageConverter) charSources() []charSource {
	var out []charSource
	if len(c.page.Symbols) > 0 {
		for i, symbol := range c.page.Symbols {
			out = append(out, charSource{index: i, layout: symbol.Layout})
		}
		return out
	}
	for i, token := range c.page.Tokens {
		out = append(out, charSource{index: i, layout: token.Layout})
	}
	return out
}

// convertLine converts a proto line and the characters within it.
func (c *pageConverter) convertLine(line *documentaipb.Document_Page_Line, lineIdx int) groundtruth.Line {
	gtLine := groundtruth.Line{
		ID: fmt.Sprintf("line_%d_%d", c.pageNumber, lineIdx),
	}
	gtLine.BBox, _ = boundingBoxFromLayout(line.Layout, c.page.Dimension)

	for _, src := range c.charSources() {
		if !isElementInParent(src.layout, line.Layout) {
			continue
		}

		text := strings.TrimSpace(textFromLayout(src.layout, c.fullText))
		if text == "" {
			continue
		}
		bbox, ok := boundingBoxFromLayout(src.layout, c.page.Dimension)
		if !ok {
			continue
		}

		char := groundtruth.Char{
			ID:       fmt.Sprintf("char_%d_%d", c.pageNumber, src.index),
			BBox:     bbox,
			Mode:     groundtruth.ModeOrdinary,
			ParentID: gtLine.ID,
			Code:     charCode(text),
			Text:     text,
		}
		if c.inMath(bbox) {
			char.Mode = groundtruth.ModeMathSymbol
		}
		gtLine.Chars = append(gtLine.Chars, char)
	}

	return gtLine
}

// inMath reports whether the centre of b lies in a math region.
func (c *pageConverter) inMath(b groundtruth.BoundingBox) bool {
	cx := (b.Left + b.Right) / 2
	cy := (b.Top + b.Bottom) / 2
	for _, region := range c.mathRegions {
		if region.BBox.Contains(cx, cy) {
			return true
		}
	}
	return false
}

// boundingBoxFromLayout converts Document AI coordinates to page coordinates.
// Normalized vertices (0-1) are scaled by the page dimension; absolute
// vertices are used as they are. Coordinates are rounded to whole units.
func boundingBoxFromLayout(layout *documentaipb.Document_Page_Layout, dimension *documentaipb.Document_Page_Dimension) (groundtruth.BoundingBox, bool) {
	if layout == nil || layout.BoundingPoly == nil {
		return groundtruth.BoundingBox{}, false
	}
	poly := layout.BoundingPoly

	var xs, ys []float64
	if len(poly.NormalizedVertices) > 0 && dimension != nil {
		for _, v := range poly.NormalizedVertices {
			xs = append(xs, float64(v.X)*float64(dimension.Width))
			ys = append(ys, float64(v.Y)*float64(dimension.Height))
		}
	} else {
		for _, v := range poly.Vertices {
			xs = append(xs, float64(v.X))
			ys = append(ys, float64(v.Y))
		}
	}
	if len(xs) == 0 {
		return groundtruth.BoundingBox{}, false
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	return groundtruth.NewBoundingBox(roundCoord(minX), roundCoord(minY), roundCoord(maxX), roundCoord(maxY)), true
}

func roundCoord(v float64) float64 {
	return math.Floor(v + 0.5)
}

// unionBox returns the smallest box containing a and b. A zero box is empty.
func unionBox(a, b groundtruth.BoundingBox) groundtruth.BoundingBox {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	return groundtruth.NewBoundingBox(
		math.Min(a.Left, b.Left), math.Min(a.Top, b.Top),
		math.Max(a.Right, b.Right), math.Max(a.Bottom, b.Bottom),
	)
}

// getDocumentLanguage finds the most common language in the document
// by counting language occurrences across all elements
func getDocumentLanguage(doc *documentaipb.Document) string {
	langCount := make(map[string]int)
	for _, page := range doc.Pages {
		for _, lang := range page.DetectedLanguages {
			langCount[lang.LanguageCode]++
		}
		for _, token := range page.Tokens {
			for _, lang := range token.DetectedLanguages {
				langCount[lang.LanguageCode]++
			}
		}
	}

	var mostCommonLang string
	var highestCount int
	for lang, count := range langCount {
		if count > highestCount || (count == highestCount && lang < mostCommonLang) {
			highestCount = count
			mostCommonLang = lang
		}
	}
	return mostCommonLang
}

// isElementInParent checks if an element's first text segment lies within
// the parent's first text segment
func isElementInParent(elementLayout, parentLayout *documentaipb.Document_Page_Layout) bool {
	if elementLayout == nil || parentLayout == nil ||
		elementLayout.TextAnchor == nil || parentLayout.TextAnchor == nil ||
		len(elementLayout.TextAnchor.TextSegments) == 0 || len(parentLayout.TextAnchor.TextSegments) == 0 {
		return false
	}

	elementStart := elementLayout.TextAnchor.TextSegments[0].StartIndex
	elementEnd := elementLayout.TextAnchor.TextSegments[0].EndIndex
	parentStart := parentLayout.TextAnchor.TextSegments[0].StartIndex
	parentEnd := parentLayout.TextAnchor.TextSegments[0].EndIndex

	return elementStart >= parentStart && elementEnd <= parentEnd
}

func containsType(types []string, t string) bool {
	for _, candidate := range types {
		if strings.EqualFold(candidate, t) {
			return true
		}
	}
	return false
}
