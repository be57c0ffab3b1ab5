package groundtruth

// Annotations represents the ground truth of a whole document
type Annotations struct {
	Title    string            // Document title
	Metadata map[string]string // Additional metadata
	Sheets   []Sheet           // One sheet per page, in page order
}

// Sheet returns the sheet at the given 0-based index.
func (a *Annotations) Sheet(index int) (Sheet, bool) {
	if a == nil || index < 0 || index >= len(a.Sheets) {
		return Sheet{}, false
	}
	return a.Sheets[index], true
}

// Sheet is the ground truth of one page
// Corresponds to element with class: 'ocr_page'
type Sheet struct {
	ID       string            // Unique identifier
	Number   int               // Page number in document (ppageno)
	BBox     BoundingBox       // Declared page box in source coordinates
	Regions  []Region          // Text and math regions in document order
	Images   []Image           // Image regions
	Metadata map[string]string // Other page properties
}

// Class assign 'ocr_page' to 'Sheet' struct
func (Sheet) Class() string { return "ocr_page" }

// Box returns the declared page box
func (s Sheet) Box() BoundingBox { return s.BBox }

// RegionKind distinguishes text regions from math regions.
type RegionKind int

const (
	KindText RegionKind = iota
	KindMath
)

func (k RegionKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMath:
		return "math"
	default:
		return "unknown"
	}
}

// Region is a text or math area on a sheet.
// Text regions own lines; math regions are leaves.
type Region struct {
	ID       string
	Kind     RegionKind
	BBox     BoundingBox
	Lines    []Line            // Only meaningful for text regions
	Metadata map[string]string // Other region properties
}

// Class returns 'ocr_carea' for text regions and 'ocr_math' for math regions
func (r Region) Class() string {
	if r.Kind == KindMath {
		return "ocr_math"
	}
	return "ocr_carea"
}

// Box returns the region's bounding box
func (r Region) Box() BoundingBox { return r.BBox }

// Line represents a line of text
// Corresponds to element with class: 'ocr_line'
type Line struct {
	ID    string
	BBox  BoundingBox
	Chars []Char
}

// Class assign 'ocr_line' to 'Line' struct
func (Line) Class() string { return "ocr_line" }

// Box returns the line's bounding box
func (l Line) Box() BoundingBox { return l.BBox }

// TextMode tells whether a character is part of a formula or of running text.
type TextMode string

const (
	ModeMathSymbol TextMode = "MATH_SYMBOL"
	ModeOrdinary   TextMode = "ORDINARY_TEXT"
)

// IsMath reports whether the mode marks a math symbol.
func (m TextMode) IsMath() bool { return m == ModeMathSymbol }

// Char is an annotated character
// Corresponds to element with class: 'ocrx_cinfo'
type Char struct {
	ID        string      // Character identifier
	BBox      BoundingBox // Character coordinates
	Mode      TextMode    // Math symbol or ordinary text
	LinkLabel string      // Grouping / relation label (x_link)
	ParentID  string      // Identifier of the parent node (x_parent)
	Code      string      // Recognition code (x_code)
	Text      string      // Glyph text content
}

// Class assign 'ocrx_cinfo' to 'Char' struct
func (Char) Class() string { return "ocrx_cinfo" }

// Box returns the character's bounding box
func (c Char) Box() BoundingBox { return c.BBox }

// Image is an image area on a sheet
// Corresponds to element with class: 'ocr_image'
type Image struct {
	ID   string
	BBox BoundingBox
}

// Class assign 'ocr_image' to 'Image' struct
func (Image) Class() string { return "ocr_image" }

// Box returns the image's bounding box
func (i Image) Box() BoundingBox { return i.BBox }

// BoundingBox represents a rectangle in the source coordinate system
type BoundingBox struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// NewBoundingBox creates a bounding box from its left, top, right and bottom edges.
func NewBoundingBox(left, top, right, bottom float64) BoundingBox {
	return BoundingBox{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
	}
}

// Width returns Right - Left
func (b BoundingBox) Width() float64 { return b.Right - b.Left }

// Height returns Bottom - Top
func (b BoundingBox) Height() float64 { return b.Bottom - b.Top }

// IsZero reports whether all coordinates are zero, i.e. no box was declared.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// IsDegenerate reports whether the box has no extent along either axis.
func (b BoundingBox) IsDegenerate() bool {
	return b.Right == b.Left || b.Bottom == b.Top
}

// Contains reports whether the point lies inside the box (edges included).
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom
}
