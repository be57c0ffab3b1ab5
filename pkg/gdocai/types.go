package gdocai

import (
	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Config identifies the Document AI processor to call
type Config struct {
	ProjectID   string // Google Cloud project
	Location    string // Processor location, e.g. "us" or "eu"
	ProcessorID string // OCR processor id
}

// Document is the result of converting a Document AI response
type Document struct {
	Raw         *documentaipb.Document        // Original Document AI response (nil when built from several)
	Pages       []*documentaipb.Document_Page // Every page in document order
	Annotations *groundtruth.Annotations      // Ground truth derived from the response
	Text        string                        // Full text content
}

// ConvertOptions tunes how a Document AI response becomes ground truth
type ConvertOptions struct {
	MathTypes  []string // Visual element types treated as math regions
	ImageTypes []string // Visual element types treated as image regions
	Title      string   // Document title written to the ground truth
}

// DefaultConvertOptions returns the visual element types Document AI uses
// for formulas and pictures.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		MathTypes:  []string{"math_formula"},
		ImageTypes: []string{"image", "figure"},
		Title:      "Document AI ground truth",
	}
}
