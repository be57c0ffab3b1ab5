// Package gdocai bootstraps overlay ground truth from Google Document AI.
//
// This package sends PDFs to a Document AI OCR processor, or reads a saved
// Document AI JSON response, and converts the result into the ground truth
// tree of package groundtruth: blocks become text regions, lines keep their
// characters, formula visual elements become math regions and picture visual
// elements become image regions. The page images Document AI returns can be
// used as the page rasters of an overlay run.
//
// Key Features:
//
// - Process PDFs with Google Document AI to extract layout down to symbols
// - Load Document AI responses saved as JSON
// - Convert Document AI output to ground truth with math symbols marked
// - Extract page images for further processing
//
// Main Functions:
//
// - ProcessDocument: Sends a document to Google Document AI for processing
// - LoadDocumentJSON: Reads a saved Document AI response
// - DocumentFromProto / AnnotationsFromProto: Convert a response to ground truth
// - Annotate: Processes a PDF and returns the converted document
// - AnnotatePages: Processes several PDFs as the pages of one document
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
package gdocai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Annotate processes a PDF with Document AI and converts the response.
func Annotate(ctx context.Context, pdfBytes []byte, cfg *Config, opts ConvertOptions) (*Document, error) {
	rawDoc, err := ProcessDocument(ctx, pdfBytes, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return DocumentFromProto(rawDoc, opts)
}

// AnnotatePages processes several PDFs, one page each, and combines them
// into a single document. Raw is nil on the result; Pages holds the page of
// every response.
func AnnotatePages(ctx context.Context, pagePdfBytesList [][]byte, cfg *Config, opts ConvertOptions) (*Document, error) {
	var responses []*documentaipb.Document
	for i, pageBytes := range pagePdfBytesList {
		pageDoc, err := ProcessDocument(ctx, pageBytes, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to process page %d: %w", i+1, err)
		}
		responses = append(responses, pageDoc)
	}
	return CombinePages(responses, opts)
}

// CombinePages converts single page responses into one document, numbering
// the pages in order.
func CombinePages(responses []*documentaipb.Document, opts ConvertOptions) (*Document, error) {
	var sheets []groundtruth.Sheet
	var pages []*documentaipb.Document_Page
	var texts []string
	lang := ""

	for i, pageDoc := range responses {
		if pageDoc == nil || len(pageDoc.Pages) != 1 {
			n := 0
			if pageDoc != nil {
				n = len(pageDoc.Pages)
			}
			return nil, fmt.Errorf("expected 1 page in result for page %d, got %d", i+1, n)
		}

		sheet, err := SheetFromProto(pageDoc.Pages[0], pageDoc.Text, i+1, opts)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
		pages = append(pages, pageDoc.Pages[0])
		texts = append(texts, pageDoc.Text)
		if lang == "" {
			lang = getDocumentLanguage(pageDoc)
		}
	}

	return &Document{
		Pages:       pages,
		Annotations: newAnnotations(opts.Title, lang, sheets),
		Text:        strings.Join(texts, "\n\n"),
	}, nil
}
