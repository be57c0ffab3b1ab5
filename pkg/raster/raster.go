// Package raster provides the pixel side of an overlay run: page rasters
// that accept draw calls, sources that load them and outputs that collect
// the annotated pages.
//
// Page rasters come pre-rendered, either as a directory of images or as
// images held in memory. The declared page boxes of the source PDF can be
// read with PDFInfo and attached to an image source so that sheets without
// a bbox still calibrate against the real MediaBox.
//
// Key Types:
//
// - Canvas: Mutable RGBA page raster with alpha-composited fill and outline
// - ImageDir: Document backed by a directory of page images
// - Images: Document backed by in-memory images
// - PDFInfo: Page count and MediaBox of every page of a PDF
// - PDFOutput: Collects annotated pages into a PDF document
// - ImageDirOutput: Writes every annotated page as an image file
//
// Main Functions:
//
// - OpenImageDir: Lists the page images of a directory
// - ReadPDFInfo / OpenPDFInfo: Read page boxes from a PDF
// - WithPageBoxes: Attaches page boxes to a document
// - NewPDFOutput / NewImageDirOutput: Create an output
package raster
