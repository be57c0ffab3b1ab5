// Package overlay draws ground truth annotations onto rendered page rasters and
// re-expresses every annotation box in raster pixel coordinates.
//
// For every page the package derives an anisotropic affine transform from a
// calibration diagonal (two raster points matching the corners of the page's
// declared box), walks the annotation tree Region → Line → Character plus the
// page's image regions, draws a colored box per node and appends flat records
// for math regions and characters.
//
// Pages without calibration use the identity transform, in which source
// coordinates are truncated to integers. Calibrated pages round half up.
//
// Key Types:
//
// - Transform: Per-page scale and offset, never shared across pages
// - Calibration: Per-page calibration diagonals loaded from a text file
// - Visitor: Traverses one sheet and issues draw calls and records
// - RecordEmitter: Writes math and character records to two streams
// - Assembler: Runs the whole document page by page
//
// Collaborators are reached through small interfaces (Document, Surface,
// Output, PageBoxer) so the package does not depend on any image or PDF
// library. The raster package provides the concrete implementations.
//
// Main Functions:
//
// - Calibrate: Derives a page transform from a page box and a diagonal
// - LoadCalibration / OpenCalibration: Read calibration diagonals
// - Transform.Map: Maps a source box to a raster rectangle
// - Assembler.Run: Annotates every page of a document in order
package overlay
