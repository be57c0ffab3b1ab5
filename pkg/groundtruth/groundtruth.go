// Package groundtruth implements the in-memory model, parsing and generation of
// page layout ground truth for math-aware document datasets.
//
// Ground truth is stored in an hOCR flavoured HTML file. The hierarchy is:
// Document → Sheets (pages) → Regions (text or math) → Lines → Characters,
// plus a flat list of Image regions per sheet.
//
// Key Types:
//
// - Annotations: Top-level structure representing a whole document
// - Sheet: A single page with class 'ocr_page'
// - Region: A text area ('ocr_carea') or a math area ('ocr_math')
// - Line: A line of text with class 'ocr_line'
// - Char: A single character with class 'ocrx_cinfo'
// - Image: An image area ('ocr_image', 'ocr_photo' or 'ocr_linedrawing')
// - BoundingBox: A rectangle in the source coordinate system
//
// Character metadata is carried in the title attribute next to the bbox:
//
//	<span class="ocrx_cinfo" id="c12" title="bbox 10.5 20 18 31.25; x_mode MATH_SYMBOL; x_link 4; x_parent m2; x_code 0x3b1">α</span>
//
// Main Functions:
//
// - Parse: Parses ground truth HTML into the object model
// - Generate: Writes the object model back as ground truth HTML
package groundtruth
