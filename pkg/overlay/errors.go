package overlay

import (
	"fmt"
)

// ErrorCode classifies failures of an annotation run.
type ErrorCode string

const (
	// Calibration errors
	CodeMalformedCalibration ErrorCode = "MALFORMED_CALIBRATION"
	CodeInvalidCalibration   ErrorCode = "INVALID_CALIBRATION"
	CodeDegeneratePageBox    ErrorCode = "DEGENERATE_PAGE_BOX"

	// Input errors
	CodePageCountMismatch  ErrorCode = "PAGE_COUNT_MISMATCH"
	CodeDocumentLoadFailed ErrorCode = "DOCUMENT_LOAD_FAILED"

	// Output errors
	CodeRecordWriteFailed ErrorCode = "RECORD_WRITE_FAILED"
	CodeOutputFailed      ErrorCode = "OUTPUT_FAILED"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrMalformedCalibration = &Error{Code: CodeMalformedCalibration, Page: -1}
	ErrInvalidCalibration   = &Error{Code: CodeInvalidCalibration, Page: -1}
	ErrDegeneratePageBox    = &Error{Code: CodeDegeneratePageBox, Page: -1}
	ErrPageCountMismatch    = &Error{Code: CodePageCountMismatch, Page: -1}
	ErrDocumentLoadFailed   = &Error{Code: CodeDocumentLoadFailed, Page: -1}
	ErrRecordWriteFailed    = &Error{Code: CodeRecordWriteFailed, Page: -1}
	ErrOutputFailed         = &Error{Code: CodeOutputFailed, Page: -1}
)

// Error is a coded failure, optionally tied to a page (Page is -1 otherwise).
type Error struct {
	Code    ErrorCode
	Message string
	Page    int
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Page >= 0 {
		msg = fmt.Sprintf("%s (page %d)", msg, e.Page)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newMalformedCalibrationError(line int, msg string, cause error) *Error {
	return &Error{
		Code:    CodeMalformedCalibration,
		Message: fmt.Sprintf("calibration line %d: %s", line, msg),
		Page:    -1,
		Cause:   cause,
	}
}

func newInvalidCalibrationError(page int, sx, sy float64) *Error {
	return &Error{
		Code:    CodeInvalidCalibration,
		Message: fmt.Sprintf("calibration yields non-positive scale sx=%g sy=%g", sx, sy),
		Page:    page,
	}
}

func newDegeneratePageBoxError(page int, left, top, right, bottom float64) *Error {
	return &Error{
		Code:    CodeDegeneratePageBox,
		Message: fmt.Sprintf("page box (%g, %g, %g, %g) has zero width or height", left, top, right, bottom),
		Page:    page,
	}
}

func newPageCountMismatchError(sheets, pages int) *Error {
	return &Error{
		Code:    CodePageCountMismatch,
		Message: fmt.Sprintf("ground truth has %d sheets but the document has %d pages", sheets, pages),
		Page:    -1,
	}
}

func newDocumentLoadError(page int, cause error) *Error {
	return &Error{
		Code:    CodeDocumentLoadFailed,
		Message: "failed to render page raster",
		Page:    page,
		Cause:   cause,
	}
}

func newRecordWriteError(page int, cause error) *Error {
	return &Error{
		Code:    CodeRecordWriteFailed,
		Message: "failed to write annotation records",
		Page:    page,
		Cause:   cause,
	}
}

func newOutputError(page int, cause error) *Error {
	return &Error{
		Code:    CodeOutputFailed,
		Message: "failed to hand page to output",
		Page:    page,
		Cause:   cause,
	}
}
