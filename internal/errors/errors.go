// Package errors defines the load-pipeline error taxonomy and its HTTP
// rendering. Per-item failures (one CSV file, one workbook sheet) are never
// returned as errors by the loaders; they are downgraded to warnings carried
// on the load result. Only directory-level and workbook-level failures
// propagate as errors from this package.
package errors

import (
	"errors"
	"fmt"
)

// Codes for the load-pipeline error taxonomy.
const (
	CodeMissingDataDirectory = "MISSING_DATA_DIRECTORY"
	CodeNoEnvironmentFiles   = "NO_ENVIRONMENT_FILES"
	CodeNoGrowthFile         = "NO_GROWTH_FILE"
	CodeFileParseError       = "FILE_PARSE_ERROR"
	CodeWorkbookOpenError    = "WORKBOOK_OPEN_ERROR"
	CodeSheetParseError      = "SHEET_PARSE_ERROR"
	CodeAllDataEmpty         = "ALL_DATA_EMPTY"
)

// DataError is a typed pipeline error carrying a taxonomy code and the
// offending item (file or sheet name) when one exists.
type DataError struct {
	Code    string
	Item    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DataError) Error() string {
	msg := e.Message
	if e.Item != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Item)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *DataError) Unwrap() error {
	return e.Err
}

// Is matches DataErrors by code so sentinel comparisons work through wrapping.
func (e *DataError) Is(target error) bool {
	var de *DataError
	if errors.As(target, &de) {
		return e.Code == de.Code
	}
	return false
}

// Sentinel values for the non-item-scoped conditions.
var (
	ErrNoEnvironmentFiles = &DataError{Code: CodeNoEnvironmentFiles, Message: "no environment data files found"}
	ErrNoGrowthFile       = &DataError{Code: CodeNoGrowthFile, Message: "no growth result workbook found"}
	ErrAllDataEmpty       = &DataError{Code: CodeAllDataEmpty, Message: "all data pipelines produced no records"}
)

// NewMissingDataDirectory reports an unreadable or absent data directory.
// This condition is fatal to the whole load cycle.
func NewMissingDataDirectory(dir string, err error) *DataError {
	return &DataError{Code: CodeMissingDataDirectory, Item: dir, Message: "data directory not found", Err: err}
}

// NewFileParseError reports a single environment CSV that failed to parse.
// The caller downgrades this to a warning and continues with sibling files.
func NewFileParseError(file string, err error) *DataError {
	return &DataError{Code: CodeFileParseError, Item: file, Message: "failed to parse environment file", Err: err}
}

// NewWorkbookOpenError reports a growth workbook that could not be opened.
// This condition aborts the growth pipeline but not the environment pipeline.
func NewWorkbookOpenError(file string, err error) *DataError {
	return &DataError{Code: CodeWorkbookOpenError, Item: file, Message: "failed to open growth workbook", Err: err}
}

// NewSheetParseError reports a single workbook sheet that failed to parse.
// The caller downgrades this to a warning and continues with sibling sheets.
func NewSheetParseError(sheet string, err error) *DataError {
	return &DataError{Code: CodeSheetParseError, Item: sheet, Message: "failed to parse growth sheet", Err: err}
}

// CodeOf returns the taxonomy code of err, or an empty string when err is not
// a DataError.
func CodeOf(err error) string {
	var de *DataError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
