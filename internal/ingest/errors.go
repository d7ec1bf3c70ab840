package ingest

import "errors"

// FailureCode classifies why an ingestion or deletion request failed.
// Codes are stable strings surfaced through the API and CLI.
type FailureCode string

const (
	CodeFileNotFound        FailureCode = "FILE_NOT_FOUND"
	CodeFileNotReadable     FailureCode = "FILE_NOT_READABLE"
	CodeUnsupportedFileType FailureCode = "UNSUPPORTED_FILE_TYPE"
	CodeProcessingError     FailureCode = "PROCESSING_ERROR"
	CodeDocumentNotFound    FailureCode = "DOCUMENT_NOT_FOUND"
)

// Error is a typed pipeline failure carrying a stable code.
type Error struct {
	Code    FailureCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the failure code of err, or "" if err is not a pipeline
// Error.
func CodeOf(err error) FailureCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
