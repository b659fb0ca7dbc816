package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDecodeFailure     = errors.New("document text unavailable")
	ErrExtractionTimeout = errors.New("extraction timed out")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrReportNotFound    = errors.New("report not found")
	ErrEmptySet          = errors.New("document set is empty")
)

type ErrorKind string

const (
	ErrorDecodeFailure         ErrorKind = "decode_failure"
	ErrorTimeout               ErrorKind = "timeout"
	ErrorComparisonUnavailable ErrorKind = "comparison_unavailable"
)

// ExtractionError is the report entry for a document whose text could not
// be obtained. It also satisfies error so callers can wrap it.
type ExtractionError struct {
	DocumentID string       `json:"document_id"`
	Type       DocumentType `json:"document_type"`
	Kind       ErrorKind    `json:"kind"`
	Message    string       `json:"message"`
	err        error
}

func NewExtractionError(doc *Document, err error) *ExtractionError {
	kind := ErrorDecodeFailure
	if errors.Is(err, ErrExtractionTimeout) {
		kind = ErrorTimeout
	}
	return &ExtractionError{
		DocumentID: doc.ID,
		Type:       doc.Type,
		Kind:       kind,
		Message:    err.Error(),
		err:        err,
	}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s (%s): %s", e.DocumentID, e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error { return e.err }
