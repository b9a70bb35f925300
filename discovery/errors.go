package discovery

import (
	"context"
	"errors"
	"fmt"
)

const parsingErrorPrefix = "streams parsing error"

// ValidationError reports a malformed discovery payload. Field is the offending
// field name ("name", "json_schema", "catalog", ...); Index is the stream
// position for per-stream fields and -1 otherwise.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: catalog.streams[%d].%s %s", parsingErrorPrefix, e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", parsingErrorPrefix, e.Field, e.Reason)
}

func newFieldError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: -1, Reason: reason}
}

func newStreamFieldError(index int, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: index, Reason: reason}
}

// UpstreamError is a failure reported by, or on the way to, the discovery service
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("discovery request failed with status %d: %s", e.StatusCode, e.Message)
	case e.Err != nil && e.Message == "":
		return fmt.Sprintf("discovery request failed: %s", e.Err)
	default:
		return e.Message
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// InternalError is the fallback when no recognised response path matched
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}

const (
	ErrorTypeValidation = "validation"
	ErrorTypeUpstream   = "upstream"
	ErrorTypeInternal   = "internal"
	ErrorTypeCancelled  = "cancelled"
)

// Classify maps err onto the error taxonomy; anything unrecognised is internal
func Classify(err error) string {
	var (
		validationErr *ValidationError
		upstreamErr   *UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrorTypeValidation
	case errors.As(err, &upstreamErr):
		return ErrorTypeUpstream
	case errors.Is(err, context.Canceled):
		return ErrorTypeCancelled
	default:
		return ErrorTypeInternal
	}
}
