package service

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error kinds returned by every service. Callers match them with errors.Is;
// detail is attached by wrapping.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrStorageFailure = errors.New("storage failure")
)

var (
	ErrIDRequired = fmt.Errorf("%w: id is required", ErrInvalidInput)
	ErrReaderNil  = fmt.Errorf("%w: reader is nil", ErrInvalidInput)
)

var tracer = otel.Tracer("docvault/internal/service")

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

func invalidInput(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, a...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
