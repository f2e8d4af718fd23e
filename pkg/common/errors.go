package common

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorKind classifies failures for structured error output. Only
// KindInputValidation is fatal to a claim run; everything else degrades to
// a documented default inside the pipeline.
type ErrorKind string

const (
	KindInputValidation     ErrorKind = "input_validation"
	KindMetadataUnavailable ErrorKind = "metadata_unavailable"
	KindExternalService     ErrorKind = "external_service"
	KindGeometryInvalid     ErrorKind = "geometry_invalid"
	KindInternal            ErrorKind = "internal"
)

// AppError is the single error shape surfaced on the CLI stderr stream and
// in HTTP error responses.
type AppError struct {
	Kind    ErrorKind `json:"error"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Wrap attaches the underlying cause so callers can reach it through
// errors.Is and errors.As.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// JSON renders the error as a compact JSON document.
func (e *AppError) JSON() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"error":"internal","message":"failed to encode error"}`)
	}
	return b
}

// NewInputValidationError reports a malformed argument or missing input file.
func NewInputValidationError(message string, details ...string) *AppError {
	return newError(KindInputValidation, message, details)
}

// NewMetadataUnavailableError reports missing or undecodable image metadata.
func NewMetadataUnavailableError(message string, details ...string) *AppError {
	return newError(KindMetadataUnavailable, message, details)
}

// NewExternalServiceError reports a failed external provider call.
func NewExternalServiceError(message string, details ...string) *AppError {
	return newError(KindExternalService, message, details)
}

// NewGeometryInvalidError reports an unusable parcel geometry.
func NewGeometryInvalidError(message string, details ...string) *AppError {
	return newError(KindGeometryInvalid, message, details)
}

// NewInternalError reports an unexpected failure caught at the top level.
func NewInternalError(message string, details ...string) *AppError {
	return newError(KindInternal, message, details)
}

func newError(kind ErrorKind, message string, details []string) *AppError {
	e := &AppError{Kind: kind, Message: message}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// HTTPStatus maps an error kind to an HTTP status code.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindInputValidation:
		return http.StatusBadRequest
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes an AppError to a gin context.
func ErrorResponse(c *gin.Context, err *AppError) {
	c.JSON(err.HTTPStatus(), err)
}
