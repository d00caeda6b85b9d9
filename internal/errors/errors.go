// Package errors provides structured request errors with machine-readable
// codes and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error code surfaced to clients.
type Code string

const (
	// CodeRangeExceeded indicates a percentage outside [0,100].
	CodeRangeExceeded Code = "RANGE_EXCEEDED_ERROR"
	// CodeMissingJSONContentType indicates a request without an
	// application/json Content-Type header.
	CodeMissingJSONContentType Code = "MISSING_JSON_CONTENT_TYPE"
	// CodeJSONDeserialization indicates syntactically valid JSON that does
	// not match the expected schema.
	CodeJSONDeserialization Code = "JSON_DESERIALIZATION_ERROR"
	// CodeJSONValidity indicates malformed JSON.
	CodeJSONValidity Code = "JSON_VALIDITY_ERROR"
	// CodeBuffer indicates a failure reading the request body.
	CodeBuffer Code = "BUFFER_ERROR"
	// CodeUnknown is the catch-all for unclassified failures.
	CodeUnknown Code = "UNKNOWN_ERROR"
)

// Error is a structured request error. All codes except CodeUnknown are
// client faults and map to HTTP 400.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeUnknown {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// Detail is the wire form of an error inside the response envelope.
type Detail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Response is the error envelope sent to clients.
type Response struct {
	Error Detail `json:"error"`
}

// ToResponse converts the error to its wire envelope.
func (e *Error) ToResponse() Response {
	return Response{Error: Detail{Code: e.Code, Message: e.Message}}
}

// RangeExceeded creates the error for a percentage outside [0,100].
func RangeExceeded(got float64) *Error {
	return &Error{
		Code:    CodeRangeExceeded,
		Message: fmt.Sprintf("Percentage range is exceeded. It should be within 0-100, but got %v", got),
	}
}

// MissingJSONContentType creates the error for a non-JSON Content-Type.
func MissingJSONContentType() *Error {
	return &Error{
		Code:    CodeMissingJSONContentType,
		Message: "Missing or invalid Content-Type header. Expected 'application/json'",
	}
}

// JSONDeserialization creates the error for schema-mismatched JSON.
func JSONDeserialization(message string, cause error) *Error {
	return &Error{Code: CodeJSONDeserialization, Message: message, Cause: cause}
}

// JSONValidity creates the error for syntactically malformed JSON.
func JSONValidity(cause error) *Error {
	return &Error{
		Code:    CodeJSONValidity,
		Message: fmt.Sprintf("Request body is not valid JSON: %v", cause),
		Cause:   cause,
	}
}

// Buffer creates the error for a request body read failure.
func Buffer(cause error) *Error {
	return &Error{
		Code:    CodeBuffer,
		Message: "Failed to read request body",
		Cause:   cause,
	}
}

// Unknown wraps an unclassified failure.
func Unknown(cause error) *Error {
	return &Error{
		Code:    CodeUnknown,
		Message: "An unexpected error occured",
		Cause:   cause,
	}
}

// AsError converts any error into a structured Error. If err is already
// an *Error it is returned unchanged; otherwise it becomes CodeUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}

	return Unknown(err)
}
