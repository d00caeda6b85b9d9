package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeExceeded(t *testing.T) {
	err := RangeExceeded(150)

	assert.Equal(t, CodeRangeExceeded, err.Code)
	assert.Equal(t, "Percentage range is exceeded. It should be within 0-100, but got 150", err.Message)
	assert.Nil(t, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestRangeExceededFractionalValue(t *testing.T) {
	err := RangeExceeded(100.5)

	assert.Contains(t, err.Message, "but got 100.5")
}

func TestMissingJSONContentType(t *testing.T) {
	err := MissingJSONContentType()

	assert.Equal(t, CodeMissingJSONContentType, err.Code)
	assert.Contains(t, err.Message, "application/json")
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestJSONDeserialization(t *testing.T) {
	cause := fmt.Errorf("unknown field")
	err := JSONDeserialization("request body does not match schema", cause)

	assert.Equal(t, CodeJSONDeserialization, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestJSONValidity(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := JSONValidity(cause)

	assert.Equal(t, CodeJSONValidity, err.Code)
	assert.Contains(t, err.Message, "unexpected end of JSON input")
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestBuffer(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Buffer(cause)

	assert.Equal(t, CodeBuffer, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestUnknown(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Unknown(cause)

	assert.Equal(t, CodeUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "boom")
}

func TestErrorStringWithAndWithoutCause(t *testing.T) {
	withCause := JSONValidity(fmt.Errorf("bad token"))
	assert.Contains(t, withCause.Error(), "JSON_VALIDITY_ERROR")
	assert.Contains(t, withCause.Error(), "bad token")

	withoutCause := MissingJSONContentType()
	assert.Contains(t, withoutCause.Error(), "MISSING_JSON_CONTENT_TYPE")
	assert.NotContains(t, withoutCause.Error(), "<nil>")
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Buffer(cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestToResponse(t *testing.T) {
	err := RangeExceeded(101)
	resp := err.ToResponse()

	assert.Equal(t, CodeRangeExceeded, resp.Error.Code)
	assert.Equal(t, err.Message, resp.Error.Message)
}

func TestAsErrorWithStructuredError(t *testing.T) {
	original := MissingJSONContentType()
	assert.Equal(t, original, AsError(original))
}

func TestAsErrorWithWrappedStructuredError(t *testing.T) {
	original := RangeExceeded(200)
	wrapped := fmt.Errorf("wrapped: %w", original)

	result := AsError(wrapped)
	require.NotNil(t, result)
	assert.Equal(t, CodeRangeExceeded, result.Code)
}

func TestAsErrorWithStandardError(t *testing.T) {
	result := AsError(fmt.Errorf("plain failure"))

	require.NotNil(t, result)
	assert.Equal(t, CodeUnknown, result.Code)
	assert.Equal(t, http.StatusInternalServerError, result.HTTPStatus())
}

func TestAsErrorWithNil(t *testing.T) {
	assert.Nil(t, AsError(nil))
}
