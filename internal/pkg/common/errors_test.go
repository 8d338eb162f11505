package common

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomError_Is(t *testing.T) {
	err := ErrInvalidInput.Wrap(io.EOF)

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, io.EOF))
	assert.False(t, errors.Is(err, ErrMalformedOutput))
	assert.Equal(t, "Please provide a valid list of ingredients: EOF", err.Error())

	// 預定義錯誤不可被修改
	assert.Nil(t, ErrInvalidInput.Err)
}

func TestCustomError_WithMessage(t *testing.T) {
	err := ErrInvalidInput.Wrap(io.EOF).WithMessage("ingredients is required")

	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "ingredients is required", err.Message)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCustomError_Response(t *testing.T) {
	err := ErrGenerationFailed.Wrap(errors.New("status 500"))

	assert.Equal(t, ErrorResponse{Code: ErrCodeGenerationFailed, Message: ErrGenerationFailed.Message}, err.Response(false))
	assert.Equal(t, "status 500", err.Response(true).Details)
}

func TestAsCustomError(t *testing.T) {
	assert.Nil(t, AsCustomError(nil))

	wrapped := fmt.Errorf("phase generate: %w", ErrMalformedOutput)
	assert.Same(t, ErrMalformedOutput, AsCustomError(wrapped))

	unknown := AsCustomError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternalError, unknown.Code)
	assert.Equal(t, http.StatusInternalServerError, unknown.Status)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("servings", "servings must be at least 1")

	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidationError(io.EOF))
	assert.EqualError(t, err, "servings must be at least 1")
}
