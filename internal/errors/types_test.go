package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrCodeChatNotFound, "The specified chat could not be found."),
			expected: "CHAT_NOT_FOUND: The specified chat could not be found.",
		},
		{
			name:     "with cause",
			err:      Wrap(errors.New("disk full"), ErrCodeDatabaseQuery, "database insert failed"),
			expected: "DATABASE_QUERY: database insert failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, ErrCodeInternalSimulation, "store corrupted")

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := New(ErrCodeInvalidParameter, "bad").
		WithContext("parameter", "limit").
		WithContext("value", -1)

	require.Len(t, err.Context, 2)
	assert.Equal(t, "limit", err.Context["parameter"])
	assert.Equal(t, -1, err.Context["value"])
}

func TestAs(t *testing.T) {
	inner := NewChatNotFoundError("1@s.whatsapp.net")
	wrapped := fmt.Errorf("lookup: %w", inner)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, appErr)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodePagination, GetCode(NewPaginationError(3, 10, 5)))
	assert.Equal(t, ErrCodeInternalSimulation, GetCode(errors.New("plain")))
	assert.True(t, HasCode(fmt.Errorf("x: %w", NewInvalidSortByError("age")), ErrCodeInvalidSortBy))
	assert.False(t, HasCode(nil, ErrCodeInvalidSortBy))
}

func TestGetUserMessage(t *testing.T) {
	assert.Equal(t, "The requested page number is out of range.", GetUserMessage(NewPaginationError(1, 1, 1)))
	assert.Equal(t, "Configuration error", GetUserMessage(NewConfigError("server.port", "bad port")))
	assert.Equal(t, "An internal error occurred", GetUserMessage(errors.New("boom")))
}
