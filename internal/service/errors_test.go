package service

import (
	"errors"
	"testing"

	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ServiceError
		expected string
	}{
		{
			name:     "with underlying error",
			err:      NewServiceError("create task", "failed to save task", errors.New("connection reset")),
			expected: "create task failed: failed to save task: connection reset",
		},
		{
			name:     "without underlying error",
			err:      NewServiceError("logout", "failed to remove token", nil),
			expected: "logout failed: failed to remove token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	err := NewServiceError("get task", "failed to retrieve task", store.ErrTaskNotFound)

	assert.True(t, errors.Is(err, store.ErrTaskNotFound))
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, store.ErrUserNotFound))

	var wrapped error = err
	var serviceErr *ServiceError
	require.True(t, errors.As(wrapped, &serviceErr))
	assert.Equal(t, "get task", serviceErr.Operation)

	assert.Nil(t, NewServiceError("noop", "nothing", nil).Unwrap())
}
