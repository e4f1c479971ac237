package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"marked", NewTransientError(errors.New("overloaded"), 503), true},
		{"wrapped", fmt.Errorf("call: %w", NewTransientError(errors.New("rate limited"), 429)), true},
		{"plain", errors.New("invalid input"), false},
		{"cancelled", NewTransientError(fmt.Errorf("send: %w", context.Canceled), 0), false},
		{"deadline", NewTransientError(context.DeadlineExceeded, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner, 502)
	assert.Equal(t, "inner", te.Error())
	assert.ErrorIs(t, te, inner)
	assert.Equal(t, 502, te.StatusCode)
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 425, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422, 501, 505} {
		assert.False(t, IsTransientHTTPStatus(code), "code %d", code)
	}
}
