package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	code string
}

func (e *codedError) Error() string     { return "coded: " + e.code }
func (e *codedError) ErrorCode() string { return e.code }

func TestNew(t *testing.T) {
	err := New("test error")
	require.Error(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrap non-nil error", func(t *testing.T) {
		wrapped := Wrap(baseErr, "wrapped")
		require.Error(t, wrapped)
		assert.Equal(t, "wrapped: base error", wrapped.Error())
		assert.True(t, Is(wrapped, baseErr))
	})

	t.Run("wrap nil error", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "wrapped"))
	})
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", &codedError{code: "x"})

	var target *codedError
	require.True(t, As(err, &target))
	assert.Equal(t, "x", target.code)
}

func TestCodeOf(t *testing.T) {
	t.Run("coded error in chain", func(t *testing.T) {
		err := Wrap(&codedError{code: "cct_revoked"}, "guard")
		code, ok := CodeOf(err)
		assert.True(t, ok)
		assert.Equal(t, "cct_revoked", code)
	})

	t.Run("first coded error wins", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", &codedError{code: "invalid_cct"}, &codedError{code: "bad_signature"})
		code, ok := CodeOf(err)
		assert.True(t, ok)
		assert.Equal(t, "invalid_cct", code)
	})

	t.Run("plain error", func(t *testing.T) {
		code, ok := CodeOf(ErrForbidden)
		assert.False(t, ok)
		assert.Empty(t, code)
	})

	t.Run("nil error", func(t *testing.T) {
		_, ok := CodeOf(nil)
		assert.False(t, ok)
	})
}
