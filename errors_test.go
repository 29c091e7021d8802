package cryptex

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	t.Run("with name", func(t *testing.T) {
		err := &Error{Op: "register", Name: "openai_key", Err: ErrDuplicatePattern}
		assert.Equal(t, "cryptex: register openai_key: pattern already registered", err.Error())
	})

	t.Run("without name", func(t *testing.T) {
		err := &Error{Op: "sanitize", Err: ErrEngineClosed}
		assert.Equal(t, "cryptex: sanitize: engine closed", err.Error())
	})
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Op: "lookup", Name: "aws_key", Err: ErrPatternNotFound}

	assert.True(t, errors.Is(err, ErrPatternNotFound))
	assert.False(t, errors.Is(err, ErrInvalidPattern))

	// The sentinel survives additional wrapping.
	wrapped := fmt.Errorf("loading credentials: %w", err)
	assert.True(t, errors.Is(wrapped, ErrPatternNotFound))

	var cerr *Error
	require.True(t, errors.As(wrapped, &cerr))
	assert.Equal(t, "lookup", cerr.Op)
	assert.Equal(t, "aws_key", cerr.Name)
}

func TestErrorSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrPatternNotFound,
		ErrInvalidPattern,
		ErrInvalidPlaceholder,
		ErrInvalidName,
		ErrDuplicatePattern,
		ErrContextNotFound,
		ErrEngineClosed,
		ErrNoMatch,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
		}
	}
}
