package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeParse, "failed to parse file")
	assert.Equal(t, "[PARSE_ERROR] failed to parse file", err.Error())

	cause := errors.New("unexpected EOF")
	wrapped := NewDomainErrorWithCause(ErrCodeParse, "failed to parse file", cause)
	assert.Equal(t, "[PARSE_ERROR] failed to parse file: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestDomainError_IsMatchesSentinel(t *testing.T) {
	err := Wrap(ErrEmbeddingService, errors.New("503"))
	assert.ErrorIs(t, err, ErrEmbeddingService)
	assert.NotErrorIs(t, err, ErrGenerationService)

	outer := fmt.Errorf("retrieve: %w", err)
	assert.ErrorIs(t, outer, ErrEmbeddingService)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodePersistence, CodeOf(fmt.Errorf("x: %w", ErrPersistence)))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}
