package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.Validation, apperr.KindOf(apperr.Validationf("bad input")))
	assert.Equal(t, apperr.Conflict, apperr.KindOf(apperr.Conflictf("busy")))
	assert.Equal(t, apperr.Internal, apperr.KindOf(errors.New("plain error")))
	assert.Equal(t, apperr.Internal, apperr.KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := apperr.NotFoundf("submission 7 not found")
	wrapped := fmt.Errorf("while loading: %w", inner)

	assert.Equal(t, apperr.NotFound, apperr.KindOf(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.NotFound))
	assert.False(t, apperr.IsKind(wrapped, apperr.Conflict))
}

func TestUpstreamPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Upstreamf(cause, "scoring failed for submission %d", 9)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "UPSTREAM")
	assert.Contains(t, err.Error(), "scoring failed for submission 9")
}
