package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsSentinelIdentity(t *testing.T) {
	wrapped := ErrLimitExceeded.WithInternal(fmt.Errorf("requested 2000, ceiling 1000"))

	assert.ErrorIs(t, wrapped, ErrLimitExceeded)
	assert.Contains(t, wrapped.Error(), "ceiling 1000")
	assert.Nil(t, ErrLimitExceeded.Internal, "the sentinel itself is untouched")
}

func TestFromError(t *testing.T) {
	appErr := FromError(ErrNotConfigured)
	assert.Equal(t, ErrNotConfigured.Code, appErr.Code)

	generic := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternalServer.Code, generic.Code)
	assert.Equal(t, http.StatusInternalServerError, generic.StatusCode)

	assert.Nil(t, FromError(nil))
}

func TestUnwrapExposesInternal(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	wrapped := Wrap(inner, "store unreachable")

	require.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "store unreachable: dial tcp: refused", wrapped.Error())
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("days must be positive")

	assert.Equal(t, ErrBadRequest.Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "days must be positive", err.Message)
}
