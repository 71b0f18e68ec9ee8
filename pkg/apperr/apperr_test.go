package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(Authorization, "not allowed")
	assert.Equal(t, Authorization, KindOf(err))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, Authorization, KindOf(wrapped))

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(New(Authentication, "no token")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(New(Authorization, "denied")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(NotFound, "gone")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(New(Validation, "bad email")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(Upstream, "api down")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Upstream, "admin API request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "admin API request failed")
	assert.Contains(t, err.Error(), "connection refused")
}
