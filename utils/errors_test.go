package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrRoomFull))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrInvalidState))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrAlreadyProcessed))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrVersionConflict))
	assert.Equal(t, http.StatusGone, HTTPStatus(ErrInviteExpired))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("accepting invite: %w", ErrInviteExpired)
	assert.Equal(t, http.StatusGone, HTTPStatus(wrapped))
}
