package utils

import (
	"errors"
	"net/http"
)

// Error taxonomy shared by every session operation. Nothing here is fatal:
// services fail the single operation, report one of these, and leave the
// shared record untouched so the caller can retry or inform the user.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state for this action")
	ErrUnauthorized     = errors.New("not allowed to perform this action")
	ErrRoomFull         = errors.New("room is full")
	ErrInviteExpired    = errors.New("invite has expired")
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrVersionConflict means a concurrent writer changed the room between
	// our read and our write. No automatic retry is performed.
	ErrVersionConflict = errors.New("concurrent update, please retry")
)

// HTTPStatus maps a taxonomy error to the status code controllers answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrInvalidState), errors.Is(err, ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, ErrInviteExpired):
		return http.StatusGone
	case errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
