/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a room code has no live room.
	ErrNotFound = errors.New("room not found")

	// ErrJoinRejected is returned when a new player tries to join a room
	// that is mid-round.
	ErrJoinRejected = errors.New("game already started")

	// ErrStartRejected is returned when a round cannot be started.
	ErrStartRejected = errors.New("cannot start game")
)

// ValidationError reports the first input constraint a request violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
