package domain

import "errors"

var (
	// ErrQuizNotFound is returned when a quiz id has no record.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrMissingField is returned when a create request omits the title, document link, or type.
	ErrMissingField = errors.New("missing required field")
	// ErrUnauthorized is returned when a callback carries a bad or absent secret.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnauthenticated is returned when a request has no valid user identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmptyResponse indicates the model returned no text at all.
	ErrEmptyResponse = errors.New("empty response")
	// ErrInvalidOutput indicates the model output could not be repaired into questions.
	ErrInvalidOutput = errors.New("invalid output")
	// ErrUnrecoverable is returned when every repair strategy has been exhausted.
	ErrUnrecoverable = errors.New("unrecoverable response")
)
