package services

import "fmt"

// The service layer reports failures through these four types so the
// controllers can map them to HTTP statuses without inspecting
// strings. Anything else bubbling up is treated as an internal error.

// ValidationError marks malformed or out-of-range input, with the
// offending field when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFoundError marks an unknown meal/claim/user id.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// PermissionError marks an actor that is not the owner or lacks the
// required role. Distinct from NotFoundError on purpose.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// ConflictError marks a state conflict: duplicate claim, oversell,
// already-collected, cancelled.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
