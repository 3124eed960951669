// Package store persists users, sessions, and thumbnail generation
// records in an embedded Badger database.
package store

import "errors"

// Sentinel errors returned by store operations. Services translate
// these into domain errors with codes; the store itself stays
// transport-agnostic.
var (
	// ErrNotFound is returned when a record cannot be found by key.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a create would overwrite an
	// existing record or claim a taken unique index.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrEmailExists is returned when a user create or update would
	// reuse an email address already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)
