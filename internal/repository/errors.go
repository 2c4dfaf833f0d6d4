// Package repository defines the storage contracts for users and the
// transaction ledger, a mutex-guarded in-memory implementation seeded with
// mock data, and database/sql implementations.  The sentinel values below
// allow higher layers such as the session manager and handlers to
// distinguish between failure scenarios.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the lookup key.
// Handlers should translate this into an HTTP 404 response.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when inserting a user whose id or mobile
// number is already taken.  Handlers should translate this into an
// HTTP 409 response.
var ErrUserExists = errors.New("user already exists")

// ErrForbidden is returned when the caller attempts an operation its role
// does not permit. Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict signals that an operation cannot proceed because of
// conflicting state. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
