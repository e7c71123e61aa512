// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// that is never allowed, such as deleting the default space, or an
// operation on a reservation owned by another club. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a space that still has reservations. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per table.
var (
    ErrReservationNotFound = errors.New("reservation not found")
    ErrSpaceNotFound       = errors.New("space not found")
    ErrClubNotFound        = errors.New("club not found")
)

// ErrEmailExists is returned when a club is created with an email that
// is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrReservedName is returned when a space other than the default one is
// created with, or renamed to, the default space's name.
var ErrReservedName = errors.New("space name is reserved")
