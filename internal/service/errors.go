package service

import (
    "errors"
    "fmt"

    "github.com/iliyamo/club-space-reservation/internal/repository"
)

// ValidationError reports missing or invalid input to a lifecycle
// operation.  Field is the JSON name of the offending input, empty when
// the error is not tied to a single field.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Message
    }
    return e.Field + ": " + e.Message
}

func invalid(field, msg string) *ValidationError {
    return &ValidationError{Field: field, Message: msg}
}

// NotFoundError reports that an operation targeted an id that does not
// exist.
type NotFoundError struct {
    Resource string
    ID       uint64
}

func (e *NotFoundError) Error() string {
    return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// notFound converts the repository sentinels into a NotFoundError and
// passes every other error through.
func notFound(err error, id uint64) error {
    switch {
    case errors.Is(err, repository.ErrReservationNotFound):
        return &NotFoundError{Resource: "reservation", ID: id}
    case errors.Is(err, repository.ErrSpaceNotFound):
        return &NotFoundError{Resource: "space", ID: id}
    case errors.Is(err, repository.ErrClubNotFound):
        return &NotFoundError{Resource: "club", ID: id}
    }
    return err
}

// IsValidation and IsNotFound are shorthands for errors.As at the handler
// boundary.
func IsValidation(err error) (*ValidationError, bool) {
    var ve *ValidationError
    ok := errors.As(err, &ve)
    return ve, ok
}

func IsNotFound(err error) bool {
    var nf *NotFoundError
    return errors.As(err, &nf)
}
