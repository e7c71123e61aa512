package model

import (
    "fmt"
    "time"
)

// Reservation status values.  Status is compared case-sensitively and no
// other value may be stored.
const (
    StatusPending  = "pending"
    StatusApproved = "approved"
    StatusRejected = "rejected"
)

// Statuses lists the three valid reservation statuses in display order.
var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

// ValidStatus reports whether s is exactly one of the known statuses.
func ValidStatus(s string) bool {
    switch s {
    case StatusPending, StatusApproved, StatusRejected:
        return true
    }
    return false
}

// Reservation records a club's request to book a space for a time range.
// It is created as pending and moved between statuses by administrators
// without restriction.
//
// Fields:
//  ID          – primary key identifier.
//  SpaceID     – space being booked; immutable after creation.
//  ClubID      – club that owns the reservation; immutable after creation.
//  Title       – short non-empty title shown on calendars.
//  Description – optional free text, empty by default.
//  StartTime   – start of the booking.
//  EndTime     – end of the booking (after StartTime).
//  IsFullDay   – explicit full-day flag; see display.IsFullDay for the
//                legacy 00:00–23:59 inference.
//  Status      – pending, approved or rejected.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
    ID          uint64    `json:"id"`           // reservations.id
    SpaceID     uint64    `json:"space_id"`     // reservations.space_id
    ClubID      uint64    `json:"club_id"`      // reservations.club_id
    Title       string    `json:"title"`        // reservations.title
    Description string    `json:"description"`  // reservations.description
    StartTime   time.Time `json:"start_time"`   // reservations.start_time
    EndTime     time.Time `json:"end_time"`     // reservations.end_time
    IsFullDay   bool      `json:"is_full_day"`  // reservations.is_full_day
    Status      string    `json:"status"`       // reservations.status
    CreatedAt   time.Time `json:"created_at"`   // reservations.created_at
    UpdatedAt   time.Time `json:"updated_at"`   // reservations.updated_at
}

// MalformedRecordError marks a stored reservation whose timestamps cannot
// be used.  It is scoped to one record.
type MalformedRecordError struct {
    ID     uint64
    Reason string
}

func (e *MalformedRecordError) Error() string {
    return fmt.Sprintf("reservation %d is malformed: %s", e.ID, e.Reason)
}

// CheckTimes returns a *MalformedRecordError when the start or end time is
// missing, and nil otherwise.
func (r Reservation) CheckTimes() error {
    switch {
    case r.StartTime.IsZero():
        return &MalformedRecordError{ID: r.ID, Reason: "missing start_time"}
    case r.EndTime.IsZero():
        return &MalformedRecordError{ID: r.ID, Reason: "missing end_time"}
    }
    return nil
}

// ReservationPatch carries the mutable fields of a reservation.  Nil
// pointers leave the stored value untouched.
type ReservationPatch struct {
    Title       *string
    Description *string
    Status      *string
}

// Empty reports whether the patch changes nothing.
func (p ReservationPatch) Empty() bool {
    return p.Title == nil && p.Description == nil && p.Status == nil
}

// ReservationFilter narrows reservation selects and counts.  Zero values
// mean "any".
type ReservationFilter struct {
    ClubID  uint64
    SpaceID uint64
    Status  string
}
