// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer that use them.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// ReservationQueue is the durable queue every lifecycle event is routed to.
const ReservationQueue = "reservation.events"

// Event types.
const (
    EventCreated       = "reservation.created"
    EventStatusChanged = "reservation.status_changed"
    EventUpdated       = "reservation.updated"
    EventDeleted       = "reservation.deleted"
    EventBulkDeleted   = "reservation.bulk_deleted"
)

// ReservationEvent is published after a reservation mutation is persisted.
// It carries enough information for downstream consumers to audit or
// notify without querying the primary database.
//
// Fields:
//   - EventID: random id, also used as the AMQP message id.
//   - Type: one of the Event* constants.
//   - ReservationID/ClubID/SpaceID: zero for bulk deletes.
//   - OldStatus/NewStatus: set for status changes; NewStatus is the
//     deleted status for bulk deletes.
//   - Count: number of records removed by a bulk delete.
type ReservationEvent struct {
    EventID       string    `json:"event_id"`
    Type          string    `json:"type"`
    ReservationID uint64    `json:"reservation_id,omitempty"`
    ClubID        uint64    `json:"club_id,omitempty"`
    SpaceID       uint64    `json:"space_id,omitempty"`
    Title         string    `json:"title,omitempty"`
    OldStatus     string    `json:"old_status,omitempty"`
    NewStatus     string    `json:"new_status,omitempty"`
    Count         int64     `json:"count,omitempty"`
    OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent stamps a fresh event id and the occurrence time.
func NewEvent(typ string, at time.Time) ReservationEvent {
    return ReservationEvent{
        EventID:    uuid.NewString(),
        Type:       typ,
        OccurredAt: at.UTC(),
    }
}
