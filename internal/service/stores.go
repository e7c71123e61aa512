// Package service holds the reservation lifecycle and dashboard logic.
// It talks to storage through the small interfaces below, which both the
// MySQL repositories and the in-memory store satisfy.
package service

import (
    "context"
    "time"

    "github.com/iliyamo/club-space-reservation/internal/model"
    "github.com/iliyamo/club-space-reservation/internal/queue"
)

// ReservationStore is the reservation record store.
type ReservationStore interface {
    Insert(ctx context.Context, res *model.Reservation) error
    GetByID(ctx context.Context, id uint64) (model.Reservation, error)
    UpdateFields(ctx context.Context, id uint64, patch model.ReservationPatch) (model.Reservation, error)
    Delete(ctx context.Context, id uint64) error
    DeleteByStatus(ctx context.Context, status string) (int64, error)
    List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
    Count(ctx context.Context, f model.ReservationFilter) (int64, error)
}

// SpaceStore is the space reference store.
type SpaceStore interface {
    List(ctx context.Context) ([]model.Space, error)
    GetByID(ctx context.Context, id uint64) (model.Space, error)
    Create(ctx context.Context, s *model.Space) error
    Update(ctx context.Context, s *model.Space) error
    Delete(ctx context.Context, id uint64) error
    EnsureDefault(ctx context.Context) (model.Space, error)
}

// ClubStore is the club reference store.
type ClubStore interface {
    GetByID(ctx context.Context, id uint64) (model.Club, error)
    GetByEmail(ctx context.Context, email string) (model.Club, error)
    List(ctx context.Context) ([]model.Club, error)
    Create(ctx context.Context, c *model.Club) error
    UpdateStatus(ctx context.Context, id uint64, status string) (model.Club, error)
    TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// EventSink receives lifecycle events after the mutation is persisted.
type EventSink interface {
    Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Sinks fans an event out to every sink.  All sinks are called; the first
// error is returned.
type Sinks []EventSink

func (s Sinks) Publish(ctx context.Context, ev queue.ReservationEvent) error {
    var first error
    for _, sink := range s {
        if sink == nil {
            continue
        }
        if err := sink.Publish(ctx, ev); err != nil && first == nil {
            first = err
        }
    }
    return first
}
