package service

import (
    "context"
    "errors"
    "strconv"
    "strings"
    "time"

    "github.com/iliyamo/club-space-reservation/internal/logger"
    "github.com/iliyamo/club-space-reservation/internal/model"
    "github.com/iliyamo/club-space-reservation/internal/queue"
    "github.com/iliyamo/club-space-reservation/internal/repository"
)

// publishTimeout bounds the best-effort event fan-out after a mutation.
const publishTimeout = 3 * time.Second

// CreateReservationInput is the payload of Create.  ClubID comes from the
// caller's session, never from the request body.
type CreateReservationInput struct {
    SpaceID     uint64     `json:"space_id" validate:"required"`
    ClubID      uint64     `json:"club_id" validate:"required"`
    Title       string     `json:"title" validate:"required,max=200"`
    Description string     `json:"description" validate:"max=2000"`
    StartTime   *time.Time `json:"start_time" validate:"required"`
    EndTime     *time.Time `json:"end_time" validate:"required"`
    IsFullDay   bool       `json:"is_full_day"`
}

// EditDetailsInput carries the two fields a club may change after
// creation.  Nil means "leave as is".
type EditDetailsInput struct {
    Title       *string `json:"title" validate:"omitempty,max=200"`
    Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ReservationService implements the reservation lifecycle.
type ReservationService struct {
    reservations ReservationStore
    spaces       SpaceStore
    clubs        ClubStore
    events       EventSink
    log          *logger.Logger
    now          func() time.Time
}

// NewReservationService wires the service.  events and log may be nil.
func NewReservationService(reservations ReservationStore, spaces SpaceStore, clubs ClubStore, events EventSink, log *logger.Logger) *ReservationService {
    if log == nil {
        log = logger.Nop()
    }
    return &ReservationService{
        reservations: reservations,
        spaces:       spaces,
        clubs:        clubs,
        events:       events,
        log:          log,
        now:          time.Now,
    }
}

// WithClock replaces the time source; used by tests.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
    s.now = now
    return s
}

// Create validates in and stores a new pending reservation.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (model.Reservation, error) {
    in.Title = strings.TrimSpace(in.Title)
    if err := Validate(in); err != nil {
        return model.Reservation{}, err
    }
    if !in.EndTime.After(*in.StartTime) {
        return model.Reservation{}, invalid("end_time", "end_time must be after start_time")
    }
    if _, err := s.spaces.GetByID(ctx, in.SpaceID); err != nil {
        if errors.Is(err, repository.ErrSpaceNotFound) {
            return model.Reservation{}, invalid("space_id", "space does not exist")
        }
        return model.Reservation{}, err
    }
    if _, err := s.clubs.GetByID(ctx, in.ClubID); err != nil {
        if errors.Is(err, repository.ErrClubNotFound) {
            return model.Reservation{}, invalid("club_id", "club does not exist")
        }
        return model.Reservation{}, err
    }

    res := model.Reservation{
        SpaceID:     in.SpaceID,
        ClubID:      in.ClubID,
        Title:       in.Title,
        Description: in.Description,
        StartTime:   in.StartTime.UTC(),
        EndTime:     in.EndTime.UTC(),
        IsFullDay:   in.IsFullDay,
        Status:      model.StatusPending,
        CreatedAt:   s.now().UTC(),
    }
    if err := s.reservations.Insert(ctx, &res); err != nil {
        return model.Reservation{}, err
    }
    s.log.LogReservation("CREATE", res.ID, "club "+strconv.FormatUint(res.ClubID, 10)+" requested "+res.Title)

    ev := queue.NewEvent(queue.EventCreated, s.now())
    ev.ReservationID, ev.ClubID, ev.SpaceID, ev.Title = res.ID, res.ClubID, res.SpaceID, res.Title
    ev.NewStatus = res.Status
    s.publish(ctx, ev)
    return res, nil
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, id uint64) (model.Reservation, error) {
    res, err := s.reservations.GetByID(ctx, id)
    if err != nil {
        return model.Reservation{}, notFound(err, id)
    }
    return res, nil
}

// GetOwned returns a reservation only if clubID owns it.
func (s *ReservationService) GetOwned(ctx context.Context, id, clubID uint64) (model.Reservation, error) {
    res, err := s.Get(ctx, id)
    if err != nil {
        return model.Reservation{}, err
    }
    if res.ClubID != clubID {
        return model.Reservation{}, repository.ErrForbidden
    }
    return res, nil
}

// List returns the reservations matching f, newest first.
func (s *ReservationService) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
    return s.reservations.List(ctx, f)
}

// SetStatus moves a reservation to status.  Only the exact literals
// pending, approved and rejected are accepted.  Any transition is allowed
// and setting the current status again succeeds without a write.
func (s *ReservationService) SetStatus(ctx context.Context, id uint64, status string) (model.Reservation, error) {
    if !model.ValidStatus(status) {
        return model.Reservation{}, invalid("status", "status must be one of pending, approved, rejected")
    }
    current, err := s.reservations.GetByID(ctx, id)
    if err != nil {
        return model.Reservation{}, notFound(err, id)
    }
    if current.Status == status {
        return current, nil
    }
    updated, err := s.reservations.UpdateFields(ctx, id, model.ReservationPatch{Status: &status})
    if err != nil {
        return model.Reservation{}, notFound(err, id)
    }
    s.log.LogReservation("STATUS", id, current.Status+" -> "+status)

    ev := queue.NewEvent(queue.EventStatusChanged, s.now())
    ev.ReservationID, ev.ClubID, ev.SpaceID, ev.Title = updated.ID, updated.ClubID, updated.SpaceID, updated.Title
    ev.OldStatus, ev.NewStatus = current.Status, updated.Status
    s.publish(ctx, ev)
    return updated, nil
}

// EditDetails updates title and/or description and nothing else.
func (s *ReservationService) EditDetails(ctx context.Context, id uint64, in EditDetailsInput) (model.Reservation, error) {
    if in.Title != nil {
        t := strings.TrimSpace(*in.Title)
        if t == "" {
            return model.Reservation{}, invalid("title", "title must not be empty")
        }
        in.Title = &t
    }
    if err := Validate(in); err != nil {
        return model.Reservation{}, err
    }
    updated, err := s.reservations.UpdateFields(ctx, id, model.ReservationPatch{
        Title:       in.Title,
        Description: in.Description,
    })
    if err != nil {
        return model.Reservation{}, notFound(err, id)
    }
    if in.Title == nil && in.Description == nil {
        return updated, nil
    }
    s.log.LogReservation("UPDATE", id, "details edited")

    ev := queue.NewEvent(queue.EventUpdated, s.now())
    ev.ReservationID, ev.ClubID, ev.SpaceID, ev.Title = updated.ID, updated.ClubID, updated.SpaceID, updated.Title
    s.publish(ctx, ev)
    return updated, nil
}

// Delete permanently removes a reservation.  Who may call it is decided
// by the caller.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
    current, err := s.reservations.GetByID(ctx, id)
    if err != nil {
        return notFound(err, id)
    }
    if err := s.reservations.Delete(ctx, id); err != nil {
        return notFound(err, id)
    }
    s.log.LogReservation("DELETE", id, "removed")

    ev := queue.NewEvent(queue.EventDeleted, s.now())
    ev.ReservationID, ev.ClubID, ev.SpaceID, ev.Title = current.ID, current.ClubID, current.SpaceID, current.Title
    ev.OldStatus = current.Status
    s.publish(ctx, ev)
    return nil
}

// BulkDeleteByStatus removes every reservation in status and returns how
// many were deleted.
func (s *ReservationService) BulkDeleteByStatus(ctx context.Context, status string) (int64, error) {
    if !model.ValidStatus(status) {
        return 0, invalid("status", "status must be one of pending, approved, rejected")
    }
    n, err := s.reservations.DeleteByStatus(ctx, status)
    if err != nil {
        return 0, err
    }
    if n == 0 {
        return 0, nil
    }
    s.log.Infof("RESERVATION", "bulk deleted %d %s reservations", n, status)

    ev := queue.NewEvent(queue.EventBulkDeleted, s.now())
    ev.NewStatus, ev.Count = status, n
    s.publish(ctx, ev)
    return n, nil
}

// publish is best effort: the mutation is already stored, so a broker
// failure is logged and swallowed.
func (s *ReservationService) publish(ctx context.Context, ev queue.ReservationEvent) {
    if s.events == nil {
        return
    }
    pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
    defer cancel()
    if err := s.events.Publish(pctx, ev); err != nil {
        s.log.Warnf("QUEUE", "event %s for reservation %d not delivered: %v", ev.Type, ev.ReservationID, err)
    }
}
