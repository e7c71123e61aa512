package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/club-space-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  All
// timestamp fields are stored in UTC.  Foreign key discipline towards
// spaces and clubs is left to the database constraints.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, space_id, club_id, title, description, start_time, end_time,
                            is_full_day, status, created_at, updated_at`

type rowScanner interface {
    Scan(dest ...any) error
}

// scanReservation reads one row selected with reservationColumns.  NULL or
// zero start/end times are left as the zero time so analytics can report
// the record as malformed instead of guessing.
func scanReservation(row rowScanner) (model.Reservation, error) {
    var (
        res         model.Reservation
        description sql.NullString
        start, end  sql.NullTime
    )
    if err := row.Scan(
        &res.ID, &res.SpaceID, &res.ClubID, &res.Title, &description, &start, &end,
        &res.IsFullDay, &res.Status, &res.CreatedAt, &res.UpdatedAt,
    ); err != nil {
        return model.Reservation{}, err
    }
    res.Description = description.String
    if start.Valid {
        res.StartTime = start.Time.UTC()
    }
    if end.Valid {
        res.EndTime = end.Time.UTC()
    }
    return res, nil
}

// Insert stores a new reservation and populates its generated ID and
// timestamps by reading the row back.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (space_id, club_id, title, description, start_time, end_time, is_full_day, status, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    created := res.CreatedAt
    if created.IsZero() {
        created = time.Now()
    }
    result, err := r.db.ExecContext(ctx, q,
        res.SpaceID, res.ClubID, res.Title, res.Description,
        res.StartTime.UTC(), res.EndTime.UTC(), res.IsFullDay, res.Status, created.UTC(),
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    stored, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *res = stored
    return nil
}

// GetByID returns a single reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Reservation{}, ErrReservationNotFound
        }
        return model.Reservation{}, err
    }
    return res, nil
}

// UpdateFields writes only the non-nil fields of patch and returns the
// stored record.  Concurrent writers race; the last write wins.
func (r *ReservationRepo) UpdateFields(ctx context.Context, id uint64, patch model.ReservationPatch) (model.Reservation, error) {
    if patch.Empty() {
        return r.GetByID(ctx, id)
    }
    q, args := updateQuery(id, patch)
    result, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return model.Reservation{}, err
    }
    if n, _ := result.RowsAffected(); n == 0 {
        return model.Reservation{}, ErrReservationNotFound
    }
    return r.GetByID(ctx, id)
}

// updateQuery builds the UPDATE for the non-nil fields of patch.
// updated_at is always refreshed.
func updateQuery(id uint64, patch model.ReservationPatch) (string, []interface{}) {
    sets := make([]string, 0, 4)
    args := make([]interface{}, 0, 4)
    if patch.Title != nil {
        sets = append(sets, "title = ?")
        args = append(args, *patch.Title)
    }
    if patch.Description != nil {
        sets = append(sets, "description = ?")
        args = append(args, *patch.Description)
    }
    if patch.Status != nil {
        sets = append(sets, "status = ?")
        args = append(args, *patch.Status)
    }
    sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
    args = append(args, id)
    return `UPDATE reservations SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`, args
}

// Delete permanently removes a reservation.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
    result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := result.RowsAffected(); n == 0 {
        return ErrReservationNotFound
    }
    return nil
}

// DeleteByStatus removes every reservation with the given status and
// returns how many rows were deleted.
func (r *ReservationRepo) DeleteByStatus(ctx context.Context, status string) (int64, error) {
    result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE status = ?`, status)
    if err != nil {
        return 0, err
    }
    return result.RowsAffected()
}

func whereClause(f model.ReservationFilter) (string, []interface{}) {
    conds := make([]string, 0, 3)
    args := make([]interface{}, 0, 3)
    if f.ClubID != 0 {
        conds = append(conds, "club_id = ?")
        args = append(args, f.ClubID)
    }
    if f.SpaceID != 0 {
        conds = append(conds, "space_id = ?")
        args = append(args, f.SpaceID)
    }
    if f.Status != "" {
        conds = append(conds, "status = ?")
        args = append(args, f.Status)
    }
    if len(conds) == 0 {
        return "", args
    }
    return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns reservations matching the filter, newest first.  An
// empty slice is returned when nothing matches.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
    where, args := whereClause(f)
    q := `SELECT ` + reservationColumns + ` FROM reservations` + where + ` ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Count returns the number of reservations matching the filter.
func (r *ReservationRepo) Count(ctx context.Context, f model.ReservationFilter) (int64, error) {
    where, args := whereClause(f)
    var n int64
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`+where, args...).Scan(&n)
    return n, err
}
