package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"encoding/json"
	"errors"

	"github.com/iliyamo/club-space-reservation/internal/model"
)

// SpaceRepo provides methods to create, list, update and delete spaces.
type SpaceRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewSpaceRepo constructs a SpaceRepo with the given DB handle.
func NewSpaceRepo(db *sql.DB) *SpaceRepo {
	return &SpaceRepo{db: db}
}

const spaceColumns = `id, name, capacity, features, image, created_at`

func scanSpace(row rowScanner) (model.Space, error) {
	var (
		s        model.Space
		features sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Capacity, &features, &s.Image, &s.CreatedAt); err != nil {
		return model.Space{}, err
	}
	s.Features = []string{}
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &s.Features); err != nil {
			return model.Space{}, err
		}
	}
	return s, nil
}

func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	bs, err := json.Marshal(features)
	return string(bs), err
}

// List returns all spaces ordered by name.
func (r *SpaceRepo) List(ctx context.Context) ([]model.Space, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+spaceColumns+` FROM spaces ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Space, 0)
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a space by its ID.  It returns ErrSpaceNotFound when
// no row is found.
func (r *SpaceRepo) GetByID(ctx context.Context, id uint64) (model.Space, error) {
	s, err := scanSpace(r.db.QueryRowContext(ctx, `SELECT `+spaceColumns+` FROM spaces WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Space{}, ErrSpaceNotFound
		}
		return model.Space{}, err
	}
	return s, nil
}

// Create inserts a new space.  After insert the record is read back so
// the ID and created_at are populated.  The default space's name is
// reserved and returns ErrReservedName.
func (r *SpaceRepo) Create(ctx context.Context, s *model.Space) error {
	if model.IsReservedSpaceName(s.Name) {
		return ErrReservedName
	}
	return r.insert(ctx, s)
}

func (r *SpaceRepo) insert(ctx context.Context, s *model.Space) error {
	features, err := encodeFeatures(s.Features)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO spaces (name, capacity, features, image) VALUES (?, ?, ?, ?)`,
		s.Name, s.Capacity, features, s.Image)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = stored
	return nil
}

// Update overwrites name, capacity, features and image.  Renaming the
// default space is forbidden since it is located by name, and no other
// space may take that name.
func (r *SpaceRepo) Update(ctx context.Context, s *model.Space) error {
	current, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	if current.IsDefault() && s.Name != current.Name {
		return ErrForbidden
	}
	if !current.IsDefault() && model.IsReservedSpaceName(s.Name) {
		return ErrReservedName
	}
	features, err := encodeFeatures(s.Features)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE spaces SET name = ?, capacity = ?, features = ?, image = ? WHERE id = ?`,
		s.Name, s.Capacity, features, s.Image, s.ID); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = stored
	return nil
}

// Delete removes a space.  The default space returns ErrForbidden and a
// space that still has reservations returns ErrConflict.  The check and
// the delete run in one transaction.
func (r *SpaceRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var name string
	if err := tx.QueryRowContext(ctx, `SELECT name FROM spaces WHERE id = ? FOR UPDATE`, id).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSpaceNotFound
		}
		return err
	}
	if name == model.DefaultSpaceName {
		return ErrForbidden
	}
	var n int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE space_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id); err != nil {
		if isMySQLError(err, mysqlRowReferenced) {
			return ErrConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// EnsureDefault creates the "Non-specific" space when it does not exist
// and returns it.
func (r *SpaceRepo) EnsureDefault(ctx context.Context) (model.Space, error) {
	s, err := scanSpace(r.db.QueryRowContext(ctx,
		`SELECT `+spaceColumns+` FROM spaces WHERE name = ? ORDER BY id LIMIT 1`, model.DefaultSpaceName))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Space{}, err
	}
	s = model.Space{Name: model.DefaultSpaceName, Features: []string{}}
	if err := r.insert(ctx, &s); err != nil {
		return model.Space{}, err
	}
	return s, nil
}
