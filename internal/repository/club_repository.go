package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/club-space-reservation/internal/model"
)

// ClubRepo mirrors the 'clubs' table.
type ClubRepo struct{ DB *sql.DB }

func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{DB: db} }

const clubColumns = `id, name, description, email, logo, status, last_login, members, password_hash, created_at`

func scanClub(row rowScanner) (model.Club, error) {
	var (
		c           model.Club
		description sql.NullString
		logo        sql.NullString
		lastLogin   sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Name, &description, &c.Email, &logo, &c.Status,
		&lastLogin, &c.Members, &c.PasswordHash, &c.CreatedAt); err != nil {
		return model.Club{}, err
	}
	c.Description = description.String
	if logo.Valid {
		l := logo.String
		c.Logo = &l
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		c.LastLogin = &t
	}
	return c, nil
}

func (r *ClubRepo) getOne(ctx context.Context, where string, arg interface{}) (model.Club, error) {
	c, err := scanClub(r.DB.QueryRowContext(ctx,
		"SELECT "+clubColumns+" FROM clubs WHERE "+where+" LIMIT 1", arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Club{}, ErrClubNotFound
		}
		return model.Club{}, err
	}
	return c, nil
}

// GetByID fetches a club by id.
func (r *ClubRepo) GetByID(ctx context.Context, id uint64) (model.Club, error) {
	return r.getOne(ctx, "id=?", id)
}

// GetByEmail fetches a club by normalized email.
func (r *ClubRepo) GetByEmail(ctx context.Context, email string) (model.Club, error) {
	return r.getOne(ctx, "email=?", strings.ToLower(strings.TrimSpace(email)))
}

// List returns all clubs in creation order.  Iteration order matters to
// the activity chart palette, so it is kept stable by id.
func (r *ClubRepo) List(ctx context.Context) ([]model.Club, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+clubColumns+" FROM clubs ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Club, 0)
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a club whose PasswordHash is already set and reads the
// row back.  A duplicate email yields ErrEmailExists.
func (r *ClubRepo) Create(ctx context.Context, c *model.Club) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Status == "" {
		c.Status = model.ClubActive
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clubs (name, description, email, logo, status, members, password_hash) VALUES (?,?,?,?,?,?,?)",
		c.Name, c.Description, c.Email, c.Logo, c.Status, c.Members, c.PasswordHash)
	if err != nil {
		if isMySQLError(err, mysqlDuplicateEntry) {
			return ErrEmailExists
		}
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
	*c = stored
	return nil
}

// UpdateStatus sets a club active or inactive.
func (r *ClubRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Club, error) {
	res, err := r.DB.ExecContext(ctx, "UPDATE clubs SET status=? WHERE id=?", status, id)
	if err != nil {
		return model.Club{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Club{}, ErrClubNotFound
	}
	return r.GetByID(ctx, id)
}

// TouchLastLogin stamps last_login with at.
func (r *ClubRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE clubs SET last_login=? WHERE id=?", at.UTC(), id)
	return err
}
