// Package memstore is an in-process implementation of the reservation,
// space and club stores.  It backs STORE_BACKEND=memory for local runs and
// the service and handler tests.  It follows the same sentinel errors as
// the MySQL repositories.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/club-space-reservation/internal/model"
	"github.com/iliyamo/club-space-reservation/internal/repository"
)

// DB holds all tables behind one mutex.
type DB struct {
	mu           sync.RWMutex
	now          func() time.Time
	reservations map[uint64]model.Reservation
	spaces       map[uint64]model.Space
	clubs        map[uint64]model.Club
	nextID       uint64
}

// New returns an empty store.  now may be nil to use time.Now.
func New(now func() time.Time) *DB {
	if now == nil {
		now = time.Now
	}
	return &DB{
		now:          now,
		reservations: make(map[uint64]model.Reservation),
		spaces:       make(map[uint64]model.Space),
		clubs:        make(map[uint64]model.Club),
	}
}

func (db *DB) id() uint64 {
	db.nextID++
	return db.nextID
}

// Reservations returns the reservation store view.
func (db *DB) Reservations() *ReservationStore { return &ReservationStore{db: db} }

// Spaces returns the space store view.
func (db *DB) Spaces() *SpaceStore { return &SpaceStore{db: db} }

// Clubs returns the club store view.
func (db *DB) Clubs() *ClubStore { return &ClubStore{db: db} }

// ReservationStore implements the reservation record store.
type ReservationStore struct{ db *DB }

func (s *ReservationStore) Insert(_ context.Context, res *model.Reservation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	res.ID = s.db.id()
	now := s.db.now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now
	s.db.reservations[res.ID] = *res
	return nil
}

func (s *ReservationStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	res, ok := s.db.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	return res, nil
}

func (s *ReservationStore) UpdateFields(_ context.Context, id uint64, patch model.ReservationPatch) (model.Reservation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	res, ok := s.db.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	if patch.Empty() {
		return res, nil
	}
	if patch.Title != nil {
		res.Title = *patch.Title
	}
	if patch.Description != nil {
		res.Description = *patch.Description
	}
	if patch.Status != nil {
		res.Status = *patch.Status
	}
	res.UpdatedAt = s.db.now().UTC()
	s.db.reservations[id] = res
	return res, nil
}

func (s *ReservationStore) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.db.reservations, id)
	return nil
}

func (s *ReservationStore) DeleteByStatus(_ context.Context, status string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, res := range s.db.reservations {
		if res.Status == status {
			delete(s.db.reservations, id)
			n++
		}
	}
	return n, nil
}

func matches(res model.Reservation, f model.ReservationFilter) bool {
	if f.ClubID != 0 && res.ClubID != f.ClubID {
		return false
	}
	if f.SpaceID != 0 && res.SpaceID != f.SpaceID {
		return false
	}
	if f.Status != "" && res.Status != f.Status {
		return false
	}
	return true
}

// List returns matching reservations newest first, like the SQL store.
func (s *ReservationStore) List(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]model.Reservation, 0, len(s.db.reservations))
	for _, res := range s.db.reservations {
		if matches(res, f) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *ReservationStore) Count(_ context.Context, f model.ReservationFilter) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var n int64
	for _, res := range s.db.reservations {
		if matches(res, f) {
			n++
		}
	}
	return n, nil
}

// SpaceStore implements the space reference store.
type SpaceStore struct{ db *DB }

func (s *SpaceStore) List(_ context.Context) ([]model.Space, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]model.Space, 0, len(s.db.spaces))
	for _, sp := range s.db.spaces {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *SpaceStore) GetByID(_ context.Context, id uint64) (model.Space, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	sp, ok := s.db.spaces[id]
	if !ok {
		return model.Space{}, repository.ErrSpaceNotFound
	}
	return sp, nil
}

func (s *SpaceStore) Create(_ context.Context, sp *model.Space) error {
	if model.IsReservedSpaceName(sp.Name) {
		return repository.ErrReservedName
	}
	return s.insert(sp)
}

func (s *SpaceStore) insert(sp *model.Space) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sp.ID = s.db.id()
	sp.CreatedAt = s.db.now().UTC()
	if sp.Features == nil {
		sp.Features = []string{}
	}
	s.db.spaces[sp.ID] = *sp
	return nil
}

func (s *SpaceStore) Update(_ context.Context, sp *model.Space) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	current, ok := s.db.spaces[sp.ID]
	if !ok {
		return repository.ErrSpaceNotFound
	}
	if current.IsDefault() && sp.Name != current.Name {
		return repository.ErrForbidden
	}
	if !current.IsDefault() && model.IsReservedSpaceName(sp.Name) {
		return repository.ErrReservedName
	}
	sp.CreatedAt = current.CreatedAt
	if sp.Features == nil {
		sp.Features = []string{}
	}
	s.db.spaces[sp.ID] = *sp
	return nil
}

func (s *SpaceStore) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sp, ok := s.db.spaces[id]
	if !ok {
		return repository.ErrSpaceNotFound
	}
	if sp.IsDefault() {
		return repository.ErrForbidden
	}
	for _, res := range s.db.reservations {
		if res.SpaceID == id {
			return repository.ErrConflict
		}
	}
	delete(s.db.spaces, id)
	return nil
}

func (s *SpaceStore) EnsureDefault(_ context.Context) (model.Space, error) {
	s.db.mu.RLock()
	for _, sp := range s.db.spaces {
		if sp.IsDefault() {
			s.db.mu.RUnlock()
			return sp, nil
		}
	}
	s.db.mu.RUnlock()
	sp := model.Space{Name: model.DefaultSpaceName}
	if err := s.insert(&sp); err != nil {
		return model.Space{}, err
	}
	return sp, nil
}

// ClubStore implements the club reference store.
type ClubStore struct{ db *DB }

func (s *ClubStore) GetByID(_ context.Context, id uint64) (model.Club, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	c, ok := s.db.clubs[id]
	if !ok {
		return model.Club{}, repository.ErrClubNotFound
	}
	return c, nil
}

func (s *ClubStore) GetByEmail(_ context.Context, email string) (model.Club, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, c := range s.db.clubs {
		if c.Email == email {
			return c, nil
		}
	}
	return model.Club{}, repository.ErrClubNotFound
}

// List returns clubs ordered by id, matching the SQL store.
func (s *ClubStore) List(_ context.Context) ([]model.Club, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]model.Club, 0, len(s.db.clubs))
	for _, c := range s.db.clubs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ClubStore) Create(_ context.Context, c *model.Club) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	for _, existing := range s.db.clubs {
		if existing.Email == c.Email {
			return repository.ErrEmailExists
		}
	}
	if c.Status == "" {
		c.Status = model.ClubActive
	}
	c.ID = s.db.id()
	c.CreatedAt = s.db.now().UTC()
	s.db.clubs[c.ID] = *c
	return nil
}

func (s *ClubStore) UpdateStatus(_ context.Context, id uint64, status string) (model.Club, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.clubs[id]
	if !ok {
		return model.Club{}, repository.ErrClubNotFound
	}
	c.Status = status
	s.db.clubs[id] = c
	return c, nil
}

func (s *ClubStore) TouchLastLogin(_ context.Context, id uint64, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.clubs[id]
	if !ok {
		return repository.ErrClubNotFound
	}
	t := at.UTC()
	c.LastLogin = &t
	s.db.clubs[id] = c
	return nil
}
