package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-space-reservation/internal/model"
	"github.com/iliyamo/club-space-reservation/internal/repository"
)

func TestReservationStore(t *testing.T) {
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	db := New(func() time.Time { return now })
	rs := db.Reservations()
	ctx := context.Background()

	a := model.Reservation{ClubID: 1, SpaceID: 1, Title: "a", Status: model.StatusPending}
	b := model.Reservation{ClubID: 2, SpaceID: 1, Title: "b", Status: model.StatusApproved}
	require.NoError(t, rs.Insert(ctx, &a))
	now = now.Add(time.Minute)
	require.NoError(t, rs.Insert(ctx, &b))
	assert.NotEqual(t, a.ID, b.ID)

	list, err := rs.List(ctx, model.ReservationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID, "newest first")

	n, err := rs.Count(ctx, model.ReservationFilter{ClubID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	title := "renamed"
	got, err := rs.UpdateFields(ctx, a.ID, model.ReservationPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = rs.UpdateFields(ctx, 999, model.ReservationPatch{Title: &title})
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)

	deleted, err := rs.DeleteByStatus(ctx, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	require.NoError(t, rs.Delete(ctx, a.ID))
	assert.ErrorIs(t, rs.Delete(ctx, a.ID), repository.ErrReservationNotFound)
}

func TestSpaceStore_DefaultSpace(t *testing.T) {
	db := New(nil)
	ctx := context.Background()

	def, err := db.Spaces().EnsureDefault(ctx)
	require.NoError(t, err)
	again, err := db.Spaces().EnsureDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, def.ID, again.ID)
	assert.Equal(t, []string{}, def.Features)

	assert.ErrorIs(t, db.Spaces().Delete(ctx, def.ID), repository.ErrForbidden)
	renamed := def
	renamed.Name = "Other"
	assert.ErrorIs(t, db.Spaces().Update(ctx, &renamed), repository.ErrForbidden)

	def.Capacity = 10
	require.NoError(t, db.Spaces().Update(ctx, &def))

	clash := model.Space{Name: "NON-SPECIFIC"}
	assert.ErrorIs(t, db.Spaces().Create(ctx, &clash), repository.ErrReservedName)
	lab := model.Space{Name: "Lab"}
	require.NoError(t, db.Spaces().Create(ctx, &lab))
	lab.Name = model.DefaultSpaceName
	assert.ErrorIs(t, db.Spaces().Update(ctx, &lab), repository.ErrReservedName)
	got, err := db.Spaces().GetByID(ctx, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lab", got.Name)
}

func TestClubStore(t *testing.T) {
	db := New(nil)
	cs := db.Clubs()
	ctx := context.Background()

	c := model.Club{Name: "Chess", Email: " Chess@Campus.edu "}
	require.NoError(t, cs.Create(ctx, &c))
	assert.Equal(t, "chess@campus.edu", c.Email)
	assert.Equal(t, model.ClubActive, c.Status)

	dup := model.Club{Name: "Chess 2", Email: "chess@campus.edu"}
	assert.ErrorIs(t, cs.Create(ctx, &dup), repository.ErrEmailExists)

	got, err := cs.GetByEmail(ctx, "CHESS@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	at := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.FixedZone("X", 7200))
	require.NoError(t, cs.TouchLastLogin(ctx, c.ID, at))
	got, err = cs.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(at))

	_, err = cs.UpdateStatus(ctx, 999, model.ClubInactive)
	assert.ErrorIs(t, err, repository.ErrClubNotFound)
}
