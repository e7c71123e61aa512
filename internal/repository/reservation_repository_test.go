package repository

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-space-reservation/internal/model"
)

// fakeRow hands its values to Scan in order, like a single result row.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}

func reservationRow(start, end sql.NullTime, description sql.NullString) fakeRow {
	created := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	return fakeRow{vals: []any{
		uint64(7), uint64(2), uint64(3), "Weekly meetup", description, start, end,
		false, model.StatusPending, created, created,
	}}
}

func TestScanReservation(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	start := time.Date(2024, time.June, 10, 14, 0, 0, 0, tehran)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name        string
		row         fakeRow
		wantStart   time.Time
		wantEnd     time.Time
		description string
	}{
		{
			name:        "times normalised to UTC",
			row:         reservationRow(sql.NullTime{Time: start, Valid: true}, sql.NullTime{Time: end, Valid: true}, sql.NullString{String: "bring boards", Valid: true}),
			wantStart:   start.UTC(),
			wantEnd:     end.UTC(),
			description: "bring boards",
		},
		{
			name:      "NULL start and description",
			row:       reservationRow(sql.NullTime{}, sql.NullTime{Time: end, Valid: true}, sql.NullString{}),
			wantStart: time.Time{},
			wantEnd:   end.UTC(),
		},
		{
			name:      "NULL end",
			row:       reservationRow(sql.NullTime{Time: start, Valid: true}, sql.NullTime{}, sql.NullString{}),
			wantStart: start.UTC(),
			wantEnd:   time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := scanReservation(tt.row)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), res.ID)
			assert.Equal(t, "Weekly meetup", res.Title)
			assert.Equal(t, tt.description, res.Description)
			assert.True(t, tt.wantStart.Equal(res.StartTime), res.StartTime)
			assert.True(t, tt.wantEnd.Equal(res.EndTime), res.EndTime)
			if !res.StartTime.IsZero() {
				assert.Equal(t, time.UTC, res.StartTime.Location())
			}
		})
	}

	// a NULL timestamp surfaces as a malformed record, never a guessed time
	res, err := scanReservation(reservationRow(sql.NullTime{}, sql.NullTime{}, sql.NullString{}))
	require.NoError(t, err)
	var me *model.MalformedRecordError
	assert.ErrorAs(t, res.CheckTimes(), &me)
}

func TestScanReservation_NoRows(t *testing.T) {
	_, err := scanReservation(fakeRow{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		f        model.ReservationFilter
		wantSQL  string
		wantArgs []interface{}
	}{
		{name: "no filter", f: model.ReservationFilter{}, wantSQL: "", wantArgs: []interface{}{}},
		{name: "club", f: model.ReservationFilter{ClubID: 4}, wantSQL: " WHERE club_id = ?", wantArgs: []interface{}{uint64(4)}},
		{name: "status", f: model.ReservationFilter{Status: model.StatusRejected}, wantSQL: " WHERE status = ?", wantArgs: []interface{}{"rejected"}},
		{
			name:     "all three in column order",
			f:        model.ReservationFilter{Status: model.StatusApproved, SpaceID: 9, ClubID: 4},
			wantSQL:  " WHERE club_id = ? AND space_id = ? AND status = ?",
			wantArgs: []interface{}{uint64(4), uint64(9), "approved"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := whereClause(tt.f)
			assert.Equal(t, tt.wantSQL, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestUpdateQuery(t *testing.T) {
	title, desc, status := "New title", "", model.StatusApproved

	tests := []struct {
		name     string
		patch    model.ReservationPatch
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "status only",
			patch:    model.ReservationPatch{Status: &status},
			wantSQL:  "UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			wantArgs: []interface{}{"approved", uint64(12)},
		},
		{
			name:     "title and cleared description",
			patch:    model.ReservationPatch{Title: &title, Description: &desc},
			wantSQL:  "UPDATE reservations SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			wantArgs: []interface{}{"New title", "", uint64(12)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := updateQuery(12, tt.patch)
			assert.Equal(t, tt.wantSQL, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
