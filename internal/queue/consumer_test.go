package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, time.June, 10, 14, 0, 0, 0, time.UTC)

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventCreated, at.In(time.FixedZone("X", 3600)))
	b := NewEvent(EventCreated, at)
	assert.NotEmpty(t, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.Equal(t, time.UTC, a.OccurredAt.Location())
	assert.True(t, a.OccurredAt.Equal(at))
}

func TestFormatLine(t *testing.T) {
	created := NewEvent(EventCreated, at)
	created.ReservationID, created.ClubID, created.SpaceID, created.Title = 7, 2, 3, "Build night"
	assert.Equal(t,
		`[2024-06-10T14:00:00Z] reservation.created | reservation_id=7 | club_id=2 | space_id=3 | title="Build night" | event_id=`+created.EventID+"\n",
		FormatLine(created))

	changed := NewEvent(EventStatusChanged, at)
	changed.ReservationID, changed.ClubID = 7, 2
	changed.OldStatus, changed.NewStatus = "pending", "approved"
	assert.Equal(t,
		"[2024-06-10T14:00:00Z] reservation.status_changed | reservation_id=7 | club_id=2 | pending -> approved | event_id="+changed.EventID+"\n",
		FormatLine(changed))

	bulk := NewEvent(EventBulkDeleted, at)
	bulk.NewStatus, bulk.Count = "rejected", 3
	assert.Equal(t,
		"[2024-06-10T14:00:00Z] reservation.bulk_deleted | status=rejected | count=3 | event_id="+bulk.EventID+"\n",
		FormatLine(bulk))
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "reservation.log")
	c := &Consumer{LogPath: path}

	for _, typ := range []string{EventCreated, EventDeleted} {
		ev := NewEvent(typ, at)
		ev.ReservationID = 9
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, c.HandleMessage(body))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "reservation.created | reservation_id=9")
	assert.Contains(t, lines[1], "reservation.deleted | reservation_id=9")
}

func TestHandleMessage_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservation.log")
	c := &Consumer{LogPath: path}

	assert.Error(t, c.HandleMessage([]byte("not json")))
	assert.EqualError(t, c.HandleMessage([]byte(`{"reservation_id":1}`)), "event without type")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
