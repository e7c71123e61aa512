package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-space-reservation/internal/middleware"
	"github.com/iliyamo/club-space-reservation/internal/model"
	"github.com/iliyamo/club-space-reservation/internal/repository/memstore"
	"github.com/iliyamo/club-space-reservation/internal/service"
	"github.com/iliyamo/club-space-reservation/internal/utils"
)

type testEnv struct {
	e     *echo.Echo
	db    *memstore.DB
	h     *ReservationHandler
	space model.Space
	club  model.Club
	other model.Club
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db := memstore.New(nil)
	ctx := context.Background()

	space := model.Space{Name: "Auditorium"}
	require.NoError(t, db.Spaces().Create(ctx, &space))
	club := model.Club{Name: "Robotics", Email: "robotics@campus.edu"}
	other := model.Club{Name: "Drama", Email: "drama@campus.edu"}
	require.NoError(t, db.Clubs().Create(ctx, &club))
	require.NoError(t, db.Clubs().Create(ctx, &other))

	svc := service.NewReservationService(db.Reservations(), db.Spaces(), db.Clubs(), nil, nil)
	return &testEnv{
		e:     echo.New(),
		db:    db,
		h:     NewReservationHandler(svc, db.Spaces(), db.Clubs(), time.UTC),
		space: space,
		club:  club,
		other: other,
	}
}

// newRequest builds a context for calling a handler directly.  body is
// JSON encoded when not nil.
func newRequest(e *echo.Echo, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withID(c echo.Context, id uint64) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (env *testEnv) seed(t *testing.T, clubID uint64, start time.Time, status string) model.Reservation {
	t.Helper()
	res := model.Reservation{
		SpaceID:   env.space.ID,
		ClubID:    clubID,
		Title:     "Meeting",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    status,
	}
	require.NoError(t, env.db.Reservations().Insert(context.Background(), &res))
	return res
}

func TestCreate(t *testing.T) {
	env := setup(t)
	c, rec := newRequest(env.e, http.MethodPost, "/v1/reservations", echo.Map{
		"space_id":   env.space.ID,
		"title":      "Build night",
		"start_time": "2024-06-10T14:00:00Z",
		"end_time":   "2024-06-10T16:00:00Z",
	})
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)

	require.NoError(t, env.h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode(t, rec)
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, float64(env.club.ID), got["club_id"])
	assert.Equal(t, "Auditorium", got["space_name"])
	assert.Equal(t, "Robotics", got["club_name"])
	assert.Equal(t, "June 10, 2024", got["date_label"])
	assert.Equal(t, "2:00 PM - 4:00 PM", got["time_label"])
	assert.Equal(t, "2 hours", got["duration_label"])
	assert.Equal(t, "Pending", got["status_view"].(map[string]interface{})["label"])
}

func TestCreate_Invalid(t *testing.T) {
	env := setup(t)
	cases := []struct {
		name  string
		body  echo.Map
		field string
	}{
		{"missing title", echo.Map{"space_id": env.space.ID, "start_time": "2024-06-10T14:00:00Z", "end_time": "2024-06-10T16:00:00Z"}, "title"},
		{"missing end", echo.Map{"space_id": env.space.ID, "title": "x", "start_time": "2024-06-10T14:00:00Z"}, "end_time"},
		{"end before start", echo.Map{"space_id": env.space.ID, "title": "x", "start_time": "2024-06-10T14:00:00Z", "end_time": "2024-06-10T13:00:00Z"}, "end_time"},
		{"unknown space", echo.Map{"space_id": 999, "title": "x", "start_time": "2024-06-10T14:00:00Z", "end_time": "2024-06-10T16:00:00Z"}, "space_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newRequest(env.e, http.MethodPost, "/v1/reservations", tc.body)
			middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
			require.NoError(t, env.h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.field, decode(t, rec)["field"])
		})
	}
}

func TestListMine(t *testing.T) {
	env := setup(t)
	base := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	env.seed(t, env.club.ID, base, model.StatusApproved)
	env.seed(t, env.club.ID, base.Add(24*time.Hour), model.StatusRejected)
	env.seed(t, env.other.ID, base, model.StatusApproved)

	c, rec := newRequest(env.e, http.MethodGet, "/v1/my/reservations", nil)
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
	require.NoError(t, env.h.ListMine(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["total"])

	c, rec = newRequest(env.e, http.MethodGet, "/v1/my/reservations?status=approved", nil)
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
	require.NoError(t, env.h.ListMine(c))
	assert.Equal(t, float64(1), decode(t, rec)["total"])

	c, rec = newRequest(env.e, http.MethodGet, "/v1/my/reservations?status=cancelled", nil)
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
	require.NoError(t, env.h.ListMine(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode(t, rec)["field"])
}

func TestEditMine_Ownership(t *testing.T) {
	env := setup(t)
	res := env.seed(t, env.club.ID, time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC), model.StatusPending)

	c, rec := newRequest(env.e, http.MethodPatch, "/", echo.Map{"title": "Hijacked"})
	middleware.SetIdentity(c, env.other.ID, utils.RoleClub)
	require.NoError(t, env.h.EditMine(withID(c, res.ID)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newRequest(env.e, http.MethodPatch, "/", echo.Map{"title": "Robot demo"})
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
	require.NoError(t, env.h.EditMine(withID(c, res.ID)))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Robot demo", got["title"])
	assert.Equal(t, "pending", got["status"])
}

func TestDeleteMine(t *testing.T) {
	env := setup(t)
	res := env.seed(t, env.club.ID, time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC), model.StatusPending)

	c, rec := newRequest(env.e, http.MethodDelete, "/", nil)
	middleware.SetIdentity(c, env.other.ID, utils.RoleClub)
	require.NoError(t, env.h.DeleteMine(withID(c, res.ID)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newRequest(env.e, http.MethodDelete, "/", nil)
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
	require.NoError(t, env.h.DeleteMine(withID(c, res.ID)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newRequest(env.e, http.MethodDelete, "/", nil)
	middleware.SetIdentity(c, env.club.ID, utils.RoleClub)
	require.NoError(t, env.h.DeleteMine(withID(c, res.ID)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetStatus(t *testing.T) {
	env := setup(t)
	res := env.seed(t, env.club.ID, time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC), model.StatusPending)

	c, rec := newRequest(env.e, http.MethodPatch, "/", echo.Map{"status": "approved"})
	require.NoError(t, env.h.SetStatus(withID(c, res.ID)))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "approved", got["status"])
	assert.Equal(t, "green", got["status_view"].(map[string]interface{})["color"])

	c, rec = newRequest(env.e, http.MethodPatch, "/", echo.Map{"status": "APPROVED"})
	require.NoError(t, env.h.SetStatus(withID(c, res.ID)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRequest(env.e, http.MethodPatch, "/", echo.Map{"status": "approved"})
	require.NoError(t, env.h.SetStatus(withID(c, 12345)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newRequest(env.e, http.MethodPatch, "/", echo.Map{"status": "approved"})
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, env.h.SetStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkDelete(t *testing.T) {
	env := setup(t)
	start := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		env.seed(t, env.club.ID, start, model.StatusRejected)
	}
	env.seed(t, env.club.ID, start, model.StatusApproved)

	c, rec := newRequest(env.e, http.MethodDelete, "/v1/admin/reservations", nil)
	require.NoError(t, env.h.BulkDelete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRequest(env.e, http.MethodDelete, "/v1/admin/reservations?status=rejected", nil)
	require.NoError(t, env.h.BulkDelete(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":3}`, rec.Body.String())

	c, rec = newRequest(env.e, http.MethodGet, "/v1/admin/reservations", nil)
	require.NoError(t, env.h.List(c))
	assert.Equal(t, float64(1), decode(t, rec)["total"])
}

func TestCalendar(t *testing.T) {
	env := setup(t)
	env.seed(t, env.club.ID, time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC), model.StatusApproved)
	env.seed(t, env.club.ID, time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC), model.StatusApproved)

	c, rec := newRequest(env.e, http.MethodGet, "/v1/admin/calendar?year=2024&month=6", nil)
	require.NoError(t, env.h.Calendar(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Days  []struct {
			Date         string            `json:"date"`
			Reservations []json.RawMessage `json:"reservations"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2024, body.Year)
	assert.Equal(t, 6, body.Month)
	require.Len(t, body.Days, 30)
	assert.Equal(t, "2024-06-10", body.Days[9].Date)
	assert.Len(t, body.Days[9].Reservations, 1)
	assert.Empty(t, body.Days[0].Reservations)

	c, rec = newRequest(env.e, http.MethodGet, "/v1/admin/calendar?month=13", nil)
	require.NoError(t, env.h.Calendar(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "month", decode(t, rec)["field"])
}
