package router

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

	"github.com/iliyamo/club-space-reservation/internal/config"
	"github.com/iliyamo/club-space-reservation/internal/handler"
	"github.com/iliyamo/club-space-reservation/internal/middleware"
	"github.com/iliyamo/club-space-reservation/internal/model"
	"github.com/iliyamo/club-space-reservation/internal/repository/memstore"
	"github.com/iliyamo/club-space-reservation/internal/service"
	"github.com/iliyamo/club-space-reservation/internal/utils"
)

const jwtSecret = "router-secret"

type app struct {
	e      *echo.Echo
	club   model.Club
	space  model.Space
	tokens map[string]string
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := memstore.New(nil)
	ctx := context.Background()

	space, err := db.Spaces().EnsureDefault(ctx)
	require.NoError(t, err)
	hash, err := utils.HashPassword("pawns-first", 4)
	require.NoError(t, err)
	club := model.Club{Name: "Chess", Email: "chess@campus.edu", PasswordHash: hash}
	require.NoError(t, db.Clubs().Create(ctx, &club))

	adminHash, err := utils.HashPassword("admin-pass", 4)
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:         jwtSecret,
		AccessTTLMin:      5,
		AdminEmail:        "admin@campus.edu",
		AdminPasswordHash: adminHash,
	}

	reservations := service.NewReservationService(db.Reservations(), db.Spaces(), db.Clubs(), nil, nil)
	dashboards := service.NewDashboardService(db.Reservations(), db.Spaces(), db.Clubs(), time.UTC, nil)
	cache := middleware.NewRedisCache(config.CacheConfig{}, nil, 0)
	limit := middleware.NewTokenBucket(config.RateLimitConfig{}, nil, nil)

	spaceH := handler.NewSpaceHandler(db.Spaces(), nil)
	reservationH := handler.NewReservationHandler(reservations, db.Spaces(), db.Clubs(), time.UTC)
	dashboardH := handler.NewDashboardHandler(dashboards)

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, db.Clubs(), nil), jwtSecret, limit)
	RegisterPublic(e, spaceH, cache)
	RegisterClub(e, reservationH, dashboardH, jwtSecret)
	RegisterAdmin(e, AdminHandlers{
		Reservations: reservationH,
		Spaces:       spaceH,
		Clubs:        handler.NewClubHandler(db.Clubs(), 4, nil),
		Dashboards:   dashboardH,
	}, cache, jwtSecret)

	return &app{e: e, club: club, space: space, tokens: map[string]string{}}
}

func (a *app) call(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) login(t *testing.T, path, email, password string) string {
	t.Helper()
	rec := a.call(t, http.MethodPost, path, "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Access.Token
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.call(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReservationLifecycle(t *testing.T) {
	a := newApp(t)
	clubToken := a.login(t, "/v1/auth/club/login", "chess@campus.edu", "pawns-first")
	adminToken := a.login(t, "/v1/auth/admin/login", "admin@campus.edu", "admin-pass")

	// anonymous and wrong-role callers are turned away
	assert.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodGet, "/v1/my/reservations", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodGet, "/v1/admin/reservations", clubToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodGet, "/v1/my/reservations", adminToken, nil).Code)

	rec := a.call(t, http.MethodPost, "/v1/reservations", clubToken, map[string]interface{}{
		"space_id":   a.space.ID,
		"title":      "Simul",
		"start_time": "2024-06-10T00:00:00Z",
		"end_time":   "2024-06-10T23:59:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID        uint64 `json:"id"`
		Status    string `json:"status"`
		TimeLabel string `json:"time_label"`
		FullDay   bool   `json:"full_day"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "Full Day", created.TimeLabel)
	assert.True(t, created.FullDay)

	path := "/v1/admin/reservations/" + strconv.FormatUint(created.ID, 10)
	rec = a.call(t, http.MethodPatch, path+"/status", adminToken, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.call(t, http.MethodGet, "/v1/my/reservations?status=rejected", clubToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = a.call(t, http.MethodGet, "/v1/my/dashboard", clubToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rejected":1`)

	rec = a.call(t, http.MethodDelete, "/v1/admin/reservations?status=rejected", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, a.call(t, http.MethodGet, path, adminToken, nil).Code)

	rec = a.call(t, http.MethodGet, "/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_reservations":0`)
}

func TestPublicSpaces(t *testing.T) {
	a := newApp(t)
	rec := a.call(t, http.MethodGet, "/v1/spaces", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), model.DefaultSpaceName)
}
