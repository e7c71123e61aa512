package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/config"
    "github.com/iliyamo/club-space-reservation/internal/logger"
    "github.com/iliyamo/club-space-reservation/internal/middleware"
    "github.com/iliyamo/club-space-reservation/internal/repository"
    "github.com/iliyamo/club-space-reservation/internal/service"
    "github.com/iliyamo/club-space-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Clubs service.ClubStore
	Log   *logger.Logger
	Now   func() time.Time
}

func NewAuthHandler(cfg config.Config, clubs service.ClubStore, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{Cfg: cfg, Clubs: clubs, Log: log, Now: time.Now}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type principal struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

type authResp struct {
	User   principal `json:"user"`
	Access tokenPart `json:"access"`
}

// bindLogin returns the request or a message for a 400 response.
func bindLogin(c echo.Context) (loginReq, string) {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return req, "invalid body"
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return req, "email/password required"
	}
	return req, ""
}

func (h *AuthHandler) issue(c echo.Context, p principal) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.ID, p.Role, time.Duration(h.Cfg.AccessTTLMin)*time.Minute, h.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   p,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// ClubLogin verifies a club's credentials.  Inactive clubs are refused and
// a successful login stamps last_login.
func (h *AuthHandler) ClubLogin(c echo.Context) error {
	req, msg := bindLogin(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	club, err := h.Clubs.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			h.Log.LogSecurity("LOGIN_FAILED", "unknown club "+req.Email)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if !utils.VerifyPassword(club.PasswordHash, req.Password) {
		h.Log.LogSecurity("LOGIN_FAILED", "bad password for club "+req.Email)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !club.IsActive() {
		h.Log.LogSecurity("LOGIN_REFUSED", "inactive club "+req.Email)
		return c.JSON(http.StatusForbidden, echo.Map{"error": "club is inactive"})
	}
	if err := h.Clubs.TouchLastLogin(ctx, club.ID, h.Now()); err != nil {
		h.Log.Warnf("AUTH", "touch last_login for club %d: %v", club.ID, err)
	}
	return h.issue(c, principal{ID: club.ID, Email: club.Email, Name: club.Name, Role: utils.RoleClub})
}

// AdminLogin verifies the single administrator configured through
// ADMIN_EMAIL and ADMIN_PASSWORD_HASH.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	req, msg := bindLogin(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.Email != strings.ToLower(h.Cfg.AdminEmail) || !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		h.Log.LogSecurity("LOGIN_FAILED", "admin login for "+req.Email)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issue(c, principal{ID: 0, Email: req.Email, Role: utils.RoleAdmin})
}

// Me returns the caller's identity; clubs also get their profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := middleware.Role(c)
	if role == utils.RoleAdmin {
		return c.JSON(http.StatusOK, echo.Map{"id": uid, "role": role, "email": h.Cfg.AdminEmail})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	club, err := h.Clubs.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err, "lookup failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": uid, "role": role, "club": club})
}
