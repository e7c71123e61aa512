package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Roles carried in the "role" claim.
const (
    RoleClub  = "CLUB"
    RoleAdmin = "ADMIN"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string and Exp the UTC expiration time.
type AccessToken struct {
    Token string    `json:"access_token"`
    Exp   time.Time `json:"expires_at"`
}

// Claims are the fields read back from a verified access token.  Subject
// is the club id for CLUB tokens and 0 for the administrator.
type Claims struct {
    Subject uint64
    Role    string
}

type tokenClaims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 JWT.  It includes the standard
// subject, expiration and issued-at claims plus the role.
func NewAccessToken(secret string, subject uint64, role string, ttl time.Duration, now time.Time) (AccessToken, error) {
    now = now.UTC()
    exp := now.Add(ttl)
    claims := tokenClaims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(subject, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ErrInvalidToken covers every reason a token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// ParseAccessToken verifies raw with secret and returns its claims.  Only
// HMAC-signed tokens with a numeric subject and a role are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
    var tc tokenClaims
    tok, err := jwt.ParseWithClaims(raw, &tc, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    sub, err := strconv.ParseUint(tc.Subject, 10, 64)
    if err != nil || tc.Role == "" {
        return Claims{}, ErrInvalidToken
    }
    return Claims{Subject: sub, Role: tc.Role}, nil
}
