package model

import "time"

// Club status values.  Only active clubs may authenticate.
const (
    ClubActive   = "active"
    ClubInactive = "inactive"
)

// Club represents a student organisation that books spaces.  The
// password is stored as a bcrypt hash and never serialised.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – club name.
//  Description  – optional description.
//  Email        – login email, unique.
//  Logo         – URL or path of the logo (nullable).
//  Status       – active or inactive.
//  LastLogin    – last successful login (nullable).
//  Members      – member count.
//  PasswordHash – bcrypt hash of the club password.
//  CreatedAt    – creation timestamp.
type Club struct {
    ID           uint64     `json:"id"`                   // clubs.id
    Name         string     `json:"name"`                 // clubs.name
    Description  string     `json:"description"`          // clubs.description
    Email        string     `json:"email"`                // clubs.email
    Logo         *string    `json:"logo,omitempty"`       // clubs.logo (nullable)
    Status       string     `json:"status"`               // clubs.status
    LastLogin    *time.Time `json:"last_login,omitempty"` // clubs.last_login (nullable)
    Members      uint32     `json:"members"`              // clubs.members
    PasswordHash string     `json:"-"`                    // clubs.password_hash
    CreatedAt    time.Time  `json:"created_at"`           // clubs.created_at
}

// IsActive reports whether the club may log in.
func (c Club) IsActive() bool { return c.Status == ClubActive }
