package model

import (
    "strings"
    "time"
)

// DefaultSpaceName is the sentinel space used for bookings that are not
// tied to a particular room.  It is created at startup when missing and
// can never be deleted.
const DefaultSpaceName = "Non-specific"

// Space describes a bookable physical location on campus.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name; unique by convention only.
//  Capacity  – number of people the space holds.
//  Features  – ordered free-text tags (projector, whiteboard...).
//  Image     – URL or path of the space picture.
//  CreatedAt – creation timestamp.
type Space struct {
    ID        uint64    `json:"id"`         // spaces.id
    Name      string    `json:"name"`       // spaces.name
    Capacity  uint32    `json:"capacity"`   // spaces.capacity
    Features  []string  `json:"features"`   // spaces.features (JSON array)
    Image     string    `json:"image"`      // spaces.image
    CreatedAt time.Time `json:"created_at"` // spaces.created_at
}

// IsDefault reports whether s is the undeletable sentinel space.
func (s Space) IsDefault() bool { return s.Name == DefaultSpaceName }

// IsReservedSpaceName reports whether name would collide with the default
// space.  The comparison ignores case and surrounding blanks.
func IsReservedSpaceName(name string) bool {
    return strings.EqualFold(strings.TrimSpace(name), DefaultSpaceName)
}
