package display

import (
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/club-space-reservation/internal/model"
)

// StatusView is the label, colour token and sentence shown for a status.
type StatusView struct {
	Label       string `json:"label"`
	ColorToken  string `json:"color"`
	Description string `json:"description"`
}

var statusViews = map[string]StatusView{
	model.StatusPending: {
		Label:       "Pending",
		ColorToken:  "yellow",
		Description: "This reservation is awaiting review by an administrator.",
	},
	model.StatusApproved: {
		Label:       "Approved",
		ColorToken:  "green",
		Description: "This reservation has been approved. The space is yours for the booked time.",
	},
	model.StatusRejected: {
		Label:       "Rejected",
		ColorToken:  "red",
		Description: "This reservation has been rejected. Please choose another time or space.",
	},
}

// StatusPresentation maps a status to its view.  Unknown strings never
// fail: they get a capitalised label, a neutral colour and a generic
// sentence, so new statuses render before clients learn about them.
func StatusPresentation(status string) StatusView {
	if v, ok := statusViews[status]; ok {
		return v
	}
	return StatusView{
		Label:       capitalize(status),
		ColorToken:  "gray",
		Description: "This reservation is currently " + status + ".",
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
