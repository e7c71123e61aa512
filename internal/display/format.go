// Package display derives display-ready fields from stored reservations.
// Everything here is pure: the same reservation and location always give
// the same labels.
package display

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iliyamo/club-space-reservation/internal/model"
)

const (
	FullDayLabel = "Full Day"

	dateLayout = "January 2, 2006"
	timeLayout = "3:04 PM"
)

// TimeLabels are the three strings shown for a reservation's schedule.
type TimeLabels struct {
	DateLabel     string `json:"date_label"`
	TimeLabel     string `json:"time_label"`
	DurationLabel string `json:"duration_label"`
}

// IsFullDay reports whether a reservation occupies its whole calendar
// day.  Two independent signals are OR'd: the stored flag, and the older
// convention of saving full-day bookings as 00:00 to 23:59 on one day.
// The second check stays until every such record carries the flag.
func IsFullDay(r model.Reservation, loc *time.Location) bool {
	if r.IsFullDay {
		return true
	}
	start, end := in(r.StartTime, loc), in(r.EndTime, loc)
	if start.Hour() != 0 || start.Minute() != 0 || end.Hour() != 23 || end.Minute() != 59 {
		return false
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	return sy == ey && sm == em && sd == ed
}

// ResolveTimeLabel builds the date, time range and duration labels of a
// reservation in loc.  A nil loc keeps the timestamps' own location.  A
// record without usable timestamps gets no labels and a
// *model.MalformedRecordError.
func ResolveTimeLabel(r model.Reservation, loc *time.Location) (TimeLabels, error) {
	if err := r.CheckTimes(); err != nil {
		return TimeLabels{}, err
	}
	start, end := in(r.StartTime, loc), in(r.EndTime, loc)
	labels := TimeLabels{DateLabel: start.Format(dateLayout)}
	if IsFullDay(r, loc) {
		labels.TimeLabel = FullDayLabel
		labels.DurationLabel = FullDayLabel
		return labels, nil
	}
	labels.TimeLabel = start.Format(timeLayout) + " - " + end.Format(timeLayout)
	labels.DurationLabel = Distance(start, end)
	return labels, nil
}

// Distance renders the span between two instants as "2 hours",
// "45 minutes" and so on, independent of their order.
func Distance(a, b time.Time) string {
	return strings.TrimSpace(humanize.RelTime(a, b, "", ""))
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// FormattedReservation is the single view type handed to clients: the
// stored reservation plus the names and labels derived for display.
type FormattedReservation struct {
	model.Reservation
	TimeLabels
	StatusView StatusView `json:"status_view"`
	SpaceName  string     `json:"space_name"`
	SpaceImage string     `json:"space_image,omitempty"`
	ClubName   string     `json:"club_name"`
	ClubLogo   *string    `json:"club_logo,omitempty"`
	FullDay    bool       `json:"full_day"`
}

// Format combines a reservation with its space and club.  space and club
// may be nil when the referenced row no longer exists; the names are left
// empty in that case.  Malformed records fail like ResolveTimeLabel.
func Format(r model.Reservation, space *model.Space, club *model.Club, loc *time.Location) (FormattedReservation, error) {
	labels, err := ResolveTimeLabel(r, loc)
	if err != nil {
		return FormattedReservation{}, err
	}
	f := FormattedReservation{
		Reservation: r,
		TimeLabels:  labels,
		StatusView:  StatusPresentation(r.Status),
		FullDay:     IsFullDay(r, loc),
	}
	if space != nil {
		f.SpaceName = space.Name
		f.SpaceImage = space.Image
	}
	if club != nil {
		f.ClubName = club.Name
		f.ClubLogo = club.Logo
	}
	return f, nil
}

// FormatAll formats a snapshot, resolving spaces and clubs by id.  It
// stops at the first malformed record; callers drop those with
// analytics.Sanitize beforehand.
func FormatAll(rs []model.Reservation, spaces []model.Space, clubs []model.Club, loc *time.Location) ([]FormattedReservation, error) {
	spaceByID := make(map[uint64]*model.Space, len(spaces))
	for i := range spaces {
		spaceByID[spaces[i].ID] = &spaces[i]
	}
	clubByID := make(map[uint64]*model.Club, len(clubs))
	for i := range clubs {
		clubByID[clubs[i].ID] = &clubs[i]
	}
	out := make([]FormattedReservation, 0, len(rs))
	for _, r := range rs {
		f, err := Format(r, spaceByID[r.SpaceID], clubByID[r.ClubID], loc)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
