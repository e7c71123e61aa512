package display

import (
	"sort"
	"strings"
	"time"
)

// Sort keys accepted by Query.Sort.
const (
	SortStart   = "start_time"
	SortCreated = "created_at"
	SortTitle   = "title"
	SortSpace   = "space"
	SortClub    = "club"
	SortStatus  = "status"
)

// Query is the search, filter and sort state of a reservation list.
// Zero values disable the corresponding filter.
type Query struct {
	Search  string // case-insensitive match on title, description, space and club names
	Status  string
	SpaceID uint64
	ClubID  uint64
	Sort    string // one of the Sort* keys; defaults to SortStart
	Desc    bool
}

func (q Query) match(f FormattedReservation) bool {
	if q.Status != "" && f.Reservation.Status != q.Status {
		return false
	}
	if q.SpaceID != 0 && f.SpaceID != q.SpaceID {
		return false
	}
	if q.ClubID != 0 && f.ClubID != q.ClubID {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		hay := strings.ToLower(f.Title + "\n" + f.Description + "\n" + f.SpaceName + "\n" + f.ClubName)
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func (q Query) less(a, b FormattedReservation) bool {
	switch q.Sort {
	case SortCreated:
		return a.CreatedAt.Before(b.CreatedAt)
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortSpace:
		return strings.ToLower(a.SpaceName) < strings.ToLower(b.SpaceName)
	case SortClub:
		return strings.ToLower(a.ClubName) < strings.ToLower(b.ClubName)
	case SortStatus:
		return a.Reservation.Status < b.Reservation.Status
	default:
		return a.StartTime.Before(b.StartTime)
	}
}

// Apply returns the reservations matching q in q's order.  The input is
// not modified and equal keys keep their input order.
func Apply(list []FormattedReservation, q Query) []FormattedReservation {
	out := make([]FormattedReservation, 0, len(list))
	for _, f := range list {
		if q.match(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Desc {
			return q.less(out[j], out[i])
		}
		return q.less(out[i], out[j])
	})
	return out
}

// CalendarDay lists the reservations starting on one date.
type CalendarDay struct {
	Date         string                 `json:"date"` // YYYY-MM-DD
	Reservations []FormattedReservation `json:"reservations"`
}

// CalendarMonth groups reservations by the calendar day of their start
// time in loc, for every day of the given month.  Days without bookings
// are present with an empty list so clients can draw the full grid.
func CalendarMonth(list []FormattedReservation, year int, month time.Month, loc *time.Location) []CalendarDay {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()
	out := make([]CalendarDay, days)
	for i := range out {
		out[i] = CalendarDay{
			Date:         first.AddDate(0, 0, i).Format("2006-01-02"),
			Reservations: []FormattedReservation{},
		}
	}
	for _, f := range list {
		start := f.StartTime.In(loc)
		if start.Year() != year || start.Month() != month {
			continue
		}
		d := start.Day() - 1
		out[d].Reservations = append(out[d].Reservations, f)
	}
	for i := range out {
		rs := out[i].Reservations
		sort.SliceStable(rs, func(a, b int) bool { return rs[a].StartTime.Before(rs[b].StartTime) })
	}
	return out
}
