// Package analytics summarises a snapshot of reservations for the admin
// and club dashboards.  Every function is pure: it reads the slices it is
// given and the explicit "now", and never touches the store.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/iliyamo/club-space-reservation/internal/model"
)

// UtilizationCapacity is the number of bookings treated as a fully used
// space.  The value is a fixed normalisation, not a measured capacity.
const UtilizationCapacity = 50

// ClubPaletteSize is the number of colour slots cycled through by the
// club activity chart.
const ClubPaletteSize = 5

// MalformedRecordError is the per-record error reported by Sanitize.
type MalformedRecordError = model.MalformedRecordError

func usable(r model.Reservation) bool { return r.CheckTimes() == nil }

// Sanitize splits a snapshot into usable records and one
// MalformedRecordError per record that has to be skipped.
func Sanitize(rs []model.Reservation) ([]model.Reservation, []*MalformedRecordError) {
	ok := make([]model.Reservation, 0, len(rs))
	var bad []*MalformedRecordError
	for _, r := range rs {
		var me *MalformedRecordError
		if errors.As(r.CheckTimes(), &me) {
			bad = append(bad, me)
			continue
		}
		ok = append(ok, r)
	}
	return ok, bad
}

func round(f float64) int { return int(math.Round(f)) }

// StatusCounts tallies reservations by status.
type StatusCounts struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// Total is the sum of the three buckets.
func (c StatusCounts) Total() int { return c.Approved + c.Pending + c.Rejected }

// CountByStatus counts the three known statuses.  Any other status value
// lands in no bucket, so the total can be lower than len(rs).
func CountByStatus(rs []model.Reservation) StatusCounts {
	var c StatusCounts
	for _, r := range rs {
		switch r.Status {
		case model.StatusApproved:
			c.Approved++
		case model.StatusPending:
			c.Pending++
		case model.StatusRejected:
			c.Rejected++
		}
	}
	return c
}

// SpaceUsage is one row of the space utilisation chart.
type SpaceUsage struct {
	SpaceID          uint64 `json:"space_id"`
	Name             string `json:"name"`
	Utilization      int    `json:"utilization"`
	ReservationCount int    `json:"reservation_count"`
}

// SpaceUtilization reports, for each space, its reservation count and
// min(round(count/50*100), 100).  Rows are ordered by utilisation,
// highest first; ties keep the order of spaces.
func SpaceUtilization(rs []model.Reservation, spaces []model.Space) []SpaceUsage {
	counts := make(map[uint64]int, len(spaces))
	for _, r := range rs {
		counts[r.SpaceID]++
	}
	out := make([]SpaceUsage, 0, len(spaces))
	for _, s := range spaces {
		n := counts[s.ID]
		pct := round(float64(n) / UtilizationCapacity * 100)
		if pct > 100 {
			pct = 100
		}
		out = append(out, SpaceUsage{SpaceID: s.ID, Name: s.Name, Utilization: pct, ReservationCount: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Utilization > out[j].Utilization })
	return out
}

// OverallSpaceUtilization is the rounded mean of the per-space values,
// or 0 when there are no spaces.
func OverallSpaceUtilization(usage []SpaceUsage) int {
	if len(usage) == 0 {
		return 0
	}
	sum := 0
	for _, u := range usage {
		sum += u.Utilization
	}
	return round(float64(sum) / float64(len(usage)))
}

// ClubUsage is one row of the club activity chart.
type ClubUsage struct {
	ClubID           uint64 `json:"club_id"`
	Name             string `json:"name"`
	ReservationCount int    `json:"reservation_count"`
	Members          uint32 `json:"members"`
	ColorIndex       int    `json:"color_index"`
}

// ClubActivity counts reservations per club.  ColorIndex is assigned
// round-robin over ClubPaletteSize slots in the order clubs are given,
// before rows are sorted by count, highest first.
func ClubActivity(rs []model.Reservation, clubs []model.Club) []ClubUsage {
	counts := make(map[uint64]int, len(clubs))
	for _, r := range rs {
		counts[r.ClubID]++
	}
	out := make([]ClubUsage, 0, len(clubs))
	for i, c := range clubs {
		out = append(out, ClubUsage{
			ClubID:           c.ID,
			Name:             c.Name,
			ReservationCount: counts[c.ID],
			Members:          c.Members,
			ColorIndex:       i % ClubPaletteSize,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReservationCount > out[j].ReservationCount })
	return out
}

// MonthStat is one month of the reservation trend chart.
type MonthStat struct {
	Month    string `json:"month"`
	Total    int    `json:"total"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}

// MonthlyStats returns the six months ending at now's month, oldest
// first.  Reservations are bucketed by the month of their start time in
// loc with the year ignored, so the same month of different years is
// merged.
func MonthlyStats(rs []model.Reservation, now time.Time, loc *time.Location) []MonthStat {
	if loc == nil {
		loc = time.UTC
	}
	var acc [12]MonthStat
	for m := range acc {
		acc[m].Month = time.Month(m + 1).String()[:3]
	}
	for _, r := range rs {
		if !usable(r) {
			continue
		}
		m := int(r.StartTime.In(loc).Month()) - 1
		acc[m].Total++
		switch r.Status {
		case model.StatusApproved:
			acc[m].Approved++
		case model.StatusRejected:
			acc[m].Rejected++
		}
	}
	current := int(now.In(loc).Month()) - 1
	out := make([]MonthStat, 0, 6)
	for i := 5; i >= 0; i-- {
		out = append(out, acc[(current-i+12)%12])
	}
	return out
}

// TimeSlot is one two-hour bucket of the time slot popularity chart.
type TimeSlot struct {
	Label      string `json:"time"`
	StartHour  int    `json:"start_hour"`
	EndHour    int    `json:"end_hour"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// TimeSlotPopularity buckets reservations by start hour into six
// half-open two-hour slots from 08:00 to 20:00.  Reservations starting
// outside that window are not counted in any slot but still count in the
// denominator of the percentages.
func TimeSlotPopularity(rs []model.Reservation, loc *time.Location) []TimeSlot {
	if loc == nil {
		loc = time.UTC
	}
	slots := make([]TimeSlot, 6)
	for i := range slots {
		start := 8 + 2*i
		slots[i] = TimeSlot{
			Label:     fmt.Sprintf("%02d:00 - %02d:00", start, start+2),
			StartHour: start,
			EndHour:   start + 2,
		}
	}
	total := 0
	for _, r := range rs {
		if !usable(r) {
			continue
		}
		total++
		h := r.StartTime.In(loc).Hour()
		if h < 8 || h >= 20 {
			continue
		}
		slots[(h-8)/2].Count++
	}
	if total > 0 {
		for i := range slots {
			slots[i].Percentage = round(float64(slots[i].Count) / float64(total) * 100)
		}
	}
	return slots
}

// PeakHour is the busiest time slot.
type PeakHour struct {
	Time       string `json:"time"`
	Percentage int    `json:"percentage"`
}

// PeakHours picks the slot with the highest count; on ties the earliest
// slot wins.  An empty input yields the zero PeakHour.
func PeakHours(slots []TimeSlot) PeakHour {
	if len(slots) == 0 {
		return PeakHour{}
	}
	best := slots[0]
	for _, s := range slots[1:] {
		if s.Count > best.Count {
			best = s
		}
	}
	return PeakHour{Time: best.Label, Percentage: best.Percentage}
}

// WeekdayStat is one bar of the day-of-week chart.
type WeekdayStat struct {
	Day    string `json:"day"`
	Count  int    `json:"count"`
	Height int    `json:"height"`
}

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayOfWeekAnalysis counts reservations per weekday of their start time,
// Monday first.  Height scales counts to a 0..90 bar range against the
// busiest day.
func DayOfWeekAnalysis(rs []model.Reservation, loc *time.Location) []WeekdayStat {
	if loc == nil {
		loc = time.UTC
	}
	var counts [7]int
	for _, r := range rs {
		if !usable(r) {
			continue
		}
		// time.Sunday is 0; shift so Monday is index 0 and Sunday 6.
		idx := (int(r.StartTime.In(loc).Weekday()) + 6) % 7
		counts[idx]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	out := make([]WeekdayStat, 7)
	for i, c := range counts {
		out[i] = WeekdayStat{Day: weekdayNames[i], Count: c}
		if max > 0 {
			out[i].Height = round(float64(c) / float64(max) * 90)
		}
	}
	return out
}
