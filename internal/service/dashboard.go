package service

import (
    "context"
    "sort"
    "time"

    "github.com/iliyamo/club-space-reservation/internal/analytics"
    "github.com/iliyamo/club-space-reservation/internal/display"
    "github.com/iliyamo/club-space-reservation/internal/logger"
    "github.com/iliyamo/club-space-reservation/internal/model"
)

// recentLimit is how many reservations the dashboards list inline.
const recentLimit = 5

// AdminDashboard is the full analytics view for administrators.
type AdminDashboard struct {
    Counts             analytics.StatusCounts         `json:"counts"`
    TotalReservations  int                            `json:"total_reservations"`
    TotalSpaces        int                            `json:"total_spaces"`
    TotalClubs         int                            `json:"total_clubs"`
    ActiveClubs        int                            `json:"active_clubs"`
    OverallUtilization int                            `json:"overall_utilization"`
    SpaceUtilization   []analytics.SpaceUsage         `json:"space_utilization"`
    ClubActivity       []analytics.ClubUsage          `json:"club_activity"`
    Monthly            []analytics.MonthStat          `json:"monthly"`
    TimeSlots          []analytics.TimeSlot           `json:"time_slots"`
    DayOfWeek          []analytics.WeekdayStat        `json:"day_of_week"`
    PeakHour           analytics.PeakHour             `json:"peak_hour"`
    Recent             []display.FormattedReservation `json:"recent"`
    SkippedRecords     int                            `json:"skipped_records"`
    GeneratedAt        time.Time                      `json:"generated_at"`
}

// ClubDashboard is the analytics view a club sees about its own bookings.
type ClubDashboard struct {
    Counts            analytics.StatusCounts         `json:"counts"`
    TotalReservations int                            `json:"total_reservations"`
    Monthly           []analytics.MonthStat          `json:"monthly"`
    TimeSlots         []analytics.TimeSlot           `json:"time_slots"`
    DayOfWeek         []analytics.WeekdayStat        `json:"day_of_week"`
    PeakHour          analytics.PeakHour             `json:"peak_hour"`
    Upcoming          []display.FormattedReservation `json:"upcoming"`
    Recent            []display.FormattedReservation `json:"recent"`
    SkippedRecords    int                            `json:"skipped_records"`
    GeneratedAt       time.Time                      `json:"generated_at"`
}

// DashboardService fetches a snapshot from the stores and summarises it.
type DashboardService struct {
    reservations ReservationStore
    spaces       SpaceStore
    clubs        ClubStore
    log          *logger.Logger
    loc          *time.Location
    now          func() time.Time
}

// NewDashboardService wires the service.  loc is the campus time zone used
// for bucketing; nil means UTC.
func NewDashboardService(reservations ReservationStore, spaces SpaceStore, clubs ClubStore, loc *time.Location, log *logger.Logger) *DashboardService {
    if log == nil {
        log = logger.Nop()
    }
    if loc == nil {
        loc = time.UTC
    }
    return &DashboardService{
        reservations: reservations,
        spaces:       spaces,
        clubs:        clubs,
        log:          log,
        loc:          loc,
        now:          time.Now,
    }
}

// WithClock replaces the time source; used by tests.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
    s.now = now
    return s
}

// snapshot holds the usable reservations only; malformed ones are logged,
// counted in skipped and left out of every aggregate.
type snapshot struct {
    usable  []model.Reservation
    skipped int
    spaces  []model.Space
    clubs   []model.Club
}

func (s *DashboardService) load(ctx context.Context, f model.ReservationFilter) (snapshot, error) {
    var snap snapshot
    all, err := s.reservations.List(ctx, f)
    if err != nil {
        return snap, err
    }
    if snap.spaces, err = s.spaces.List(ctx); err != nil {
        return snap, err
    }
    if snap.clubs, err = s.clubs.List(ctx); err != nil {
        return snap, err
    }
    usable, bad := analytics.Sanitize(all)
    for _, e := range bad {
        s.log.Warn("ANALYTICS", e.Error())
    }
    snap.usable, snap.skipped = usable, len(bad)
    return snap, nil
}

// Admin builds the administrator dashboard over every reservation.
func (s *DashboardService) Admin(ctx context.Context) (AdminDashboard, error) {
    snap, err := s.load(ctx, model.ReservationFilter{})
    if err != nil {
        return AdminDashboard{}, err
    }
    now := s.now()
    slots := analytics.TimeSlotPopularity(snap.usable, s.loc)
    usage := analytics.SpaceUtilization(snap.usable, snap.spaces)
    formatted, err := display.FormatAll(snap.usable, snap.spaces, snap.clubs, s.loc)
    if err != nil {
        return AdminDashboard{}, err
    }

    d := AdminDashboard{
        Counts:             analytics.CountByStatus(snap.usable),
        TotalReservations:  len(snap.usable),
        TotalSpaces:        len(snap.spaces),
        TotalClubs:         len(snap.clubs),
        OverallUtilization: analytics.OverallSpaceUtilization(usage),
        SpaceUtilization:   usage,
        ClubActivity:       analytics.ClubActivity(snap.usable, snap.clubs),
        Monthly:            analytics.MonthlyStats(snap.usable, now, s.loc),
        TimeSlots:          slots,
        DayOfWeek:          analytics.DayOfWeekAnalysis(snap.usable, s.loc),
        PeakHour:           analytics.PeakHours(slots),
        Recent:             recent(formatted),
        SkippedRecords:     snap.skipped,
        GeneratedAt:        now.UTC(),
    }
    for _, c := range snap.clubs {
        if c.IsActive() {
            d.ActiveClubs++
        }
    }
    return d, nil
}

// Club builds the dashboard for one club's reservations.
func (s *DashboardService) Club(ctx context.Context, clubID uint64) (ClubDashboard, error) {
    snap, err := s.load(ctx, model.ReservationFilter{ClubID: clubID})
    if err != nil {
        return ClubDashboard{}, err
    }
    now := s.now()
    slots := analytics.TimeSlotPopularity(snap.usable, s.loc)
    formatted, err := display.FormatAll(snap.usable, snap.spaces, snap.clubs, s.loc)
    if err != nil {
        return ClubDashboard{}, err
    }

    return ClubDashboard{
        Counts:            analytics.CountByStatus(snap.usable),
        TotalReservations: len(snap.usable),
        Monthly:           analytics.MonthlyStats(snap.usable, now, s.loc),
        TimeSlots:         slots,
        DayOfWeek:         analytics.DayOfWeekAnalysis(snap.usable, s.loc),
        PeakHour:          analytics.PeakHours(slots),
        Upcoming:          upcoming(formatted, now),
        Recent:            recent(formatted),
        SkippedRecords:    snap.skipped,
        GeneratedAt:       now.UTC(),
    }, nil
}

// recent keeps the newest recentLimit entries; list is already newest first.
func recent(list []display.FormattedReservation) []display.FormattedReservation {
    if len(list) > recentLimit {
        list = list[:recentLimit]
    }
    return list
}

// upcoming lists the next non-rejected reservations starting after now,
// soonest first.
func upcoming(list []display.FormattedReservation, now time.Time) []display.FormattedReservation {
    out := make([]display.FormattedReservation, 0, recentLimit)
    for _, f := range list {
        if f.Status != model.StatusRejected && f.StartTime.After(now) {
            out = append(out, f)
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
    return recent(out)
}
