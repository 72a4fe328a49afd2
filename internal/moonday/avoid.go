package moonday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Decision is the day shift applied to a moonday so that it lands on the
// day whose practice time is closest to the phase peak.
type Decision int

const (
	ShiftBack    Decision = -1
	NoShift      Decision = 0
	ShiftForward Decision = 1
)

// Days returns the signed day offset.
func (d Decision) Days() int {
	return int(d)
}

// Label is the marker appended to event titles.
func (d Decision) Label() string {
	switch d {
	case ShiftBack:
		return "−"
	case ShiftForward:
		return "+"
	default:
		return ""
	}
}

func (d Decision) String() string {
	switch d {
	case ShiftBack:
		return "shift-back"
	case ShiftForward:
		return "shift-forward"
	default:
		return "no-shift"
	}
}

// Shift applies d to t as a calendar-day offset in t's location.
func Shift(t time.Time, d Decision) time.Time {
	if d == NoShift {
		return t
	}
	return t.AddDate(0, 0, d.Days())
}

// AnchorTime is a wall-clock time of day.
type AnchorTime struct {
	Hour   int
	Minute int
}

func (a AnchorTime) String() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// On returns the anchor on the calendar date of day, in loc.
func (a AnchorTime) On(day time.Time, loc *time.Location) time.Time {
	local := day.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), a.Hour, a.Minute, 0, 0, loc)
}

// ParseAnchor parses a strict "HH:mm" string. Minutes must fall on a
// 30-minute step ("00:00" through "23:30").
func ParseAnchor(s string) (AnchorTime, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return AnchorTime{}, configError("practice_time", s, "expected HH:mm", nil)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return AnchorTime{}, configError("practice_time", s, "hour must be 00-23", err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return AnchorTime{}, configError("practice_time", s, "minute must be 00-59", err)
	}
	if m%30 != 0 {
		return AnchorTime{}, configError("practice_time", s, "minute must be 00 or 30", nil)
	}
	return AnchorTime{Hour: h, Minute: m}, nil
}

// AvoidanceConfig enables peak-time avoidance against a daily anchor.
type AvoidanceConfig struct {
	Enabled bool
	Anchor  string
}

// Resolver decides the shift for individual phase peaks. The zero value
// never shifts.
type Resolver struct {
	enabled bool
	anchor  AnchorTime
	loc     *time.Location
}

// NewResolver validates cfg up front. A disabled config ignores Anchor.
func NewResolver(cfg AvoidanceConfig, loc *time.Location) (Resolver, error) {
	if loc == nil {
		loc = time.UTC
	}
	if !cfg.Enabled {
		return Resolver{loc: loc}, nil
	}
	anchor, err := ParseAnchor(cfg.Anchor)
	if err != nil {
		return Resolver{}, err
	}
	return Resolver{enabled: true, anchor: anchor, loc: loc}, nil
}

// Decide compares the peak against the anchor on the peak's date and on the
// neighbouring days, and returns the shift towards the closest one.
//
// The anchor on the peak's own date wins ties. If the previous and next day
// anchors tie with each other, the earlier one wins.
func (r Resolver) Decide(peak time.Time) Decision {
	if !r.enabled {
		return NoShift
	}

	practice := r.anchor.On(peak, r.loc)

	best := NoShift
	bestDist := absDuration(peak.Sub(practice))

	for _, c := range [...]struct {
		at time.Time
		d  Decision
	}{
		{practice.Add(-24 * time.Hour), ShiftBack},
		{practice.Add(24 * time.Hour), ShiftForward},
	} {
		if dist := absDuration(peak.Sub(c.at)); dist < bestDist {
			best, bestDist = c.d, dist
		}
	}

	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
