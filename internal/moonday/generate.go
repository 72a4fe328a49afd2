package moonday

import (
	"errors"
	"strconv"
	"time"

	appLog "moonday/internal/log"
	"moonday/internal/model"
)

const (
	// DefaultMaxHorizonYears bounds how far past the current year a
	// generation may reach.
	DefaultMaxHorizonYears = 3

	// PreviewLimit is the number of entries listed in previews.
	PreviewLimit = 50
)

// Options is the immutable input of a single generation run.
type Options struct {
	// UpToYear is the last calendar year (inclusive) to cover.
	UpToYear int

	Avoidance AvoidanceConfig
	Reminder  ReminderConfig
	Display   DisplayConfig

	// Location is the display timezone. Anchors are applied to calendar
	// dates in this zone. Nil means UTC.
	Location *time.Location

	// MaxHorizonYears caps UpToYear at now.Year()+MaxHorizonYears. Zero
	// means DefaultMaxHorizonYears.
	MaxHorizonYears int
}

// Validate checks opts against now. Only configuration problems are
// reported; an UpToYear in the past is valid and produces no events.
func (o Options) Validate(now time.Time) error {
	horizon := o.MaxHorizonYears
	if horizon <= 0 {
		horizon = DefaultMaxHorizonYears
	}
	if maxYear := now.In(o.location()).Year() + horizon; o.UpToYear > maxYear {
		return configError("up_to_year", strconv.Itoa(o.UpToYear), "beyond "+strconv.Itoa(maxYear), nil)
	}

	if o.Reminder.Enabled && o.Reminder.DaysBefore != 1 && o.Reminder.DaysBefore != 2 {
		return configError("reminder_days_before", strconv.Itoa(o.Reminder.DaysBefore), "must be 1 or 2", nil)
	}

	if o.Avoidance.Enabled {
		if _, err := ParseAnchor(o.Avoidance.Anchor); err != nil {
			return err
		}
	}

	return nil
}

// RangeEnd is the last instant covered: the final millisecond of UpToYear.
func (o Options) RangeEnd() time.Time {
	return time.Date(o.UpToYear, time.December, 31, 23, 59, 59, int(999*time.Millisecond), o.location())
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Generator runs the moonday pipeline against a phase source.
type Generator struct {
	source PhaseSource
}

func NewGenerator(source PhaseSource) *Generator {
	return &Generator{source: source}
}

// Generate produces the ordered descriptors for [now, end of UpToYear].
func (g *Generator) Generate(opts Options, now time.Time) ([]model.EventDescriptor, error) {
	if g.source == nil {
		return nil, errors.New("moonday: generator has no phase source")
	}
	if err := opts.Validate(now); err != nil {
		return nil, err
	}

	loc := opts.location()
	resolver, err := NewResolver(opts.Avoidance, loc)
	if err != nil {
		return nil, err
	}

	end := opts.RangeEnd()
	if end.Before(now) {
		appLog.Debug("moonday: range ends before now", "up_to_year", opts.UpToYear, "now", now)
		return []model.EventDescriptor{}, nil
	}

	full := Tag(g.source.PhaseRange(now, end, model.PhaseFull), model.PhaseFull)
	nw := Tag(g.source.PhaseRange(now, end, model.PhaseNew), model.PhaseNew)
	events := Merge(full, nw)

	out := make([]model.EventDescriptor, 0, len(events))
	shifted := 0
	for _, ev := range events {
		d := resolver.Decide(ev.Instant)
		if d != NoShift {
			shifted++
		}
		out = append(out, Build(ev, d, opts.Display, opts.Reminder, loc))
	}

	appLog.Debug("moonday: generated",
		"events", len(out),
		"shifted", shifted,
		"range_start", now.Format(time.RFC3339),
		"range_end", end.Format(time.RFC3339),
		"timezone", loc.String(),
	)

	return out, nil
}
