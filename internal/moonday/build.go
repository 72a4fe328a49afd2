package moonday

import (
	"time"

	"moonday/internal/model"
)

// ReminderConfig attaches an alarm DaysBefore days ahead of each moonday.
type ReminderConfig struct {
	Enabled    bool
	DaysBefore int
}

// DisplayConfig controls label rendering.
type DisplayConfig struct {
	ShowExactTime bool
}

const exactTimeLayout = "15:04:05"

// Build turns a phase event and its decision into a calendar descriptor.
// The adjusted start is expressed in loc.
func Build(ev model.PhaseEvent, d Decision, display DisplayConfig, reminder ReminderConfig, loc *time.Location) model.EventDescriptor {
	if loc == nil {
		loc = time.UTC
	}
	start := Shift(ev.Instant.In(loc), d)

	title := ev.Kind.Label() + " Moon" + d.Label()
	if display.ShowExactTime {
		title += "@" + start.Format(exactTimeLayout)
	}

	desc := model.EventDescriptor{
		Start:       start,
		AllDay:      true,
		Title:       title,
		Description: title,
		Peak:        ev.Instant,
		Kind:        ev.Kind,
		Shift:       d.Days(),
	}

	if reminder.Enabled {
		desc.Reminder = &model.Reminder{
			TriggerBefore: start.AddDate(0, 0, -reminder.DaysBefore),
		}
	}

	return desc
}
