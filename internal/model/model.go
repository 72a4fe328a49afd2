package model

import "time"

// PhaseKind identifies which lunar phase peak an event marks. The numeric
// order doubles as the tie-break order when two peaks share an instant.
type PhaseKind int

const (
	PhaseFull PhaseKind = iota
	PhaseNew
)

// Label is the short display label used in titles and previews.
func (k PhaseKind) Label() string {
	switch k {
	case PhaseFull:
		return "🌕Full"
	case PhaseNew:
		return "🌑New"
	default:
		return "?"
	}
}

func (k PhaseKind) String() string {
	switch k {
	case PhaseFull:
		return "full"
	case PhaseNew:
		return "new"
	default:
		return "unknown"
	}
}

// PhaseEvent is a single phase peak as reported by a phase source.
type PhaseEvent struct {
	Instant time.Time
	Kind    PhaseKind
}

// Reminder is the alarm attached to a calendar entry.
type Reminder struct {
	// TriggerBefore is the absolute instant at which the alarm fires.
	TriggerBefore time.Time
}

// EventDescriptor is a calendar-ready moonday entry. Descriptors are rebuilt
// on every generation and never mutated after creation.
type EventDescriptor struct {
	// Start is the adjusted peak instant in the display timezone. Exporters
	// only use its calendar date since the entry is all-day.
	Start  time.Time
	AllDay bool

	Title       string
	Description string

	// Reminder is nil when reminders are disabled.
	Reminder *Reminder

	// Peak and Kind keep the unshifted source event, used by previews and
	// stable UID derivation.
	Peak time.Time
	Kind PhaseKind
	// Shift is the applied day offset: -1, 0 or +1.
	Shift int
}
