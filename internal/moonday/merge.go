package moonday

import (
	"time"

	"moonday/internal/model"
)

// PhaseSource supplies phase peak instants for an inclusive range. Results
// must be sorted ascending, and an empty slice is returned when end is
// before start.
type PhaseSource interface {
	PhaseRange(start, end time.Time, kind model.PhaseKind) []time.Time
}

// Tag wraps raw instants of a single kind into phase events.
func Tag(instants []time.Time, kind model.PhaseKind) []model.PhaseEvent {
	out := make([]model.PhaseEvent, 0, len(instants))
	for _, t := range instants {
		out = append(out, model.PhaseEvent{Instant: t, Kind: kind})
	}
	return out
}

// Merge combines two individually sorted sequences into one ascending
// sequence. Events sharing an instant are ordered by kind (full before new);
// otherwise elements of a keep precedence over b, so the merge is stable.
func Merge(a, b []model.PhaseEvent) []model.PhaseEvent {
	out := make([]model.PhaseEvent, 0, len(a)+len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if before(b[j], a[i]) {
			out = append(out, b[j])
			j++
			continue
		}
		out = append(out, a[i])
		i++
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)

	return out
}

// before reports whether x must be emitted ahead of y.
func before(x, y model.PhaseEvent) bool {
	if !x.Instant.Equal(y.Instant) {
		return x.Instant.Before(y.Instant)
	}
	return x.Kind < y.Kind
}
