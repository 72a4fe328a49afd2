package moonday

import (
	"time"

	"moonday/internal/model"
)

const (
	previewDateLayout     = "2006/01/02"
	previewDateTimeLayout = "2006/01/02 15:04:05"
)

// PreviewRow is one line of the moonday preview table.
type PreviewRow struct {
	Label    string
	Kind     model.PhaseKind
	Decision Decision
	At       time.Time
	Display  string
}

// Preview returns up to limit rows for descs. A non-positive limit means
// PreviewLimit.
func Preview(descs []model.EventDescriptor, limit int, display DisplayConfig) []PreviewRow {
	if limit <= 0 {
		limit = PreviewLimit
	}
	if len(descs) < limit {
		limit = len(descs)
	}

	layout := previewDateLayout
	if display.ShowExactTime {
		layout = previewDateTimeLayout
	}

	rows := make([]PreviewRow, 0, limit)
	for _, d := range descs[:limit] {
		dec := Decision(d.Shift)
		label := d.Kind.Label()
		if dec != NoShift {
			label += "(" + dec.Label() + ")"
		}
		rows = append(rows, PreviewRow{
			Label:    label,
			Kind:     d.Kind,
			Decision: dec,
			At:       d.Start,
			Display:  d.Start.Format(layout),
		})
	}
	return rows
}
