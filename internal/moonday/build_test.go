package moonday

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonday/internal/model"
)

func TestBuild_ReminderOffset(t *testing.T) {
	ev := model.PhaseEvent{Instant: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Kind: model.PhaseFull}

	desc := Build(ev, NoShift, DisplayConfig{}, ReminderConfig{Enabled: true, DaysBefore: 2}, time.UTC)

	require.NotNil(t, desc.Reminder)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), desc.Reminder.TriggerBefore)
}

func TestBuild_ReminderFollowsShift(t *testing.T) {
	ev := model.PhaseEvent{Instant: time.Date(2024, 4, 1, 19, 0, 0, 0, time.UTC), Kind: model.PhaseNew}

	desc := Build(ev, ShiftForward, DisplayConfig{}, ReminderConfig{Enabled: true, DaysBefore: 1}, time.UTC)

	assert.Equal(t, time.Date(2024, 4, 2, 19, 0, 0, 0, time.UTC), desc.Start)
	require.NotNil(t, desc.Reminder)
	assert.Equal(t, time.Date(2024, 4, 1, 19, 0, 0, 0, time.UTC), desc.Reminder.TriggerBefore)
}

func TestBuild_NoReminder(t *testing.T) {
	ev := model.PhaseEvent{Instant: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Kind: model.PhaseFull}
	desc := Build(ev, NoShift, DisplayConfig{}, ReminderConfig{Enabled: false, DaysBefore: 2}, time.UTC)
	assert.Nil(t, desc.Reminder)
}

func TestBuild_Titles(t *testing.T) {
	peak := time.Date(2024, 4, 1, 19, 7, 42, 0, time.UTC)

	tests := []struct {
		name    string
		kind    model.PhaseKind
		d       Decision
		display DisplayConfig
		want    string
	}{
		{"full plain", model.PhaseFull, NoShift, DisplayConfig{}, "🌕Full Moon"},
		{"full exact", model.PhaseFull, NoShift, DisplayConfig{ShowExactTime: true}, "🌕Full Moon@19:07:42"},
		{"new shifted forward", model.PhaseNew, ShiftForward, DisplayConfig{}, "🌑New Moon+"},
		{"new shifted back exact", model.PhaseNew, ShiftBack, DisplayConfig{ShowExactTime: true}, "🌑New Moon−@19:07:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := Build(model.PhaseEvent{Instant: peak, Kind: tt.kind}, tt.d, tt.display, ReminderConfig{}, time.UTC)
			assert.Equal(t, tt.want, desc.Title)
			assert.Equal(t, desc.Title, desc.Description)
			assert.True(t, desc.AllDay)
			assert.Equal(t, tt.d.Days(), desc.Shift)
			assert.Equal(t, peak, desc.Peak)
		})
	}
}

func TestBuild_ExactTimeInDisplayZone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	peak := time.Date(2024, 4, 1, 17, 7, 42, 0, time.UTC)

	desc := Build(model.PhaseEvent{Instant: peak, Kind: model.PhaseFull}, NoShift, DisplayConfig{ShowExactTime: true}, ReminderConfig{}, loc)

	assert.True(t, strings.HasSuffix(desc.Title, "@19:07:42"), desc.Title)
	assert.Equal(t, loc, desc.Start.Location())
}
