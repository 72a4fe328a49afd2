package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonday/internal/model"
)

var stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleDescriptors() []model.EventDescriptor {
	return []model.EventDescriptor{
		{
			Start:       time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			AllDay:      true,
			Title:       "🌕Full Moon+",
			Description: "🌕Full Moon+",
			Reminder:    &model.Reminder{TriggerBefore: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
			Peak:        time.Date(2024, 4, 1, 19, 0, 0, 0, time.UTC),
			Kind:        model.PhaseFull,
			Shift:       1,
		},
		{
			Start:       time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC),
			AllDay:      true,
			Title:       "🌑New Moon",
			Description: "🌑New Moon",
			Peak:        time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC),
			Kind:        model.PhaseNew,
		},
	}
}

func exportOptions() ExportOptions {
	return ExportOptions{Name: "Moondays", Domain: "example.org", Timezone: "UTC", Now: stamp}
}

func TestExport_Document(t *testing.T) {
	out := Export(sampleDescriptors(), exportOptions())

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Moondays",
		"X-WR-TIMEZONE:UTC",
		"DTSTART;VALUE=DATE:20240402",
		"DTEND;VALUE=DATE:20240403",
		"DTSTART;VALUE=DATE:20240408",
		"SUMMARY:🌕Full Moon+",
		"ACTION:DISPLAY",
		"TRIGGER;VALUE=DATE-TIME:20240331T000000Z",
		"END:VCALENDAR",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VALARM"))
}

func TestExport_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDescriptors(), exportOptions()))

	events, err := ParseCalendar(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "🌕Full Moon+", first.Summary)
	assert.Equal(t, "🌕Full Moon+", first.Description)
	assert.True(t, first.AllDay)
	assert.Equal(t, 2024, first.Start.Year())
	assert.Equal(t, time.April, first.Start.Month())
	assert.Equal(t, 2, first.Start.Day())
	require.Len(t, first.Alarms, 1)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), first.Alarms[0])

	assert.Empty(t, events[1].Alarms)
	assert.NotEqual(t, first.UID, events[1].UID)
}

func TestEventUID_Stable(t *testing.T) {
	d := sampleDescriptors()[0]
	a := eventUID("example.org", d)

	// Display changes do not affect identity.
	d.Title = "🌕Full Moon+@19:00:00"
	d.Start = d.Start.AddDate(0, 0, 1)
	assert.Equal(t, a, eventUID("example.org", d))
	assert.True(t, strings.HasSuffix(a, "@example.org"))

	assert.NotEqual(t, a, eventUID("other.org", d))
}

func TestExport_Empty(t *testing.T) {
	out := Export(nil, exportOptions())
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")

	events, err := ParseCalendar([]byte(out))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseCalendar_Errors(t *testing.T) {
	_, err := ParseCalendar(nil)
	require.Error(t, err)
}

func TestExport_TimezoneHeader(t *testing.T) {
	for _, tt := range []struct {
		zone string
		want bool
	}{
		{"UTC", true},
		{"Asia/Seoul", true},
		{"Local", false},
		{"+09:00", false},
		{"", false},
	} {
		t.Run(tt.zone, func(t *testing.T) {
			opts := exportOptions()
			opts.Timezone = tt.zone
			body := Export(sampleDescriptors(), opts)
			if tt.want {
				assert.Contains(t, body, "X-WR-TIMEZONE:"+tt.zone)
			} else {
				assert.NotContains(t, body, "X-WR-TIMEZONE")
			}
		})
	}
}
