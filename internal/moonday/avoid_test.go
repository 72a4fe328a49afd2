package moonday

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(month time.Month, day, hour, min int) time.Time {
	return time.Date(2024, month, day, hour, min, 0, 0, time.UTC)
}

func TestResolver_Decide(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
		peak   time.Time
		want   Decision
	}{
		{"evening peak moves to next morning practice", "06:00", at(4, 1, 19, 0), ShiftForward},
		{"peak at practice time", "06:00", at(4, 1, 6, 0), NoShift},
		{"peak shortly before practice", "06:00", at(4, 1, 3, 0), NoShift},
		{"equidistant between today and tomorrow", "06:00", at(4, 1, 18, 0), NoShift},
		{"just past the midpoint", "06:00", at(4, 1, 18, 1), ShiftForward},
		{"early peak closer to previous evening", "20:00", at(4, 1, 2, 0), ShiftBack},
		{"equidistant between yesterday and today", "20:00", at(4, 1, 8, 0), NoShift},
		{"midnight anchor late peak", "00:00", at(4, 1, 23, 30), ShiftForward},
		{"half-hour anchor", "23:30", at(4, 1, 0, 15), ShiftBack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(AvoidanceConfig{Enabled: true, Anchor: tt.anchor}, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Decide(tt.peak))
		})
	}
}

func TestResolver_DisabledNeverShifts(t *testing.T) {
	r, err := NewResolver(AvoidanceConfig{Enabled: false, Anchor: "not-a-time"}, time.UTC)
	require.NoError(t, err)

	for h := 0; h < 24; h++ {
		assert.Equal(t, NoShift, r.Decide(at(4, 1, h, 0)))
	}

	var zero Resolver
	assert.Equal(t, NoShift, zero.Decide(at(4, 1, 19, 0)))
}

func TestResolver_UsesLocalCalendarDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	r, err := NewResolver(AvoidanceConfig{Enabled: true, Anchor: "06:00"}, seoul)
	require.NoError(t, err)

	// 10:00Z is 19:00 in Seoul.
	peak := at(4, 1, 10, 0)
	d := r.Decide(peak)
	require.Equal(t, ShiftForward, d)

	shifted := Shift(peak.In(seoul), d)
	assert.Equal(t, 2, shifted.Day())
	assert.Equal(t, time.April, shifted.Month())
}

func TestParseAnchor(t *testing.T) {
	good := map[string]AnchorTime{
		"00:00": {0, 0},
		"06:30": {6, 30},
		"23:30": {23, 30},
	}
	for in, want := range good {
		got, err := ParseAnchor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		assert.Equal(t, in, got.String())
	}

	for _, in := range []string{"", "6:00", "06:15", "24:00", "06:60", "ab:cd", "06-00", "06:000"} {
		_, err := ParseAnchor(in)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError for %q, got %v", in, err)
		assert.Equal(t, "practice_time", cfgErr.Field)
	}
}

func TestNewResolver_MalformedAnchor(t *testing.T) {
	_, err := NewResolver(AvoidanceConfig{Enabled: true, Anchor: "7am"}, time.UTC)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "7am")
}

func TestShift(t *testing.T) {
	peak := at(4, 1, 19, 7)
	assert.Equal(t, at(3, 31, 19, 7), Shift(peak, ShiftBack))
	assert.Equal(t, peak, Shift(peak, NoShift))
	assert.Equal(t, at(4, 2, 19, 7), Shift(peak, ShiftForward))
}

func TestDecision_Labels(t *testing.T) {
	assert.Equal(t, "−", ShiftBack.Label())
	assert.Equal(t, "", NoShift.Label())
	assert.Equal(t, "+", ShiftForward.Label())
	assert.Equal(t, -1, ShiftBack.Days())
	assert.Equal(t, 1, ShiftForward.Days())
}
