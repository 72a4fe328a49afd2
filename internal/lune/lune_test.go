package lune

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonday/internal/model"
)

const tolerance = 2 * time.Minute

func within(t *testing.T, got, want time.Time) {
	t.Helper()
	d := got.Sub(want)
	if d < 0 {
		d = -d
	}
	assert.LessOrEqualf(t, d, tolerance, "got %v, want ~%v", got, want)
}

func TestPhaseRange_KnownPeaks(t *testing.T) {
	src := New()

	tests := []struct {
		name string
		kind model.PhaseKind
		want time.Time
	}{
		{"new moon Jan 2023", model.PhaseNew, time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC)},
		{"full moon Feb 2023", model.PhaseFull, time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC)},
		{"full moon Mar 2024", model.PhaseFull, time.Date(2024, 3, 25, 7, 0, 0, 0, time.UTC)},
		{"new moon Apr 2024", model.PhaseNew, time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := src.PhaseRange(tt.want.Add(-12*time.Hour), tt.want.Add(12*time.Hour), tt.kind)
			require.Len(t, got, 1)
			within(t, got[0], tt.want)
		})
	}
}

func TestPhaseRange_FullYear(t *testing.T) {
	src := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	for _, kind := range []model.PhaseKind{model.PhaseFull, model.PhaseNew} {
		got := src.PhaseRange(start, end, kind)
		require.GreaterOrEqual(t, len(got), 12, kind.String())
		require.LessOrEqual(t, len(got), 13, kind.String())

		for i, p := range got {
			assert.False(t, p.Before(start), "peak before start: %v", p)
			assert.False(t, p.After(end), "peak after end: %v", p)
			if i == 0 {
				continue
			}
			gap := p.Sub(got[i-1]).Hours() / 24
			assert.InDelta(t, synodicMonth, gap, 0.7, "lunation gap at %v", p)
		}
	}
}

func TestPhaseRange_EndBeforeStart(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, New().PhaseRange(start, start.Add(-time.Hour), model.PhaseFull))
}

func TestPeak_Epoch(t *testing.T) {
	within(t, Peak(0, model.PhaseNew), time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC))
}
