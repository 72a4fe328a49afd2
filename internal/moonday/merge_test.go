package moonday

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonday/internal/model"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sortedEvents(rnd *rand.Rand, n int, kind model.PhaseKind) []model.PhaseEvent {
	instants := make([]time.Time, n)
	for i := range instants {
		instants[i] = base.Add(time.Duration(rnd.Intn(24*365)) * time.Hour)
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })
	return Tag(instants, kind)
}

func TestMerge_SortedAndComplete(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		a := sortedEvents(rnd, rnd.Intn(30), model.PhaseFull)
		b := sortedEvents(rnd, rnd.Intn(30), model.PhaseNew)

		got := Merge(a, b)
		require.Len(t, got, len(a)+len(b))

		for i := 1; i < len(got); i++ {
			require.False(t, got[i].Instant.Before(got[i-1].Instant), "round %d index %d out of order", round, i)
		}

		counts := map[model.PhaseKind]int{}
		for _, ev := range got {
			counts[ev.Kind]++
		}
		assert.Equal(t, len(a), counts[model.PhaseFull])
		assert.Equal(t, len(b), counts[model.PhaseNew])
	}
}

func TestMerge_TiesOrderedByKind(t *testing.T) {
	at := base.Add(36 * time.Hour)
	full := Tag([]time.Time{at}, model.PhaseFull)
	nw := Tag([]time.Time{base, at}, model.PhaseNew)

	want := []model.PhaseEvent{
		{Instant: base, Kind: model.PhaseNew},
		{Instant: at, Kind: model.PhaseFull},
		{Instant: at, Kind: model.PhaseNew},
	}

	// Argument order must not change the result.
	if diff := cmp.Diff(want, Merge(full, nw)); diff != "" {
		t.Fatalf("Merge(full, new) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Merge(nw, full)); diff != "" {
		t.Fatalf("Merge(new, full) mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))

	only := Tag([]time.Time{base}, model.PhaseFull)
	assert.Equal(t, only, Merge(only, nil))
	assert.Equal(t, only, Merge(nil, only))
}
