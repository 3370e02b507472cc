package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMap(t *testing.T, total int) *SeatMap {
	t.Helper()
	layout := GenerateLayout(total)
	sm, err := NewSeatMap("BUS100", layout, layout)
	require.NoError(t, err)
	return sm
}

func TestGenerateLayout(t *testing.T) {
	labels := GenerateLayout(40)
	require.Len(t, labels, 40)

	upper, lower := 0, 0
	seen := make(map[string]struct{})
	for _, l := range labels {
		_, dup := seen[l]
		require.False(t, dup, "duplicate label %s", l)
		seen[l] = struct{}{}
		deck, err := DeckOf(l)
		require.NoError(t, err)
		if deck == DeckUpper {
			upper++
		} else {
			lower++
		}
	}
	assert.Equal(t, 20, upper)
	assert.Equal(t, 20, lower)

	// An odd count favors the upper deck.
	odd := GenerateLayout(7)
	require.Len(t, odd, 7)
	u := 0
	for _, l := range odd {
		if d, _ := DeckOf(l); d == DeckUpper {
			u++
		}
	}
	assert.Equal(t, 4, u)

	assert.Nil(t, GenerateLayout(0))
}

func TestDeckOf(t *testing.T) {
	cases := []struct {
		label string
		deck  Deck
		ok    bool
	}{
		{"R1U1", DeckUpper, true},
		{"R1L4", DeckLower, true},
		{"R12U3", DeckUpper, true},
		{"R10L11", DeckLower, true},
		{"U1", "", false},
		{"R1X1", "", false},
		{"RU1", "", false},
		{"R1", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		deck, err := DeckOf(c.label)
		if c.ok {
			assert.NoError(t, err, c.label)
			assert.Equal(t, c.deck, deck, c.label)
		} else {
			assert.Error(t, err, c.label)
		}
	}
}

func TestClaimRemovesFromPools(t *testing.T) {
	sm := newTestMap(t, 8)

	require.NoError(t, sm.Claim([]string{"R1U1", "R1L2"}))
	assert.False(t, sm.IsAvailable("R1U1"))
	assert.False(t, sm.IsAvailable("R1L2"))
	assert.Equal(t, []string{"R1L2", "R1U1"}, sm.Booked())
	assert.False(t, sm.FullyAvailable())
}

func TestClaimUnknownSeatLeavesMapUntouched(t *testing.T) {
	sm := newTestMap(t, 8)

	err := sm.Claim([]string{"R1U1", "R9U9", "R8L8"})
	var unknown *UnknownSeatError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"R8L8", "R9U9"}, unknown.Seats)

	// The valid seat from the same request must still be available.
	assert.True(t, sm.IsAvailable("R1U1"))
	assert.True(t, sm.FullyAvailable())
}

func TestClaimUnavailableNamesEverySeat(t *testing.T) {
	sm := newTestMap(t, 8)
	require.NoError(t, sm.Claim([]string{"R1U1", "R1U2"}))

	err := sm.Claim([]string{"R1U1", "R1U2", "R1U3"})
	var unavailable *SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"R1U1", "R1U2"}, unavailable.Seats)

	// All-or-nothing: the free seat in the failed request stays free.
	assert.True(t, sm.IsAvailable("R1U3"))
}

func TestReleaseIsIdempotent(t *testing.T) {
	sm := newTestMap(t, 8)
	require.NoError(t, sm.Claim([]string{"R1U1"}))

	sm.Release([]string{"R1U1"})
	assert.True(t, sm.IsAvailable("R1U1"))

	// Releasing again, or releasing a never-claimed or unknown label,
	// must change nothing.
	sm.Release([]string{"R1U1", "R1L1", "R9U9"})
	assert.True(t, sm.FullyAvailable())
	assert.Equal(t, 8, sm.TotalSeats())
}

func TestAvailableGroupsByDeck(t *testing.T) {
	sm := newTestMap(t, 4)
	upper, lower := sm.Available()
	assert.Equal(t, []string{"R1U1", "R1U2"}, upper)
	assert.Equal(t, []string{"R1L1", "R1L2"}, lower)

	require.NoError(t, sm.Claim([]string{"R1U2"}))
	upper, lower = sm.Available()
	assert.Equal(t, []string{"R1U1"}, upper)
	assert.Len(t, lower, 2)
}

func TestNewSeatMapIgnoresForeignAvailable(t *testing.T) {
	layout := []string{"R1U1", "R1L1"}
	sm, err := NewSeatMap("BUS100", layout, []string{"R1U1", "R9U9"})
	require.NoError(t, err)
	assert.True(t, sm.IsAvailable("R1U1"))
	assert.False(t, sm.IsAvailable("R1L1"))
	assert.False(t, sm.IsAvailable("R9U9"))
}

func TestNewSeatMapRejectsMalformedLayout(t *testing.T) {
	_, err := NewSeatMap("BUS100", []string{"R1U1", "bogus"}, nil)
	assert.Error(t, err)
}
