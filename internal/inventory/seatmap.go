package inventory

import (
	"fmt"
	"sort"
)

// Deck identifies one of the two seat pools on a bus. The deck marker is
// embedded in every seat label (R1U1 is row 1, upper deck, seat 1).
type Deck string

const (
	DeckUpper Deck = "U"
	DeckLower Deck = "L"
)

// seatsPerRow controls how many seats a generated layout places in each
// row of a deck.
const seatsPerRow = 4

// SeatMap is the in-memory seat inventory of a single bus. The layout is
// fixed at bus registration; the upper and lower pools hold the labels
// that are currently available. A label is in at most one pool and is
// absent from both once booked. SeatMap is not safe for concurrent use;
// the Allocator serializes access per bus.
type SeatMap struct {
	busID  string
	layout map[string]Deck     // full seat layout, label -> deck
	upper  map[string]struct{} // available upper-deck labels
	lower  map[string]struct{} // available lower-deck labels
}

// NewSeatMap builds a seat map for busID from the full layout, with the
// given labels marked available. Labels in available that are not part of
// the layout are ignored. Use GenerateLayout to derive a fresh layout at
// bus creation time.
func NewSeatMap(busID string, layout []string, available []string) (*SeatMap, error) {
	sm := &SeatMap{
		busID:  busID,
		layout: make(map[string]Deck, len(layout)),
		upper:  make(map[string]struct{}),
		lower:  make(map[string]struct{}),
	}
	for _, label := range layout {
		deck, err := DeckOf(label)
		if err != nil {
			return nil, err
		}
		sm.layout[label] = deck
	}
	for _, label := range available {
		if _, ok := sm.layout[label]; ok {
			sm.add(label)
		}
	}
	return sm, nil
}

// DeckOf derives the deck from a seat label by scanning for the first
// alphabetic marker after the leading "R<row>" prefix. It returns an
// error for labels that do not follow the R<row><deck><num> grammar.
func DeckOf(label string) (Deck, error) {
	if len(label) < 4 || label[0] != 'R' {
		return "", fmt.Errorf("malformed seat label %q", label)
	}
	i := 1
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(label) {
		return "", fmt.Errorf("malformed seat label %q", label)
	}
	switch label[i] {
	case 'U':
		return DeckUpper, nil
	case 'L':
		return DeckLower, nil
	}
	return "", fmt.Errorf("unknown deck marker in seat label %q", label)
}

// GenerateLayout produces the full seat layout for a bus with totalSeats
// seats. Seats are split between the two decks, upper first when the
// count is odd, laid out seatsPerRow to a row: R1U1..R1U4, R2U1, ... and
// R1L1..R1L4, R2L1, ...
func GenerateLayout(totalSeats int) []string {
	if totalSeats <= 0 {
		return nil
	}
	upperCount := (totalSeats + 1) / 2
	labels := make([]string, 0, totalSeats)
	appendDeck := func(deck Deck, count int) {
		for i := 0; i < count; i++ {
			row := i/seatsPerRow + 1
			num := i%seatsPerRow + 1
			labels = append(labels, fmt.Sprintf("R%d%s%d", row, deck, num))
		}
	}
	appendDeck(DeckUpper, upperCount)
	appendDeck(DeckLower, totalSeats-upperCount)
	return labels
}

// BusID returns the immutable bus identifier this map belongs to.
func (m *SeatMap) BusID() string { return m.busID }

// IsAvailable reports whether the seat is present in either pool.
func (m *SeatMap) IsAvailable(label string) bool {
	if _, ok := m.upper[label]; ok {
		return true
	}
	_, ok := m.lower[label]
	return ok
}

// Claim removes every requested seat from its pool in one indivisible
// step. It succeeds only if all requested seats are currently available.
// On failure the map is left completely unchanged: labels outside the
// layout produce an UnknownSeatError naming all of them, and otherwise a
// SeatsUnavailableError names every seat that is already taken, not just
// the first.
func (m *SeatMap) Claim(labels []string) error {
	var unknown, unavailable []string
	for _, label := range labels {
		if _, ok := m.layout[label]; !ok {
			unknown = append(unknown, label)
			continue
		}
		if !m.IsAvailable(label) {
			unavailable = append(unavailable, label)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownSeatError{Seats: unknown}
	}
	if len(unavailable) > 0 {
		sort.Strings(unavailable)
		return &SeatsUnavailableError{Seats: unavailable}
	}
	for _, label := range labels {
		delete(m.upper, label)
		delete(m.lower, label)
	}
	return nil
}

// Release re-adds seats to their original pool, determined by the layout.
// It is idempotent per seat: releasing an already-available seat is a
// no-op, never an error. Labels outside the layout are skipped, so a
// release derived from a ledger entry can never corrupt the pools.
func (m *SeatMap) Release(labels []string) {
	for _, label := range labels {
		if _, ok := m.layout[label]; ok {
			m.add(label)
		}
	}
}

// Available returns sorted snapshots of the upper and lower pools.
func (m *SeatMap) Available() (upper, lower []string) {
	upper = make([]string, 0, len(m.upper))
	for label := range m.upper {
		upper = append(upper, label)
	}
	lower = make([]string, 0, len(m.lower))
	for label := range m.lower {
		lower = append(lower, label)
	}
	sort.Strings(upper)
	sort.Strings(lower)
	return upper, lower
}

// Booked returns the sorted labels that are part of the layout but absent
// from both pools.
func (m *SeatMap) Booked() []string {
	var booked []string
	for label := range m.layout {
		if !m.IsAvailable(label) {
			booked = append(booked, label)
		}
	}
	sort.Strings(booked)
	return booked
}

// FullyAvailable reports whether both pools together equal the full
// layout, i.e. the bus has no outstanding bookings. This is the only
// condition under which a bus may be deregistered.
func (m *SeatMap) FullyAvailable() bool {
	return len(m.upper)+len(m.lower) == len(m.layout)
}

// TotalSeats returns the size of the fixed layout.
func (m *SeatMap) TotalSeats() int { return len(m.layout) }

func (m *SeatMap) add(label string) {
	if m.layout[label] == DeckUpper {
		m.upper[label] = struct{}{}
	} else {
		m.lower[label] = struct{}{}
	}
}
