package engine

// A Line is one storage slot of the simulated cache.
//
// A line that has never been filled has Valid == false and both timestamps at
// zero. Timestamps only move forward, and only through engine accesses.
type Line struct {
	// SlotIndex identifies the line. It is fixed when the state is created.
	SlotIndex int

	// Valid reports whether the line currently holds a tag. Tag and Payload
	// are meaningless while Valid is false.
	Valid   bool
	Tag     uint64
	Payload any

	// LastUsed is the logical time of the most recent hit or fill.
	LastUsed uint64

	// InsertedAt is the logical time of the fill that placed the current tag.
	InsertedAt uint64

	// Dirty is reserved for future write tracking. It is never set.
	Dirty bool
}

// A State is the full content of the cache: exactly one Line per slot. The
// length is fixed by the configuration; changing the slot count requires a
// fresh state from NewEmptyState.
type State []Line

// NewEmptyState returns a State of slotCount unfilled lines. It is used both
// for initial setup and for resets.
func NewEmptyState(slotCount int) State {
	if slotCount <= 0 {
		panic("slot count must be positive")
	}

	state := make(State, slotCount)
	for i := range state {
		state[i].SlotIndex = i
	}

	return state
}

// Clone returns a deep-enough copy of the state. Payloads are opaque to the
// engine and are shared, not copied.
func (s State) Clone() State {
	clone := make(State, len(s))
	copy(clone, s)

	return clone
}

// A Request is one memory-like access: an address plus an opaque payload to
// store if the access fills a slot.
type Request struct {
	Address uint64
	Payload any
}

// An Outcome reports what a single access did. AffectedSlot is always set:
// it is the hit slot on a hit and the filled (possibly evicted) slot on a
// miss. State is the resulting cache content; callers must treat it as the
// new authoritative value and discard the one they passed in.
type Outcome struct {
	Hit          bool
	AffectedSlot int
	State        State
}
