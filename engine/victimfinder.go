package engine

// A VictimFinder decides which line should be evicted when a miss must
// overwrite one of several candidates.
type VictimFinder interface {
	// FindVictim returns the slot index of the line to overwrite. candidates
	// is never empty. Unfilled lines carry zero timestamps, so they always
	// lose the comparison and are reused before any filled line is evicted.
	FindVictim(candidates []Line) int
}

// LRUVictimFinder evicts the least recently used candidate.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed LRU evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the candidate with the smallest last-used time. The
// comparison is strict, so on equal timestamps the lower-index candidate
// wins.
func (f *LRUVictimFinder) FindVictim(candidates []Line) int {
	victim := candidates[0]
	for _, c := range candidates[1:] {
		if c.LastUsed < victim.LastUsed {
			victim = c
		}
	}

	return victim.SlotIndex
}

// FIFOVictimFinder evicts the candidate that was filled first, regardless of
// hits since then.
type FIFOVictimFinder struct{}

// NewFIFOVictimFinder returns a newly constructed FIFO evictor.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the candidate with the smallest insertion time, with the
// same lower-index preference on ties as the LRU finder.
func (f *FIFOVictimFinder) FindVictim(candidates []Line) int {
	victim := candidates[0]
	for _, c := range candidates[1:] {
		if c.InsertedAt < victim.InsertedAt {
			victim = c
		}
	}

	return victim.SlotIndex
}
