// Package engine decides hit/miss outcomes and evictions for a fixed-size
// cache fed with a stream of memory-like accesses.
//
// The engine owns only its configuration and a logical clock. The cache
// content itself travels with the caller: every access consumes the previous
// State and returns a new one. Outputs are a pure function of the
// configuration, the number of prior accesses, and the inputs; there is no
// I/O, no randomness, and no concurrency inside the engine.
package engine

import "fmt"

// A StateSizeMismatchError reports that the caller supplied a state whose
// length disagrees with the configured slot count. It signals caller/engine
// desynchronization and is never repaired silently.
type StateSizeMismatchError struct {
	Want int
	Got  int
}

func (e *StateSizeMismatchError) Error() string {
	return fmt.Sprintf("state has %d lines, engine is configured for %d slots",
		e.Got, e.Want)
}

// An Engine simulates one cache. It is not safe for concurrent use: the
// logical clock must not see interleaved increments, so callers sharing an
// engine must serialize Access calls.
type Engine struct {
	config Config
	finder VictimFinder

	// clock is pre-incremented on every access, so 0 is reserved to mean
	// "never touched".
	clock uint64
}

// NewEngine creates an engine for the given configuration. It fails with an
// ErrInvalidConfig-wrapped error if the configuration is not valid.
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{config: config}

	switch config.Policy {
	case EvictFIFO:
		e.finder = NewFIFOVictimFinder()
	default:
		e.finder = NewLRUVictimFinder()
	}

	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Clock returns the current logical time, i.e. the number of accesses the
// engine has performed.
func (e *Engine) Clock() uint64 {
	return e.clock
}

// Tag returns the tag the engine derives from an address.
func (e *Engine) Tag(addr uint64) uint64 {
	return addr / uint64(e.config.SlotCount)
}

// SetIndex returns the set an address homes in. Under direct mapping each
// slot is its own set.
func (e *Engine) SetIndex(addr uint64) int {
	return int(addr % uint64(e.config.NumSets()))
}

// Access simulates one access. It returns the outcome together with the new
// state; the input state is not modified. The only error is a
// *StateSizeMismatchError, returned before the clock moves or anything is
// mutated.
func (e *Engine) Access(req Request, state State) (Outcome, error) {
	if len(state) != e.config.SlotCount {
		return Outcome{}, &StateSizeMismatchError{
			Want: e.config.SlotCount,
			Got:  len(state),
		}
	}

	e.clock++

	next := state.Clone()
	tag := e.Tag(req.Address)

	if e.config.Scheme == MappingTwoWay {
		return e.accessTwoWay(req, tag, next), nil
	}

	return e.accessDirect(req, tag, next), nil
}

func (e *Engine) accessDirect(req Request, tag uint64, next State) Outcome {
	index := int(req.Address % uint64(e.config.SlotCount))
	line := &next[index]

	if line.Valid && line.Tag == tag {
		line.LastUsed = e.clock

		return Outcome{Hit: true, AffectedSlot: index, State: next}
	}

	// Direct mapping allows no choice of victim.
	e.fill(line, tag, req.Payload)

	return Outcome{AffectedSlot: index, State: next}
}

func (e *Engine) accessTwoWay(req Request, tag uint64, next State) Outcome {
	setIndex := e.SetIndex(req.Address)
	candidates := next[2*setIndex : 2*setIndex+2]

	// The mapping is injective per set, so at most one candidate can carry
	// the tag. Scanning by index makes the lower slot win regardless.
	for i := range candidates {
		line := &candidates[i]
		if line.Valid && line.Tag == tag {
			line.LastUsed = e.clock

			return Outcome{
				Hit:          true,
				AffectedSlot: line.SlotIndex,
				State:        next,
			}
		}
	}

	victim := e.finder.FindVictim(candidates)
	e.fill(&next[victim], tag, req.Payload)

	return Outcome{AffectedSlot: victim, State: next}
}

func (e *Engine) fill(line *Line, tag uint64, payload any) {
	line.Valid = true
	line.Tag = tag
	line.Payload = payload
	line.LastUsed = e.clock
	line.InsertedAt = e.clock
}
