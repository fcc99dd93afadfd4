package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by all configuration validation errors.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// MappingScheme determines which slots are eligible to hold an address.
type MappingScheme int

// Supported mapping schemes.
const (
	// MappingDirect homes every address in exactly one slot.
	MappingDirect MappingScheme = iota

	// MappingTwoWay pairs adjacent slots into sets. An address can be stored
	// in either slot of the one set it maps to.
	MappingTwoWay
)

func (s MappingScheme) String() string {
	switch s {
	case MappingDirect:
		return "direct"
	case MappingTwoWay:
		return "two-way"
	default:
		return fmt.Sprintf("MappingScheme(%d)", int(s))
	}
}

// ParseMappingScheme converts a user-facing name to a MappingScheme.
func ParseMappingScheme(name string) (MappingScheme, error) {
	switch name {
	case "direct":
		return MappingDirect, nil
	case "two-way", "set-associative":
		return MappingTwoWay, nil
	default:
		return 0, fmt.Errorf("%w: unknown mapping scheme %q",
			ErrInvalidConfig, name)
	}
}

// EvictionPolicy selects the victim among the candidate slots of a set when a
// miss requires an eviction.
type EvictionPolicy int

// Supported eviction policies.
const (
	// EvictLRU evicts the candidate with the smallest last-used time.
	EvictLRU EvictionPolicy = iota

	// EvictFIFO evicts the candidate with the smallest insertion time.
	EvictFIFO
)

func (p EvictionPolicy) String() string {
	switch p {
	case EvictLRU:
		return "lru"
	case EvictFIFO:
		return "fifo"
	default:
		return fmt.Sprintf("EvictionPolicy(%d)", int(p))
	}
}

// ParseEvictionPolicy converts a user-facing name to an EvictionPolicy.
func ParseEvictionPolicy(name string) (EvictionPolicy, error) {
	switch name {
	case "lru":
		return EvictLRU, nil
	case "fifo":
		return EvictFIFO, nil
	default:
		return 0, fmt.Errorf("%w: unknown eviction policy %q",
			ErrInvalidConfig, name)
	}
}

// Config is the shape of the simulated cache. Mapping scheme and eviction
// policy are independent axes: the two-way scheme needs a policy to pick a
// victim, the direct scheme never has a choice.
type Config struct {
	SlotCount int
	Scheme    MappingScheme
	Policy    EvictionPolicy
}

// Validate returns an ErrInvalidConfig-wrapped error if the configuration
// cannot describe a cache.
func (c Config) Validate() error {
	if c.SlotCount <= 0 {
		return fmt.Errorf("%w: slot count must be positive, got %d",
			ErrInvalidConfig, c.SlotCount)
	}

	if c.Scheme == MappingTwoWay && c.SlotCount%2 != 0 {
		return fmt.Errorf(
			"%w: two-way mapping requires an even slot count, got %d",
			ErrInvalidConfig, c.SlotCount)
	}

	return nil
}

// NumSets returns how many sets the configuration forms. Direct mapping
// degenerates to one slot per set.
func (c Config) NumSets() int {
	if c.Scheme == MappingTwoWay {
		return c.SlotCount / 2
	}

	return c.SlotCount
}
