package engine

// Builder can be used to build an engine.
type Builder struct {
	slotCount int
	scheme    MappingScheme
	policy    EvictionPolicy
	finder    VictimFinder
}

// MakeBuilder creates a builder with the default configuration: direct
// mapping with LRU eviction. The slot count must be set explicitly.
func MakeBuilder() Builder {
	return Builder{
		scheme: MappingDirect,
		policy: EvictLRU,
	}
}

// WithSlotCount sets the number of slots of the cache.
func (b Builder) WithSlotCount(n int) Builder {
	b.slotCount = n
	return b
}

// WithMappingScheme sets the mapping scheme.
func (b Builder) WithMappingScheme(s MappingScheme) Builder {
	b.scheme = s
	return b
}

// WithEvictionPolicy sets the eviction policy.
func (b Builder) WithEvictionPolicy(p EvictionPolicy) Builder {
	b.policy = p
	return b
}

// WithVictimFinder overrides the victim finder derived from the eviction
// policy. Mainly useful for tests and experiments with custom policies.
func (b Builder) WithVictimFinder(f VictimFinder) Builder {
	b.finder = f
	return b
}

// Build builds the engine. It fails with an ErrInvalidConfig-wrapped error
// when the slot count is not positive, or is odd under two-way mapping.
func (b Builder) Build() (*Engine, error) {
	e, err := NewEngine(Config{
		SlotCount: b.slotCount,
		Scheme:    b.scheme,
		Policy:    b.policy,
	})
	if err != nil {
		return nil, err
	}

	if b.finder != nil {
		e.finder = b.finder
	}

	return e, nil
}
