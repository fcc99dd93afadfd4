package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/engine"
)

var _ = Describe("State", func() {
	It("should create empty states with zero timestamps", func() {
		state := engine.NewEmptyState(8)

		Expect(state).To(HaveLen(8))
		for i, line := range state {
			Expect(line.SlotIndex).To(Equal(i))
			Expect(line.Valid).To(BeFalse())
			Expect(line.LastUsed).To(Equal(uint64(0)))
			Expect(line.InsertedAt).To(Equal(uint64(0)))
			Expect(line.Dirty).To(BeFalse())
		}
	})

	It("should panic on a non-positive slot count", func() {
		Expect(func() { engine.NewEmptyState(0) }).To(Panic())
	})

	It("should clone without sharing line storage", func() {
		state := engine.NewEmptyState(4)
		clone := state.Clone()

		clone[0].Valid = true
		clone[0].Tag = 42

		Expect(state[0].Valid).To(BeFalse())
	})
})
