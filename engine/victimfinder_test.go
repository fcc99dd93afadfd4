package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/engine"
)

var _ = Describe("LRUVictimFinder", func() {
	var finder *engine.LRUVictimFinder

	BeforeEach(func() {
		finder = engine.NewLRUVictimFinder()
	})

	It("should pick the candidate with the smallest last-used time", func() {
		candidates := []engine.Line{
			{SlotIndex: 2, Valid: true, LastUsed: 7, InsertedAt: 1},
			{SlotIndex: 3, Valid: true, LastUsed: 4, InsertedAt: 3},
		}

		Expect(finder.FindVictim(candidates)).To(Equal(3))
	})

	It("should pick an unfilled candidate over any filled one", func() {
		candidates := []engine.Line{
			{SlotIndex: 0, Valid: true, LastUsed: 1, InsertedAt: 1},
			{SlotIndex: 1},
		}

		Expect(finder.FindVictim(candidates)).To(Equal(1))
	})

	It("should break ties toward the lower index", func() {
		candidates := []engine.Line{
			{SlotIndex: 4, Valid: true, LastUsed: 5, InsertedAt: 2},
			{SlotIndex: 5, Valid: true, LastUsed: 5, InsertedAt: 3},
		}

		Expect(finder.FindVictim(candidates)).To(Equal(4))
	})
})

var _ = Describe("FIFOVictimFinder", func() {
	var finder *engine.FIFOVictimFinder

	BeforeEach(func() {
		finder = engine.NewFIFOVictimFinder()
	})

	It("should pick the candidate inserted first", func() {
		candidates := []engine.Line{
			{SlotIndex: 2, Valid: true, LastUsed: 9, InsertedAt: 2},
			{SlotIndex: 3, Valid: true, LastUsed: 3, InsertedAt: 5},
		}

		Expect(finder.FindVictim(candidates)).To(Equal(2))
	})

	It("should ignore recency refreshes", func() {
		candidates := []engine.Line{
			{SlotIndex: 0, Valid: true, LastUsed: 100, InsertedAt: 1},
			{SlotIndex: 1, Valid: true, LastUsed: 2, InsertedAt: 2},
		}

		Expect(finder.FindVictim(candidates)).To(Equal(0))
	})

	It("should break ties toward the lower index", func() {
		candidates := []engine.Line{
			{SlotIndex: 6, Valid: true, LastUsed: 1, InsertedAt: 4},
			{SlotIndex: 7, Valid: true, LastUsed: 2, InsertedAt: 4},
		}

		Expect(finder.FindVictim(candidates)).To(Equal(6))
	})
})
