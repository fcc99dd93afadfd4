package analysis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/analysis"
)

var _ = Describe("AccessAnalyzer", func() {
	var a *analysis.AccessAnalyzer

	BeforeEach(func() {
		a = analysis.MakeBuilder().WithWindowSize(4).Build()
	})

	It("should report zero hit ratio before any access", func() {
		Expect(a.HitRatio()).To(Equal(0.0))
		Expect(a.AvgAccessTime()).To(Equal(
			analysis.HitCost + analysis.MissPenalty))
	})

	It("should compute the hit ratio over recorded accesses", func() {
		a.RecordAccess(true)
		a.RecordAccess(false)
		a.RecordAccess(true)
		a.RecordAccess(true)

		Expect(a.HitRatio()).To(BeNumerically("~", 0.75))
		Expect(a.HitRatioPercent()).To(BeNumerically("~", 75.0))
	})

	It("should derive the average access time from the ratio", func() {
		a.RecordAccess(true)
		a.RecordAccess(false)

		// ratio 0.5: 1 + 0.5*100
		Expect(a.AvgAccessTime()).To(BeNumerically("~", 51.0))
	})

	It("should drop the oldest result once the window is full", func() {
		a.RecordAccess(false)
		a.RecordAccess(true)
		a.RecordAccess(true)
		a.RecordAccess(true)
		a.RecordAccess(true)

		Expect(a.HitRatio()).To(BeNumerically("~", 1.0))
		Expect(a.TotalAccesses()).To(Equal(uint64(5)))
	})

	It("should snapshot all metrics in the summary", func() {
		a.RecordAccess(true)
		a.RecordAccess(false)

		s := a.Summary()
		Expect(s.TotalAccesses).To(Equal(uint64(2)))
		Expect(s.WindowSize).To(Equal(4))
		Expect(s.WindowAccesses).To(Equal(2))
		Expect(s.WindowHits).To(Equal(1))
		Expect(s.HitRatioPercent).To(BeNumerically("~", 50.0))
		Expect(s.AvgAccessTime).To(BeNumerically("~", 51.0))
	})

	It("should start over after a reset", func() {
		a.RecordAccess(true)
		a.Reset()

		Expect(a.TotalAccesses()).To(Equal(uint64(0)))
		Expect(a.HitRatio()).To(Equal(0.0))
	})

	It("should honor a custom cost model", func() {
		custom := analysis.MakeBuilder().
			WithWindowSize(2).
			WithHitCost(2).
			WithMissPenalty(10).
			Build()

		custom.RecordAccess(false)

		Expect(custom.AvgAccessTime()).To(BeNumerically("~", 12.0))
	})
})
