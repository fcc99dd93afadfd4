package simulation_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/engine"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/sarchlab/cachesim/trace"
)

func buildSim(name string, seed int64) *simulation.Simulation {
	s, err := simulation.MakeBuilder().
		WithSlotCount(8).
		WithMappingScheme(engine.MappingTwoWay).
		WithEvictionPolicy(engine.EvictLRU).
		WithSeed(seed).
		WithoutMonitoring().
		WithOutputFileName(filepath.Join(GinkgoT().TempDir(), name)).
		Build()
	Expect(err).ToNot(HaveOccurred())

	return s
}

var _ = Describe("Simulation", func() {
	It("should propagate invalid configurations", func() {
		_, err := simulation.MakeBuilder().
			WithSlotCount(7).
			WithMappingScheme(engine.MappingTwoWay).
			WithoutMonitoring().
			Build()

		Expect(err).To(MatchError(engine.ErrInvalidConfig))
	})

	It("should refuse a monitor port without monitoring", func() {
		Expect(func() {
			_, _ = simulation.MakeBuilder().
				WithoutMonitoring().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})

	It("should count accesses in the metrics", func() {
		s := buildSim("count", 1)
		defer s.Terminate()

		Expect(s.RunAccesses(20)).To(Succeed())

		Expect(s.Metrics().TotalAccesses).To(Equal(uint64(20)))
	})

	It("should keep the state in sync with the configuration", func() {
		s := buildSim("state", 1)
		defer s.Terminate()

		Expect(s.RunAccesses(5)).To(Succeed())

		state := s.StateSnapshot()
		Expect(state).To(HaveLen(8))
	})

	It("should be deterministic for a fixed seed", func() {
		s1 := buildSim("det1", 99)
		defer s1.Terminate()
		s2 := buildSim("det2", 99)
		defer s2.Terminate()

		Expect(s1.RunAccesses(200)).To(Succeed())
		Expect(s2.RunAccesses(200)).To(Succeed())

		Expect(s1.Metrics().WindowHits).To(Equal(s2.Metrics().WindowHits))

		state1 := s1.StateSnapshot()
		state2 := s2.StateSnapshot()
		for i := range state1 {
			Expect(state1[i].Valid).To(Equal(state2[i].Valid))
			Expect(state1[i].Tag).To(Equal(state2[i].Tag))
			Expect(state1[i].LastUsed).To(Equal(state2[i].LastUsed))
			Expect(state1[i].InsertedAt).To(Equal(state2[i].InsertedAt))
		}
	})

	It("should discard state and history on reset", func() {
		s := buildSim("reset", 1)
		defer s.Terminate()

		Expect(s.RunAccesses(10)).To(Succeed())
		s.Reset()

		Expect(s.Metrics().TotalAccesses).To(Equal(uint64(0)))
		for _, line := range s.StateSnapshot() {
			Expect(line.Valid).To(BeFalse())
		}
	})

	It("should answer trace queries for recorded accesses", func() {
		s := buildSim("trace", 1)
		defer s.Terminate()

		Expect(s.RunAccesses(15)).To(Succeed())

		records, total, err := s.QueryTrace(
			context.Background(), trace.QueryParams{OrderBy: "Seq", Limit: 5})

		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(15))
		Expect(records).To(HaveLen(5))
		Expect(records[0].(*trace.AccessRecord).Seq).To(Equal(uint64(1)))
	})

	It("should accept caller-supplied requests", func() {
		s := buildSim("manual", 1)
		defer s.Terminate()

		out, err := s.Access(engine.Request{Address: 3, Payload: "r"})
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Hit).To(BeFalse())

		out, err = s.Access(engine.Request{Address: 3})
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Hit).To(BeTrue())
	})
})
