package rng

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stream", func() {
	It("should be reproducible for a fixed seed", func() {
		a := NewStream(42)
		b := NewStream(42)

		for i := 0; i < 1000; i++ {
			Expect(a.Uniform01()).To(Equal(b.Uniform01()))
		}
	})

	It("should draw uniforms strictly inside (0, 1)", func() {
		s := NewStream(7)
		for i := 0; i < 10000; i++ {
			u := s.Uniform01()
			Expect(u).To(BeNumerically(">", 0))
			Expect(u).To(BeNumerically("<", 1))
		}
	})

	It("should derive distinct per-partition seeds from the same master", func() {
		s0 := DerivePartitionSeed(99, 0)
		s1 := DerivePartitionSeed(99, 1)
		Expect(s0).NotTo(Equal(s1))
	})

	It("should derive the same seed for the same (master, index)", func() {
		Expect(DerivePartitionSeed(123, 4)).To(Equal(DerivePartitionSeed(123, 4)))
	})

	DescribeTable("hypergeometric respects urn bounds",
		func(good, bad, draws int) {
			s := NewStream(1)
			for i := 0; i < 200; i++ {
				k := s.Hypergeometric(good, bad, draws)
				Expect(k).To(BeNumerically(">=", 0))
				Expect(k).To(BeNumerically("<=", draws))
				Expect(k).To(BeNumerically("<=", good))
				Expect(draws - k).To(BeNumerically("<=", bad))
			}
		},
		Entry("balanced urn", 10, 10, 5),
		Entry("one empty urn", 0, 10, 0),
		Entry("draw everything", 3, 4, 7),
		Entry("large urn", 5000, 5000, 1000),
	)

	It("should average close to the hypergeometric mean", func() {
		s := NewStream(2)
		good, bad, draws := 30, 70, 20
		sum := 0
		trials := 20000
		for i := 0; i < trials; i++ {
			sum += s.Hypergeometric(good, bad, draws)
		}
		mean := float64(sum) / float64(trials)
		expected := float64(draws) * float64(good) / float64(good+bad)
		Expect(mean).To(BeNumerically("~", expected, 0.3))
	})
})
