package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BorisVSchmid/SimInf/internal/engine"
	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
	"github.com/BorisVSchmid/SimInf/internal/rng"
)

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

var _ = Describe("SampleSelect", func() {
	// Selector 0 lists compartments {0, 1, 2}; selector 1 lists {0, 1}.
	e := engine.NewIntSparse(3, 2,
		[]int{0, 1, 2, 0, 1},
		[]int{0, 3, 5},
		[]int{1, 1, 1, 1, 1},
	)

	It("deterministically equals the listed compartment counts when n == Nindividuals (scenario 2)", func() {
		u := []int{7, 3, 0}
		stream := rng.NewStream(1)
		scratch := make([]int, 3)

		result, err := engine.SampleSelect(e, u, 1, 10, 0, stream, scratch)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal([]int{7, 3, 0}))
	})

	It("sums to exactly n for a general multi-state draw", func() {
		u := []int{10, 20, 30}
		stream := rng.NewStream(42)
		scratch := make([]int, 3)

		result, err := engine.SampleSelect(e, u, 0, 15, 0, stream, scratch)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum(result)).To(Equal(15))
		for i, v := range result {
			Expect(v).To(BeNumerically("<=", u[i]))
		}
	})

	It("resolves n from proportion when n == 0", func() {
		u := []int{4, 4, 2}
		stream := rng.NewStream(7)
		scratch := make([]int, 3)

		result, err := engine.SampleSelect(e, u, 0, 0, 0.5, stream, scratch)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum(result)).To(Equal(5)) // round(0.5 * 10)
	})

	It("returns an all-zero result when proportion == 0", func() {
		u := []int{4, 4, 2}
		stream := rng.NewStream(7)
		scratch := make([]int, 3)

		result, err := engine.SampleSelect(e, u, 0, 0, 0, stream, scratch)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum(result)).To(Equal(0))
	})

	It("returns the full listed counts when proportion == 1", func() {
		u := []int{4, 4, 2}
		stream := rng.NewStream(7)
		scratch := make([]int, 3)

		result, err := engine.SampleSelect(e, u, 0, 0, 1, stream, scratch)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal([]int{4, 4, 2}))
	})

	It("fails with SAMPLE_SELECT when n exceeds the listed individuals (scenario 6)", func() {
		u := []int{2, 1, 0} // selector 0 totals 3
		stream := rng.NewStream(3)
		scratch := make([]int, 3)

		_, err := engine.SampleSelect(e, u, 0, 5, 0, stream, scratch)
		Expect(err).To(HaveOccurred())

		var engErr *errcode.Error
		Expect(err).To(BeAssignableToTypeOf(engErr))
		Expect(err.(*errcode.Error).Code).To(Equal(errcode.SampleSelect))
	})

	It("handles a two-state selector with one zero urn", func() {
		u := []int{0, 9, 0}
		stream := rng.NewStream(5)
		scratch := make([]int, 3)

		result, err := engine.SampleSelect(e, u, 1, 6, 0, stream, scratch)
		Expect(err).NotTo(HaveOccurred())
		Expect(result[0]).To(Equal(0))
		Expect(result[1]).To(Equal(6))
	})
})
