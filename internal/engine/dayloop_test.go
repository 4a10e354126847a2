package engine

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
)

var _ = Describe("Driver day loop", func() {
	It("leaves U unchanged across an empty SSA (scenario 1)", func() {
		model := &Model{Dims: Dims{Nn: 1, Nc: 2, Nt: 0}}
		state := NewState(model.Dims, []int{10, 0}, nil, nil)
		out := NewDenseOutput(Dims{Nn: 1, Nc: 2, Tlen: 2}, true, false)
		events := &EventRecord{}

		d, err := NewDriver(model, state, out, events, []float64{0, 5}, 1, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Run()).To(Succeed())

		Expect(out.U).To(Equal([]int{10, 0, 10, 0}))
	})

	It("pre-fills column 0 with the initial state for a single-point tspan", func() {
		model := &Model{Dims: Dims{Nn: 1, Nc: 2, Nt: 0}}
		state := NewState(model.Dims, []int{7, 3}, []float64{1.5}, nil)
		out := NewDenseOutput(Dims{Nn: 1, Nc: 2, Nd: 1, Tlen: 1}, true, true)
		events := &EventRecord{}

		d, err := NewDriver(model, state, out, events, []float64{0}, 1, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Run()).To(Succeed())

		Expect(out.U).To(Equal([]int{7, 3}))
		Expect(out.V).To(Equal([]float64{1.5}))
	})

	It("moves individuals between nodes via a single EXTERNAL_TRANSFER (scenario 4)", func() {
		model := &Model{
			Dims: Dims{Nn: 2, Nc: 2, Nt: 0},
			E:    NewIntSparse(2, 1, []int{0}, []int{0, 1}, []int{1}),
		}
		state := NewState(model.Dims, []int{10, 0, 0, 0}, nil, nil)
		out := NewDenseOutput(Dims{Nn: 2, Nc: 2, Tlen: 2}, true, false)

		events := &EventRecord{
			Event:      []EventKind{ExternalTransfer},
			Time:       []int{1},
			Node:       []int{1},
			Dest:       []int{2},
			N:          []int{5},
			Proportion: []float64{0},
			Select:     []int{1},
			Shift:      []int{0},
		}

		d, err := NewDriver(model, state, out, events, []float64{0, 2}, 1, 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Run()).To(Succeed())

		Expect(out.U).To(Equal([]int{10, 0, 0, 0, 5, 0, 5, 0}))
	})

	It("fails the run with SAMPLE_SELECT when an EXIT over-draws a node (scenario 6)", func() {
		model := &Model{
			Dims: Dims{Nn: 1, Nc: 2, Nt: 0},
			E:    NewIntSparse(2, 1, []int{0, 1}, []int{0, 2}, []int{1, 1}),
		}
		state := NewState(model.Dims, []int{2, 1}, nil, nil)
		out := NewDenseOutput(Dims{Nn: 1, Nc: 2, Tlen: 2}, true, false)

		events := &EventRecord{
			Event:      []EventKind{Exit},
			Time:       []int{0},
			Node:       []int{1},
			Dest:       []int{0},
			N:          []int{5},
			Proportion: []float64{0},
			Select:     []int{1},
			Shift:      []int{0},
		}

		d, err := NewDriver(model, state, out, events, []float64{0, 1}, 1, 1, 0)
		Expect(err).NotTo(HaveOccurred())

		err = d.Run()
		Expect(err).To(HaveOccurred())
		var engErr *errcode.Error
		Expect(errors.As(err, &engErr)).To(BeTrue())
		Expect(engErr.Code).To(Equal(errcode.SampleSelect))
	})
})
