package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
	"github.com/BorisVSchmid/SimInf/internal/rng"
)

var _ = Describe("E2Processor", func() {
	var model *Model

	BeforeEach(func() {
		// Selector 0 lists only compartment 0; no shift in play.
		e := NewIntSparse(2, 1, []int{0}, []int{0, 1}, []int{1})
		model = &Model{
			Dims: Dims{Nn: 2, Nc: 2, Nt: 0, Nd: 0, Nld: 0},
			E:    e,
		}
	})

	It("moves individuals from the source node to the destination node (scenario 4)", func() {
		state := NewState(model.Dims, []int{10, 0, 0, 0}, nil, nil)
		stream := rng.NewStream(5)
		p := NewE2Processor(model, stream)

		rec := &EventRecord{
			Event:      []EventKind{ExternalTransfer},
			Time:       []int{1},
			Node:       []int{0},
			Dest:       []int{1},
			N:          []int{5},
			Proportion: []float64{0},
			Select:     []int{0},
			Shift:      []int{-1},
		}
		queue := newEventQueue(rec)
		updateNode := make([]bool, 2)

		Expect(p.Drain(queue, state, 1, updateNode)).To(Succeed())
		Expect(state.U).To(Equal([]int{5, 0, 5, 0}))
		Expect(updateNode[0]).To(BeTrue())
		Expect(updateNode[1]).To(BeTrue())
	})

	It("conserves the sum of source and destination populations when shift < 0", func() {
		state := NewState(model.Dims, []int{10, 0, 3, 0}, nil, nil)
		stream := rng.NewStream(11)
		p := NewE2Processor(model, stream)

		rec := &EventRecord{
			Event:      []EventKind{ExternalTransfer},
			Time:       []int{1},
			Node:       []int{0},
			Dest:       []int{1},
			N:          []int{4},
			Proportion: []float64{0},
			Select:     []int{0},
			Shift:      []int{-1},
		}
		queue := newEventQueue(rec)
		updateNode := make([]bool, 2)

		before := state.U[0] + state.U[2]
		Expect(p.Drain(queue, state, 1, updateNode)).To(Succeed())
		after := state.U[0] + state.U[2]
		Expect(after).To(Equal(before))
	})

	It("fails with SAMPLE_SELECT when n exceeds the source compartment's population", func() {
		state := NewState(model.Dims, []int{3, 0, 0, 0}, nil, nil)
		stream := rng.NewStream(2)
		p := NewE2Processor(model, stream)

		rec := &EventRecord{
			Event:      []EventKind{ExternalTransfer},
			Time:       []int{1},
			Node:       []int{0},
			Dest:       []int{1},
			N:          []int{7},
			Proportion: []float64{0},
			Select:     []int{0},
			Shift:      []int{-1},
		}
		queue := newEventQueue(rec)
		updateNode := make([]bool, 2)

		err := p.Drain(queue, state, 1, updateNode)
		Expect(err).To(HaveOccurred())
		Expect(err.(*errcode.Error).Code).To(Equal(errcode.SampleSelect))
	})
})
