package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BorisVSchmid/SimInf/internal/rng"
)

var _ = Describe("SSAEngine", func() {
	It("leaves state unchanged when a node has zero transitions (scenario 1)", func() {
		model := &Model{Dims: Dims{Nn: 1, Nc: 2, Nt: 0}}
		state := NewState(model.Dims, []int{3, 4}, nil, nil)
		stream := rng.NewStream(1)
		s := NewSSAEngine(model, stream, 0)

		Expect(s.InitNodeRates(state, 0, 0)).To(Succeed())
		Expect(s.RunNodeToDay(state, 0, 50)).To(Succeed())

		Expect(state.U).To(Equal([]int{3, 4}))
		Expect(state.TTime[0]).To(Equal(50.0))
		Expect(s.TransitionCount()).To(Equal(uint64(0)))
	})

	It("decays a single S->I transition at the expected mean rate (scenario 3)", func() {
		// S (Nc=2, Nt=1): firing transition 0 removes one from compartment
		// 0 and adds one to compartment 1.
		s := NewIntSparse(2, 1, []int{0, 1}, []int{0, 2}, []int{-1, 1})
		// G (Nt=1, Nt=1): transition 0 depends on itself, so its rate is
		// refreshed after every firing.
		g := NewIntSparse(1, 1, []int{0}, []int{0, 1}, []int{1})

		propensity := func(uNode []int, vNode, ldataNode, gdata []float64, t float64) float64 {
			return 0.1 * float64(uNode[0])
		}
		model := &Model{
			Dims:  Dims{Nn: 1, Nc: 2, Nt: 1},
			S:     s,
			G:     g,
			TrFun: []PropensityFunc{propensity},
		}

		const trials = 3000
		total := 0
		for seed := uint64(1); seed <= trials; seed++ {
			state := NewState(model.Dims, []int{100, 0}, nil, nil)
			stream := rng.NewStream(seed)
			engine := NewSSAEngine(model, stream, 0)

			Expect(engine.InitNodeRates(state, 0, 0)).To(Succeed())
			Expect(engine.RunNodeToDay(state, 0, 50)).To(Succeed())

			total += state.U[1]
		}

		mean := float64(total) / float64(trials)
		Expect(mean).To(And(BeNumerically(">=", 99.0), BeNumerically("<", 100.0)))
	})

	It("refreshes a dependent transition's rate after firing", func() {
		s := NewIntSparse(2, 2, []int{0, 1, 1, 0}, []int{0, 2, 4}, []int{-1, 1, -1, 1})
		g := NewIntSparse(2, 2, []int{0, 1, 0, 1}, []int{0, 2, 4}, []int{1, 1, 1, 1})

		toI := func(uNode []int, vNode, ldataNode, gdata []float64, t float64) float64 {
			return 1000 * float64(uNode[0])
		}
		backToS := func(uNode []int, vNode, ldataNode, gdata []float64, t float64) float64 {
			return 0
		}
		model := &Model{
			Dims:  Dims{Nn: 1, Nc: 2, Nt: 2},
			S:     s,
			G:     g,
			TrFun: []PropensityFunc{toI, backToS},
		}

		state := NewState(model.Dims, []int{1, 0}, nil, nil)
		stream := rng.NewStream(77)
		eng := NewSSAEngine(model, stream, 0)

		Expect(eng.InitNodeRates(state, 0, 0)).To(Succeed())
		Expect(state.SumTRate[0]).To(Equal(1000.0))

		Expect(eng.RunNodeToDay(state, 0, 1)).To(Succeed())
		Expect(state.U).To(Equal([]int{0, 1}))
		Expect(state.SumTRate[0]).To(Equal(0.0))
		Expect(eng.TransitionCount()).To(Equal(uint64(1)))
	})
})
