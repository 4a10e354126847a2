package engine

import (
	"fmt"
	"math"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
	"github.com/BorisVSchmid/SimInf/internal/rng"
)

// SSAEngine drives the per-node direct-method Gillespie SSA for one
// partition's nodes up to a day boundary (spec §4.6, C6).
type SSAEngine struct {
	model     *Model
	stream    *rng.Stream
	partition int

	transitions uint64
}

// NewSSAEngine creates an SSAEngine for the given partition.
func NewSSAEngine(model *Model, stream *rng.Stream, partition int) *SSAEngine {
	return &SSAEngine{model: model, stream: stream, partition: partition}
}

// TransitionCount returns the number of transitions this engine has fired
// since construction, for the CLI's siminf_ssa_transitions_total metric
// (spec §6). Cheap enough to poll once per day from the caller's
// goroutine; the SSAEngine itself is never shared across goroutines, so
// no synchronization is needed.
func (s *SSAEngine) TransitionCount() uint64 {
	return s.transitions
}

// InitNodeRates computes every transition's propensity for node from
// scratch and writes TRate/SumTRate/TTime (used at startup and whenever a
// node needs a full rate refresh, spec §4.7 step 6 / §4.8).
func (s *SSAEngine) InitNodeRates(state *State, node int, t float64) error {
	Nt := s.model.Dims.Nt
	uNode := state.UNode(node)
	vNode := state.VNode(node)
	ldataNode := state.LdataNode(node)

	sum := 0.0
	for j := 0; j < Nt; j++ {
		rate := s.model.TrFun[j](uNode, vNode, ldataNode, s.model.Gdata, t)
		if !validRate(rate) {
			return errcode.New(errcode.InvalidRate, s.partition, node,
				fmt.Sprintf("transition %d rate=%v", j, rate))
		}
		state.TRate[node*Nt+j] = rate
		sum += rate
	}
	state.SumTRate[node] = sum
	state.TTime[node] = t
	return nil
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate >= 0
}

// RunNodeToDay advances node's local SSA clock to nextDay, firing
// transitions one at a time via the direct method (spec §4.6 steps 1-8).
func (s *SSAEngine) RunNodeToDay(state *State, node int, nextDay float64) error {
	for {
		if state.SumTRate[node] <= 0 {
			state.TTime[node] = nextDay
			return nil
		}

		tau := -math.Log(s.stream.Uniform01()) / state.SumTRate[node]

		if state.TTime[node]+tau >= nextDay {
			state.TTime[node] = nextDay
			return nil
		}
		state.TTime[node] += tau

		tr := s.chooseTransition(state, node)
		if tr < 0 {
			// Nil event: no non-zero rate could be found even after the
			// backward walk. Idle the node for the rest of the day.
			state.SumTRate[node] = 0
			state.TTime[node] = nextDay
			return nil
		}

		if err := s.fireTransition(state, node, tr); err != nil {
			return err
		}
	}
}

// chooseTransition draws the transition to fire from the per-node
// propensities, tolerating floating-point drift in SumTRate (spec §4.6
// step 6, §9). Returns -1 if no non-zero rate exists (nil event).
func (s *SSAEngine) chooseTransition(state *State, node int) int {
	Nt := s.model.Dims.Nt
	base := node * Nt

	r := s.stream.UniformRange(state.SumTRate[node])

	cum := 0.0
	tr := Nt - 1
	for i := 0; i < Nt; i++ {
		cum += state.TRate[base+i]
		if cum > r {
			tr = i
			break
		}
	}

	for tr >= 0 && state.TRate[base+tr] == 0 {
		tr--
	}

	return tr
}

// fireTransition applies the state-change column of S for transition tr
// and refreshes every dependent transition's rate per the dependency
// graph G (spec §4.6 steps 7-8).
func (s *SSAEngine) fireTransition(state *State, node, tr int) error {
	Nt := s.model.Dims.Nt
	uNode := state.UNode(node)

	var stateErr error
	s.model.S.EachInt(tr, func(c, delta int) {
		if stateErr != nil {
			return
		}
		uNode[c] += delta
		if uNode[c] < 0 {
			stateErr = errcode.New(errcode.NegativeState, s.partition, node,
				fmt.Sprintf("compartment %d would go to %d after transition %d", c, uNode[c], tr))
		}
	})
	if stateErr != nil {
		return stateErr
	}
	s.transitions++

	vNode := state.VNode(node)
	ldataNode := state.LdataNode(node)
	t := state.TTime[node]

	for _, j := range s.model.G.Column(tr) {
		newRate := s.model.TrFun[j](uNode, vNode, ldataNode, s.model.Gdata, t)
		if !validRate(newRate) {
			return errcode.New(errcode.InvalidRate, s.partition, node,
				fmt.Sprintf("transition %d rate=%v", j, newRate))
		}

		base := node * Nt
		delta := newRate - state.TRate[base+j]
		state.TRate[base+j] = newRate
		state.SumTRate[node] += delta
	}

	return nil
}
