// Package sir is a worked example disease model: three compartments
// (Susceptible, Infected, Recovered) per node, with a seasonally forced
// infectious pressure carried as continuous state. It is an external
// collaborator of the core engine, wired through the
// engine.PropensityFunc/engine.PostStepHook contracts (spec §4.1) —
// never imported by internal/engine itself.
//
// Grounded on original_source/src/SISe3.c's transition shape
// (upsilon*phi*S for infection, gamma*I for recovery) and its
// post_time_step seasonal forcing of phi, adapted from three age classes
// to one and from storing phi in ldata to storing it in the continuous
// state vector v, matching this engine's PostStepHook signature
// (vNewNode is the writable continuous state, not ldata).
package sir

import "github.com/BorisVSchmid/SimInf/internal/engine"

// Compartments, in u-vector order.
const (
	S = 0
	I = 1
	R = 2
)

// Transitions, matching the column order of the S and G matrices built
// by NewModel.
const (
	TransSToI = 0
	TransIToR = 1
)

// Local-data offsets (per-node immutable parameters, ldata).
const (
	LdataUpsilon = 0 // baseline transmission rate
	LdataGamma   = 1 // recovery rate
	LdataAlpha   = 2 // infectious-pressure coupling to local prevalence
	LdataBetaQ1  = 3 // seasonal decay, quarter 1
	LdataBetaQ2  = 4
	LdataBetaQ3  = 5
	LdataBetaQ4  = 6
	LdataEpsilon = 7 // background infectious pressure floor
)

// Continuous-state index. phi is the local infectious pressure; Nd == 1.
const Phi = 0

// PropensitySToI computes the S -> I rate, upsilon * phi * S (SISe3.c's
// SISe3_S_1_to_I_1, generalized to one age class).
func PropensitySToI(u []int, v, ldata, gdata []float64, t float64) float64 {
	return ldata[LdataUpsilon] * v[Phi] * float64(u[S])
}

// PropensityIToR computes the I -> R rate, gamma * I (SISe3.c's
// SISe3_I_1_to_S_1, renamed since this model recovers rather than
// reverting to susceptible).
func PropensityIToR(u []int, v, ldata, gdata []float64, t float64) float64 {
	return ldata[LdataGamma] * float64(u[I])
}

const (
	daysInYear    = 365
	daysInQuarter = 91
)

// PostStep advances the seasonal infectious pressure by one forward-Euler
// step and reports whether it changed enough to warrant a full rate
// refresh (SISe3.c's SISe3_post_time_step, ported onto the continuous
// state vector instead of ldata).
func PostStep(vNew []float64, u []int, v, ldata, gdata []float64, node int, t float64) int {
	prevPhi := v[Phi]
	phi := prevPhi

	quarter := (int(t) % daysInYear) / daysInQuarter
	switch quarter {
	case 0:
		phi *= 1.0 - ldata[LdataBetaQ1]
	case 1:
		phi *= 1.0 - ldata[LdataBetaQ2]
	case 2:
		phi *= 1.0 - ldata[LdataBetaQ3]
	default:
		phi *= 1.0 - ldata[LdataBetaQ4]
	}

	sN := float64(u[S])
	iN := float64(u[I])
	if sN+iN > 0 {
		phi += ldata[LdataAlpha]*iN/(sN+iN) + ldata[LdataEpsilon]
	} else {
		phi += ldata[LdataEpsilon]
	}

	vNew[Phi] = phi

	if phi != prevPhi {
		return 1
	}
	return 0
}

// NewModel builds the engine.Model for this compartment structure: S has
// two transitions removing one S and adding one I, or removing one I and
// adding one R; G is full, every column listing both transitions (each
// transition only changes the rate of transitions reading the compartment
// it touches, and here every transition reads a compartment the other
// transition also changes, so both are always dependent on both).
func NewModel(dims engine.Dims, gdata []float64) *engine.Model {
	s := engine.NewIntSparse(3, 2,
		[]int{S, I, I, R},
		[]int{0, 2, 4},
		[]int{-1, 1, -1, 1},
	)

	g := engine.NewIntSparse(2, 2,
		[]int{TransSToI, TransIToR, TransSToI, TransIToR},
		[]int{0, 2, 4},
		[]int{1, 1, 1, 1},
	)

	// E is the identity selector: selector column c picks only
	// compartment c, the usual "move this compartment as-is" case for
	// commuter transfer events. N has no entries — commuter movement
	// never shifts a compartment index (spec §4.5 "shift < 0 means no
	// shift"; this model's events always pass shift = -1).
	e := engine.NewIntSparse(3, 3,
		[]int{S, I, R},
		[]int{0, 1, 2, 3},
		[]int{1, 1, 1},
	)
	n := engine.NewIntSparse(3, 0, nil, []int{0}, nil)

	return &engine.Model{
		Dims:  dims,
		S:     s,
		G:     g,
		E:     e,
		N:     n,
		TrFun:  []engine.PropensityFunc{PropensitySToI, PropensityIToR},
		PtsFun: PostStep,
		Gdata:  gdata,
	}
}
