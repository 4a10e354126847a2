package engine

// Dims collects the index/size constants that govern the layout of every
// flat array in the model (spec §3).
type Dims struct {
	Nn   int // nodes
	Nc   int // compartments per node
	Nt   int // transitions per node
	Nd   int // continuous variables per node
	Nld  int // local-data doubles per node
	Tlen int // output time points
}

// PropensityFunc computes the instantaneous rate of one transition given
// a node's state. It must return a finite, non-negative value (spec
// §4.1); returning anything else fails the run with errcode.InvalidRate.
type PropensityFunc func(uNode []int, vNode, ldataNode, gdata []float64, t float64) float64

// PostStepHook runs once per node per day after the SSA/E1/E2 phases. It
// writes into vNewNode and returns <0 to fail the run, >0 to force a rate
// refresh for this node even if no event touched it, or 0 for no-op
// (spec §4.1).
type PostStepHook func(
	vNewNode []float64, uNode []int, vNode, ldataNode, gdata []float64,
	nodeGlobalIndex int, t float64,
) int

// Model bundles the external collaborator contracts (spec §4.1) with the
// sparse descriptors that define transition structure.
type Model struct {
	Dims Dims

	S Sparse // state-change matrix, Nc x Nt
	G Sparse // dependency graph, Nt x Nt
	E Sparse // event select matrix, Nc x Nselect
	N Sparse // shift matrix, Nc x Nshift

	TrFun  []PropensityFunc
	PtsFun PostStepHook

	Gdata []float64
}
