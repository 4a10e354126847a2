package engine

// State holds every buffer the engine mutates during a run. Buffers are
// allocated once before the day loop begins and live for the whole run —
// there is no per-step allocation in the hot path (spec §3 Lifecycle).
type State struct {
	Dims Dims

	U []int // Nn*Nc, compartment counts

	V    []float64 // Nn*Nd, continuous state readers see
	VNew []float64 // Nn*Nd, continuous state writers write

	Ldata []float64 // Nn*Nld, immutable per-node parameters

	TRate    []float64 // Nn*Nt, current propensities
	SumTRate []float64 // Nn, row sums of TRate
	TTime    []float64 // Nn, each node's local SSA clock

	UpdateNode []bool // Nn, nodes touched by E1/E2 this day
}

// NewState allocates a State with U initialized from u0 and V/VNew
// initialized from v0 (both copied, never aliased, so callers retain
// ownership of their input slices).
func NewState(dims Dims, u0 []int, v0, ldata []float64) *State {
	s := &State{
		Dims:       dims,
		U:          append([]int(nil), u0...),
		V:          append([]float64(nil), v0...),
		VNew:       append([]float64(nil), v0...),
		Ldata:      ldata,
		TRate:      make([]float64, dims.Nn*dims.Nt),
		SumTRate:   make([]float64, dims.Nn),
		TTime:      make([]float64, dims.Nn),
		UpdateNode: make([]bool, dims.Nn),
	}
	return s
}

// UNode returns the compartment slice for node (zero-based).
func (s *State) UNode(node int) []int {
	return s.U[node*s.Dims.Nc : (node+1)*s.Dims.Nc]
}

// VNode returns the readable continuous-state slice for node.
func (s *State) VNode(node int) []float64 {
	return s.V[node*s.Dims.Nd : (node+1)*s.Dims.Nd]
}

// VNewNode returns the writable continuous-state slice for node.
func (s *State) VNewNode(node int) []float64 {
	return s.VNew[node*s.Dims.Nd : (node+1)*s.Dims.Nd]
}

// LdataNode returns the local-data slice for node.
func (s *State) LdataNode(node int) []float64 {
	if s.Dims.Nld == 0 {
		return nil
	}
	return s.Ldata[node*s.Dims.Nld : (node+1)*s.Dims.Nld]
}

// SwapContinuous swaps V and VNew so the next day's readers see what was
// just written (spec §4.7 step 9).
func (s *State) SwapContinuous() {
	s.V, s.VNew = s.VNew, s.V
}
