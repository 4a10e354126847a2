package engine

// Output holds the trajectory buffers the day loop snapshots into (spec
// §4.7 step 8, §6). At most one of the dense or sparse U buffer is set,
// and likewise for V; an engine.Output with neither set for a quantity
// means that quantity is not being recorded.
type Output struct {
	Dims Dims

	// Dense output, length Nn*Nc*Tlen / Nn*Nd*Tlen (column k holds the
	// state after tspan[k] has been reached).
	U []int
	V []float64

	// Sparse output: USparse/VSparse have Cols == Tlen; column k lists
	// the (row, value) pairs to fill at time point k. Row space is
	// Nn*Nc for USparse and Nn*Nd for VSparse.
	USparse *Sparse
	VSparse *Sparse

	uIt int
	vIt int
}

// NewDenseOutput allocates dense U/V buffers sized for dims.Tlen time
// points.
func NewDenseOutput(dims Dims, recordU, recordV bool) *Output {
	o := &Output{Dims: dims}
	if recordU {
		o.U = make([]int, dims.Nn*dims.Nc*dims.Tlen)
	}
	if recordV {
		o.V = make([]float64, dims.Nn*dims.Nd*dims.Tlen)
	}
	return o
}

// NewSparseOutput wraps caller-supplied sparse output skeletons (jc/ir
// already populated by the host binding; Pr is allocated here and filled
// during the run).
func NewSparseOutput(dims Dims, uSparse, vSparse *Sparse) *Output {
	o := &Output{Dims: dims, USparse: uSparse, VSparse: vSparse}
	if uSparse != nil {
		uSparse.Pr = make([]float64, len(uSparse.Ir))
	}
	if vSparse != nil {
		vSparse.Pr = make([]float64, len(vSparse.Ir))
	}
	return o
}

// Init copies the initial state into column 0 of U and V before the day
// loop runs, and advances uIt/vIt to 1 so the day loop's own snapshots
// start at column 1 (spec §8 round-trip property: a single-point tspan
// must yield U[:,0] == u0, V[:,0] == v0 without running any simulated
// day; original_source/src/solvers/ssa/SimInf_solver_ssa.c pre-fills
// U[,1]/V[,1] — one-based there, column 0 here — the same way before
// initializing U_it/V_it to 1).
func (o *Output) Init(state *State) {
	if o.Dims.Tlen == 0 {
		return
	}

	if o.U != nil {
		copy(o.U[:o.Dims.Nn*o.Dims.Nc], state.U)
	} else if o.USparse != nil {
		for i := o.USparse.Jc[0]; i < o.USparse.Jc[1]; i++ {
			o.USparse.Pr[i] = float64(state.U[o.USparse.Ir[i]])
		}
	}
	o.uIt = 1

	if o.V != nil {
		copy(o.V[:o.Dims.Nn*o.Dims.Nd], state.V)
	} else if o.VSparse != nil {
		for i := o.VSparse.Jc[0]; i < o.VSparse.Jc[1]; i++ {
			o.VSparse.Pr[i] = state.V[o.VSparse.Ir[i]]
		}
	}
	o.vIt = 1
}

// Snapshot writes U/V at every tspan index strictly passed by tt, using
// U (the just-settled compartment counts) and vNew (the just-written
// continuous state) as sources (spec §4.7 step 8).
func (o *Output) Snapshot(tspan []float64, tt float64, state *State) {
	Nn, Nc, Nd := o.Dims.Nn, o.Dims.Nc, o.Dims.Nd
	tlen := o.Dims.Tlen

	for o.uIt < tlen && tspan[o.uIt] < tt {
		if o.U != nil {
			copy(o.U[o.uIt*Nn*Nc:(o.uIt+1)*Nn*Nc], state.U)
		} else if o.USparse != nil {
			for i := o.USparse.Jc[o.uIt]; i < o.USparse.Jc[o.uIt+1]; i++ {
				o.USparse.Pr[i] = float64(state.U[o.USparse.Ir[i]])
			}
		}
		o.uIt++
	}

	for o.vIt < tlen && tspan[o.vIt] < tt {
		if o.V != nil {
			copy(o.V[o.vIt*Nn*Nd:(o.vIt+1)*Nn*Nd], state.VNew)
		} else if o.VSparse != nil {
			for i := o.VSparse.Jc[o.vIt]; i < o.VSparse.Jc[o.vIt+1]; i++ {
				o.VSparse.Pr[i] = state.VNew[o.VSparse.Ir[i]]
			}
		}
		o.vIt++
	}
}

// Done reports whether the U output has reached tlen, which is what
// governs day-loop termination (spec §4.7 step 10).
func (o *Output) Done() bool {
	return o.uIt >= o.Dims.Tlen
}
