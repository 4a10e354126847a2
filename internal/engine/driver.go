package engine

import (
	"sync"
	"time"

	"github.com/BorisVSchmid/SimInf/internal/rng"
)

// RunMetadata stamps one Driver run with an identity and its run
// parameters, mirroring how a production simulator tags a run with an ID
// before execution (spec §9 "Globals"; DESIGN.md).
type RunMetadata struct {
	RunID   string
	Seed    uint64
	Nthread int
}

// partition is one fork-join worker's private context: its node range,
// its own RNG stream, its own SSA engine and E1 processor, and (for
// partition 0 only) the E2 processor/queue. The driver hands each worker
// its own *partition and never shares one across goroutines; workers
// read and write the shared State through pointers, with no value copy
// of the context and no write-back at phase end.
type partition struct {
	index   int
	nodeLo  int
	nodeHi  int // exclusive
	stream  *rng.Stream
	ssa     *SSAEngine
	e1      *E1Processor
	e1Queue *eventQueue
}

// e2 is owned only by partition 0.
type e2Context struct {
	proc  *E2Processor
	queue *eventQueue
}

// Driver allocates partition contexts, seeds RNGs, splits events, and
// runs the day loop to completion (spec §4.8, C8).
type Driver struct {
	Hookable

	model *Model
	state *State
	out   *Output
	meta  RunMetadata

	tspan []float64

	partitions []*partition
	e2         *e2Context

	updateNode []bool

	verbosity int

	// PhaseObserver, if set, is called with the wall-clock duration of
	// each named day-loop phase ("ssa_e1", "e2", "post_step"). Used by
	// the CLI to feed siminf_phase_duration_seconds (spec §6); nil by
	// default so library callers pay nothing for it.
	PhaseObserver func(phase string, d time.Duration)
}

// NewDriver builds a Driver. Nthread must be >= 1; node ranges are
// assigned [i*chunk, (i+1)*chunk) with the remainder folded into the last
// partition (spec §4.8).
func NewDriver(
	model *Model, state *State, out *Output, events *EventRecord,
	tspan []float64, nthread int, seed uint64, verbosity int,
) (*Driver, error) {
	Nn := model.Dims.Nn

	e1Records, e2Record, err := Split(events, Nn, nthread)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		model:      model,
		state:      state,
		out:        out,
		meta:       RunMetadata{RunID: newRunID(), Seed: seed, Nthread: nthread},
		tspan:      tspan,
		updateNode: state.UpdateNode,
		verbosity:  verbosity,
	}

	chunk := Nn / nthread
	if chunk == 0 {
		chunk = 1
	}

	d.partitions = make([]*partition, nthread)
	for i := 0; i < nthread; i++ {
		lo := i * chunk
		hi := lo + chunk
		if i == nthread-1 || hi > Nn {
			hi = Nn
		}

		stream := rng.NewStream(rng.DerivePartitionSeed(seed, i))
		d.partitions[i] = &partition{
			index:   i,
			nodeLo:  lo,
			nodeHi:  hi,
			stream:  stream,
			ssa:     NewSSAEngine(model, stream, i),
			e1:      NewE1Processor(model, stream, i),
			e1Queue: newEventQueue(e1Records[i]),
		}
	}

	d.e2 = &e2Context{
		proc:  NewE2Processor(model, d.partitions[0].stream),
		queue: newEventQueue(e2Record),
	}

	return d, nil
}

func newRunID() string {
	return generateRunID()
}

// InitRates computes every node's initial transition rates, in parallel
// across partitions (spec §4.8 "Initializes all rates once before the
// main loop").
func (d *Driver) InitRates(t0 float64) error {
	var wg sync.WaitGroup
	errs := make([]error, len(d.partitions))

	for i, p := range d.partitions {
		wg.Add(1)
		go func(i int, p *partition) {
			defer wg.Done()
			for node := p.nodeLo; node < p.nodeHi; node++ {
				if err := p.ssa.InitNodeRates(d.state, node, t0); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, p)
	}
	wg.Wait()

	return firstError(errs)
}

func firstError(errs []error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Meta returns the run's metadata.
func (d *Driver) Meta() RunMetadata {
	return d.meta
}

// TransitionCounts returns the number of SSA transitions fired so far,
// indexed by partition, for callers reporting
// siminf_ssa_transitions_total (spec §6).
func (d *Driver) TransitionCounts() []uint64 {
	counts := make([]uint64, len(d.partitions))
	for i, p := range d.partitions {
		counts[i] = p.ssa.TransitionCount()
	}
	return counts
}
