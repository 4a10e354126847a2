package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
)

// Run advances the simulation from tspan[0] to tspan[len(tspan)-1], one
// simulated day at a time, until the output has been filled (spec §4.7,
// §4.8, C7/C8).
//
// Each day has three barriers, matching the fused structure of the
// original per-thread loop: every partition runs its nodes' SSA clocks
// to the day boundary and immediately drains its own E1 queue in the
// same pass (no barrier between the two — a partition's E1 events can
// only touch nodes that partition itself owns, so there is nothing to
// synchronize); then all partitions wait at a barrier before partition
// 0 alone drains the E2 queue as the single writer across node
// boundaries; then all partitions wait again before running the
// post-step hook and any rate refresh it triggers; then one final wait
// before the day's snapshot, buffer swap and day-boundary advance.
func (d *Driver) Run() error {
	if err := d.InitRates(d.tspan[0]); err != nil {
		return err
	}
	d.out.Init(d.state)

	tt := d.tspan[0]
	nextDay := tt + 1.0
	day := 0

	for !d.out.Done() {
		d.InvokeHook(DayHookCtx{
			Pos: DayHookPosBeforeDay, Day: day, Tt: tt,
			TSpan0: d.tspan[0], TSpanN: d.tspan[len(d.tspan)-1],
		})

		if err := d.timedPhase("ssa_e1", func() error {
			return d.runSSAAndE1(nextDay, tt)
		}); err != nil {
			return err
		}

		if err := d.timedPhase("e2", func() error {
			return d.e2.proc.Drain(d.e2.queue, d.state, tt, d.updateNode)
		}); err != nil {
			return err
		}

		if err := d.timedPhase("post_step", func() error {
			return d.runPostStep(tt)
		}); err != nil {
			return err
		}

		tt = nextDay
		nextDay++

		d.out.Snapshot(d.tspan, tt, d.state)
		d.state.SwapContinuous()

		d.InvokeHook(DayHookCtx{
			Pos: DayHookPosAfterDay, Day: day, Tt: tt,
			TSpan0: d.tspan[0], TSpanN: d.tspan[len(d.tspan)-1],
		})

		day++
	}

	return nil
}

// runSSAAndE1 runs, per partition and in parallel, every owned node's SSA
// clock to nextDay and then drains that partition's E1 queue up to tt,
// the day boundary reached at the *start* of this iteration (spec §4.6,
// §4.4; original_source/src/solvers/ssa/SimInf_solver_ssa.c fuses these
// two loops inside one #pragma omp for block, with no barrier between
// them, and drains against sa.tt before it is advanced to next_day).
func (d *Driver) runSSAAndE1(nextDay, tt float64) error {
	var wg sync.WaitGroup
	errs := make([]error, len(d.partitions))

	for i, p := range d.partitions {
		wg.Add(1)
		go func(i int, p *partition) {
			defer wg.Done()

			for node := p.nodeLo; node < p.nodeHi; node++ {
				if err := p.ssa.RunNodeToDay(d.state, node, nextDay); err != nil {
					errs[i] = err
					return
				}
			}

			if err := p.e1.Drain(p.e1Queue, d.state, tt, d.updateNode); err != nil {
				errs[i] = err
				return
			}
		}(i, p)
	}
	wg.Wait()

	return firstError(errs)
}

// runPostStep invokes the post-step hook for every node, in parallel
// across partitions, and refreshes a node's transition rates in full
// whenever the hook reports activity (return > 0) or the node was
// touched by an E1/E2 event this day (spec §4.7 step 4;
// original_source/src/solvers/ssa/SimInf_solver_ssa.c lines 450-485).
func (d *Driver) runPostStep(t float64) error {
	var wg sync.WaitGroup
	errs := make([]error, len(d.partitions))

	for i, p := range d.partitions {
		wg.Add(1)
		go func(i int, p *partition) {
			defer wg.Done()

			for node := p.nodeLo; node < p.nodeHi; node++ {
				if err := d.postStepNode(p, node, t); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, p)
	}
	wg.Wait()

	return firstError(errs)
}

// timedPhase runs fn and, if a PhaseObserver is registered, reports its
// duration under phase. Kept out of the hot loop's critical path: the
// timer is read on the calling goroutine only, never inside a worker.
func (d *Driver) timedPhase(phase string, fn func() error) error {
	if d.PhaseObserver == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	d.PhaseObserver(phase, time.Since(start))
	return err
}

func (d *Driver) postStepNode(p *partition, node int, t float64) error {
	rc := 0

	if d.model.PtsFun != nil {
		vNewNode := d.state.VNewNode(node)
		uNode := d.state.UNode(node)
		vNode := d.state.VNode(node)
		ldataNode := d.state.LdataNode(node)

		rc = d.model.PtsFun(vNewNode, uNode, vNode, ldataNode, d.model.Gdata, node, t)
		if rc < 0 {
			return errcode.New(errcode.InvalidRate, p.index, node,
				fmt.Sprintf("post-step hook returned %d", rc))
		}
	}

	if rc > 0 || d.updateNode[node] {
		// InitNodeRates also sets the node's SSA clock to t; keep the
		// clock at the day boundary the SSA phase already reached.
		tTime := d.state.TTime[node]
		if err := p.ssa.InitNodeRates(d.state, node, t); err != nil {
			return err
		}
		d.state.TTime[node] = tTime
		d.updateNode[node] = false
	}

	return nil
}
