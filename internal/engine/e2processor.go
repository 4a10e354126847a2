package engine

import (
	"fmt"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
	"github.com/BorisVSchmid/SimInf/internal/rng"
)

// E2Processor applies EXTERNAL_TRANSFER events to the full state under a
// single writer (spec §4.5, C5). Only partition 0 ever constructs one.
type E2Processor struct {
	model   *Model
	stream  *rng.Stream
	scratch []int
}

// NewE2Processor creates the single-writer E2 processor.
func NewE2Processor(model *Model, stream *rng.Stream) *E2Processor {
	return &E2Processor{
		model:   model,
		stream:  stream,
		scratch: make([]int, model.Dims.Nc),
	}
}

// Drain applies every ripe EXTERNAL_TRANSFER event in queue, marking both
// source and destination nodes in updateNode.
func (p *E2Processor) Drain(queue *eventQueue, state *State, tt float64, updateNode []bool) error {
	return queue.drainUpTo(tt, func(i int) error {
		rec := queue.rec
		source := rec.Node[i]
		dest := rec.Dest[i]
		selectCol := rec.Select[i]
		shift := rec.Shift[i]

		uSource := state.UNode(source)
		individuals, err := SampleSelect(p.model.E, uSource, selectCol, rec.N[i], rec.Proportion[i], p.stream, p.scratch)
		if err != nil {
			return err
		}

		uDest := state.UNode(dest)
		for _, c := range p.model.E.Column(selectCol) {
			offset := 0
			if shift >= 0 {
				offset = p.model.N.IntValueAt(shift, c)
			}

			destC := c + offset
			uDest[destC] += individuals[c]
			if uDest[destC] < 0 {
				return errcode.New(errcode.NegativeState, 0, dest,
					fmt.Sprintf("compartment %d would go to %d", destC, uDest[destC]))
			}

			uSource[c] -= individuals[c]
			if uSource[c] < 0 {
				return errcode.New(errcode.NegativeState, 0, source,
					fmt.Sprintf("compartment %d would go to %d", c, uSource[c]))
			}
		}

		updateNode[source] = true
		updateNode[dest] = true
		return nil
	})
}
