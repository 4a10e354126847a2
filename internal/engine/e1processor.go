package engine

import (
	"fmt"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
	"github.com/BorisVSchmid/SimInf/internal/rng"
)

// E1Processor applies intra-node scheduled events (EXIT, ENTER,
// INTERNAL_TRANSFER) to one partition's slice of the state (spec §4.4,
// C4). It owns no state of its own beyond scratch buffers.
type E1Processor struct {
	model   *Model
	stream  *rng.Stream
	scratch []int

	partition int
}

// NewE1Processor creates an E1Processor for the given partition.
func NewE1Processor(model *Model, stream *rng.Stream, partition int) *E1Processor {
	return &E1Processor{
		model:     model,
		stream:    stream,
		scratch:   make([]int, model.Dims.Nc),
		partition: partition,
	}
}

// Drain applies every event in queue with Time <= tt, marking touched
// nodes in updateNode. Returns the first error encountered, if any.
func (p *E1Processor) Drain(queue *eventQueue, state *State, tt float64, updateNode []bool) error {
	return queue.drainUpTo(tt, func(i int) error {
		rec := queue.rec
		node := rec.Node[i]
		uNode := state.UNode(node)

		switch rec.Event[i] {
		case Enter:
			if err := p.applyEnter(uNode, rec.Select[i], rec.N[i], node); err != nil {
				return err
			}
		case Exit:
			if err := p.applyExit(uNode, rec.Select[i], rec.N[i], rec.Proportion[i], node); err != nil {
				return err
			}
		case InternalTransfer:
			if err := p.applyInternalTransfer(uNode, rec.Select[i], rec.Shift[i], rec.N[i], rec.Proportion[i], node); err != nil {
				return err
			}
		default:
			return errcode.New(errcode.UndefinedEvent, p.partition, node,
				fmt.Sprintf("event=%d", rec.Event[i]))
		}

		updateNode[node] = true
		return nil
	})
}

func (p *E1Processor) applyEnter(uNode []int, selectCol, n, node int) error {
	listed := p.model.E.Column(selectCol)
	if len(listed) == 0 {
		return nil
	}

	target := listed[0]
	uNode[target] += n
	if uNode[target] < 0 {
		return errcode.New(errcode.NegativeState, p.partition, node,
			fmt.Sprintf("compartment %d would go to %d", target, uNode[target]))
	}
	return nil
}

func (p *E1Processor) applyExit(uNode []int, selectCol, n int, proportion float64, node int) error {
	individuals, err := SampleSelect(p.model.E, uNode, selectCol, n, proportion, p.stream, p.scratch)
	if err != nil {
		return err
	}

	for _, c := range p.model.E.Column(selectCol) {
		uNode[c] -= individuals[c]
		if uNode[c] < 0 {
			return errcode.New(errcode.NegativeState, p.partition, node,
				fmt.Sprintf("compartment %d would go to %d", c, uNode[c]))
		}
	}
	return nil
}

func (p *E1Processor) applyInternalTransfer(
	uNode []int, selectCol, shift, n int, proportion float64, node int,
) error {
	individuals, err := SampleSelect(p.model.E, uNode, selectCol, n, proportion, p.stream, p.scratch)
	if err != nil {
		return err
	}

	for _, c := range p.model.E.Column(selectCol) {
		offset := 0
		if shift >= 0 {
			offset = p.model.N.IntValueAt(shift, c)
		}
		dest := c + offset

		uNode[dest] += individuals[c]
		if uNode[dest] < 0 {
			return errcode.New(errcode.NegativeState, p.partition, node,
				fmt.Sprintf("compartment %d would go to %d", dest, uNode[dest]))
		}

		uNode[c] -= individuals[c]
		if uNode[c] < 0 {
			return errcode.New(errcode.NegativeState, p.partition, node,
				fmt.Sprintf("compartment %d would go to %d", c, uNode[c]))
		}
	}
	return nil
}
