package engine

import (
	"fmt"

	"github.com/BorisVSchmid/SimInf/internal/engine/errcode"
)

// Split partitions the global event stream into Nthread per-partition E1
// queues and a single E2 queue owned by partition 0 (spec §4.3). Node v
// (the one-based wire value minus one) belongs to partition
// min(v/chunk, Nthread-1), where chunk = Nn/Nthread. EXTERNAL_TRANSFER
// events all go to partition 0's E2 queue regardless of node.
//
// Indices are rebased to zero-based after splitting: Node, Dest, Select
// and Shift each have one subtracted; Shift may legitimately become -1
// ("no shift").
func Split(global *EventRecord, Nn, Nthread int) (e1 []*EventRecord, e2 *EventRecord, err error) {
	if Nthread <= 0 || Nn <= 0 {
		return nil, nil, errcode.New(errcode.UnsupportedParallelization, 0, -1,
			fmt.Sprintf("Nthread=%d Nn=%d", Nthread, Nn))
	}

	chunk := Nn / Nthread
	if chunk == 0 {
		chunk = 1
	}

	partitionOf := func(node1Based int) int {
		k := (node1Based - 1) / chunk
		if k >= Nthread {
			k = Nthread - 1
		}
		return k
	}

	e1Idx := make([][]int, Nthread)
	e2Idx := []int{}

	for i := 0; i < global.Len(); i++ {
		switch global.Event[i] {
		case Exit, Enter, InternalTransfer:
			k := partitionOf(global.Node[i])
			e1Idx[k] = append(e1Idx[k], i)
		case ExternalTransfer:
			e2Idx = append(e2Idx, i)
		default:
			return nil, nil, errcode.New(errcode.UndefinedEvent, 0, -1,
				fmt.Sprintf("event[%d]=%d", i, global.Event[i]))
		}
	}

	e1 = make([]*EventRecord, Nthread)
	for k := 0; k < Nthread; k++ {
		e1[k] = buildRecord(global, e1Idx[k], true)
	}
	e2 = buildRecord(global, e2Idx, false)

	return e1, e2, nil
}

// buildRecord copies the events at idx, in order, into a fresh
// EventRecord with rebased indices. The caller is responsible for
// providing a globally time-ordered event stream (spec §3 invariant 4);
// the splitter only partitions, it never reorders, so each queue keeps
// the input order of its events and concatenating the queues reproduces
// the input multiset (spec §8 round-trip property).
func buildRecord(global *EventRecord, idx []int, _ bool) *EventRecord {
	n := len(idx)
	rec := &EventRecord{
		Event:      make([]EventKind, n),
		Time:       make([]int, n),
		Node:       make([]int, n),
		Dest:       make([]int, n),
		N:          make([]int, n),
		Proportion: make([]float64, n),
		Select:     make([]int, n),
		Shift:      make([]int, n),
	}

	for j, i := range idx {
		rec.Event[j] = global.Event[i]
		rec.Time[j] = global.Time[i]
		rec.Node[j] = global.Node[i] - 1
		rec.Dest[j] = global.Dest[i] - 1
		rec.N[j] = global.N[i]
		rec.Proportion[j] = global.Proportion[i]
		rec.Select[j] = global.Select[i] - 1
		rec.Shift[j] = global.Shift[i] - 1
	}

	return rec
}

// Concat concatenates the per-partition E1 queues and then the E2 queue,
// used by round-trip tests (spec §8). The result holds the same events as
// the split input, each queue in input order; events of one kind that
// landed in different partitions come out grouped by partition, not in
// their original relative order.
func Concat(e1 []*EventRecord, e2 *EventRecord) *EventRecord {
	out := &EventRecord{}
	for _, r := range e1 {
		appendRecord(out, r)
	}
	appendRecord(out, e2)
	return out
}

func appendRecord(dst, src *EventRecord) {
	dst.Event = append(dst.Event, src.Event...)
	dst.Time = append(dst.Time, src.Time...)
	dst.Node = append(dst.Node, src.Node...)
	dst.Dest = append(dst.Dest, src.Dest...)
	dst.N = append(dst.N, src.N...)
	dst.Proportion = append(dst.Proportion, src.Proportion...)
	dst.Select = append(dst.Select, src.Select...)
	dst.Shift = append(dst.Shift, src.Shift...)
}
