package engine

// EventKind is the wire-stable event type code (spec §6).
type EventKind int

// Event type codes (wire-stable, spec §6).
const (
	Exit EventKind = iota
	Enter
	InternalTransfer
	ExternalTransfer
)

// EventRecord is the columnar scheduled-event buffer (spec §3). All
// slices have the same length; record i is (Event[i], Time[i], ...).
// Indices are one-based on the wire and rebased to zero-based by the
// splitter (spec §4.3).
type EventRecord struct {
	Event      []EventKind
	Time       []int
	Node       []int
	Dest       []int
	N          []int
	Proportion []float64
	Select     []int
	Shift      []int
}

// Len returns the number of events in the record.
func (e *EventRecord) Len() int {
	return len(e.Event)
}

// Swap exchanges records i and j across every column.
func (e *EventRecord) Swap(i, j int) {
	e.Event[i], e.Event[j] = e.Event[j], e.Event[i]
	e.Time[i], e.Time[j] = e.Time[j], e.Time[i]
	e.Node[i], e.Node[j] = e.Node[j], e.Node[i]
	e.Dest[i], e.Dest[j] = e.Dest[j], e.Dest[i]
	e.N[i], e.N[j] = e.N[j], e.N[i]
	e.Proportion[i], e.Proportion[j] = e.Proportion[j], e.Proportion[i]
	e.Select[i], e.Select[j] = e.Select[j], e.Select[i]
	e.Shift[i], e.Shift[j] = e.Shift[j], e.Shift[i]
}

// eventQueue is a time-sorted, cursor-advanced view over one partition's
// slice of an EventRecord. Events with equal Time are kept in their
// original relative order (spec §3 invariant 4); there is no heap and no
// per-pop allocation, matching the "no per-step allocation in the hot
// path" design note.
type eventQueue struct {
	rec    *EventRecord
	cursor int
}

func newEventQueue(rec *EventRecord) *eventQueue {
	return &eventQueue{rec: rec}
}

// drainUpTo calls fn for every not-yet-consumed event whose Time has not
// exceeded tt, in queue order, advancing the cursor. It stops at the
// first error. tt is the simulated day boundary reached by the start of
// this iteration (original_source/src/solvers/ssa/SimInf_solver_ssa.c
// compares its thread-local sa.tt, a float, against the integer event
// time column the same way — not a loop-iteration counter, which would
// silently assume tspan[0] == 0).
func (q *eventQueue) drainUpTo(tt float64, fn func(i int) error) error {
	for q.cursor < q.rec.Len() && float64(q.rec.Time[q.cursor]) <= tt {
		if err := fn(q.cursor); err != nil {
			return err
		}
		q.cursor++
	}
	return nil
}
