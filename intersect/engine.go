package intersect

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio-intersect/interval"
)

// Engine drives the merge: it pulls every source through one min-heap,
// buffers database intervals that may still overlap an upcoming query in
// per-source FIFOs, and emits one Intersections per query interval.
//
// An Engine is single-threaded.  The consumer pulls with Next; the engine
// pulls from the sources synchronously, so a source that blocks on I/O
// blocks the engine.  Any error is fatal and sticky, and releases every
// source before returning.
type Engine struct {
	order *interval.Order
	heap  *mergeHeap

	// queues[s] holds intervals from database source s that have passed
	// through the heap but are not yet strictly before the current query.
	// Each queue is nondecreasing in the total order because the heap emits
	// a globally sorted stream.  queues[0] is unused.
	queues [][]*interval.Interval

	// hintOK[s] is set when query advancement finds queues[s] empty; the
	// next refill pull from s then carries the query as a seek hint.
	hintOK []bool

	// nextQ is the single-slot buffer for a query interval read one past
	// the current one during FillOverlaps.
	nextQ *interval.Interval

	seeded bool
	closed bool
	err    error
}

// New builds an Engine over a query source and zero or more database
// sources.  All sources must produce intervals in the total order defined by
// order.  The engine takes ownership of the sources and closes them when the
// run ends, fails, or is closed.
func New(order *interval.Order, query interval.PositionedIterator, databases ...interval.PositionedIterator) (*Engine, error) {
	if order == nil {
		return nil, errors.E("intersect: nil chromosome order")
	}
	if query == nil {
		return nil, errors.E("intersect: nil query source")
	}
	n := 1 + len(databases)
	sources := make([]*source, n)
	sources[0] = &source{id: 0, iter: query}
	for i, db := range databases {
		if db == nil {
			return nil, errors.E(fmt.Sprintf("intersect: nil database source at index %d", i))
		}
		sources[i+1] = &source{id: uint32(i + 1), iter: db}
	}
	return &Engine{
		order:  order,
		heap:   &mergeHeap{sources: sources, order: order},
		queues: make([][]*interval.Interval, n),
		hintOK: make([]bool, n),
	}, nil
}

// NDatabases returns the number of database sources.
func (e *Engine) NDatabases() int { return len(e.queues) - 1 }

// Next returns the Intersections for the next query interval, or io.EOF when
// the query source is exhausted.  Any other error is fatal: the engine
// closes its sources and every subsequent call returns the same error.
func (e *Engine) Next() (*Intersections, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.closed {
		return nil, io.EOF
	}
	if !e.seeded {
		if err := e.heap.seed(); err != nil {
			return nil, e.fail(err)
		}
		e.seeded = true
	}

	q, err := e.pullQuery()
	if err != nil {
		if err == io.EOF {
			e.Close()
			return nil, io.EOF
		}
		return nil, e.fail(err)
	}
	if err := e.checkQuery(q); err != nil {
		return nil, e.fail(err)
	}

	e.drainPast(q.Position)
	for s := 1; s < len(e.queues); s++ {
		e.hintOK[s] = len(e.queues[s]) == 0
	}
	if err := e.fillOverlaps(q.Position); err != nil {
		return nil, e.fail(err)
	}

	return &Intersections{Base: q, Overlapping: e.collectOverlaps(q.Position)}, nil
}

// Close releases every source.  Idempotent; safe after an error or EOF.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	var firstErr error
	for _, s := range e.heap.sources {
		if err := s.iter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Engine) fail(err error) error {
	e.err = err
	e.Close()
	return err
}

// pullQuery returns the next query interval: the deferred one if
// FillOverlaps read ahead, otherwise by popping the heap until a source-0
// entry surfaces.  Database intervals popped on the way are queued; whether
// they are already spent is the next drainPast's concern.  Returns io.EOF
// when the query source is exhausted.
func (e *Engine) pullQuery() (*interval.Interval, error) {
	if q := e.nextQ; q != nil {
		e.nextQ = nil
		return q, nil
	}
	for e.heap.Len() > 0 {
		entry, err := e.heap.popMin(nil)
		if err != nil {
			return nil, err
		}
		if entry.source == 0 {
			return entry.iv, nil
		}
		e.queues[entry.source] = append(e.queues[entry.source], entry.iv)
	}
	return nil, io.EOF
}

// checkQuery rejects a query interval running past the recorded length of
// its chromosome.  Monotonicity needs no check here: every source, the
// query included, is validated at the heap refill layer.
func (e *Engine) checkQuery(q *interval.Interval) error {
	if length := e.order.Length(q.ChromID); length > 0 && q.Stop > length {
		return &interval.SourceError{
			Kind:   interval.Parse,
			Source: e.heap.sources[0].iter.Name(),
			Detail: fmt.Sprintf("interval beyond end of chromosome: %s", e.order.Region(q.Position)),
		}
	}
	return nil
}

// drainPast removes from the front of every queue the intervals strictly
// before q: those can overlap neither q nor anything after it.
func (e *Engine) drainPast(q interval.Position) {
	for s := 1; s < len(e.queues); s++ {
		queue := e.queues[s]
		i := 0
		for i < len(queue) && queue[i].Position.Before(q) {
			queue[i] = nil // release the reference
			i++
		}
		e.queues[s] = queue[i:]
	}
}

// fillOverlaps pops the heap while its minimum can still matter to q: every
// entry up to and including start == q.Stop on q's chromosome.  Database
// intervals are queued; a query interval is parked in the one-slot nextQ
// buffer, and the merge stops rather than read two queries ahead.
func (e *Engine) fillOverlaps(q interval.Position) error {
	for {
		m, ok := e.heap.peek()
		if !ok {
			return nil
		}
		p := m.iv.Position
		if p.ChromID > q.ChromID || (p.ChromID == q.ChromID && p.Start > q.Stop) {
			return nil
		}
		if m.source == 0 && e.nextQ != nil {
			return nil
		}
		var hint *interval.Position
		if m.source != 0 && e.hintOK[m.source] {
			hint = &q
			e.hintOK[m.source] = false
		}
		entry, err := e.heap.popMin(hint)
		if err != nil {
			return err
		}
		if entry.source == 0 {
			e.nextQ = entry.iv
		} else {
			e.queues[entry.source] = append(e.queues[entry.source], entry.iv)
		}
	}
}

// overlapsQuery decides whether database interval i is reported against
// query q.  Empty database intervals hit nothing.  A non-empty query uses
// plain half-open overlap; an empty query hits the intervals its point lies
// inside: i.Start <= q.Start < i.Stop.
func overlapsQuery(i, q interval.Position) bool {
	if i.ChromID != q.ChromID || i.Empty() {
		return false
	}
	if q.Empty() {
		return i.Start <= q.Start && q.Start < i.Stop
	}
	return i.Start < q.Stop && i.Stop > q.Start
}

// collectOverlaps walks the queues in source order gathering the intervals
// overlapping q.  Queues are sorted, so each scan stops at the first entry
// past q; the combined result is then ordered by (Start, Stop) with the
// source-order appends breaking ties.
func (e *Engine) collectOverlaps(q interval.Position) []Intersection {
	var out []Intersection
	for s := 1; s < len(e.queues); s++ {
		for _, iv := range e.queues[s] {
			p := iv.Position
			if p.ChromID > q.ChromID {
				break
			}
			if p.ChromID == q.ChromID {
				if q.Empty() {
					if p.Start > q.Start {
						break
					}
				} else if p.Start >= q.Stop {
					break
				}
			}
			if overlapsQuery(p, q) {
				out = append(out, Intersection{Interval: iv, Source: uint32(s)})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Interval.Position, out[j].Interval.Position
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Stop < b.Stop
	})
	return out
}
