package intersect

import (
	"container/heap"
	"io"

	"github.com/grailbio/bio-intersect/interval"
)

// source wraps one PositionedIterator with the bookkeeping needed to merge
// it: its dense ID, the last position it returned (for order validation),
// and whether it has hit EOF.
type source struct {
	id   uint32
	iter interval.PositionedIterator
	prev interval.Position
	seen bool
	eof  bool
}

// pull reads the next interval from s, validating that s stays in
// nondecreasing (ChromID, Start, Stop) order.  Returns (nil, nil) at EOF.
func (s *source) pull(order *interval.Order, hint *interval.Position) (*interval.Interval, error) {
	if s.eof {
		return nil, nil
	}
	iv, err := s.iter.Next(hint)
	if err == io.EOF {
		s.eof = true
		return nil, nil
	}
	if err != nil {
		if se, ok := err.(*interval.SourceError); ok {
			return nil, se
		}
		return nil, &interval.SourceError{Kind: interval.IO, Source: s.iter.Name(), Err: err}
	}
	// Equal consecutive positions are tolerated (an adapter may emit
	// distinct records at one position); only a strict regression is fatal.
	if s.seen && s.prev.Compare(iv.Position) > 0 {
		return nil, interval.NewOrderError(s.iter.Name(), s.prev, iv.Position,
			order.Region(s.prev), order.Region(iv.Position))
	}
	s.prev = iv.Position
	s.seen = true
	return iv, nil
}

// heapEntry is one pre-pulled interval awaiting its turn in the merge, plus
// the source ID used both as routing key for the refill and as the
// deterministic tiebreak at equal positions.
type heapEntry struct {
	iv     *interval.Interval
	source uint32
}

// mergeHeap merges the N per-source streams into one stream sorted by
// (ChromID, Start, Stop, source).  Ascending source ID as final key makes
// the merge deterministic and places the query source (ID 0) ahead of every
// database interval at the same coordinates.  At most one entry per source
// is ever on the heap; an exhausted source simply vacates its slot.
type mergeHeap struct {
	entries []heapEntry
	sources []*source
	order   *interval.Order
}

func (h *mergeHeap) Len() int { return len(h.entries) }

func (h *mergeHeap) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if c := a.iv.Position.Compare(b.iv.Position); c != 0 {
		return c < 0
	}
	return a.source < b.source
}

func (h *mergeHeap) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *mergeHeap) Push(x interface{}) { h.entries = append(h.entries, x.(heapEntry)) }

func (h *mergeHeap) Pop() interface{} {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	return e
}

// seed pulls the first interval from every source and pushes it.  No hint is
// passed: there is no query yet.
func (h *mergeHeap) seed() error {
	for _, s := range h.sources {
		iv, err := s.pull(h.order, nil)
		if err != nil {
			return err
		}
		if iv != nil {
			heap.Push(h, heapEntry{iv: iv, source: s.id})
		}
	}
	return nil
}

// peek returns the minimum entry without disturbing the heap.
func (h *mergeHeap) peek() (heapEntry, bool) {
	if len(h.entries) == 0 {
		return heapEntry{}, false
	}
	return h.entries[0], true
}

// popMin removes and returns the minimum entry, then refills the heap from
// the same source, passing hint through to it.  When the source is at EOF
// its slot stays vacant and the heap shrinks.
func (h *mergeHeap) popMin(hint *interval.Position) (heapEntry, error) {
	e := heap.Pop(h).(heapEntry)
	next, err := h.sources[e.source].pull(h.order, hint)
	if err != nil {
		return heapEntry{}, err
	}
	if next != nil {
		heap.Push(h, heapEntry{iv: next, source: e.source})
	}
	return e, nil
}
