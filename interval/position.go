package interval

// Position identifies the half-open interval [Start, Stop) on the chromosome
// with order index ChromID.  Stop >= Start always; Start == Stop denotes an
// empty interval.  The triple (ChromID, Start, Stop) is totally ordered, see
// Compare.
type Position struct {
	ChromID uint32
	Start   uint64
	Stop    uint64
}

// Empty reports whether p spans zero bases.
func (p Position) Empty() bool {
	return p.Start == p.Stop
}

// Compare returns -1, 0, or 1 according to the lexicographic order on
// (ChromID, Start, Stop).  Note that 0 means identical coordinates, not
// overlap; use Overlaps for the latter.
func (p Position) Compare(q Position) int {
	switch {
	case p.ChromID != q.ChromID:
		if p.ChromID < q.ChromID {
			return -1
		}
		return 1
	case p.Start != q.Start:
		if p.Start < q.Start {
			return -1
		}
		return 1
	case p.Stop != q.Stop:
		if p.Stop < q.Stop {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether p sorts strictly before q.
func (p Position) Less(q Position) bool {
	return p.Compare(q) < 0
}

// Before reports whether p ends at or before the start of q, i.e. p can no
// longer overlap q or anything sorting after q.  Empty p counts as before
// when its point is at or before q.Start.
func (p Position) Before(q Position) bool {
	if p.ChromID != q.ChromID {
		return p.ChromID < q.ChromID
	}
	return p.Stop <= q.Start
}

// Overlaps reports whether p and q share at least one base:
// p.Start < q.Stop && q.Start < p.Stop on the same chromosome, with neither
// interval empty.  Empty intervals overlap nothing, even when their point
// lies inside the other interval.
func (p Position) Overlaps(q Position) bool {
	if p.Empty() || q.Empty() {
		return false
	}
	return p.ChromID == q.ChromID && p.Start < q.Stop && q.Start < p.Stop
}

// Interval couples a Position with the source record it was read from.  The
// payload is opaque to everything in this repository except the adapter that
// produced it.  Intervals are shared freely between the engine's internal
// queues and emitted Intersections records and must not be mutated after
// construction.
type Interval struct {
	Position
	Payload interface{}
}
