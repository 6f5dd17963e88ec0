package intersect

import "github.com/grailbio/bio-intersect/interval"

// Intersection is one database interval overlapping a query, tagged with the
// index of the source it came from.  Source 0 is the query source, so Source
// here is always >= 1.
type Intersection struct {
	Interval *interval.Interval
	Source   uint32
}

// Intersections is the engine's per-query emission: the query interval
// itself and every database interval overlapping it, sorted by
// (Start, Stop, Source).  Overlapping is empty for queries that hit
// nothing.
//
// The *interval.Interval values in Overlapping are shared with the engine's
// internal state and with any other Intersections that the same database
// interval overlaps; they must be treated as read-only.
type Intersections struct {
	Base        *interval.Interval
	Overlapping []Intersection
}

// SourceCounts tallies Overlapping by source for an engine with nDatabases
// database sources.  The returned slice is indexed by source ID; index 0 is
// always zero.
func (x *Intersections) SourceCounts(nDatabases int) []int {
	counts := make([]int, nDatabases+1)
	for _, o := range x.Overlapping {
		counts[o.Source]++
	}
	return counts
}
