package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Order assigns each chromosome name a dense index defining the global sort
// order of positions across contigs.  Every iterator feeding one engine must
// have been constructed against the same Order.  An Order optionally carries
// per-chromosome lengths (from a .fai or .genome file); a length of zero
// means unknown.
//
// Order is immutable after construction and therefore safe for concurrent
// readers.
type Order struct {
	index   map[string]uint32
	names   []string
	lengths []uint64
}

// NewOrder returns an empty Order.  Use Add to register chromosomes in
// sort order.
func NewOrder() *Order {
	return &Order{index: map[string]uint32{}}
}

// Add registers name as the next chromosome in the order and returns its
// index.  length may be zero if unknown.  Adding a name twice is an error;
// the caller is expected to dedup (a genome file listing a chromosome twice
// is malformed).
func (o *Order) Add(name string, length uint64) (uint32, error) {
	if _, ok := o.index[name]; ok {
		return 0, errors.E(fmt.Sprintf("duplicate chromosome %q in genome order", name))
	}
	id := uint32(len(o.names))
	o.index[name] = id
	o.names = append(o.names, name)
	o.lengths = append(o.lengths, length)
	return id, nil
}

// ID returns the order index for name.
func (o *Order) ID(name string) (uint32, bool) {
	id, ok := o.index[name]
	return id, ok
}

// Name returns the chromosome name for id, or "?" if id is out of range.
func (o *Order) Name(id uint32) string {
	if int(id) >= len(o.names) {
		return "?"
	}
	return o.names[id]
}

// Length returns the recorded length of chromosome id, or zero if unknown.
func (o *Order) Length(id uint32) uint64 {
	if int(id) >= len(o.lengths) {
		return 0
	}
	return o.lengths[id]
}

// Len returns the number of chromosomes in the order.
func (o *Order) Len() int {
	return len(o.names)
}

// Region renders p as a 1-based samtools-style region string, e.g.
// "chr1:3-8" for the half-open position [2, 8) on chr1.  Used in
// diagnostics only.
func (o *Order) Region(p Position) string {
	return fmt.Sprintf("%s:%d-%d", o.Name(p.ChromID), p.Start+1, p.Stop)
}
