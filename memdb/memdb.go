// Package memdb provides an in-memory interval database whose iterators
// support the engine's skip-ahead protocol.  Records may be inserted in any
// order; iteration is always in total order.  It doubles as the reference
// implementation of an indexed source for tests: the hint handling here is
// the behavior the PositionedIterator contract asks of any seekable adapter.
package memdb

import (
	"fmt"
	"io"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio-intersect/interval"
)

// item keys the LLRB tree by position, with the insertion sequence number
// breaking ties so identical positions with distinct payloads survive.
type item struct {
	iv  *interval.Interval
	seq int
}

// Compare implements llrb.Comparable.
func (it item) Compare(c llrb.Comparable) int {
	other := c.(item)
	if d := it.iv.Position.Compare(other.iv.Position); d != 0 {
		return d
	}
	return it.seq - other.seq
}

// DB is a sorted in-memory interval collection.  Insert in any order, then
// create any number of iterators; Insert must not be called once an
// iterator exists.
type DB struct {
	order  *interval.Order
	tree   llrb.Tree
	seq    int
	frozen []*interval.Interval
}

// New returns an empty DB over the given chromosome order.
func New(order *interval.Order) *DB {
	return &DB{order: order}
}

// Insert adds one record.  chrom must be known to the DB's order.
func (d *DB) Insert(chrom string, start, stop uint64, payload interface{}) error {
	if d.frozen != nil {
		return errors.E("memdb: Insert after Iterator")
	}
	id, ok := d.order.ID(chrom)
	if !ok {
		return errors.E(fmt.Sprintf("memdb: unknown chromosome %q", chrom))
	}
	d.tree.Insert(item{
		iv: &interval.Interval{
			Position: interval.Position{ChromID: id, Start: start, Stop: stop},
			Payload:  payload,
		},
		seq: d.seq,
	})
	d.seq++
	return nil
}

// Len returns the number of records.
func (d *DB) Len() int { return d.tree.Len() }

func (d *DB) freeze() []*interval.Interval {
	if d.frozen == nil {
		d.frozen = make([]*interval.Interval, 0, d.tree.Len())
		d.tree.Do(func(c llrb.Comparable) bool {
			d.frozen = append(d.frozen, c.(item).iv)
			return false
		})
	}
	return d.frozen
}

// Iterator returns a PositionedIterator over the DB.  When honorHints is
// set, a hint makes the iterator seek forward to the first remaining
// interval that is not strictly before it; intervals after that one are
// returned even if they are themselves strictly before the hint.  With
// honorHints false the iterator behaves like a plain stream, which
// is how tests prove that hints never change results.
func (d *DB) Iterator(name string, honorHints bool) *Iterator {
	return &Iterator{name: name, ivs: d.freeze(), honorHints: honorHints}
}

// Iterator implements interval.PositionedIterator over a frozen DB.
type Iterator struct {
	name       string
	ivs        []*interval.Interval
	i          int
	honorHints bool
}

// Name implements interval.PositionedIterator.
func (it *Iterator) Name() string { return it.name }

// Next implements interval.PositionedIterator.  On a hint it advances past
// the leading run of intervals that end at or before the hint's start (or
// lie on an earlier chromosome); it never revisits a
// returned interval and never drops one that could still overlap the hint
// or anything after it.
func (it *Iterator) Next(hint *interval.Position) (*interval.Interval, error) {
	if hint != nil && it.honorHints {
		for it.i < len(it.ivs) && it.ivs[it.i].Position.Before(*hint) {
			it.i++
		}
	}
	if it.i >= len(it.ivs) {
		return nil, io.EOF
	}
	iv := it.ivs[it.i]
	it.i++
	return iv, nil
}

// Close implements interval.PositionedIterator.
func (it *Iterator) Close() error { return nil }
