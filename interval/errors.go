package interval

import "fmt"

// ErrorKind classifies the fatal failures a source or the engine can hit.
// There is no partial recovery: once any of these surfaces, every subsequent
// output would be suspect, so the run stops.
type ErrorKind int

const (
	// OutOfOrder means a source returned a position sorting before its
	// previous one.
	OutOfOrder ErrorKind = iota
	// UnknownChromosome means a source returned a chromosome name absent
	// from the Order.
	UnknownChromosome
	// IO means an underlying read failed.
	IO
	// Parse means an adapter could not decode a record.
	Parse
)

func (k ErrorKind) String() string {
	switch k {
	case OutOfOrder:
		return "out of order"
	case UnknownChromosome:
		return "unknown chromosome"
	case IO:
		return "io error"
	case Parse:
		return "parse error"
	}
	return "unknown error"
}

// SourceError is the error type for all fatal per-source failures.  Source
// always names the offending iterator; the remaining fields are filled per
// Kind.
type SourceError struct {
	Kind   ErrorKind
	Source string
	// Prev and Cur are the two offending positions for OutOfOrder.
	Prev, Cur Position
	// Chrom is the offending name for UnknownChromosome.
	Chrom string
	// Detail carries human-readable context, e.g. pre-rendered region
	// strings or a line number.
	Detail string
	// Err is the underlying cause for IO and Parse.
	Err error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Chrom != "" {
		msg += fmt.Sprintf(": %q", e.Chrom)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Cause returns the underlying error, following the pkg/errors convention.
func (e *SourceError) Cause() error { return e.Err }

// NewOrderError reports that source returned cur after prev.  The regions
// are pre-rendered so the message survives without access to the Order.
func NewOrderError(source string, prev, cur Position, prevRegion, curRegion string) *SourceError {
	return &SourceError{
		Kind:   OutOfOrder,
		Source: source,
		Prev:   prev,
		Cur:    cur,
		Detail: fmt.Sprintf("%s should be before %s", curRegion, prevRegion),
	}
}
