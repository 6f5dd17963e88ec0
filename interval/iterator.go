package interval

// PositionedIterator is the contract between the intersection engine and a
// source of sorted intervals.  Implementations must return intervals in
// nondecreasing (ChromID, Start, Stop) order; the engine verifies this and
// fails the run on the first violation.
//
// hint, when non-nil, is the engine's current query interval.  It is passed
// at most once per query, on the first pull from this source after the query
// advanced while the source had no live intervals buffered.  An indexed
// source may respond by seeking forward to the first interval with
// Stop > hint.Start on hint's chromosome; it must never re-return an
// interval and must never skip one whose Stop is beyond hint.Start.  A
// streaming source simply ignores the hint.  The hint is only valid for the
// duration of the call.
//
// Next returns io.EOF when the source is exhausted.  Any other error is
// fatal to the run; sources should surface *SourceError so the failure
// carries its kind and origin.
type PositionedIterator interface {
	// Name identifies the source in diagnostics, conventionally the file path.
	Name() string
	// Next returns the next interval in order, or io.EOF.
	Next(hint *Position) (*Interval, error)
	// Close releases underlying resources.  The engine calls Close on every
	// source exactly once, on normal exhaustion, on fatal error, and on
	// cancellation alike.
	Close() error
}
