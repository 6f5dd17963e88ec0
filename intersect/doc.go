/*Package intersect streams the intersection of one query source against any
  number of database sources, all of which produce genomic intervals in the
  total order defined by a shared interval.Order.

  The engine merges every source through a single min-heap, keeps a per-source
  FIFO of database intervals that may still overlap a future query, and yields
  one Intersections value per query interval, in query order.  Work is
  O((sum of inputs) * log(sources) + number of overlaps); memory is bounded by
  the span of live intervals, not by input size.

  The engine is single-threaded: one consumer calls Next, which pulls from the
  sources synchronously.  A database interval that overlaps several queries is
  read from its source exactly once and shared by pointer between emissions.
*/
package intersect
