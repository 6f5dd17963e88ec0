/*Package interval defines the positional data model shared by every source
  of sorted genomic intervals: half-open positions, the chromosome order that
  makes positions from independently-named contigs comparable, the
  PositionedIterator contract a source must satisfy, and the typed errors a
  source may surface.  The intersection engine itself lives in package
  intersect; format adapters live under encoding/.
*/
package interval
