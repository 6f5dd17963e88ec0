// Package bedio streams intervals out of BED files (optionally
// gzip-compressed) as a PositionedIterator.  The reader is strictly
// sequential and therefore ignores seek hints; ordering is validated by the
// engine, not here.
package bedio

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/bio-intersect/interval"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// maxLineBytes bounds a single BED line; anything longer is malformed.
const maxLineBytes = 16 * 1024 * 1024

// Record is the payload carried by every interval a Reader produces: the
// chromosome name as spelled in the file and the unmodified line, so
// downstream consumers can reproduce the source row.
type Record struct {
	Chrom string
	Line  string
}

// Reader reads one BED file in file order and implements
// interval.PositionedIterator.
type Reader struct {
	name    string
	order   *interval.Order
	scanner *bufio.Scanner
	lineno  int

	ctx  context.Context
	f    file.File
	gzip *gzip.Reader
}

// New opens path (local or S3; gzip-suffixed files are decompressed) and
// returns a Reader over it.
func New(ctx context.Context, path string, order *interval.Order) (*Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	r := &Reader{name: path, order: order, ctx: ctx, f: f}
	in := f.Reader(ctx)
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if r.gzip, err = gzip.NewReader(in); err != nil {
			f.Close(ctx) // nolint: errcheck
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		r.scanner = bufio.NewScanner(r.gzip)
	default:
		r.scanner = bufio.NewScanner(in)
	}
	r.scanner.Buffer(nil, maxLineBytes)
	vlog.VI(1).Infof("%s: opened BED source", path)
	return r, nil
}

// NewReader wraps an already-open uncompressed stream.  name is used in
// diagnostics.
func NewReader(in io.Reader, name string, order *interval.Order) *Reader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, maxLineBytes)
	return &Reader{name: name, order: order, scanner: scanner}
}

// Name implements interval.PositionedIterator.
func (r *Reader) Name() string { return r.name }

// Next implements interval.PositionedIterator.  The hint is ignored: a
// stream cannot seek.
func (r *Reader) Next(_ *interval.Position) (*interval.Interval, error) {
	for r.scanner.Scan() {
		r.lineno++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if skipLine(line) {
			continue
		}
		return r.parse(line)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, &interval.SourceError{
			Kind:   interval.IO,
			Source: r.name,
			Detail: "read",
			Err:    err,
		}
	}
	return nil, io.EOF
}

// skipLine reports whether line is a comment or BED header row.
func skipLine(line string) bool {
	return line == "" || line[0] == '#' ||
		strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser")
}

func (r *Reader) parse(line string) (*interval.Interval, error) {
	var tokens [3]string
	if n := splitTokens(line, tokens[:]); n < 3 {
		return nil, r.parseError(errors.Errorf("expected at least 3 fields, got %d", n))
	}
	chromID, ok := r.order.ID(tokens[0])
	if !ok {
		return nil, &interval.SourceError{
			Kind:   interval.UnknownChromosome,
			Source: r.name,
			Chrom:  tokens[0],
			Detail: "line " + strconv.Itoa(r.lineno),
		}
	}
	start, err := strconv.ParseUint(tokens[1], 10, 64)
	if err != nil {
		return nil, r.parseError(errors.Wrap(err, "bad start"))
	}
	stop, err := strconv.ParseUint(tokens[2], 10, 64)
	if err != nil {
		return nil, r.parseError(errors.Wrap(err, "bad stop"))
	}
	if stop < start {
		return nil, r.parseError(errors.Errorf("stop %d before start %d", stop, start))
	}
	return &interval.Interval{
		Position: interval.Position{ChromID: chromID, Start: start, Stop: stop},
		Payload:  &Record{Chrom: tokens[0], Line: line},
	}, nil
}

func (r *Reader) parseError(err error) error {
	return &interval.SourceError{
		Kind:   interval.Parse,
		Source: r.name,
		Detail: "line " + strconv.Itoa(r.lineno),
		Err:    err,
	}
}

// Close implements interval.PositionedIterator.
func (r *Reader) Close() error {
	var firstErr error
	if r.gzip != nil {
		firstErr = r.gzip.Close()
		r.gzip = nil
	}
	if r.f != nil {
		if err := r.f.Close(r.ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		r.f = nil
	}
	return firstErr
}

// splitTokens fills tokens with the leading whitespace-separated fields of
// line, returning how many were found.  Any group of characters <= ' ' is a
// delimiter; this matches what BED tooling accepts in practice and is much
// cheaper than strings.Fields for the three columns we need.
func splitTokens(line string, tokens []string) int {
	posEnd := 0
	lineLen := len(line)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if line[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if line[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = line[pos:posEnd]
	}
	return len(tokens)
}
