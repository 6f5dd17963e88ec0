// Package genome builds the chromosome order every source of a run must
// agree on.  Orders come from three places: a ".genome" file (one chromosome
// name per line, optionally followed by its length), a FASTA .fai index, or
// the reference dictionary of a SAM/BAM header.
package genome

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-intersect/interval"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// Parse reads a .genome file: one chromosome per line in the desired order,
// with an optional whitespace-separated length.  Blank lines and lines
// starting with '#' are skipped.  An unparseable length is warned about and
// treated as unknown rather than failing the whole file.
func Parse(r io.Reader) (*interval.Order, error) {
	order := interval.NewOrder()
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		var length uint64
		if len(fields) > 1 {
			l, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				log.Error.Printf("genome: invalid length for chromosome %s on line %d: %q", fields[0], lineno, fields[1])
			} else {
				length = l
			}
		}
		if _, err := order.Add(fields[0], length); err != nil {
			return nil, errors.Wrapf(err, "genome: line %d", lineno)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "genome: read")
	}
	if order.Len() == 0 {
		return nil, errors.New("genome: no chromosomes found")
	}
	return order, nil
}

// ParseFai reads a FASTA .fai index ("<name>\t<length>\t...").  Unlike
// Parse, a bad length is an error: fai files are machine-written and a
// malformed one should not be trusted.
func ParseFai(r io.Reader) (*interval.Order, error) {
	order := interval.NewOrder()
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.Errorf("fai: line %d: expected at least 2 columns, got %d", lineno, len(fields))
		}
		length, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "fai: line %d: bad length for %s", lineno, fields[0])
		}
		if _, err := order.Add(fields[0], length); err != nil {
			return nil, errors.Wrapf(err, "fai: line %d", lineno)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fai: read")
	}
	if order.Len() == 0 {
		return nil, errors.New("fai: no chromosomes found")
	}
	return order, nil
}

// FromSAMHeader derives the order from a SAM/BAM header's reference
// dictionary, in dictionary order.
func FromSAMHeader(h *sam.Header) (*interval.Order, error) {
	order := interval.NewOrder()
	for _, ref := range h.Refs() {
		if _, err := order.Add(ref.Name(), uint64(ref.Len())); err != nil {
			return nil, err
		}
	}
	if order.Len() == 0 {
		return nil, errors.New("genome: SAM header has no references")
	}
	return order, nil
}

// Read opens path (local or S3) and parses it with Parse.
func Read(ctx context.Context, path string) (*interval.Order, error) {
	return read(ctx, path, Parse)
}

// ReadFai opens path (local or S3) and parses it with ParseFai.
func ReadFai(ctx context.Context, path string) (*interval.Order, error) {
	return read(ctx, path, ParseFai)
}

func read(ctx context.Context, path string, parse func(io.Reader) (*interval.Order, error)) (*interval.Order, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	order, err := parse(f.Reader(ctx))
	if closeErr := f.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}
	return order, err
}
