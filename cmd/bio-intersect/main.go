// Copyright 2019 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
bio-intersect streams the intersection of a sorted query BED file against one
or more sorted database BED files, writing one TSV row per query interval:
chromosome, start, stop, total overlap count, and one count column per
database.  All inputs must be sorted consistently with the chromosome order
given by -genome or -fai; the run aborts on the first out-of-order record.
*/

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio-intersect/encoding/bedio"
	"github.com/grailbio/bio-intersect/encoding/genome"
	"github.com/grailbio/bio-intersect/intersect"
	"github.com/grailbio/bio-intersect/interval"
)

var (
	genomePath = flag.String("genome", "", "Chromosome order file: one chromosome per line, optional length column; this xor -fai required")
	faiPath    = flag.String("fai", "", "FASTA .fai index defining the chromosome order; this xor -genome required")
	outPath    = flag.String("output", "", "Output TSV path; stdout if empty")
)

func bioIntersectUsage() {
	fmt.Printf("Usage: %s [OPTIONS] query.bed db1.bed [db2.bed ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioIntersectUsage
	shutdown := grail.Init()
	defer shutdown()

	ctx := vcontext.Background()
	paths := flag.Args()
	if len(paths) < 2 {
		log.Fatalf("At least a query and one database BED are required; got '%v'", paths)
	}

	var order *interval.Order
	var err error
	switch {
	case *genomePath != "" && *faiPath != "":
		log.Fatalf("-genome and -fai are mutually exclusive")
	case *genomePath != "":
		order, err = genome.Read(ctx, *genomePath)
	case *faiPath != "":
		order, err = genome.ReadFai(ctx, *faiPath)
	default:
		log.Fatalf("One of -genome or -fai is required")
	}
	if err != nil {
		log.Fatalf("reading chromosome order: %v", err)
	}

	query, err := bedio.New(ctx, paths[0], order)
	if err != nil {
		log.Fatalf("%s: %v", paths[0], err)
	}
	databases := make([]interval.PositionedIterator, len(paths)-1)
	for i, path := range paths[1:] {
		db, err := bedio.New(ctx, path, order)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		databases[i] = db
	}

	engine, err := intersect.New(order, query, databases...)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer engine.Close() // nolint: errcheck

	var w io.Writer = os.Stdout
	if *outPath != "" {
		out, err := file.Create(ctx, *outPath)
		if err != nil {
			log.Fatalf("%s: %v", *outPath, err)
		}
		defer func() {
			if err := out.Close(ctx); err != nil {
				log.Fatalf("%s: close: %v", *outPath, err)
			}
		}()
		w = out.Writer(ctx)
	}
	tsvOut := tsv.NewWriter(w)

	n := 0
	for {
		x, err := engine.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("%v", err)
		}
		rec := x.Base.Payload.(*bedio.Record)
		tsvOut.WriteString(rec.Chrom)
		tsvOut.WriteInt64(int64(x.Base.Start))
		tsvOut.WriteInt64(int64(x.Base.Stop))
		tsvOut.WriteInt64(int64(len(x.Overlapping)))
		for _, count := range x.SourceCounts(engine.NDatabases())[1:] {
			tsvOut.WriteInt64(int64(count))
		}
		if err := tsvOut.EndLine(); err != nil {
			log.Fatalf("write: %v", err)
		}
		n++
	}
	if err := tsvOut.Flush(); err != nil {
		log.Fatalf("flush: %v", err)
	}
	log.Debug.Printf("emitted %d rows", n)
}
