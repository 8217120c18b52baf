// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// eventdump reads a framed document stream (as written by a wire.Wire plus
// a framing.Framer) and renders it to stdout in a human-readable dump
// format — one of this module's few directly runnable artifacts, grounded
// on go-yaml's cmd/go-yaml, which performs the same job (read stdin or a
// file, pick an output mode by flag, write to stdout) for a YAML document
// instead of a framed event stream.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/wire"
)

func main() {
	dialectFlag := flag.String("dialect", "binary", "source dialect: text, json, or binary")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dialect text|json|binary] [file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	dialect, err := parseDialect(*dialectFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eventdump:", err)
		flag.Usage()
		os.Exit(2)
	}

	input := os.Stdin
	if args := flag.Args(); len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("eventdump: %v", err)
		}
		defer f.Close()
		input = f
	} else if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "eventdump: only one file argument supported")
		os.Exit(2)
	}

	data, err := io.ReadAll(input)
	if err != nil {
		log.Fatalf("eventdump: reading input: %v", err)
	}

	buf := bytesio.NewHeapFrom(data)
	if err := wire.DumpStream(os.Stdout, buf, dialect, nil); err != nil {
		log.Fatalf("eventdump: %v", err)
	}
}

func parseDialect(s string) (wire.Dialect, error) {
	switch s {
	case "text":
		return wire.Text, nil
	case "json":
		return wire.JSON, nil
	case "binary":
		return wire.Binary, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q (want text, json, or binary)", s)
	}
}
