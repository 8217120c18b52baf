// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"github.com/eventwire/eventwire/alias"
	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/value"
)

// Dialect identifies which of the three physical encodings a Wire uses.
type Dialect int

const (
	Text Dialect = iota
	JSON
	Binary
)

func (d Dialect) String() string {
	switch d {
	case Text:
		return "text"
	case JSON:
		return "json"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// EventKey identifies a method on the wire: either a text event name, or
// (binary dialect only) a numeric event id.
type EventKey struct {
	Name string
	ID   int64
	IsID bool
}

// Wire is the shared contract every dialect implements. A Wire instance is
// created around a bytesio.Bytes buffer (borrowed, not owned) and is reset
// between documents; it is not safe for concurrent use from more than one
// goroutine at a time.
type Wire interface {
	Dialect() Dialect

	// ValueOut/ValueIn expose the current document's root value directly,
	// for documents that are not event records — a document containing a
	// bare int/string/float, with no event envelope at all.
	ValueOut() ValueOut
	ValueIn() ValueIn

	// WriteEvent appends one event entry to the current document (a
	// document may hold more than one event when method calls chain) and
	// returns a cursor bound to its argument value.
	WriteEvent(key EventKey) ValueOut

	// ReadEvent returns the next unread event entry in the current
	// document, or ok=false at end of document.
	ReadEvent() (EventKey, ValueIn, bool)

	// Reset discards any accumulated write-side or read-side document
	// state, without touching the underlying bytes.
	Reset()

	Bytes() bytesio.Bytes
	ClassLookup() *alias.Registry

	UsePadding(enable bool)
	VerboseTypes(enable bool)

	// Flush serializes the accumulated write-side document tree to
	// Bytes() and clears it for the next document. Call once per
	// document, right before the document framer commits.
	Flush() error

	// Load parses one document's payload — already bounded to exactly
	// that document by the framer's read limit — from Bytes() into the
	// read-side document tree, resetting the read cursor to the first
	// event.
	Load() error

	// Root returns the current read-side document tree directly, for
	// callers (such as DumpStream) that render a whole document
	// rather than walking it event by event.
	Root() *value.Node
}

// base holds the state and behavior common to all three dialects; each
// dialect embeds it and supplies Encode/Decode.
type base struct {
	dialect     Dialect
	buf         bytesio.Bytes
	lookup      *alias.Registry
	padding     bool
	verbose     bool
	root        *value.Node
	readEntries []value.Entry
	readCursor  int
	encode      func(*value.Node, encodeOpts) ([]byte, error)
	decode      func([]byte) (*value.Node, error)
}

type encodeOpts struct {
	verboseTypes bool
}

func newBase(dialect Dialect, buf bytesio.Bytes, lookup *alias.Registry) base {
	if lookup == nil {
		lookup = alias.Default()
	}
	return base{
		dialect: dialect,
		buf:     buf,
		lookup:  lookup,
		root:    &value.Node{Kind: value.Null},
	}
}

func (b *base) Dialect() Dialect             { return b.dialect }
func (b *base) Bytes() bytesio.Bytes         { return b.buf }
func (b *base) ClassLookup() *alias.Registry { return b.lookup }
func (b *base) UsePadding(enable bool)       { b.padding = enable }
func (b *base) VerboseTypes(enable bool)     { b.verbose = enable }

func (b *base) ValueOut() ValueOut { return outTo(b.root) }
func (b *base) ValueIn() ValueIn   { return inFrom(b.root) }
func (b *base) Root() *value.Node  { return b.root }

func (b *base) WriteEvent(key EventKey) ValueOut {
	if b.root.Kind != value.Mapping {
		b.root.Kind = value.Mapping
	}
	child := &value.Node{}
	if key.IsID {
		b.root.PutID(key.ID, child)
	} else {
		b.root.Put(key.Name, child)
	}
	return outTo(child)
}

func (b *base) ReadEvent() (EventKey, ValueIn, bool) {
	if b.readCursor >= len(b.readEntries) {
		return EventKey{}, ValueIn{}, false
	}
	e := b.readEntries[b.readCursor]
	b.readCursor++
	if e.IsID {
		return EventKey{ID: e.ID, IsID: true}, inFrom(e.Value), true
	}
	return EventKey{Name: e.Name}, inFrom(e.Value), true
}

func (b *base) Reset() {
	b.root = &value.Node{Kind: value.Null}
	b.readEntries = nil
	b.readCursor = 0
}

func (b *base) Flush() error {
	data, err := b.encode(b.root, encodeOpts{verboseTypes: b.verbose})
	if err != nil {
		return err
	}
	if _, err := b.buf.Write(data); err != nil {
		return err
	}
	b.root = &value.Node{Kind: value.Null}
	return nil
}

func (b *base) Load() error {
	n := b.buf.ReadRemaining()
	payload := make([]byte, n)
	if n > 0 {
		if _, err := b.buf.Read(payload); err != nil {
			return err
		}
	}
	root, err := b.decode(payload)
	if err != nil {
		return err
	}
	b.root = root
	if root.Kind == value.Mapping {
		b.readEntries = root.Entries
	} else {
		b.readEntries = nil
	}
	b.readCursor = 0
	return nil
}
