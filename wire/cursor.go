// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the value codec and the three wire dialects
// built on it: text-YAML, JSON, and binary. All three dialects share one
// dialect-agnostic ValueOut/ValueIn cursor pair — they differ only in how a
// value.Node tree is finally serialized to, or parsed from, bytes (see
// text.go, json.go, binary.go). That split mirrors go-yaml's own
// separation between a single Node tree (node.go) and its several
// encode/decode paths (dump.go/load.go, emitter.go/parser.go).
package wire

import (
	"github.com/eventwire/eventwire/value"
	"github.com/eventwire/eventwire/wireerr"
)

// Marshallable is implemented by types whose wire shape is a declared field
// mapping. Package marshal provides a generic implementation driven by
// field descriptors; this interface is declared here, not there, so that
// package wire never has to import package marshal.
type Marshallable interface {
	MarshalWire(out ValueOut) error
	UnmarshalWire(in ValueIn) error
}

// ValueOut is the write cursor of the value codec. It is bound to exactly
// one value.Node slot; every dialect uses the same ValueOut.
type ValueOut struct {
	n *value.Node
}

func outTo(n *value.Node) ValueOut { return ValueOut{n: n} }

func (o ValueOut) Null() { o.n.Kind = value.Null }

func (o ValueOut) Bool(b bool) { *o.n = value.Node{Kind: value.Bool, Bool: b} }

func (o ValueOut) Int8(v int8)   { *o.n = value.Node{Kind: value.Int, Int: int64(v), Width: value.W8} }
func (o ValueOut) Int16(v int16) { *o.n = value.Node{Kind: value.Int, Int: int64(v), Width: value.W16} }
func (o ValueOut) Int32(v int32) { *o.n = value.Node{Kind: value.Int, Int: int64(v), Width: value.W32} }
func (o ValueOut) Int64(v int64) { *o.n = value.Node{Kind: value.Int, Int: v, Width: value.W64} }

// IntText writes a 64-bit integer whose text/JSON form is text, the
// converted alphabet form of a LongConversion annotation; the binary
// dialect ignores text and always writes the raw integer.
func (o ValueOut) IntText(v int64, text string) {
	*o.n = value.Node{Kind: value.Int, Int: v, Width: value.W64, TextForm: text}
}

func (o ValueOut) Float32(v float32) {
	*o.n = value.Node{Kind: value.Float, Float: float64(v), Width: value.W32}
}
func (o ValueOut) Float64(v float64) {
	*o.n = value.Node{Kind: value.Float, Float: v, Width: value.W64}
}

func (o ValueOut) Text(s string)    { *o.n = value.Node{Kind: value.Text, Text: s} }
func (o ValueOut) RawText(s string) { *o.n = value.Node{Kind: value.RawText, Text: s} }
func (o ValueOut) Bytes(b []byte)   { *o.n = value.Node{Kind: value.Blob, Blob: b} }

func (o ValueOut) Timestamp(nanos int64, conv string) {
	*o.n = value.Node{Kind: value.Timestamp, Int: nanos, TimeConv: conv}
}

// Mapping turns this slot into a Mapping node and lets fn populate its
// entries in order.
func (o ValueOut) Mapping(fn func(MappingOut)) {
	o.n.Kind = value.Mapping
	o.n.Entries = nil
	fn(MappingOut{n: o.n})
}

// TypedObject turns this slot into a TypedObject node tagged with alias and
// lets fn populate its fields in order, so a decoder can recover the
// object's concrete class from the tag alone.
func (o ValueOut) TypedObject(alias string, fn func(MappingOut)) {
	o.n.Kind = value.TypedObject
	o.n.TypeAlias = alias
	o.n.Entries = nil
	fn(MappingOut{n: o.n})
}

// Sequence turns this slot into a Sequence node of count elements, calling
// each(elementOut, index) to populate every element in order.
func (o ValueOut) Sequence(count int, each func(ValueOut, int)) {
	o.n.Kind = value.Sequence
	o.n.Elements = make([]*value.Node, count)
	for i := 0; i < count; i++ {
		elem := &value.Node{}
		o.n.Elements[i] = elem
		each(outTo(elem), i)
	}
}

// Object writes v using the best matching representation: nil → Null,
// Marshallable → whatever its own MarshalWire writes (no alias registry
// lookup is made here), and the common Go scalar/slice/map shapes otherwise. Use Mapping/Sequence/TypedObject
// directly for precise control.
func (o ValueOut) Object(v any) error {
	switch t := v.(type) {
	case nil:
		o.Null()
	case Marshallable:
		return t.MarshalWire(o)
	case bool:
		o.Bool(t)
	case int:
		o.Int64(int64(t))
	case int8:
		o.Int8(t)
	case int16:
		o.Int16(t)
	case int32:
		o.Int32(t)
	case int64:
		o.Int64(t)
	case float32:
		o.Float32(t)
	case float64:
		o.Float64(t)
	case string:
		o.Text(t)
	case []byte:
		o.Bytes(t)
	case []any:
		o.Sequence(len(t), func(eo ValueOut, i int) {
			_ = eo.Object(t[i])
		})
	case map[string]any:
		o.Mapping(func(m MappingOut) {
			for k, val := range t {
				_ = m.Key(k).Object(val)
			}
		})
	default:
		return &wireerr.InvalidMarshallable{Type: "unknown", Cause: errUnsupportedType(v)}
	}
	return nil
}

// MappingOut appends ordered entries to a Mapping or TypedObject node.
type MappingOut struct {
	n *value.Node
}

// Key returns a ValueOut bound to a fresh slot under name, appended in
// call order, so field order on the wire always matches declaration order.
func (m MappingOut) Key(name string) ValueOut {
	child := &value.Node{}
	m.n.Put(name, child)
	return outTo(child)
}

// KeyID appends an event-id-keyed entry; meaningful on the binary dialect,
// where a key can be a compact integer id instead of a name.
func (m MappingOut) KeyID(id int64) ValueOut {
	child := &value.Node{}
	m.n.PutID(id, child)
	return outTo(child)
}

// ValueIn is the read cursor of the value codec, dual to ValueOut.
type ValueIn struct {
	n *value.Node
}

func inFrom(n *value.Node) ValueIn { return ValueIn{n: n} }

// IsNull reports whether the cursor is positioned on an explicit null (or
// an absent node).
func (i ValueIn) IsNull() bool { return i.n == nil || i.n.Kind == value.Null }

func kindErr(want value.Kind, got *value.Node) error {
	gk := "absent"
	if got != nil {
		gk = got.Kind.String()
	}
	return &wireerr.ProtocolViolation{Detail: "expected " + want.String() + ", got " + gk}
}

func (i ValueIn) Bool() (bool, error) {
	if i.n == nil || i.n.Kind != value.Bool {
		return false, kindErr(value.Bool, i.n)
	}
	return i.n.Bool, nil
}

func (i ValueIn) int(width value.Width) (int64, error) {
	if i.n == nil || i.n.Kind != value.Int {
		return 0, kindErr(value.Int, i.n)
	}
	return i.n.Int, nil
}

func (i ValueIn) Int8() (int8, error)   { v, err := i.int(value.W8); return int8(v), err }
func (i ValueIn) Int16() (int16, error) { v, err := i.int(value.W16); return int16(v), err }
func (i ValueIn) Int32() (int32, error) { v, err := i.int(value.W32); return int32(v), err }
func (i ValueIn) Int64() (int64, error) { return i.int(value.W64) }

func (i ValueIn) float() (float64, error) {
	if i.n == nil || i.n.Kind != value.Float {
		return 0, kindErr(value.Float, i.n)
	}
	return i.n.Float, nil
}

func (i ValueIn) Float32() (float32, error) { v, err := i.float(); return float32(v), err }
func (i ValueIn) Float64() (float64, error) { return i.float() }

func (i ValueIn) Text() (string, error) {
	if i.n == nil || (i.n.Kind != value.Text && i.n.Kind != value.RawText) {
		return "", kindErr(value.Text, i.n)
	}
	return i.n.Text, nil
}

func (i ValueIn) Bytes() ([]byte, error) {
	if i.n == nil || i.n.Kind != value.Blob {
		return nil, kindErr(value.Blob, i.n)
	}
	return i.n.Blob, nil
}

func (i ValueIn) Timestamp() (int64, string, error) {
	if i.n == nil || i.n.Kind != value.Timestamp {
		return 0, "", kindErr(value.Timestamp, i.n)
	}
	return i.n.Int, i.n.TimeConv, nil
}

// TimestampLenient reads a nano-convention timestamp across all three
// dialects. The text and binary dialects round-trip Kind==Timestamp
// directly; JSON's generic decode cannot (see json.go), so this also
// accepts a plain ISO-8601 string or a bare integer nanosecond count.
func (i ValueIn) TimestampLenient() (int64, error) {
	if nanos, _, err := i.Timestamp(); err == nil {
		return nanos, nil
	}
	if s, err := i.Text(); err == nil {
		return iso8601ToNanos(s)
	}
	return i.Int64()
}

// Mapping reports the node as a MappingIn, accepting both Mapping and
// TypedObject (a TypedObject is a tagged mapping).
func (i ValueIn) Mapping() (MappingIn, error) {
	if i.n == nil || (i.n.Kind != value.Mapping && i.n.Kind != value.TypedObject) {
		return MappingIn{}, kindErr(value.Mapping, i.n)
	}
	return MappingIn{n: i.n}, nil
}

// TypedObject reports the node's type alias tag and its fields.
func (i ValueIn) TypedObject() (string, MappingIn, error) {
	if i.n == nil || i.n.Kind != value.TypedObject {
		return "", MappingIn{}, kindErr(value.TypedObject, i.n)
	}
	return i.n.TypeAlias, MappingIn{n: i.n}, nil
}

func (i ValueIn) Sequence() (SequenceIn, error) {
	if i.n == nil || i.n.Kind != value.Sequence {
		return SequenceIn{}, kindErr(value.Sequence, i.n)
	}
	return SequenceIn{n: i.n}, nil
}

// Node exposes the raw underlying node, an escape hatch for callers (such
// as package marshal) that want direct tree access instead of the typed
// accessors above.
func (i ValueIn) Node() *value.Node { return i.n }

// MappingIn is the read dual of MappingOut.
type MappingIn struct {
	n *value.Node
}

func (m MappingIn) Get(name string) (ValueIn, bool) {
	v := m.n.Get(name)
	if v == nil {
		return ValueIn{}, false
	}
	return inFrom(v), true
}

func (m MappingIn) Entries() []value.Entry { return m.n.Entries }

// SequenceIn is the read dual of the Sequence writer.
type SequenceIn struct {
	n *value.Node
}

func (s SequenceIn) Len() int { return len(s.n.Elements) }

func (s SequenceIn) At(idx int) ValueIn { return inFrom(s.n.Elements[idx]) }

type unsupportedTypeError struct{ v any }

func (e unsupportedTypeError) Error() string { return "wire: unsupported value type" }

func errUnsupportedType(v any) error { return unsupportedTypeError{v: v} }
