// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package value defines the document payload tree shared by every wire
// dialect (text-YAML, JSON, binary). A Wire dialect's ValueOut/ValueIn
// cursors (see package wire) read and write this same tree; nothing in this
// package is tied to a physical encoding.
package value

// Kind discriminates the node variants of the value tree.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	Text
	RawText
	Blob
	Timestamp
	Mapping
	Sequence
	TypedObject
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Text:
		return "text"
	case RawText:
		return "raw-text"
	case Blob:
		return "blob"
	case Timestamp:
		return "timestamp"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case TypedObject:
		return "typed-object"
	default:
		return "unknown"
	}
}

// Width is the declared integer width hint carried alongside an Int node, or
// the float width carried alongside a Float node.
type Width uint8

const (
	W8 Width = iota
	W16
	W32
	W64
)

// Entry is one key/value pair of a Mapping node. A key is either Name (a
// text event/field key) or, in the binary dialect only, an IsID key
// identified by ID.
type Entry struct {
	Name  string
	ID    int64
	IsID  bool
	Value *Node
}

// Node is one element of the value tree. Exactly the fields relevant to
// Kind are populated; the rest are zero.
type Node struct {
	Kind Kind

	Bool  bool
	Int   int64
	Width Width // meaningful for Kind == Int or Kind == Float (W32 => f32, W64 => f64)

	// TextForm, when non-empty on a Kind == Int node, is a textual alphabet
	// encoding the text/JSON dialects should prefer over the raw decimal
	// form (marshal's LongConversion annotation); the binary dialect always
	// ignores it and writes the raw integer.
	TextForm string

	Float float64
	Text  string // also holds RawText's verbatim payload
	Blob  []byte

	// TimeConv names the conversion annotation used to render a Timestamp
	// (e.g. "nano"); empty means a plain integer conversion.
	TimeConv string

	// TypeAlias is the registered alias tag of a TypedObject node.
	TypeAlias string

	Entries  []Entry // Mapping, and the fields of a TypedObject
	Elements []*Node // Sequence
}

// NewNull returns a null node.
func NewNull() *Node { return &Node{Kind: Null} }

// NewBool returns a boolean node.
func NewBool(b bool) *Node { return &Node{Kind: Bool, Bool: b} }

// NewInt returns an integer node with the given width hint.
func NewInt(v int64, w Width) *Node { return &Node{Kind: Int, Int: v, Width: w} }

// NewFloat returns a floating-point node; width must be 4 or 8 bytes,
// expressed via Width W32/W64.
func NewFloat(v float64, w Width) *Node { return &Node{Kind: Float, Float: v, Width: w} }

// NewText returns a text node.
func NewText(s string) *Node { return &Node{Kind: Text, Text: s} }

// NewRawText returns a raw-text node: emitted verbatim (no quoting) in
// text/JSON, reinterpreted as the default object form in binary.
func NewRawText(s string) *Node { return &Node{Kind: RawText, Text: s} }

// NewBlob returns an opaque byte-array node.
func NewBlob(b []byte) *Node { return &Node{Kind: Blob, Blob: b} }

// NewTimestamp returns a timestamp node: an integer with a conversion
// annotation controlling its text/JSON rendering.
func NewTimestamp(nanos int64, conv string) *Node {
	return &Node{Kind: Timestamp, Int: nanos, TimeConv: conv}
}

// NewMapping returns an empty ordered mapping node.
func NewMapping() *Node { return &Node{Kind: Mapping} }

// NewSequence returns an empty sequence node.
func NewSequence() *Node { return &Node{Kind: Sequence} }

// NewTypedObject returns an empty mapping node tagged with a type alias.
func NewTypedObject(alias string) *Node { return &Node{Kind: TypedObject, TypeAlias: alias} }

// Put appends (or replaces, if name already present) a named entry on a
// Mapping or TypedObject node, preserving the ordered, first-seen position
// of the key.
func (n *Node) Put(name string, v *Node) {
	for i := range n.Entries {
		if !n.Entries[i].IsID && n.Entries[i].Name == name {
			n.Entries[i].Value = v
			return
		}
	}
	n.Entries = append(n.Entries, Entry{Name: name, Value: v})
}

// PutID appends (or replaces) an ID-keyed entry; only meaningful for the
// binary dialect's event records.
func (n *Node) PutID(id int64, v *Node) {
	for i := range n.Entries {
		if n.Entries[i].IsID && n.Entries[i].ID == id {
			n.Entries[i].Value = v
			return
		}
	}
	n.Entries = append(n.Entries, Entry{ID: id, IsID: true, Value: v})
}

// Get returns the value of a named entry, or nil if absent.
func (n *Node) Get(name string) *Node {
	for i := range n.Entries {
		if !n.Entries[i].IsID && n.Entries[i].Name == name {
			return n.Entries[i].Value
		}
	}
	return nil
}

// Append adds an element to a Sequence node.
func (n *Node) Append(v *Node) {
	n.Elements = append(n.Elements, v)
}

// Equal reports structural equality between two value trees, order-sensitive
// on mapping entries and sequence elements. NaN canonicalization is the
// caller's responsibility; Equal here uses ordinary == on float64, which is
// sufficient once NaNs have been canonicalized by the caller.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Bool:
		return a.Bool == b.Bool
	case Int:
		return a.Int == b.Int && a.Width == b.Width
	case Float:
		return a.Float == b.Float && a.Width == b.Width
	case Text, RawText:
		return a.Text == b.Text
	case Blob:
		return string(a.Blob) == string(b.Blob)
	case Timestamp:
		return a.Int == b.Int && a.TimeConv == b.TimeConv
	case Mapping, TypedObject:
		if a.Kind == TypedObject && a.TypeAlias != b.TypeAlias {
			return false
		}
		if len(a.Entries) != len(b.Entries) {
			return false
		}
		for i := range a.Entries {
			ea, eb := a.Entries[i], b.Entries[i]
			if ea.IsID != eb.IsID || ea.Name != eb.Name || ea.ID != eb.ID {
				return false
			}
			if !Equal(ea.Value, eb.Value) {
				return false
			}
		}
		return true
	case Sequence:
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
