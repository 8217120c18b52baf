// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Binary dialect. Every value starts with a single type tag;
// mapping/sequence/typed-object are self-delimited with an explicit end tag
// rather than a byte count, so a reader can always skip a nested structure
// it doesn't understand by tag-walking it instead of needing to pre-know
// its length.
//
// The concrete tag byte values are this implementation's own choice; the
// only hard constraint is that every tag stay distinct and that the
// per-width integer/float tags occupy a contiguous run so the width can be
// recovered by simple arithmetic on the tag byte. See SPEC_FULL.md §5 for
// the chosen ranges.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/eventwire/eventwire/value"
	"github.com/eventwire/eventwire/wireerr"
)

const (
	binTagNull  = 0x00
	binTagFalse = 0x01
	binTagTrue  = 0x02

	binTagIntW8  = 0x10
	binTagIntW16 = 0x11
	binTagIntW32 = 0x12
	binTagIntW64 = 0x13

	binTagFloatW32 = 0x18
	binTagFloatW64 = 0x19

	binTagText      = 0x20
	binTagBlob      = 0x22
	binTagTimestamp = 0x23

	binTagMappingStart = 0xB0
	binTagMappingEnd   = 0xB1
	binTagSeqStart     = 0xB2
	binTagSeqEnd       = 0xB3
	binTagTypedStart   = 0xE0

	binTagFieldName = 0xBC
	binTagEventID   = 0xBA
)

func putUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func putVarint(buf []byte, v int64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func putString(buf []byte, s string) []byte {
	buf = putUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.b[r.pos:])
	if n <= 0 {
		return 0, &wireerr.ProtocolViolation{Detail: "truncated varint"}
	}
	r.pos += n
	return v, nil
}

func (r *byteReader) varint() (int64, error) {
	v, n := binary.Varint(r.b[r.pos:])
	if n <= 0 {
		return 0, &wireerr.ProtocolViolation{Detail: "truncated varint"}
	}
	r.pos += n
	return v, nil
}

func (r *byteReader) byteTag() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, &wireerr.ProtocolViolation{Detail: "truncated binary document"}
	}
	t := r.b[r.pos]
	r.pos++
	return t, nil
}

func (r *byteReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.b) {
		return nil, &wireerr.ProtocolViolation{Detail: "truncated binary document"}
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) string() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeBinary(n *value.Node, _ encodeOpts) ([]byte, error) {
	return appendBinaryNode(nil, n)
}

func appendBinaryNode(buf []byte, n *value.Node) ([]byte, error) {
	if n == nil {
		return append(buf, binTagNull), nil
	}
	switch n.Kind {
	case value.Null:
		return append(buf, binTagNull), nil
	case value.Bool:
		if n.Bool {
			return append(buf, binTagTrue), nil
		}
		return append(buf, binTagFalse), nil
	case value.Int:
		return appendBinaryInt(buf, n), nil
	case value.Float:
		return appendBinaryFloat(buf, n), nil
	case value.Text, value.RawText:
		// RawText has no meaning of its own once there's no surrounding
		// text syntax to skip quoting in: both kinds use the same text tag
		// on this dialect.
		buf = append(buf, binTagText)
		return putString(buf, n.Text), nil
	case value.Blob:
		buf = append(buf, binTagBlob)
		buf = putUvarint(buf, uint64(len(n.Blob)))
		return append(buf, n.Blob...), nil
	case value.Timestamp:
		buf = append(buf, binTagTimestamp)
		buf = putString(buf, n.TimeConv)
		return putVarint(buf, n.Int), nil
	case value.Sequence:
		buf = append(buf, binTagSeqStart)
		var err error
		for _, e := range n.Elements {
			buf, err = appendBinaryNode(buf, e)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, binTagSeqEnd), nil
	case value.Mapping, value.TypedObject:
		if n.Kind == value.TypedObject {
			buf = append(buf, binTagTypedStart)
			buf = putString(buf, n.TypeAlias)
		} else {
			buf = append(buf, binTagMappingStart)
		}
		var err error
		for _, e := range n.Entries {
			if e.IsID {
				buf = append(buf, binTagEventID)
				buf = putVarint(buf, e.ID)
			} else {
				buf = append(buf, binTagFieldName)
				buf = putString(buf, e.Name)
			}
			buf, err = appendBinaryNode(buf, e.Value)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, binTagMappingEnd), nil
	default:
		return nil, &wireerr.InvalidMarshallable{Type: "binary", Cause: errUnsupportedType(n.Kind)}
	}
}

func appendBinaryInt(buf []byte, n *value.Node) []byte {
	switch n.Width {
	case value.W8:
		return append(buf, binTagIntW8, byte(n.Int))
	case value.W16:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(n.Int))
		return append(append(buf, binTagIntW16), b[:]...)
	case value.W32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(n.Int))
		return append(append(buf, binTagIntW32), b[:]...)
	default:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(n.Int))
		return append(append(buf, binTagIntW64), b[:]...)
	}
}

func appendBinaryFloat(buf []byte, n *value.Node) []byte {
	if n.Width == value.W32 {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(n.Float)))
		return append(append(buf, binTagFloatW32), b[:]...)
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(n.Float))
	return append(append(buf, binTagFloatW64), b[:]...)
}

func decodeBinary(data []byte) (*value.Node, error) {
	r := &byteReader{b: data}
	if len(data) == 0 {
		return &value.Node{Kind: value.Null}, nil
	}
	n, err := readBinaryNode(r)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func readBinaryNode(r *byteReader) (*value.Node, error) {
	tag, err := r.byteTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case binTagNull:
		return &value.Node{Kind: value.Null}, nil
	case binTagFalse:
		return &value.Node{Kind: value.Bool, Bool: false}, nil
	case binTagTrue:
		return &value.Node{Kind: value.Bool, Bool: true}, nil
	case binTagIntW8:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Int, Int: int64(int8(b[0])), Width: value.W8}, nil
	case binTagIntW16:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Int, Int: int64(int16(binary.LittleEndian.Uint16(b))), Width: value.W16}, nil
	case binTagIntW32:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Int, Int: int64(int32(binary.LittleEndian.Uint32(b))), Width: value.W32}, nil
	case binTagIntW64:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Int, Int: int64(binary.LittleEndian.Uint64(b)), Width: value.W64}, nil
	case binTagFloatW32:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Float, Float: float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), Width: value.W32}, nil
	case binTagFloatW64:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Float, Float: math.Float64frombits(binary.LittleEndian.Uint64(b)), Width: value.W64}, nil
	case binTagText:
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Text, Text: s}, nil
	case binTagBlob:
		n, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		b, err := r.take(int(n))
		if err != nil {
			return nil, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return &value.Node{Kind: value.Blob, Blob: cp}, nil
	case binTagTimestamp:
		conv, err := r.string()
		if err != nil {
			return nil, err
		}
		nanos, err := r.varint()
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Timestamp, Int: nanos, TimeConv: conv}, nil
	case binTagSeqStart:
		n := &value.Node{Kind: value.Sequence}
		for {
			if peek, err := r.peek(); err != nil {
				return nil, err
			} else if peek == binTagSeqEnd {
				r.pos++
				return n, nil
			}
			elem, err := readBinaryNode(r)
			if err != nil {
				return nil, err
			}
			n.Elements = append(n.Elements, elem)
		}
	case binTagMappingStart, binTagTypedStart:
		n := &value.Node{Kind: value.Mapping}
		if tag == binTagTypedStart {
			n.Kind = value.TypedObject
			alias, err := r.string()
			if err != nil {
				return nil, err
			}
			n.TypeAlias = alias
		}
		for {
			etag, err := r.byteTag()
			if err != nil {
				return nil, err
			}
			if etag == binTagMappingEnd {
				return n, nil
			}
			switch etag {
			case binTagFieldName:
				name, err := r.string()
				if err != nil {
					return nil, err
				}
				v, err := readBinaryNode(r)
				if err != nil {
					return nil, err
				}
				n.Entries = append(n.Entries, value.Entry{Name: name, Value: v})
			case binTagEventID:
				id, err := r.varint()
				if err != nil {
					return nil, err
				}
				v, err := readBinaryNode(r)
				if err != nil {
					return nil, err
				}
				n.Entries = append(n.Entries, value.Entry{ID: id, IsID: true, Value: v})
			default:
				return nil, &wireerr.ProtocolViolation{Detail: "unknown mapping entry tag"}
			}
		}
	default:
		return nil, &wireerr.ProtocolViolation{Detail: "unknown binary tag"}
	}
}

func (r *byteReader) peek() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, &wireerr.ProtocolViolation{Detail: "truncated binary document"}
	}
	return r.b[r.pos], nil
}
