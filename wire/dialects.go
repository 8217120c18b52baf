// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"github.com/eventwire/eventwire/alias"
	"github.com/eventwire/eventwire/bytesio"
)

// NewText returns a Wire using the text-YAML dialect. lookup may be nil to
// use the process-wide alias.Default() registry.
func NewText(buf bytesio.Bytes, lookup *alias.Registry) Wire {
	b := newBase(Text, buf, lookup)
	b.encode = encodeText
	b.decode = decodeText
	return &b
}

// NewJSON returns a Wire using the JSON dialect.
func NewJSON(buf bytesio.Bytes, lookup *alias.Registry) Wire {
	b := newBase(JSON, buf, lookup)
	b.encode = encodeJSON
	b.decode = decodeJSON
	return &b
}

// NewBinary returns a Wire using the binary dialect.
func NewBinary(buf bytesio.Bytes, lookup *alias.Registry) Wire {
	b := newBase(Binary, buf, lookup)
	b.encode = encodeBinary
	b.decode = decodeBinary
	return &b
}

// New returns a Wire for the named dialect.
func New(d Dialect, buf bytesio.Bytes, lookup *alias.Registry) Wire {
	switch d {
	case JSON:
		return NewJSON(buf, lookup)
	case Binary:
		return NewBinary(buf, lookup)
	default:
		return NewText(buf, lookup)
	}
}
