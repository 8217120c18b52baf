// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wire_test

import (
	"testing"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/internal/testutil/assert"
	"github.com/eventwire/eventwire/value"
	"github.com/eventwire/eventwire/wire"
)

// buildSample populates a mapping with one entry of each scalar kind plus a
// nested sequence, matching the shape every dialect's codec is expected to
// carry losslessly. Int/float widths are fixed at 64 bits: the text
// dialect has no tag for narrower widths and always decodes a plain
// numeric scalar back as W64 (see buildWidthSample
// for the width-sensitive case, exercised against binary only).
func buildSample(out wire.ValueOut) {
	out.Mapping(func(m wire.MappingOut) {
		m.Key("flag").Bool(true)
		m.Key("big").Int64(-9001)
		m.Key("ratio").Float64(3.5)
		m.Key("name").Text("widget")
		m.Key("tags").Sequence(3, func(eo wire.ValueOut, i int) {
			eo.Int64(int64(i))
		})
	})
}

// buildWidthSample exercises the narrower integer widths, which only the
// binary dialect tags explicitly and therefore only it preserves on decode.
func buildWidthSample(out wire.ValueOut) {
	out.Mapping(func(m wire.MappingOut) {
		m.Key("a").Int8(7)
		m.Key("b").Int16(-300)
		m.Key("c").Int32(42)
		m.Key("d").Int64(9001)
	})
}

func encodeDialect(t *testing.T, d wire.Dialect, fill func(wire.ValueOut)) *bytesio.Heap {
	t.Helper()
	buf := bytesio.NewHeap()
	w := wire.New(d, buf, nil)
	fill(w.ValueOut())
	assert.NoError(t, w.Flush())
	return buf
}

func decodeDialect(t *testing.T, d wire.Dialect, buf *bytesio.Heap) *value.Node {
	t.Helper()
	r := bytesio.NewHeapFrom(buf.Bytes())
	w := wire.New(d, r, nil)
	assert.NoError(t, w.Load())
	return w.Root()
}

// buildExpected runs fill against a fresh Wire's own ValueOut and returns its
// tree, so the expected value is built through the same cursor API as the
// encoded one rather than hand-assembled (dialect-agnostic: ValueOut only
// populates the tree, independent of how it is later serialized).
func buildExpected(fill func(wire.ValueOut)) *value.Node {
	w := wire.NewText(bytesio.NewHeap(), nil)
	fill(w.ValueOut())
	return w.Root()
}

func TestRoundtripTextPreservesValue(t *testing.T) {
	buf := encodeDialect(t, wire.Text, buildSample)
	got := decodeDialect(t, wire.Text, buf)
	assert.True(t, value.Equal(buildExpected(buildSample), got))
}

func TestRoundtripBinaryPreservesValue(t *testing.T) {
	buf := encodeDialect(t, wire.Binary, buildSample)
	got := decodeDialect(t, wire.Binary, buf)
	assert.True(t, value.Equal(buildExpected(buildSample), got))
}

func TestRoundtripBinaryPreservesIntegerWidths(t *testing.T) {
	buf := encodeDialect(t, wire.Binary, buildWidthSample)
	got := decodeDialect(t, wire.Binary, buf)
	assert.True(t, value.Equal(buildExpected(buildWidthSample), got))
}

// JSON's generic decode path parses objects into a Go map, which does not
// preserve field order; a single-key mapping sidesteps that so the test
// still exercises the scalar+sequence shapes without depending on order.
func TestRoundtripJSONPreservesSingleKeyValue(t *testing.T) {
	fill := func(out wire.ValueOut) {
		out.Mapping(func(m wire.MappingOut) {
			m.Key("tags").Sequence(3, func(eo wire.ValueOut, i int) {
				eo.Int64(int64(i))
			})
		})
	}
	buf := encodeDialect(t, wire.JSON, fill)
	got := decodeDialect(t, wire.JSON, buf)
	assert.True(t, value.Equal(buildExpected(fill), got))
}

func TestRoundtripJSONScalarsSurviveGenericDecode(t *testing.T) {
	cases := []struct {
		name string
		fill func(wire.ValueOut)
	}{
		{"bool", func(o wire.ValueOut) { o.Bool(true) }},
		{"int", func(o wire.ValueOut) { o.Int64(123) }},
		{"float", func(o wire.ValueOut) { o.Float64(1.5) }},
		{"text", func(o wire.ValueOut) { o.Text("hi") }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := encodeDialect(t, wire.JSON, c.fill)
			got := decodeDialect(t, wire.JSON, buf)
			assert.True(t, value.Equal(buildExpected(c.fill), got))
		})
	}
}

// TestCrossDialectEquivalence checks that encoding then decoding the same
// document through each of the three dialects yields structurally equal
// trees, for shapes where JSON's order-losing object decode is not at
// stake (a flat sequence of scalars).
func TestCrossDialectEquivalence(t *testing.T) {
	fill := func(out wire.ValueOut) {
		out.Sequence(4, func(eo wire.ValueOut, i int) {
			switch i {
			case 0:
				eo.Bool(true)
			case 1:
				eo.Int64(7)
			case 2:
				eo.Float64(2.25)
			default:
				eo.Text("end")
			}
		})
	}

	text := decodeDialect(t, wire.Text, encodeDialect(t, wire.Text, fill))
	json := decodeDialect(t, wire.JSON, encodeDialect(t, wire.JSON, fill))
	bin := decodeDialect(t, wire.Binary, encodeDialect(t, wire.Binary, fill))

	assert.True(t, value.Equal(text, bin))
	assert.True(t, value.Equal(text, json))
}
