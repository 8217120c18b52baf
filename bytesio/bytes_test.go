// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package bytesio_test

import (
	"testing"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/internal/testutil/assert"
)

func TestWriteReadIntRoundtrip(t *testing.T) {
	h := bytesio.NewHeap()
	assert.NoError(t, h.WriteInt(123456))
	v, err := h.ReadInt()
	assert.NoError(t, err)
	assert.Equal(t, int32(123456), v)
}

func TestWriteReadLongRoundtrip(t *testing.T) {
	h := bytesio.NewHeap()
	assert.NoError(t, h.WriteLong(-987654321))
	v, err := h.ReadLong()
	assert.NoError(t, err)
	assert.Equal(t, int64(-987654321), v)
}

func TestWriteReadUTF8Roundtrip(t *testing.T) {
	h := bytesio.NewHeap()
	assert.NoError(t, h.WriteUTF8("héllo"))
	s, err := h.ReadUTF8()
	assert.NoError(t, err)
	assert.Equal(t, "héllo", s)
}

func TestReadUnderflowReportsError(t *testing.T) {
	h := bytesio.NewHeap()
	_, err := h.ReadByte()
	assert.ErrorIs(t, err, bytesio.ErrUnderflow)
}

func TestSetReadLimitBoundsReadRemaining(t *testing.T) {
	h := bytesio.NewHeap()
	assert.NoError(t, h.WriteUTF8("hello"))
	firstEnd := h.WritePosition()
	assert.NoError(t, h.WriteUTF8("world"))

	h.SetReadLimit(firstEnd)
	assert.Equal(t, firstEnd, h.ReadRemaining())

	s, err := h.ReadUTF8()
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, int64(0), h.ReadRemaining())

	_, err = h.ReadUTF8()
	assert.ErrorIs(t, err, bytesio.ErrUnderflow)

	h.ClearReadLimit()
	assert.True(t, h.ReadRemaining() > 0)
	s, err = h.ReadUTF8()
	assert.NoError(t, err)
	assert.Equal(t, "world", s)
}

func TestWriteIntAtPatchesWithoutMovingWriteCursor(t *testing.T) {
	h := bytesio.NewHeap()
	assert.NoError(t, h.WriteInt(0))
	pos := h.WritePosition()
	assert.NoError(t, h.WriteIntAt(0, 42))
	assert.Equal(t, pos, h.WritePosition())

	h.SetReadPosition(0)
	v, err := h.ReadInt()
	assert.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestClearResetsBuffer(t *testing.T) {
	h := bytesio.NewHeap()
	assert.NoError(t, h.WriteUTF8("data"))
	h.Clear()
	assert.Equal(t, int64(0), h.WritePosition())
	assert.Equal(t, int64(0), h.ReadRemaining())
}
