// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package bytesio defines the growable byte buffer the wire codec is built
// on. The buffer is treated as a borrowed collaborator rather than something
// the codec owns outright; this package pins down the interface the rest of
// the module consumes, plus a minimal in-heap implementation so the codec
// and its tests have something concrete to run against.
package bytesio

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// ErrUnderflow is returned when a read would need more bytes than are
// available between the read cursor and the write cursor.
var ErrUnderflow = errors.New("bytesio: underflow")

// Bytes is the random-access growable byte sequence the wire codec is
// written against. It has independent read and write cursors: writes
// always append at WritePosition and advance it; reads always consume from
// ReadPosition and advance it, bounded by ReadLimit (defaults to the write
// position).
type Bytes interface {
	ReadPosition() int64
	SetReadPosition(pos int64)
	WritePosition() int64
	SetWritePosition(pos int64)
	ReadLimit() int64

	ReadByte() (byte, error)
	ReadInt() (int32, error)
	ReadLong() (int64, error)
	ReadUTF8() (string, error)
	ReadRemaining() int64

	WriteByte(b byte) error
	WriteInt(v int32) error
	WriteLong(v int64) error
	WriteUTF8(s string) error
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)

	// Append writes s verbatim, as raw character data rather than a
	// length-prefixed UTF-8 string.
	Append(s string) error

	// PeekUnsignedByte returns the byte at an absolute offset without
	// moving any cursor.
	PeekUnsignedByte(abs int64) (byte, error)

	// WriteIntAt patches a 4-byte little-endian int at an absolute offset,
	// without touching the write cursor. Used by the document framer to
	// backfill a length+flags header once a document's payload is known.
	WriteIntAt(abs int64, v int32) error

	Clear()
	Release()
}

// Limiter is implemented by Bytes implementations that support pinning
// ReadLimit independently of WritePosition, so a reader can be bounded to
// exactly one framed document's payload. Heap implements it.
type Limiter interface {
	SetReadLimit(limit int64)
	ClearReadLimit()
}

// Heap is a minimal, non-thread-safe Bytes implementation backed by a Go
// slice. Production deployments are expected to supply their own
// implementation (an off-heap arena, a memory-mapped file, …); Heap exists
// so this module's own tests do not need one.
type Heap struct {
	buf        []byte
	readPos    int64
	writePos   int64
	readLimit  int64
	hasLimit   bool
}

// NewHeap returns an empty growable heap buffer.
func NewHeap() *Heap {
	return &Heap{}
}

// NewHeapFrom wraps an existing slice for reading; the write position starts
// at len(b).
func NewHeapFrom(b []byte) *Heap {
	return &Heap{buf: b, writePos: int64(len(b))}
}

func (h *Heap) ReadPosition() int64      { return h.readPos }
func (h *Heap) SetReadPosition(p int64)  { h.readPos = p }
func (h *Heap) WritePosition() int64     { return h.writePos }
func (h *Heap) SetWritePosition(p int64) { h.writePos = p }

func (h *Heap) ReadLimit() int64 {
	if h.hasLimit {
		return h.readLimit
	}
	return h.writePos
}

// SetReadLimit pins the read limit independently of the write position; used
// by the document framer to bound a reader to one document's payload.
func (h *Heap) SetReadLimit(limit int64) {
	h.readLimit = limit
	h.hasLimit = true
}

// ClearReadLimit reverts ReadLimit to tracking WritePosition.
func (h *Heap) ClearReadLimit() { h.hasLimit = false }

func (h *Heap) ReadRemaining() int64 { return h.ReadLimit() - h.readPos }

func (h *Heap) ensure(n int64) {
	need := int(n)
	if need <= len(h.buf) {
		return
	}
	grown := make([]byte, need, need*2+64)
	copy(grown, h.buf)
	h.buf = grown
}

func (h *Heap) Clear() {
	h.buf = h.buf[:0]
	h.readPos, h.writePos = 0, 0
	h.hasLimit = false
}

func (h *Heap) Release() { h.buf = nil }

func (h *Heap) ReadByte() (byte, error) {
	if h.readPos >= h.ReadLimit() {
		return 0, ErrUnderflow
	}
	b := h.buf[h.readPos]
	h.readPos++
	return b, nil
}

func (h *Heap) WriteByte(b byte) error {
	h.ensure(h.writePos + 1)
	if int64(len(h.buf)) <= h.writePos {
		h.buf = h.buf[:h.writePos+1]
	}
	h.buf[h.writePos] = b
	h.writePos++
	return nil
}

func (h *Heap) Write(p []byte) (int, error) {
	h.ensure(h.writePos + int64(len(p)))
	if int64(len(h.buf)) < h.writePos+int64(len(p)) {
		h.buf = h.buf[:h.writePos+int64(len(p))]
	}
	copy(h.buf[h.writePos:], p)
	h.writePos += int64(len(p))
	return len(p), nil
}

func (h *Heap) Read(p []byte) (int, error) {
	avail := h.ReadRemaining()
	if avail <= 0 {
		return 0, ErrUnderflow
	}
	n := int64(len(p))
	if n > avail {
		n = avail
	}
	copy(p[:n], h.buf[h.readPos:h.readPos+n])
	h.readPos += n
	return int(n), nil
}

func (h *Heap) WriteInt(v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	_, err := h.Write(b[:])
	return err
}

func (h *Heap) ReadInt() (int32, error) {
	if h.ReadRemaining() < 4 {
		return 0, ErrUnderflow
	}
	v := binary.LittleEndian.Uint32(h.buf[h.readPos : h.readPos+4])
	h.readPos += 4
	return int32(v), nil
}

func (h *Heap) WriteLong(v int64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	_, err := h.Write(b[:])
	return err
}

func (h *Heap) ReadLong() (int64, error) {
	if h.ReadRemaining() < 8 {
		return 0, ErrUnderflow
	}
	v := binary.LittleEndian.Uint64(h.buf[h.readPos : h.readPos+8])
	h.readPos += 8
	return int64(v), nil
}

func (h *Heap) WriteUTF8(s string) error {
	if err := h.WriteLong(int64(len(s))); err != nil {
		return err
	}
	_, err := h.Write([]byte(s))
	return err
}

func (h *Heap) ReadUTF8() (string, error) {
	n, err := h.ReadLong()
	if err != nil {
		return "", err
	}
	if h.ReadRemaining() < n {
		return "", ErrUnderflow
	}
	s := string(h.buf[h.readPos : h.readPos+n])
	h.readPos += n
	if !utf8.ValidString(s) {
		return "", errors.New("bytesio: invalid utf-8")
	}
	return s, nil
}

func (h *Heap) Append(s string) error {
	_, err := h.Write([]byte(s))
	return err
}

func (h *Heap) PeekUnsignedByte(abs int64) (byte, error) {
	if abs < 0 || abs >= int64(len(h.buf)) {
		return 0, ErrUnderflow
	}
	return h.buf[abs], nil
}

func (h *Heap) WriteIntAt(abs int64, v int32) error {
	if abs < 0 || abs+4 > int64(len(h.buf)) {
		return ErrUnderflow
	}
	binary.LittleEndian.PutUint32(h.buf[abs:abs+4], uint32(v))
	return nil
}

// Bytes returns the written region as a slice (valid until the next write
// that reallocates the backing array).
func (h *Heap) Bytes() []byte { return h.buf[:h.writePos] }
