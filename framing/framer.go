// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package framing implements the document framer: it wraps a bytesio.Bytes
// buffer with a 4-byte header per document (30-bit length, a meta bit, a
// ready bit) and an idle/writing/commit-or-rollback state machine around
// it.
//
// The length-prefix-header idiom is grounded on hayabusa-cloud-framer's
// stream framing (a 1-byte-or-extended length prefix ahead of every
// message); this package fixes the header at 4 bytes because it also needs
// 2 flag bits alongside the length, which a pure length-prefix scheme does
// not carry.
package framing

import (
	"sync"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/wireerr"
)

const (
	lengthMask  = 0x3FFFFFFF
	metaBit     = int32(1) << 30
	readyBit    = int32(-1) << 31
	headerBytes = 4
)

// Header bit-packs a document's length with its meta and ready flags into
// one four-byte word.
type Header struct {
	Length int32
	Meta   bool
	Ready  bool
}

// Encode packs h into the little-endian int32 written to the wire.
func (h Header) Encode() int32 {
	v := h.Length & lengthMask
	if h.Meta {
		v |= metaBit
	}
	if h.Ready {
		v |= readyBit
	}
	return v
}

// DecodeHeader unpacks a raw header word.
func DecodeHeader(v int32) Header {
	return Header{
		Length: v & lengthMask,
		Meta:   v&metaBit != 0,
		Ready:  v&readyBit != 0,
	}
}

// Framer owns the idle/writing state for one underlying buffer. Readers of
// the same framer are assigned a monotone index as they encounter each
// document in turn; the index is assigned on read, not on write, so a
// buffer written by one framer and read by a fresh one (or read back by the
// same framer after writing) still gets a contiguous 0,1,2,... sequence.
type Framer struct {
	mu      sync.Mutex
	buf     bytesio.Bytes
	writing bool
	nextIdx int64
}

// New wraps buf with a framer. buf is borrowed, not owned.
func New(buf bytesio.Bytes) *Framer {
	return &Framer{buf: buf}
}

// WritingContext is the scoped writer handle returned by
// AcquireWritingDocument. Exactly one of Commit or Rollback must be called
// to leave the idle state.
type WritingContext struct {
	fr             *Framer
	headerPos      int64
	payloadStart   int64
	meta           bool
	chainedElement bool
	closed         bool
}

// AcquireWritingDocument opens a framed region for a new document. It
// rejects the call outright (rather than blocking) while another writer is
// in flight on this framer; callers must not hold two open contexts on one
// framer.
//
// chainedElement, when true, defers finalization to an enclosing scope —
// this is how the method-writer keeps a fluent chain of calls inside one
// document.
func (fr *Framer) AcquireWritingDocument(meta bool, chainedElement bool) (*WritingContext, error) {
	fr.mu.Lock()
	if fr.writing {
		fr.mu.Unlock()
		return nil, &wireerr.UnrecoverableTimeout{Op: "acquireWritingDocument"}
	}
	fr.writing = true
	headerPos := fr.buf.WritePosition()
	fr.mu.Unlock()

	if err := fr.buf.WriteInt(0); err != nil {
		return nil, &wireerr.TransientIO{Cause: err}
	}
	return &WritingContext{
		fr:             fr,
		headerPos:      headerPos,
		payloadStart:   fr.buf.WritePosition(),
		meta:           meta,
		chainedElement: chainedElement,
	}, nil
}

// ChainedElement reports whether this context defers finalization to an
// enclosing scope.
func (c *WritingContext) ChainedElement() bool { return c.chainedElement }

// PayloadStart returns the absolute offset of the first payload byte,
// useful for computing a document's current length mid-write.
func (c *WritingContext) PayloadStart() int64 { return c.payloadStart }

// Commit patches the header with the final length and ready=1, then
// returns the framer to idle.
//
// A chainedElement context defers finalization to whichever call in the
// chain actually ends it; Go has no scope-exit hook to piggyback on, so
// this module moves that decision to the explicit caller instead (the
// method-writer's docSession, see package methodwriter) — it calls Commit
// exactly once, on the call that ends a chain, rather than on every nested
// call. ChainedElement is kept as a descriptive flag for tests and for the
// harness, not as Commit's own gate.
func (c *WritingContext) Commit() error {
	if c.closed {
		return nil
	}
	length := int32(c.fr.buf.WritePosition() - c.payloadStart)
	h := Header{Length: length, Meta: c.meta, Ready: true}
	if err := c.fr.buf.WriteIntAt(c.headerPos, h.Encode()); err != nil {
		return &wireerr.TransientIO{Cause: err}
	}
	c.closed = true
	c.fr.mu.Lock()
	c.fr.writing = false
	c.fr.mu.Unlock()
	return nil
}

// Rollback discards the document: the header is patched to length=0,
// ready=0, and the write cursor retreats to before the header. The bytes
// already written remain in the buffer but are unreachable; a reader stops
// there and sees "not ready".
func (c *WritingContext) Rollback() error {
	if c.closed {
		return nil
	}
	h := Header{Length: 0, Meta: c.meta, Ready: false}
	if err := c.fr.buf.WriteIntAt(c.headerPos, h.Encode()); err != nil {
		return &wireerr.TransientIO{Cause: err}
	}
	c.fr.buf.SetWritePosition(c.headerPos)
	c.closed = true
	c.fr.mu.Lock()
	c.fr.writing = false
	c.fr.mu.Unlock()
	return nil
}

// ReadingContext is the scoped reader handle returned by ReadingDocument.
type ReadingContext struct {
	fr          *Framer
	present     bool
	meta        bool
	index       int64
	payloadLen  int64
	headerPos   int64
	closed      bool
}

// IsPresent is false when the next header is ready=0 or the buffer has
// fewer than 4 bytes remaining.
func (c *ReadingContext) IsPresent() bool { return c.present }

// IsMetaData reports the document's meta flag.
func (c *ReadingContext) IsMetaData() bool { return c.meta }

// Index returns the monotone position the framer assigned this document.
func (c *ReadingContext) Index() int64 { return c.index }

// ReadingDocument opens the next document for reading. If present, the
// framer (when buf implements bytesio.Limiter) pins ReadLimit to the end of
// this document's payload so dialect readers cannot run past a document
// boundary; the reader advances past the document only when the context is
// closed.
func (fr *Framer) ReadingDocument() (*ReadingContext, error) {
	headerPos := fr.buf.ReadPosition()
	if fr.buf.ReadRemaining() < headerBytes {
		return &ReadingContext{fr: fr, present: false, headerPos: headerPos}, nil
	}
	raw, err := fr.buf.ReadInt()
	if err != nil {
		return nil, &wireerr.TransientIO{Cause: err}
	}
	h := DecodeHeader(raw)
	if !h.Ready {
		// Not ready: rewind past the header we just consumed so a later
		// call sees the same not-ready state instead of skipping it.
		fr.buf.SetReadPosition(headerPos)
		return &ReadingContext{fr: fr, present: false, headerPos: headerPos}, nil
	}
	fr.mu.Lock()
	idx := fr.nextIdx
	fr.nextIdx++
	fr.mu.Unlock()

	if lim, ok := fr.buf.(bytesio.Limiter); ok {
		lim.SetReadLimit(fr.buf.ReadPosition() + int64(h.Length))
	}
	return &ReadingContext{
		fr:         fr,
		present:    true,
		meta:       h.Meta,
		index:      idx,
		payloadLen: int64(h.Length),
		headerPos:  headerPos,
	}, nil
}

// Close advances the framer's read cursor past this document's payload.
// The cursor only moves past a present document on this call — never
// implicitly while the reader inspects the document.
func (c *ReadingContext) Close() error {
	if c.closed || !c.present {
		c.closed = true
		return nil
	}
	if lim, ok := c.fr.buf.(bytesio.Limiter); ok {
		lim.ClearReadLimit()
	}
	c.fr.buf.SetReadPosition(c.headerPos + headerBytes + c.payloadLen)
	c.closed = true
	return nil
}
