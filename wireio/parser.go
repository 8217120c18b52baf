// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wireio implements the event parser: the read-side dual of a
// method-event writer. A WireParser routes each event entry of a document
// to a registered handler by name or event id, falling back to a default
// handler when nothing matches.
//
// Grounded on go-yaml's decode.go dispatch-by-tag loop (the same
// "look up a handler, invoke it, detect no-progress" shape that
// yaml.Unmarshal's node walk uses for mapping keys), generalized here to
// method-event handlers instead of struct fields.
package wireio

import (
	"log"

	"github.com/eventwire/eventwire/wire"
	"github.com/eventwire/eventwire/wireerr"
)

// Handler processes one event's argument cursor. key identifies the event
// that was matched (by name or, on the binary dialect, by id).
type Handler func(key wire.EventKey, in wire.ValueIn) error

// WireParser keeps an ordered name→handler mapping plus an id→handler
// mapping and a fallback, and drives ParseOne/Accept over a wire.Wire.
type WireParser struct {
	order    []string
	byName   map[string]Handler
	byID     map[int64]Handler
	fallback Handler
}

// NewParser returns an empty parser. Register handlers with Register or
// RegisterOnce before calling Accept.
func NewParser() *WireParser {
	return &WireParser{
		byName: make(map[string]Handler),
		byID:   make(map[int64]Handler),
	}
}

// Register binds name to h, replacing any existing handler under that name.
func (p *WireParser) Register(name string, h Handler) {
	if _, exists := p.byName[name]; !exists {
		p.order = append(p.order, name)
	}
	p.byName[name] = h
}

// RegisterOnce binds name to h unless a handler is already registered under
// that name, in which case it logs and ignores the duplicate.
func (p *WireParser) RegisterOnce(name string, h Handler) {
	if _, exists := p.byName[name]; exists {
		log.Printf("wireio: duplicate handler registration for %q ignored", name)
		return
	}
	p.Register(name, h)
}

// RegisterID binds a numeric event id to h, for binary-dialect readers:
// binary events may be keyed by a compact id instead of a name.
func (p *WireParser) RegisterID(id int64, h Handler) {
	p.byID[id] = h
}

// Fallback sets the handler invoked when no registered name or id matches
// the event key.
func (p *WireParser) Fallback(h Handler) {
	p.fallback = h
}

// Skip is a Handler that discards the event's value without inspecting it.
// Since the value codec always hands over a fully decoded value.Node tree
// rather than a byte cursor, skipping an unknown field is simply "do
// nothing" — there is no remaining-bytes region to advance past the way a
// raw binary stream reader would need to.
func Skip(wire.EventKey, wire.ValueIn) error { return nil }

func (p *WireParser) lookup(key wire.EventKey) (Handler, bool) {
	if key.IsID {
		if h, ok := p.byID[key.ID]; ok {
			return h, true
		}
		return nil, false
	}
	if h, ok := p.byName[key.Name]; ok {
		return h, true
	}
	return nil, false
}

// ParseOne reads one event key from w, looks up its handler, and invokes
// it with the value cursor. Returns false at end-of-document. If neither a
// matching handler nor a fallback handler consumed the event, ParseOne
// reports a *wireerr.ProtocolViolation wrapping wireerr.ErrFailedToProgress,
// stopping before an unrecognized event can spin a reader forever.
func (p *WireParser) ParseOne(w wire.Wire) (bool, error) {
	key, in, ok := w.ReadEvent()
	if !ok {
		return false, nil
	}
	if h, ok := p.lookup(key); ok {
		return true, h(key, in)
	}
	if p.fallback != nil {
		return true, p.fallback(key, in)
	}
	return true, &wireerr.ProtocolViolation{Detail: failedToProgressDetail(key), Cause: wireerr.ErrFailedToProgress}
}

func failedToProgressDetail(key wire.EventKey) string {
	if key.IsID {
		return "no handler and no fallback for event id"
	}
	return "no handler and no fallback for event " + key.Name
}

// Accept loops ParseOne until end-of-document or the first error.
func (p *WireParser) Accept(w wire.Wire) error {
	for {
		more, err := p.ParseOne(w)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
