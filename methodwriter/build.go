// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package methodwriter

import (
	"reflect"
	"sync"

	"github.com/eventwire/eventwire/framing"
	"github.com/eventwire/eventwire/marshal"
	"github.com/eventwire/eventwire/wire"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// root is the shared state behind every writer built from one top-level
// Build call: the root contract and every sub-contract spawned from it
// serialize through the same framer and, while a chain is open, the same
// in-progress wire.Wire document.
type root struct {
	framer  *framing.Framer
	newWire func() wire.Wire
	cfg     Config

	mu      sync.Mutex
	session *docSession
	self    reflect.Value // addressable *table for the top-level contract, used by ReturnSelf
	subs    map[reflect.Type]reflect.Value
}

// docSession is the accumulating state of one open document across a
// chained sequence of calls. Exactly one of Flush+Commit or Rollback runs
// when the chain ends.
type docSession struct {
	ctx          *framing.WritingContext
	w            wire.Wire
	wroteHistory bool
}

// Build constructs a writer for spec, rooted at a fresh root that acquires
// documents from framer and builds wire instances via newWire. The
// returned value is a *table (table being spec's struct type), with every
// described field populated.
func Build(spec *ContractSpec, framer *framing.Framer, newWire func() wire.Wire, cfg Config) (any, error) {
	r := &root{framer: framer, newWire: newWire, cfg: cfg, subs: make(map[reflect.Type]reflect.Value)}
	self, err := populate(r, spec)
	if err != nil {
		return nil, err
	}
	r.self = self
	return self.Interface(), nil
}

// populate allocates a new *table instance and fills its function fields,
// without assuming it is the root contract — called both by Build and
// lazily the first time a sub-interface return is taken.
func populate(r *root, spec *ContractSpec) (reflect.Value, error) {
	instance := reflect.New(spec.table) // *table, addressable Elem()
	elem := instance.Elem()
	for _, desc := range spec.methods {
		field := elem.FieldByName(desc.FieldName)
		fn := reflect.MakeFunc(field.Type(), dispatcher(r, desc, field.Type()))
		field.Set(fn)
	}
	return instance, nil
}

// subWriter returns the cached sub-contract writer for subType, building
// and caching it on first use. Shares r so the sub-writer's calls append to
// the same open document. Called with r.mu already held.
func (r *root) subWriter(subType reflect.Type, methods []MethodDescriptor) (reflect.Value, error) {
	if v, ok := r.subs[subType]; ok {
		return v, nil
	}
	spec, err := Describe(subType, methods)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := populate(r, spec)
	if err != nil {
		return reflect.Value{}, err
	}
	r.subs[subType] = v
	return v, nil
}

func zeroResults(fnType reflect.Type) []reflect.Value {
	out := make([]reflect.Value, fnType.NumOut())
	for i := range out {
		out[i] = reflect.Zero(fnType.Out(i))
	}
	return out
}

// withFirst builds a call's return values, placing first at index 0 when
// valid and an error (if err != nil and the signature's last return is
// error) at the final index; any other position gets its zero value. If
// err != nil and the signature has no error return, it panics instead,
// since there is no error channel in the signature to re-raise through.
func withFirst(fnType reflect.Type, first reflect.Value, err error) []reflect.Value {
	n := fnType.NumOut()
	out := make([]reflect.Value, n)
	errIdx := -1
	if n > 0 && fnType.Out(n-1) == errType {
		errIdx = n - 1
	}
	for i := 0; i < n; i++ {
		switch {
		case i == 0 && first.IsValid():
			out[i] = first
		case i == errIdx:
			if err != nil {
				out[i] = reflect.ValueOf(err)
			} else {
				out[i] = reflect.Zero(fnType.Out(i))
			}
		default:
			out[i] = reflect.Zero(fnType.Out(i))
		}
	}
	if err != nil && errIdx == -1 {
		panic(err)
	}
	return out
}

func dispatcher(r *root, desc MethodDescriptor, fnType reflect.Type) func([]reflect.Value) []reflect.Value {
	return func(args []reflect.Value) []reflect.Value {
		var lastArg any
		if len(args) > 0 {
			lastArg = args[len(args)-1].Interface()
		}
		if r.cfg.UpdateInterceptor != nil && !r.cfg.UpdateInterceptor(desc.FieldName, lastArg) {
			if desc.Return == ReturnSelf {
				res := zeroResults(fnType)
				if len(res) > 0 {
					res[0] = r.self
				}
				return res
			}
			return zeroResults(fnType)
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		if desc.Return == ReturnDocumentContext {
			doc, err := r.openStandaloneDocument()
			if err != nil {
				return withFirst(fnType, reflect.Value{}, err)
			}
			return withFirst(fnType, reflect.ValueOf(doc), nil)
		}

		session, err := r.startChainLocked()
		if err != nil {
			return withFirst(fnType, reflect.Value{}, err)
		}

		if r.cfg.RecordHistory && !session.wroteHistory {
			hv := session.w.WriteEvent(wire.EventKey{Name: "history"})
			_ = marshal.WriteAny(hv, &r.cfg.History)
			session.wroteHistory = true
		}

		key, payload := r.resolveKey(desc, session.w.Dialect(), args)
		cursor := session.w.WriteEvent(key)
		writeErr := writePayload(cursor, payload)
		if writeErr != nil {
			_ = r.finishChainLocked(false)
			return withFirst(fnType, reflect.Value{}, writeErr)
		}

		switch desc.Return {
		case ReturnVoid, ReturnValue:
			if err := r.finishChainLocked(true); err != nil {
				return withFirst(fnType, reflect.Value{}, err)
			}
			return withFirst(fnType, reflect.Value{}, nil)
		case ReturnSelf:
			return withFirst(fnType, r.self, nil)
		case ReturnSubInterface:
			sub, buildErr := r.subWriter(desc.SubInterface, desc.SubMethods)
			if buildErr != nil {
				return withFirst(fnType, reflect.Value{}, buildErr)
			}
			return withFirst(fnType, sub, nil)
		default:
			if err := r.finishChainLocked(true); err != nil {
				return withFirst(fnType, reflect.Value{}, err)
			}
			return withFirst(fnType, reflect.Value{}, nil)
		}
	}
}

func (r *root) resolveKey(desc MethodDescriptor, dialect wire.Dialect, args []reflect.Value) (wire.EventKey, []reflect.Value) {
	if r.cfg.GenericEvent != "" && desc.EventName == r.cfg.GenericEvent && len(args) > 0 {
		if s, ok := args[0].Interface().(string); ok {
			return wire.EventKey{Name: s}, args[1:]
		}
	}
	if r.cfg.UseMethodIDs && dialect == wire.Binary && desc.HasID {
		return wire.EventKey{ID: desc.ID, IsID: true}, args
	}
	return wire.EventKey{Name: desc.EventName}, args
}

// writePayload serializes a call's arguments: zero args write empty text,
// one argument writes directly (with a raw-text fast path), two or more
// write as a sequence.
func writePayload(out wire.ValueOut, args []reflect.Value) error {
	switch len(args) {
	case 0:
		out.Text("")
		return nil
	case 1:
		v := args[0].Interface()
		if rt, ok := v.(RawText); ok {
			out.RawText(string(rt))
			return nil
		}
		return marshal.WriteAny(out, v)
	default:
		var firstErr error
		out.Sequence(len(args), func(eo wire.ValueOut, i int) {
			if err := marshal.WriteAny(eo, args[i].Interface()); err != nil && firstErr == nil {
				firstErr = err
			}
		})
		return firstErr
	}
}

// startChainLocked returns the currently open document session, opening a
// new one if none is in progress. Called with r.mu held.
func (r *root) startChainLocked() (*docSession, error) {
	if r.session != nil {
		return r.session, nil
	}
	ctx, err := r.framer.AcquireWritingDocument(r.cfg.MetaData, true)
	if err != nil {
		return nil, err
	}
	r.session = &docSession{ctx: ctx, w: r.newWire()}
	return r.session, nil
}

// finishChainLocked ends the currently open session: commit flushes the
// accumulated value tree and patches the document header; otherwise the
// document is rolled back. Called with r.mu held.
func (r *root) finishChainLocked(commit bool) error {
	s := r.session
	r.session = nil
	if s == nil {
		return nil
	}
	if !commit {
		return s.ctx.Rollback()
	}
	if err := s.w.Flush(); err != nil {
		_ = s.ctx.Rollback()
		return err
	}
	return s.ctx.Commit()
}

// openStandaloneDocument opens a document outside any chain (a
// DocumentContext return is never part of a chained sequence), handed to
// the caller who owns its lifetime. Called with r.mu held; conflicts with
// an already-open chain surface as the framer's UnrecoverableTimeout.
func (r *root) openStandaloneDocument() (*DocumentContext, error) {
	ctx, err := r.framer.AcquireWritingDocument(r.cfg.MetaData, false)
	if err != nil {
		return nil, err
	}
	return &DocumentContext{ctx: ctx, w: r.newWire()}, nil
}

// DocumentContext is the open document handle returned to callers of a
// ReturnDocumentContext method. The caller must call Commit or Rollback
// exactly once.
type DocumentContext struct {
	ctx *framing.WritingContext
	w   wire.Wire
}

// Wire exposes the document's value cursor for the caller to populate.
func (d *DocumentContext) Wire() wire.Wire { return d.w }

// Commit flushes the accumulated value tree and finalizes the document.
func (d *DocumentContext) Commit() error {
	if err := d.w.Flush(); err != nil {
		_ = d.ctx.Rollback()
		return err
	}
	return d.ctx.Commit()
}

// Rollback discards the document without publishing it.
func (d *DocumentContext) Rollback() error {
	return d.ctx.Rollback()
}
