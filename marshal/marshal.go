// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package marshal implements the marshallable object mapping: a struct
// declares its wire shape with an ordered field list built once per type
// via reflection, then reused for every instance.
//
// Grounded on go-yaml's getStructInfo/fieldInfo (yaml.go): same
// cached-by-reflect.Type field table, same struct-tag-driven name and flag
// parsing, generalized from YAML-specific flags (omitempty/flow/inline) to
// this package's own annotations (longconv/nano/type/skip). Descriptors are
// built once and reused, never re-derived per call.
package marshal

import (
	"reflect"
	"strings"
	"sync"

	"github.com/eventwire/eventwire/wire"
	"github.com/eventwire/eventwire/wireerr"
)

// Resettable is implemented by "configuration" subtypes: Unmarshal calls
// ResetWire before populating fields, so stale state from a reused
// destination does not leak through.
type Resettable interface {
	ResetWire()
}

type fieldDesc struct {
	name     string
	index    []int
	longConv string
	nanoTime bool
	typeTag  string
}

type structInfo struct {
	fields []fieldDesc
}

var (
	infoMu sync.RWMutex
	infoOf = make(map[reflect.Type]*structInfo)
)

func describe(t reflect.Type) (*structInfo, error) {
	infoMu.RLock()
	si, ok := infoOf[t]
	infoMu.RUnlock()
	if ok {
		return si, nil
	}

	si, err := buildStructInfo(t)
	if err != nil {
		return nil, err
	}
	infoMu.Lock()
	infoOf[t] = si
	infoMu.Unlock()
	return si, nil
}

func buildStructInfo(t reflect.Type) (*structInfo, error) {
	si := &structInfo{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue // unexported
		}
		tag := f.Tag.Get("wire")
		if tag == "-" {
			continue
		}
		fd := fieldDesc{name: lowerFirst(f.Name), index: f.Index}
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			fd.name = parts[0]
		}
		for _, opt := range parts[1:] {
			switch {
			case opt == "nano":
				fd.nanoTime = true
			case strings.HasPrefix(opt, "long="):
				fd.longConv = strings.TrimPrefix(opt, "long=")
			case strings.HasPrefix(opt, "type="):
				fd.typeTag = strings.TrimPrefix(opt, "type=")
			case opt == "":
			default:
				return nil, &wireerr.MethodWriterValidation{
					Interface: t.String(),
					Reason:    "unsupported wire tag flag " + opt,
				}
			}
		}
		si.fields = append(si.fields, fd)
	}
	return si, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func underlying(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, &wireerr.InvalidMarshallable{Type: rv.Type().String(), Cause: errNilPointer}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, &wireerr.InvalidMarshallable{Type: rv.Type().String(), Cause: errNotStruct}
	}
	return rv, nil
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

const (
	errNilPointer = simpleErr("marshal: nil pointer")
	errNotStruct  = simpleErr("marshal: not a struct")
)

// Marshal writes v's declared fields, in declaration order, into out.
func Marshal(out wire.ValueOut, v any) error {
	rv, err := underlying(v)
	if err != nil {
		return err
	}
	var writeErr error
	out.Mapping(func(m wire.MappingOut) {
		writeErr = writeFields(m, rv)
	})
	return writeErr
}

// writeFields populates an already-opened MappingOut (or TypedObject, which
// is mapping-shaped) with rv's declared fields, without touching its Kind —
// the caller decides Mapping vs TypedObject before calling in.
func writeFields(m wire.MappingOut, rv reflect.Value) error {
	si, err := describe(rv.Type())
	if err != nil {
		return err
	}
	for _, fd := range si.fields {
		fv := rv.FieldByIndex(fd.index)
		if err := writeField(m.Key(fd.name), fd, fv); err != nil {
			return &wireerr.InvalidMarshallable{Type: rv.Type().String(), Field: fd.name, Cause: err}
		}
	}
	return nil
}

// Unmarshal populates dst's declared fields by name match, tolerating
// unknown entries (skipped) and missing fields (left at their current
// value). If dst implements Resettable, ResetWire is called first.
func Unmarshal(in wire.ValueIn, dst any) error {
	if r, ok := dst.(Resettable); ok {
		r.ResetWire()
	}
	rv, err := underlying(dst)
	if err != nil {
		return err
	}
	si, err := describe(rv.Type())
	if err != nil {
		return err
	}
	m, err := in.Mapping()
	if err != nil {
		return err
	}
	for _, fd := range si.fields {
		child, ok := m.Get(fd.name)
		if !ok {
			continue
		}
		fv := rv.FieldByIndex(fd.index)
		if err := readField(child, fd, fv); err != nil {
			return &wireerr.InvalidMarshallable{Type: rv.Type().String(), Field: fd.name, Cause: err}
		}
	}
	return nil
}

// Wrap adapts v to wire.Marshallable via the reflection-driven Marshal and
// Unmarshal above, so ValueOut.Object/ValueIn's callers can treat any
// described struct as a Marshallable without it implementing the interface
// itself.
func Wrap(v any) wire.Marshallable { return wrapper{v} }

type wrapper struct{ v any }

func (w wrapper) MarshalWire(out wire.ValueOut) error   { return Marshal(out, w.v) }
func (w wrapper) UnmarshalWire(in wire.ValueIn) error   { return Unmarshal(in, w.v) }
