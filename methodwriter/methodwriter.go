// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package methodwriter implements the method-event writer: it turns calls
// through a user-declared contract into framed events on a wire.Wire, with
// support for named and id-keyed events, a generic-event fallback,
// message-history stamping, an update-interceptor veto, and fluent
// chaining across self/sub-interface returns.
//
// A "contract" here is a struct of exported function-typed fields, not a Go
// interface — reflect.MakeFunc can synthesize a func.Value and assign it
// into any struct field of matching func type, but it cannot attach a named
// method to a type at runtime (Go has no such capability outside build-time
// codegen). A struct-of-func-fields is the idiomatic realization of a
// dynamic proxy available to pure reflection in Go: the caller declares,
// e.g.,
//
//	type OrderWriter struct {
//	    Place func(id string, qty int)
//	    To    func(dest string) *LegWriter
//	}
//
// and Build populates every field with a generated implementation bound to
// its MethodDescriptor.
//
// Grounded on package marshal's reflection-heavy field mapping (itself
// grounded on go-yaml's getStructInfo): this package reuses the same
// "describe once via reflect.Type, execute many times" shape, but the
// thing being described is a contract's function fields rather than a
// struct's data fields.
package methodwriter

import (
	"reflect"

	"github.com/eventwire/eventwire/history"
	"github.com/eventwire/eventwire/wireerr"
)

// ReturnKind classifies a method's return type for dispatch purposes.
type ReturnKind int

const (
	// ReturnVoid methods take no return value; the chain they may be part
	// of finalizes immediately after them.
	ReturnVoid ReturnKind = iota
	// ReturnSelf methods return a pointer to the writer's own contract
	// type, enabling fluent chaining within the same document.
	ReturnSelf
	// ReturnSubInterface methods return a pointer to a different contract
	// type, described by its own MethodDescriptor set, sharing the same
	// open document.
	ReturnSubInterface
	// ReturnDocumentContext methods hand the caller the open document
	// handle directly; the caller is responsible for closing it.
	ReturnDocumentContext
	// ReturnValue methods return a primitive or a plain reference type;
	// the interceptor veto path returns its zero value, and such methods
	// are otherwise not chainable.
	ReturnValue
)

// MethodDescriptor is the per-method half of a contract's descriptor: the
// contract's field name, the wire event name, an optional numeric id, the
// return kind, and (for ReturnSubInterface) the struct type of the
// returned sub-contract.
type MethodDescriptor struct {
	FieldName    string
	EventName    string
	ID           int64
	HasID        bool
	Return       ReturnKind
	SubInterface reflect.Type
	// SubMethods describes SubInterface's own function fields, needed to
	// build its writer lazily on first use (ReturnSubInterface only).
	SubMethods []MethodDescriptor
}

// ContractSpec is the built, validated method table for one contract type,
// immutable for the lifetime of any writer built from it. Build it once
// per contract type with Describe and reuse it for every writer built from
// it.
type ContractSpec struct {
	table   reflect.Type
	methods []MethodDescriptor
}

// Describe validates and wraps methods as the immutable descriptor set for
// table, a struct type whose exported fields are all of func type. It fails
// with *wireerr.MethodWriterValidation if table is not a struct, a
// descriptor names a field table does not declare or whose type is not
// func, or two descriptors share a numeric id.
func Describe(table reflect.Type, methods []MethodDescriptor) (*ContractSpec, error) {
	if table.Kind() != reflect.Struct {
		return nil, &wireerr.MethodWriterValidation{Interface: table.String(), Reason: "not a struct type"}
	}
	seenID := make(map[int64]string)
	for _, m := range methods {
		f, ok := table.FieldByName(m.FieldName)
		if !ok {
			return nil, &wireerr.MethodWriterValidation{Interface: table.String(), Method: m.FieldName, Reason: "no such field on contract"}
		}
		if f.Type.Kind() != reflect.Func {
			return nil, &wireerr.MethodWriterValidation{Interface: table.String(), Method: m.FieldName, Reason: "field is not a function"}
		}
		if err := checkReturnShape(table, f.Type, m); err != nil {
			return nil, err
		}
		if m.HasID {
			if owner, dup := seenID[m.ID]; dup {
				return nil, &wireerr.MethodWriterValidation{
					Interface: table.String(),
					Method:    m.FieldName,
					Reason:    "event id shared with method " + owner,
				}
			}
			seenID[m.ID] = m.FieldName
		}
	}
	return &ContractSpec{table: table, methods: append([]MethodDescriptor(nil), methods...)}, nil
}

var documentContextType = reflect.TypeOf((*DocumentContext)(nil))

// checkReturnShape validates that a chaining/passthrough method's first
// return value has the shape its ReturnKind requires, so a type mismatch is
// caught at writer-construction time rather than as a reflect.Value.Set
// panic on first call.
func checkReturnShape(table reflect.Type, fn reflect.Type, m MethodDescriptor) error {
	want := reflect.Type(nil)
	switch m.Return {
	case ReturnSelf:
		want = reflect.PointerTo(table)
	case ReturnSubInterface:
		if m.SubInterface == nil {
			return &wireerr.MethodWriterValidation{Interface: table.String(), Method: m.FieldName, Reason: "sub-interface return with no SubInterface type"}
		}
		want = reflect.PointerTo(m.SubInterface)
	case ReturnDocumentContext:
		want = documentContextType
	default:
		return nil
	}
	if fn.NumOut() == 0 || fn.Out(0) != want {
		return &wireerr.MethodWriterValidation{Interface: table.String(), Method: m.FieldName, Reason: "return type does not match declared return kind"}
	}
	return nil
}

// Config enumerates a writer's behavior knobs.
type Config struct {
	MetaData          bool
	UseMethodIDs      bool
	RecordHistory     bool
	GenericEvent      string
	UpdateInterceptor func(method string, lastArg any) bool
	VerboseTypes      bool
	History           history.History
}

// RawText is a raw-text escape hatch: a single-argument call whose argument
// is a RawText is written verbatim via ValueOut.RawText instead of going
// through the generic field mapper.
type RawText string
