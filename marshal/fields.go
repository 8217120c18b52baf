// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package marshal

import (
	"reflect"

	"github.com/eventwire/eventwire/wire"
	"github.com/eventwire/eventwire/wireerr"
)

// WriteAny writes v — a scalar, slice, map, struct, or Marshallable, in any
// combination of nesting — onto out. It is the single-value entry point
// package methodwriter uses to serialize a method argument, sharing the
// same dispatch writeField uses for struct fields.
func WriteAny(out wire.ValueOut, v any) error {
	if v == nil {
		out.Null()
		return nil
	}
	if m, ok := v.(wire.Marshallable); ok {
		return m.MarshalWire(out)
	}
	return writeValue(out, reflect.ValueOf(v), "")
}

// ReadAny reads a single value from in into dst, which must be a non-nil
// pointer. It is the read dual of WriteAny.
func ReadAny(in wire.ValueIn, dst any) error {
	if m, ok := dst.(wire.Marshallable); ok {
		return m.UnmarshalWire(in)
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &wireerr.InvalidMarshallable{Type: rv.Type().String(), Cause: errNilPointer}
	}
	return readValue(in, rv.Elem())
}

func writeField(out wire.ValueOut, fd fieldDesc, fv reflect.Value) error {
	switch {
	case fd.longConv != "":
		conv, ok := lookupLongConversion(fd.longConv)
		if !ok {
			return &wireerr.ClassNotFound{Alias: fd.longConv}
		}
		text, err := conv.Encode(fv.Int())
		if err != nil {
			return err
		}
		out.IntText(fv.Int(), text)
		return nil
	case fd.nanoTime:
		out.Timestamp(fv.Int(), "nano")
		return nil
	default:
		return writeValue(out, fv, fd.typeTag)
	}
}

func writeValue(out wire.ValueOut, fv reflect.Value, typeTag string) error {
	switch fv.Kind() {
	case reflect.Bool:
		out.Bool(fv.Bool())
	case reflect.Int8:
		out.Int8(int8(fv.Int()))
	case reflect.Int16:
		out.Int16(int16(fv.Int()))
	case reflect.Int32:
		out.Int32(int32(fv.Int()))
	case reflect.Int, reflect.Int64:
		out.Int64(fv.Int())
	case reflect.Float32:
		out.Float32(float32(fv.Float()))
	case reflect.Float64:
		out.Float64(fv.Float())
	case reflect.String:
		out.Text(fv.String())
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			out.Bytes(fv.Bytes())
			return nil
		}
		var elemErr error
		out.Sequence(fv.Len(), func(eo wire.ValueOut, i int) {
			if err := writeValue(eo, fv.Index(i), ""); err != nil && elemErr == nil {
				elemErr = err
			}
		})
		return elemErr
	case reflect.Ptr:
		if fv.IsNil() {
			out.Null()
			return nil
		}
		return writeValue(out, fv.Elem(), typeTag)
	case reflect.Struct:
		return writeStruct(out, fv, typeTag)
	case reflect.Map:
		return writeMap(out, fv)
	default:
		return &wireerr.InvalidMarshallable{Type: fv.Type().String(), Cause: errUnsupportedFieldKind(fv.Kind())}
	}
	return nil
}

func writeStruct(out wire.ValueOut, fv reflect.Value, typeTag string) error {
	// fv may arrive non-addressable (e.g. a method-writer call argument
	// passed by value), so an addressable copy is made up front rather
	// than calling fv.Addr() directly.
	ptr := reflect.New(fv.Type())
	ptr.Elem().Set(fv)

	// A custom Marshallable always controls its own Mapping/TypedObject
	// call; a type tag here only applies to plain reflected structs (one
	// that wants both a Marshallable and a forced tag should call
	// out.TypedObject itself from inside MarshalWire).
	if m, ok := ptr.Interface().(wire.Marshallable); ok {
		return m.MarshalWire(out)
	}
	if typeTag != "" {
		var err error
		out.TypedObject(typeTag, func(m wire.MappingOut) {
			err = writeFields(m, ptr.Elem())
		})
		return err
	}
	return Marshal(out, ptr.Interface())
}

func writeMap(out wire.ValueOut, fv reflect.Value) error {
	if fv.Type().Key().Kind() != reflect.String {
		return &wireerr.InvalidMarshallable{Type: fv.Type().String(), Cause: errNonStringMapKey}
	}
	var mapErr error
	out.Mapping(func(m wire.MappingOut) {
		iter := fv.MapRange()
		for iter.Next() {
			if err := writeValue(m.Key(iter.Key().String()), iter.Value(), ""); err != nil && mapErr == nil {
				mapErr = err
			}
		}
	})
	return mapErr
}

func readField(in wire.ValueIn, fd fieldDesc, fv reflect.Value) error {
	switch {
	case fd.longConv != "":
		conv, ok := lookupLongConversion(fd.longConv)
		if !ok {
			return &wireerr.ClassNotFound{Alias: fd.longConv}
		}
		if s, err := in.Text(); err == nil {
			n, err := conv.Decode(s)
			if err != nil {
				return err
			}
			fv.SetInt(n)
			return nil
		}
		n, err := in.Int64()
		if err != nil {
			return err
		}
		fv.SetInt(n)
		return nil
	case fd.nanoTime:
		nanos, err := in.TimestampLenient()
		if err != nil {
			return err
		}
		fv.SetInt(nanos)
		return nil
	default:
		return readValue(in, fv)
	}
}

func readValue(in wire.ValueIn, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.Bool:
		v, err := in.Bool()
		if err != nil {
			return err
		}
		fv.SetBool(v)
	case reflect.Int8:
		v, err := in.Int8()
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case reflect.Int16:
		v, err := in.Int16()
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case reflect.Int32:
		v, err := in.Int32()
		if err != nil {
			return err
		}
		fv.SetInt(int64(v))
	case reflect.Int, reflect.Int64:
		v, err := in.Int64()
		if err != nil {
			return err
		}
		fv.SetInt(v)
	case reflect.Float32:
		v, err := in.Float32()
		if err != nil {
			return err
		}
		fv.SetFloat(float64(v))
	case reflect.Float64:
		v, err := in.Float64()
		if err != nil {
			return err
		}
		fv.SetFloat(v)
	case reflect.String:
		v, err := in.Text()
		if err != nil {
			return err
		}
		fv.SetString(v)
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			b, err := in.Bytes()
			if err != nil {
				return err
			}
			fv.SetBytes(b)
			return nil
		}
		seq, err := in.Sequence()
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(fv.Type(), seq.Len(), seq.Len())
		for i := 0; i < seq.Len(); i++ {
			if err := readValue(seq.At(i), out.Index(i)); err != nil {
				return err
			}
		}
		fv.Set(out)
	case reflect.Ptr:
		if in.IsNull() {
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return readValue(in, fv.Elem())
	case reflect.Struct:
		if u, ok := fv.Addr().Interface().(wire.Marshallable); ok {
			return u.UnmarshalWire(in)
		}
		return Unmarshal(in, fv.Addr().Interface())
	default:
		return &wireerr.InvalidMarshallable{Type: fv.Type().String(), Cause: errUnsupportedFieldKind(fv.Kind())}
	}
	return nil
}

type unsupportedFieldKind reflect.Kind

func (k unsupportedFieldKind) Error() string { return "marshal: unsupported field kind " + reflect.Kind(k).String() }

func errUnsupportedFieldKind(k reflect.Kind) error { return unsupportedFieldKind(k) }

const errNonStringMapKey = simpleErr("marshal: map key must be string")
