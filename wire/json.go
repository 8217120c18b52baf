// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// JSON dialect: strict JSON, no comments, no trailing commas. A
// TypedObject gets an extra "@type" member when verbose types are enabled;
// otherwise it is indistinguishable from a plain object. Event-id keys
// (binary-only) are rendered as their decimal string form, the same form
// the text dialect writes for an id key.
//
// Grounded on the standard library encoding/json tokenizer idiom (go-yaml
// carries no JSON codec of its own); the object/array walk mirrors this
// package's text.go, built from go-yaml's actual dump/load split.
package wire

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/eventwire/eventwire/value"
	"github.com/eventwire/eventwire/wireerr"
)

const jsonTypeMember = "@type"

func encodeJSON(n *value.Node, opts encodeOpts) ([]byte, error) {
	v, err := jsonValueOf(n, opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func jsonValueOf(n *value.Node, opts encodeOpts) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case value.Null:
		return nil, nil
	case value.Bool:
		return n.Bool, nil
	case value.Int:
		if n.TextForm != "" {
			return n.TextForm, nil
		}
		return n.Int, nil
	case value.Float:
		return n.Float, nil
	case value.Text, value.RawText:
		return n.Text, nil
	case value.Blob:
		return base64Encode(n.Blob), nil
	case value.Timestamp:
		// JSON has no tag mechanism outside "@type" (reserved for typed
		// objects): a nano-convention timestamp renders as a plain
		// ISO-8601 string, indistinguishable on generic decode from an
		// ordinary text value.
		// Callers that need the Kind back (package marshal's NanoTime field
		// reader) parse the string themselves instead of relying on
		// jsonNodeOf to reconstruct Kind==Timestamp.
		if n.TimeConv == "nano" {
			return nanosToISO8601(n.Int), nil
		}
		return n.Int, nil
	case value.Sequence:
		out := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			v, err := jsonValueOf(e, opts)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case value.Mapping, value.TypedObject:
		m := make(jsonOrderedObject, 0, len(n.Entries)+1)
		if n.Kind == value.TypedObject && opts.verboseTypes {
			m = append(m, jsonMember{Key: jsonTypeMember, Value: n.TypeAlias})
		}
		for _, e := range n.Entries {
			key := e.Name
			if e.IsID {
				key = strconv.FormatInt(e.ID, 10)
			}
			v, err := jsonValueOf(e.Value, opts)
			if err != nil {
				return nil, err
			}
			m = append(m, jsonMember{Key: key, Value: v})
		}
		return m, nil
	default:
		return nil, &wireerr.InvalidMarshallable{Type: "json", Cause: errUnsupportedType(n.Kind)}
	}
}

// jsonMember/jsonOrderedObject preserve field declaration order;
// encoding/json on a plain Go map would instead sort keys alphabetically.
type jsonMember struct {
	Key   string
	Value any
}

type jsonOrderedObject []jsonMember

func (o jsonOrderedObject) MarshalJSON() ([]byte, error) {
	var buf []byte
	buf = append(buf, '{')
	for i, m := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

func decodeJSON(data []byte) (*value.Node, error) {
	if len(data) == 0 {
		return &value.Node{Kind: value.Null}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &wireerr.ProtocolViolation{Detail: "malformed json: " + err.Error()}
	}
	return jsonNodeOf(raw), nil
}

func jsonNodeOf(v any) *value.Node {
	switch t := v.(type) {
	case nil:
		return &value.Node{Kind: value.Null}
	case bool:
		return &value.Node{Kind: value.Bool, Bool: t}
	case json.Number:
		if iv, err := t.Int64(); err == nil {
			return &value.Node{Kind: value.Int, Int: iv, Width: value.W64}
		}
		fv, _ := t.Float64()
		return &value.Node{Kind: value.Float, Float: fv, Width: value.W64}
	case string:
		return &value.Node{Kind: value.Text, Text: t}
	case []any:
		n := &value.Node{Kind: value.Sequence}
		for _, e := range t {
			n.Elements = append(n.Elements, jsonNodeOf(e))
		}
		return n
	case map[string]any:
		n := &value.Node{Kind: value.Mapping}
		if alias, ok := t[jsonTypeMember].(string); ok {
			n.Kind = value.TypedObject
			n.TypeAlias = alias
		}
		for k, val := range t {
			if k == jsonTypeMember {
				continue
			}
			if id, ok := parseIntKey(k); ok {
				n.PutID(id, jsonNodeOf(val))
			} else {
				n.Put(k, jsonNodeOf(val))
			}
		}
		return n
	default:
		return &value.Node{Kind: value.Null}
	}
}
