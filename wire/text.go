// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Text-YAML dialect: a deliberately restricted grammar, not full YAML 1.1
// — no anchors, aliases, block-scalar folding, or multi-document streams;
// those are the document framer's job (package framing), not this
// dialect's. A document's payload is the body only: a bare scalar, a block
// mapping of "key: value" lines (two-space indent per nesting level), a
// flow sequence of scalars ("[a, b, c]"), a block sequence of "- " items,
// or a flow typed-object tag ("!Alias {field: value, ...}").
//
// Grounded on go-yaml's dump.go/load.go (the one concrete encode/decode
// pair, generalized here from full YAML to this subset) and on
// structmeta.go's distinction between flow and block collection style.
package wire

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eventwire/eventwire/value"
	"github.com/eventwire/eventwire/wireerr"
)

func encodeText(n *value.Node, _ encodeOpts) ([]byte, error) {
	var sb strings.Builder
	if err := writeTextRoot(&sb, n); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func writeTextRoot(sb *strings.Builder, n *value.Node) error {
	switch {
	case n == nil || n.Kind == value.Null:
		sb.WriteString("null\n")
		return nil
	case n.Kind == value.Mapping || n.Kind == value.TypedObject:
		if n.Kind == value.TypedObject && isFlowCandidate(n) {
			writeTypedFlow(sb, n)
			sb.WriteString("\n")
			return nil
		}
		return writeMappingBlock(sb, n, 0)
	case n.Kind == value.Sequence:
		if allScalar(n.Elements) {
			writeSeqFlow(sb, n)
			sb.WriteString("\n")
			return nil
		}
		return writeSeqBlock(sb, n, 0)
	default:
		sb.WriteString(scalarText(n))
		sb.WriteString("\n")
		return nil
	}
}

func indentStr(depth int) string { return strings.Repeat("  ", depth) }

func writeMappingBlock(sb *strings.Builder, n *value.Node, depth int) error {
	for _, e := range n.Entries {
		key := e.Name
		if e.IsID {
			key = strconv.FormatInt(e.ID, 10)
		}
		sb.WriteString(indentStr(depth))
		sb.WriteString(key)
		sb.WriteString(":")
		if err := writeValueAfterKey(sb, e.Value, depth); err != nil {
			return err
		}
	}
	return nil
}

// writeValueAfterKey writes a mapping value that follows "key:" — either
// inline on the same line (scalars, flow forms) or on indented lines below.
func writeValueAfterKey(sb *strings.Builder, v *value.Node, depth int) error {
	switch {
	case v == nil || v.Kind == value.Null:
		sb.WriteString("\n")
	case v.Kind == value.Mapping:
		if len(v.Entries) == 0 {
			sb.WriteString(" {}\n")
			return nil
		}
		sb.WriteString("\n")
		return writeMappingBlock(sb, v, depth+1)
	case v.Kind == value.TypedObject:
		sb.WriteString(" ")
		writeTypedFlow(sb, v)
		sb.WriteString("\n")
	case v.Kind == value.Sequence:
		if len(v.Elements) == 0 {
			sb.WriteString(" []\n")
			return nil
		}
		if allScalar(v.Elements) {
			sb.WriteString(" ")
			writeSeqFlow(sb, v)
			sb.WriteString("\n")
			return nil
		}
		sb.WriteString("\n")
		return writeSeqBlock(sb, v, depth+1)
	default:
		sb.WriteString(" ")
		sb.WriteString(scalarText(v))
		sb.WriteString("\n")
	}
	return nil
}

func writeSeqBlock(sb *strings.Builder, n *value.Node, depth int) error {
	for _, e := range n.Elements {
		sb.WriteString(indentStr(depth))
		sb.WriteString("-")
		if err := writeValueAfterKey(sb, e, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func writeSeqFlow(sb *strings.Builder, n *value.Node) {
	sb.WriteString("[")
	for i, e := range n.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(scalarText(e))
	}
	sb.WriteString("]")
}

func writeTypedFlow(sb *strings.Builder, n *value.Node) {
	sb.WriteString("!")
	sb.WriteString(n.TypeAlias)
	sb.WriteString(" {")
	for i, e := range n.Entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Name)
		sb.WriteString(": ")
		sb.WriteString(scalarText(e.Value))
	}
	sb.WriteString("}")
}

func allScalar(elems []*value.Node) bool {
	for _, e := range elems {
		if e == nil {
			continue
		}
		switch e.Kind {
		case value.Mapping, value.Sequence, value.TypedObject:
			return false
		}
	}
	return true
}

func isFlowCandidate(n *value.Node) bool {
	for _, e := range n.Entries {
		if e.Value != nil {
			switch e.Value.Kind {
			case value.Mapping, value.Sequence, value.TypedObject:
				return false
			}
		}
	}
	return true
}

var identRe = func() func(string) bool {
	return func(s string) bool {
		if s == "" {
			return false
		}
		for i, r := range s {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				continue
			}
			if i > 0 && r >= '0' && r <= '9' {
				continue
			}
			return false
		}
		return true
	}
}()

func scalarText(n *value.Node) string {
	if n == nil {
		return "null"
	}
	switch n.Kind {
	case value.Null:
		return "null"
	case value.Bool:
		if n.Bool {
			return "true"
		}
		return "false"
	case value.Int:
		if n.TextForm != "" {
			return quoteText(n.TextForm)
		}
		return strconv.FormatInt(n.Int, 10)
	case value.Float:
		bits := 64
		if n.Width == value.W32 {
			bits = 32
		}
		return strconv.FormatFloat(n.Float, 'g', -1, bits)
	case value.RawText:
		return n.Text
	case value.Text:
		if identRe(n.Text) && !isReservedWord(n.Text) {
			return n.Text
		}
		return quoteText(n.Text)
	case value.Blob:
		return "!!binary " + quoteText(base64Encode(n.Blob))
	case value.Timestamp:
		if n.TimeConv == "nano" {
			return "!!timestamp " + quoteText(nanosToISO8601(n.Int))
		}
		return fmt.Sprintf("!!timestamp %d", n.Int)
	default:
		return "null"
	}
}

func isReservedWord(s string) bool {
	switch s {
	case "null", "true", "false":
		return true
	}
	return false
}

func quoteText(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// nanosToISO8601 renders nanoseconds since the Unix epoch as an ISO-8601
// UTC timestamp with nanosecond precision, the rendering a "nano" timestamp
// conversion annotation selects in the text and JSON dialects.
func nanosToISO8601(nanos int64) string {
	return time.Unix(0, nanos).UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func iso8601ToNanos(s string) (int64, error) {
	t, err := time.Parse("2006-01-02T15:04:05.000000000Z", s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2.UnixNano(), nil
		}
		return 0, err
	}
	return t.UnixNano(), nil
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func base64Encode(b []byte) string {
	var sb strings.Builder
	for i := 0; i < len(b); i += 3 {
		chunk := b[i:minInt(i+3, len(b))]
		var n int
		for _, c := range chunk {
			n = n<<8 | int(c)
		}
		n <<= uint(8 * (3 - len(chunk)))
		sb.WriteByte(base64Alphabet[(n>>18)&0x3F])
		sb.WriteByte(base64Alphabet[(n>>12)&0x3F])
		if len(chunk) > 1 {
			sb.WriteByte(base64Alphabet[(n>>6)&0x3F])
		} else {
			sb.WriteByte('=')
		}
		if len(chunk) > 2 {
			sb.WriteByte(base64Alphabet[n&0x3F])
		} else {
			sb.WriteByte('=')
		}
	}
	return sb.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func base64Decode(s string) ([]byte, error) {
	rev := func(c byte) int {
		switch {
		case c >= 'A' && c <= 'Z':
			return int(c - 'A')
		case c >= 'a' && c <= 'z':
			return int(c-'a') + 26
		case c >= '0' && c <= '9':
			return int(c-'0') + 52
		case c == '+':
			return 62
		case c == '/':
			return 63
		default:
			return -1
		}
	}
	var out []byte
	s = strings.TrimRight(s, "=")
	for i := 0; i < len(s); i += 4 {
		end := minInt(i+4, len(s))
		chunk := s[i:end]
		var n, bits int
		for _, c := range chunk {
			v := rev(byte(c))
			if v < 0 {
				return nil, &wireerr.ProtocolViolation{Detail: "invalid base64"}
			}
			n = n<<6 | v
			bits += 6
		}
		n <<= uint(24 - bits)
		nbytes := bits / 8
		for i := 0; i < nbytes; i++ {
			out = append(out, byte(n>>uint(16-8*i)))
		}
	}
	return out, nil
}

// --- decode ---

type textLine struct {
	indent int
	text   string // trimmed, comment stripped
}

func decodeText(data []byte) (*value.Node, error) {
	raw := strings.Split(string(data), "\n")
	var lines []textLine
	for _, l := range raw {
		trimmed := stripComment(l)
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := 0
		for indent < len(trimmed) && trimmed[indent] == ' ' {
			indent++
		}
		lines = append(lines, textLine{indent: indent, text: strings.TrimRight(trimmed[indent:], " ")})
	}
	if len(lines) == 0 {
		return &value.Node{Kind: value.Null}, nil
	}
	p := &textParser{lines: lines}
	n, _, err := p.parseBlock(0, 0)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func stripComment(l string) string {
	inQuote := false
	for i := 0; i < len(l); i++ {
		switch l[i] {
		case '"':
			inQuote = !inQuote
		case '#':
			if !inQuote && (i == 0 || l[i-1] == ' ') {
				return l[:i]
			}
		}
	}
	return l
}

type textParser struct {
	lines []textLine
}

// parseBlock parses a block of lines starting at idx whose indent is exactly
// indent, returning the parsed node and the index just past it.
func (p *textParser) parseBlock(idx, indent int) (*value.Node, int, error) {
	if idx >= len(p.lines) || p.lines[idx].indent < indent {
		return &value.Node{Kind: value.Null}, idx, nil
	}
	if p.lines[idx].indent > indent {
		return nil, idx, &wireerr.ProtocolViolation{Detail: "unexpected indentation"}
	}
	if strings.HasPrefix(p.lines[idx].text, "- ") || p.lines[idx].text == "-" {
		return p.parseSeq(idx, indent)
	}
	if looksLikeMappingKey(p.lines[idx].text) {
		return p.parseMapping(idx, indent)
	}
	n, err := p.parseScalarLine(p.lines[idx].text)
	return n, idx + 1, err
}

func looksLikeMappingKey(line string) bool {
	colon := findTopLevelColon(line)
	return colon >= 0
}

// findTopLevelColon finds ": " or a trailing ":" not inside quotes/brackets.
func findTopLevelColon(line string) int {
	depth := 0
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '"':
			inQuote = !inQuote
		case '[', '{':
			if !inQuote {
				depth++
			}
		case ']', '}':
			if !inQuote {
				depth--
			}
		case ':':
			if !inQuote && depth == 0 && (i == len(line)-1 || line[i+1] == ' ') {
				return i
			}
		}
	}
	return -1
}

func (p *textParser) parseMapping(idx, indent int) (*value.Node, int, error) {
	n := &value.Node{Kind: value.Mapping}
	for idx < len(p.lines) && p.lines[idx].indent == indent {
		line := p.lines[idx].text
		ci := findTopLevelColon(line)
		if ci < 0 {
			break
		}
		key := line[:ci]
		rest := strings.TrimSpace(line[ci+1:])
		var child *value.Node
		var err error
		if rest == "" {
			child, idx, err = p.parseBlock(idx+1, indent+2)
			if err != nil {
				return nil, idx, err
			}
		} else {
			child, err = p.parseInlineValue(rest)
			if err != nil {
				return nil, idx, err
			}
			idx++
		}
		if id, ok := parseIntKey(key); ok {
			n.PutID(id, child)
		} else {
			n.Put(key, child)
		}
	}
	return n, idx, nil
}

func parseIntKey(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (p *textParser) parseSeq(idx, indent int) (*value.Node, int, error) {
	n := &value.Node{Kind: value.Sequence}
	for idx < len(p.lines) && p.lines[idx].indent == indent &&
		(p.lines[idx].text == "-" || strings.HasPrefix(p.lines[idx].text, "- ")) {
		rest := strings.TrimPrefix(p.lines[idx].text, "-")
		rest = strings.TrimSpace(rest)
		var child *value.Node
		var err error
		if rest == "" {
			child, idx, err = p.parseBlock(idx+1, indent+2)
			if err != nil {
				return nil, idx, err
			}
		} else {
			child, err = p.parseInlineValue(rest)
			if err != nil {
				return nil, idx, err
			}
			idx++
		}
		n.Elements = append(n.Elements, child)
	}
	return n, idx, nil
}

func (p *textParser) parseScalarLine(line string) (*value.Node, error) {
	return p.parseInlineValue(line)
}

// parseInlineValue parses a value that appears on a single line: a flow
// sequence, a flow typed-object, or a bare scalar.
func (p *textParser) parseInlineValue(s string) (*value.Node, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "{}":
		return &value.Node{Kind: value.Mapping}, nil
	case s == "[]":
		return &value.Node{Kind: value.Sequence}, nil
	case strings.HasPrefix(s, "["):
		return parseFlowSeq(s)
	case strings.HasPrefix(s, "!"):
		return parseTypedOrTagged(s)
	default:
		return parseScalar(s)
	}
}

func parseTypedOrTagged(s string) (*value.Node, error) {
	rest := s[1:]
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return nil, &wireerr.ProtocolViolation{Detail: "malformed tag: " + s}
	}
	tag := rest[:sp]
	body := strings.TrimSpace(rest[sp+1:])
	switch tag {
	case "!binary":
		b, err := base64Decode(unquote(body))
		if err != nil {
			return nil, err
		}
		return &value.Node{Kind: value.Blob, Blob: b}, nil
	case "!timestamp":
		if len(body) >= 2 && body[0] == '"' {
			nanos, err := iso8601ToNanos(unquote(body))
			if err != nil {
				return nil, &wireerr.ProtocolViolation{Detail: "malformed timestamp: " + s}
			}
			return &value.Node{Kind: value.Timestamp, Int: nanos, TimeConv: "nano"}, nil
		}
		nanos, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, &wireerr.ProtocolViolation{Detail: "malformed timestamp: " + s}
		}
		return &value.Node{Kind: value.Timestamp, Int: nanos}, nil
	default:
		if !strings.HasPrefix(body, "{") {
			return nil, &wireerr.ProtocolViolation{Detail: "malformed typed-object: " + s}
		}
		return parseFlowTyped(tag, body)
	}
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			inQuote = !inQuote
		case '[', '{':
			if !inQuote {
				depth++
			}
		case ']', '}':
			if !inQuote {
				depth--
			}
		case sep:
			if !inQuote && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	last := strings.TrimSpace(s[start:])
	if last != "" {
		parts = append(parts, last)
	}
	return parts
}

func parseFlowSeq(s string) (*value.Node, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	n := &value.Node{Kind: value.Sequence}
	for _, part := range splitTopLevel(inner, ',') {
		v, err := parseInlineScalarOrFlow(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		n.Elements = append(n.Elements, v)
	}
	return n, nil
}

func parseInlineScalarOrFlow(s string) (*value.Node, error) {
	p := &textParser{}
	return p.parseInlineValue(s)
}

func parseFlowTyped(alias, braced string) (*value.Node, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(braced, "{"), "}")
	n := &value.Node{Kind: value.TypedObject, TypeAlias: alias}
	for _, part := range splitTopLevel(inner, ',') {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, &wireerr.ProtocolViolation{Detail: "malformed typed-object field: " + part}
		}
		v, err := parseInlineScalarOrFlow(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, err
		}
		n.Put(strings.TrimSpace(kv[0]), v)
	}
	return n, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
		s = strings.ReplaceAll(s, `\"`, `"`)
		s = strings.ReplaceAll(s, `\n`, "\n")
		s = strings.ReplaceAll(s, `\\`, `\`)
	}
	return s
}

func parseScalar(s string) (*value.Node, error) {
	switch s {
	case "null":
		return &value.Node{Kind: value.Null}, nil
	case "true":
		return &value.Node{Kind: value.Bool, Bool: true}, nil
	case "false":
		return &value.Node{Kind: value.Bool, Bool: false}, nil
	}
	if len(s) >= 2 && s[0] == '"' {
		return &value.Node{Kind: value.Text, Text: unquote(s)}, nil
	}
	if iv, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &value.Node{Kind: value.Int, Int: iv, Width: value.W64}, nil
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		return &value.Node{Kind: value.Float, Float: fv, Width: value.W64}, nil
	}
	return &value.Node{Kind: value.Text, Text: s}, nil
}
