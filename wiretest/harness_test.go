// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wiretest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/internal/testutil/assert"
	"github.com/eventwire/eventwire/wire"
	"github.com/eventwire/eventwire/wireio"
	"github.com/eventwire/eventwire/wiretest"
)

// echoComponent relays every "say" event it receives onto its own outbound
// wire as a "said" event, the simplest possible stand-in for a component
// under test.
func newEchoComponent(t *testing.T) (*wireio.WireParser, func() []byte) {
	t.Helper()
	buf := bytesio.NewHeap()
	out := wire.NewText(buf, nil)

	parser := wireio.NewParser()
	parser.Register("say", func(_ wire.EventKey, in wire.ValueIn) error {
		s, err := in.Text()
		if err != nil {
			return err
		}
		out.WriteEvent(wire.EventKey{Name: "said"}).Text(s)
		return out.Flush()
	})
	return parser, func() []byte { return buf.Bytes() }
}

func writeCase(t *testing.T, dir string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(dir, 0o755))
	deliverEvents := wire.NewText(bytesio.NewHeap(), nil)
	deliverEvents.WriteEvent(wire.EventKey{Name: "say"}).Text("hello")
	assert.NoError(t, deliverEvents.Flush())
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "in.yaml"), deliverEvents.Bytes().(*bytesio.Heap).Bytes(), 0o644))
}

func TestHarnessRegressThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir)

	t.Setenv("regress.tests", "true")
	parser, output := newEchoComponent(t)
	h := &wiretest.Harness{Deliver: parser, Output: output}
	h.Run(t, dir)

	if _, err := os.Stat(filepath.Join(dir, "out.yaml")); err != nil {
		t.Fatalf("expected out.yaml to be written by regress mode: %v", err)
	}

	t.Setenv("regress.tests", "false")
	parser2, output2 := newEchoComponent(t)
	h2 := &wiretest.Harness{Deliver: parser2, Output: output2}
	h2.Run(t, dir)
}

func TestHarnessDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "out.yaml"), []byte("not what gets produced"), 0o644))

	parser, output := newEchoComponent(t)
	h := &wiretest.Harness{Deliver: parser, Output: output}

	rt := &recordingT{T: t}
	h.Run(rt, dir)
	assert.True(t, rt.failed)
}

// recordingT wraps *testing.T to observe Errorf without failing the parent
// test, so TestHarnessDetectsMismatch can assert the harness reports a
// failure rather than actually failing the suite.
type recordingT struct {
	*testing.T
	failed bool
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.failed = true
}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.failed = true
	r.T.Fatalf(format, args...)
}
