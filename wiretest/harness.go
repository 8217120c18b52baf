// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wiretest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/wire"
	"github.com/eventwire/eventwire/wireio"
)

// TB is the subset of *testing.T the harness needs, so a case can be run
// from inside a larger assertion helper instead of always directly against
// *testing.T.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Logf(format string, args ...any)
}

// Harness drives one component through a recorded sequence of inbound
// events and compares its recorded output against a fixture. Setup and
// Deliver are wireio.WireParser instances already wired against the
// component under test — one handler per event name/id, registered by the
// caller exactly as it would be for production use — since building a
// generic reflective "event → Go method call" dispatcher a second time
// would just duplicate package methodwriter's machinery in reverse. Output
// returns the bytes the component has written so far on its own outbound
// wire.
type Harness struct {
	// Setup, if non-nil, is run against _setup.yaml when present in a
	// case directory, before Deliver sees in.yaml — a preamble of method
	// events that initializes state.
	Setup *wireio.WireParser

	// Deliver is run against in.yaml.
	Deliver *wireio.WireParser

	// Output returns the bytes captured from the component's outbound
	// wire. Called once, after Deliver has consumed in.yaml completely.
	Output func() []byte

	// Transform, if non-nil, is applied to both the actual and expected
	// text after the standard normalization.
	Transform func(string) string
}

// Run executes one case directory: dir/_setup.yaml (optional), dir/in.yaml,
// compared against dir/out.yaml. In regress mode (Regress()) it overwrites
// out.yaml with the captured output instead of comparing.
func (h *Harness) Run(t TB, dir string) {
	t.Helper()
	h.runCase(t, dir, "_setup.yaml", "in.yaml", "out.yaml")
}

// RunAgitated runs dir/in.yaml through each Agitation's Apply transform
// (a perturbed variant of the input) and compares against
// dir/out-<Name>.yaml. Skipped entirely when Base() is set.
func (h *Harness) RunAgitated(t *testing.T, dir string, variants []Agitation) {
	t.Helper()
	if Base() {
		return
	}
	inPath := filepath.Join(dir, "in.yaml")
	original := readFile(t, inPath)
	for _, v := range variants {
		v := v
		t.Run(v.Name, func(t *testing.T) {
			agitated := v.Apply(string(original))
			outName := fmt.Sprintf("out-%s.yaml", v.Name)
			h.runWithInput(t, dir, "_setup.yaml", []byte(agitated), outName)
		})
	}
}

// Agitation is one perturbed variant of a case's in.yaml fixture.
type Agitation struct {
	Name  string
	Apply func(in string) string
}

func (h *Harness) runCase(t TB, dir, setupName, inName, outName string) {
	t.Helper()
	in := readFile(t, filepath.Join(dir, inName))
	h.runWithInput(t, dir, setupName, in, outName)
}

func (h *Harness) runWithInput(t TB, dir, setupName string, in []byte, outName string) {
	t.Helper()
	if setupName != "" {
		if data, ok := readOptional(filepath.Join(dir, setupName)); ok {
			if h.Setup == nil {
				t.Fatalf("wiretest: %s present but Harness.Setup is nil", setupName)
			}
			deliver(t, h.Setup, data)
		}
	}
	deliver(t, h.Deliver, in)

	actual := Normalize(string(h.Output()), h.Transform)
	if DumpCode() {
		t.Logf("wiretest: captured output for %s:\n%s", dir, actual)
	}

	outPath := filepath.Join(dir, outName)
	if Regress() {
		if err := os.WriteFile(outPath, []byte(actual+"\n"), 0o644); err != nil {
			t.Fatalf("wiretest: writing %s: %v", outPath, err)
		}
		return
	}

	expectedRaw, ok := readOptional(outPath)
	if !ok {
		t.Fatalf("wiretest: missing expected fixture %s (rerun with regress.tests=true to create it)", outPath)
	}
	expected := Normalize(string(expectedRaw), h.Transform)
	if actual != expected {
		t.Errorf("wiretest: %s mismatch\n--- expected ---\n%s\n--- actual ---\n%s", outPath, expected, actual)
	}
}

func deliver(t TB, parser *wireio.WireParser, data []byte) {
	t.Helper()
	w := wire.NewText(bytesio.NewHeapFrom(data), nil)
	if err := w.Load(); err != nil {
		t.Fatalf("wiretest: loading fixture: %v", err)
	}
	if err := parser.Accept(w); err != nil {
		t.Fatalf("wiretest: delivering events: %v", err)
	}
}

func readFile(t TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("wiretest: reading %s: %v", path, err)
	}
	return data
}

func readOptional(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}
