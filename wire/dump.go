// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"io"

	"github.com/eventwire/eventwire/alias"
	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/framing"
)

// DumpStream renders every framed document remaining in buf to out in a
// human-readable stream dump format: a "--- !!data" (or "--- !!meta-data")
// marker, the document's body rendered with the text dialect regardless of
// its wire dialect, a "..." close, and a "# position: N, header: K" marker
// between documents giving the next document's byte offset and framer
// index. A trailing not-ready header (a document opened but never
// committed) renders as "--- !!not-ready-data" with a remaining-byte
// comment, then stops — matching the framer's own behavior of stopping at
// the first non-ready header rather than treating it as end of stream.
//
// Grounded on go-yaml's cmd/go-yaml dumping a stream of decoded values one
// at a time (ProcessEvents/ProcessTokens in cmd/go-yaml/main.go), adapted
// here from a token/event stream to a framed document stream.
func DumpStream(out io.Writer, buf bytesio.Bytes, dialect Dialect, lookup *alias.Registry) error {
	fr := framing.New(buf)
	first := true
	for {
		startPos := buf.ReadPosition()
		rc, err := fr.ReadingDocument()
		if err != nil {
			return err
		}
		if !rc.IsPresent() {
			if buf.ReadRemaining() > 0 {
				fmt.Fprintf(out, "--- !!not-ready-data\n# %d bytes remaining\n", buf.ReadRemaining())
			}
			return nil
		}

		if !first {
			fmt.Fprintf(out, "# position: %d, header: %d\n", startPos, rc.Index())
		}
		first = false

		marker := "--- !!data"
		if rc.IsMetaData() {
			marker = "--- !!meta-data"
		}
		fmt.Fprintln(out, marker)

		w := New(dialect, buf, lookup)
		if err := w.Load(); err != nil {
			_ = rc.Close()
			return err
		}
		body, err := encodeText(w.Root(), encodeOpts{})
		if err != nil {
			_ = rc.Close()
			return err
		}
		out.Write(body)
		fmt.Fprintln(out, "...")

		if err := rc.Close(); err != nil {
			return err
		}
	}
}
