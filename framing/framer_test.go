// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package framing_test

import (
	"testing"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/framing"
	"github.com/eventwire/eventwire/internal/testutil/assert"
	"github.com/eventwire/eventwire/wireerr"
)

func TestCommitMakesDocumentReadable(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)

	wc, err := fr.AcquireWritingDocument(false, false)
	assert.NoError(t, err)
	assert.NoError(t, buf.WriteUTF8("hello"))
	assert.NoError(t, wc.Commit())

	buf.SetReadPosition(0)
	rc, err := fr.ReadingDocument()
	assert.NoError(t, err)
	assert.True(t, rc.IsPresent())
	assert.False(t, rc.IsMetaData())
	assert.Equal(t, int64(0), rc.Index())

	s, err := buf.ReadUTF8()
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.NoError(t, rc.Close())
}

func TestAcquireWritingDocumentRejectsConcurrentWriter(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)

	wc, err := fr.AcquireWritingDocument(false, false)
	assert.NoError(t, err)

	_, err = fr.AcquireWritingDocument(false, false)
	var timeout *wireerr.UnrecoverableTimeout
	assert.ErrorAs(t, err, &timeout)

	assert.NoError(t, wc.Commit())

	// Now idle again; a new acquire succeeds.
	wc2, err := fr.AcquireWritingDocument(false, false)
	assert.NoError(t, err)
	assert.NoError(t, wc2.Commit())
}

func TestRollbackLeavesDocumentUnreadable(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)

	wc, err := fr.AcquireWritingDocument(false, false)
	assert.NoError(t, err)
	assert.NoError(t, buf.WriteUTF8("discarded"))
	assert.NoError(t, wc.Rollback())

	buf.SetReadPosition(0)
	rc, err := fr.ReadingDocument()
	assert.NoError(t, err)
	assert.False(t, rc.IsPresent())
}

func TestReadingDocumentNotPresentOnShortBuffer(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)
	assert.NoError(t, buf.WriteByte(0))
	buf.SetReadPosition(0)

	rc, err := fr.ReadingDocument()
	assert.NoError(t, err)
	assert.False(t, rc.IsPresent())
}

func TestMetaFlagRoundtrips(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)

	wc, err := fr.AcquireWritingDocument(true, false)
	assert.NoError(t, err)
	assert.NoError(t, wc.Commit())

	buf.SetReadPosition(0)
	rc, err := fr.ReadingDocument()
	assert.NoError(t, err)
	assert.True(t, rc.IsMetaData())
	assert.NoError(t, rc.Close())
}

func TestReadingContextPinsReadLimitToPayload(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)

	wc, err := fr.AcquireWritingDocument(false, false)
	assert.NoError(t, err)
	assert.NoError(t, buf.WriteUTF8("payload"))
	assert.NoError(t, wc.Commit())

	// A second document follows, so the limiter must stop the first
	// document's reader from reading into it.
	wc2, err := fr.AcquireWritingDocument(false, false)
	assert.NoError(t, err)
	assert.NoError(t, buf.WriteUTF8("second"))
	assert.NoError(t, wc2.Commit())

	buf.SetReadPosition(0)
	rc, err := fr.ReadingDocument()
	assert.NoError(t, err)
	assert.True(t, rc.IsPresent())

	_, err = buf.ReadUTF8()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), buf.ReadRemaining())

	assert.NoError(t, rc.Close())

	rc2, err := fr.ReadingDocument()
	assert.NoError(t, err)
	assert.True(t, rc2.IsPresent())
	s, err := buf.ReadUTF8()
	assert.NoError(t, err)
	assert.Equal(t, "second", s)
	assert.NoError(t, rc2.Close())
}

func TestDocumentIndexIsMonotone(t *testing.T) {
	buf := bytesio.NewHeap()
	fr := framing.New(buf)

	for i := 0; i < 3; i++ {
		wc, err := fr.AcquireWritingDocument(false, false)
		assert.NoError(t, err)
		assert.NoError(t, wc.Commit())
	}

	buf.SetReadPosition(0)
	for i := int64(0); i < 3; i++ {
		rc, err := fr.ReadingDocument()
		assert.NoError(t, err)
		assert.True(t, rc.IsPresent())
		assert.Equal(t, i, rc.Index())
		assert.NoError(t, rc.Close())
	}
}
