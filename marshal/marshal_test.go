// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package marshal_test

import (
	"testing"

	"github.com/eventwire/eventwire/bytesio"
	"github.com/eventwire/eventwire/internal/testutil/assert"
	"github.com/eventwire/eventwire/marshal"
	"github.com/eventwire/eventwire/wire"
)

type Engine struct {
	Electric bool `wire:"electric"`
	HP       int  `wire:"hp"`
}

func (e *Engine) ResetWire() { *e = Engine{} }

type Boat struct {
	Name   string `wire:"name"`
	Engine Engine `wire:"engine"`
}

func TestMarshalRoundtripText(t *testing.T) {
	b := Boat{Name: "Orca", Engine: Engine{Electric: true, HP: 300}}

	buf := bytesio.NewHeap()
	w := wire.NewText(buf, nil)
	assert.NoError(t, marshal.Marshal(w.ValueOut(), &b))
	assert.NoError(t, w.Flush())

	buf.SetReadPosition(0)
	r := wire.NewText(buf, nil)
	assert.NoError(t, r.Load())

	var got Boat
	assert.NoError(t, marshal.Unmarshal(r.ValueIn(), &got))
	assert.DeepEqual(t, b, got)
}

// TestResetOnRead checks that decoding a partial JSON object into a
// "configuration" subtype (one implementing Resettable) resets it to
// post-construction defaults first, rather than merging onto stale state.
func TestResetOnRead(t *testing.T) {
	boat := Boat{Name: "Orca", Engine: Engine{Electric: true, HP: 300}}

	buf := bytesio.NewHeapFrom([]byte(`{"name":"Orca","engine":{}}`))
	r := wire.NewJSON(buf, nil)
	assert.NoError(t, r.Load())
	assert.NoError(t, marshal.Unmarshal(r.ValueIn(), &boat))

	assert.False(t, boat.Engine.Electric)
	assert.Equal(t, 0, boat.Engine.HP)
}

type Ticket struct {
	Code  int64 `wire:"code,long=base36"`
	Stamp int64 `wire:"stamp,nano"`
}

func TestLongConversionAndNanoTime(t *testing.T) {
	tk := Ticket{Code: 123456, Stamp: 1_700_000_000_123456789}

	buf := bytesio.NewHeap()
	w := wire.NewText(buf, nil)
	assert.NoError(t, marshal.Marshal(w.ValueOut(), &tk))
	assert.NoError(t, w.Flush())

	buf.SetReadPosition(0)
	r := wire.NewText(buf, nil)
	assert.NoError(t, r.Load())

	var got Ticket
	assert.NoError(t, marshal.Unmarshal(r.ValueIn(), &got))
	assert.Equal(t, tk.Code, got.Code)
	assert.Equal(t, tk.Stamp, got.Stamp)
}

func TestUnsupportedFieldKindIsReported(t *testing.T) {
	type hasChan struct {
		C chan int `wire:"c"`
	}
	buf := bytesio.NewHeap()
	w := wire.NewText(buf, nil)
	err := marshal.Marshal(w.ValueOut(), &hasChan{C: make(chan int)})
	assert.NotNil(t, err)
}
