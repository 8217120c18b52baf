// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wiretest implements a deterministic replay test harness: a
// directory of `in.yaml`/`out.yaml` (plus an optional `_setup.yaml`)
// drives a user component through a preamble and a sequence of inbound
// events, captures every outgoing call, and compares the captured buffer
// against the expected fixture after normalization.
//
// Grounded on the general shape of table-driven replay harnesses rather
// than on any single upstream file: go-yaml's own internal/testutil/datatest
// runs a different shape of fixture (one YAML file of many inline
// {type: ...} cases dispatched by a registered handler) that doesn't fit a
// directory of in/out files, so this package is a from-scratch component
// for that concern (see DESIGN.md).
package wiretest

import "sync"

// Clock supplies timestamps to code under test, replacing the system clock
// so recorded output is reproducible.
type Clock interface {
	Now() int64
}

// SettableClock is a Clock whose value advances by a fixed step every time
// Now is read. The zero value is not usable; construct with
// NewSettableClock.
type SettableClock struct {
	mu   sync.Mutex
	next int64
	step int64
}

// NewSettableClock returns a clock starting at startNanos that advances by
// 1 microsecond (1000ns) on every call to Now, a sensible default cadence
// for most fixtures.
func NewSettableClock(startNanos int64) *SettableClock {
	return &SettableClock{next: startNanos, step: 1000}
}

// NewSettableClockWithStep is NewSettableClock with a caller-chosen step,
// for harnesses that need a different cadence than the default.
func NewSettableClockWithStep(startNanos, stepNanos int64) *SettableClock {
	return &SettableClock{next: startNanos, step: stepNanos}
}

func (c *SettableClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.next
	c.next += c.step
	return v
}

// Set pins the next value Now will return, without affecting the step.
func (c *SettableClock) Set(nanos int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = nanos
}
