// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"testing"

	"github.com/eventwire/eventwire/history"
	"github.com/eventwire/eventwire/internal/testutil/assert"
)

func TestWithTimingDoesNotMutateOriginal(t *testing.T) {
	base := history.History{SourceID: "svc-a"}
	next := base.WithTiming(history.Timing{SourceID: "svc-b", Nanos: 42})

	assert.Equal(t, 0, len(base.Timings))
	assert.Equal(t, 1, len(next.Timings))
	assert.Equal(t, "svc-b", next.Timings[0].SourceID)
}

func TestDefaultRoundtrip(t *testing.T) {
	h := history.History{SourceID: "svc-x"}
	history.SetDefault(h)
	assert.Equal(t, "svc-x", history.Get().SourceID)
	history.SetDefault(history.History{})
}
