// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wireerr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/eventwire/eventwire/internal/testutil/assert"
	"github.com/eventwire/eventwire/wireerr"
)

func TestProtocolViolationUnwrapsCause(t *testing.T) {
	err := &wireerr.ProtocolViolation{Detail: "no progress", Cause: wireerr.ErrFailedToProgress}
	assert.ErrorIs(t, err, wireerr.ErrFailedToProgress)

	var pv *wireerr.ProtocolViolation
	assert.ErrorAs(t, err, &pv)
	assert.Equal(t, "no progress", pv.Detail)
}

func TestProtocolViolationWithoutCauseDoesNotMatchSentinel(t *testing.T) {
	err := &wireerr.ProtocolViolation{Detail: "malformed header"}
	assert.False(t, errors.Is(err, wireerr.ErrFailedToProgress))
}

func TestInvalidMarshallableMessageIncludesField(t *testing.T) {
	err := &InvalidMarshallableCause{}
	wrapped := &wireerr.InvalidMarshallable{Type: "Order", Field: "Qty", Cause: err}
	assert.True(t, strings.Contains(wrapped.Error(), "Order.Qty"))
	assert.ErrorIs(t, wrapped, err)
}

func TestInvalidMarshallableMessageWithoutField(t *testing.T) {
	err := &InvalidMarshallableCause{}
	wrapped := &wireerr.InvalidMarshallable{Type: "Order", Cause: err}
	assert.False(t, strings.Contains(wrapped.Error(), "."))
}

func TestMethodWriterValidationMessage(t *testing.T) {
	err := &wireerr.MethodWriterValidation{Interface: "OrderWriter", Method: "Place", Reason: "no such field"}
	assert.True(t, strings.Contains(err.Error(), "OrderWriter.Place"))
}

type InvalidMarshallableCause struct{}

func (e *InvalidMarshallableCause) Error() string { return "boom" }
