// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wireerr defines the error taxonomy for the wire codec and the
// method-event dispatch layer built on top of it.
//
// Each kind is a distinct exported type rather than a sentinel value so
// callers can carry structured context (a position, a method name, a class
// alias) and still use errors.As to dispatch on kind.
package wireerr

import (
	"errors"
	"fmt"
)

// InvalidMarshallable reports a field that failed validation while a
// Marshallable was being written or read.
type InvalidMarshallable struct {
	Type  string
	Field string
	Cause error
}

func (e *InvalidMarshallable) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("wire: invalid marshallable %s: %v", e.Type, e.Cause)
	}
	return fmt.Sprintf("wire: invalid marshallable %s.%s: %v", e.Type, e.Field, e.Cause)
}

func (e *InvalidMarshallable) Unwrap() error { return e.Cause }

// UnrecoverableTimeout reports that a document could not be acquired. The
// document framer returns it at once when another writer is already in
// flight; it does not wait for that writer to finish and takes no deadline.
// The wire it occurred on must be discarded; there is no safe retry on the
// same wire.
type UnrecoverableTimeout struct {
	Op string
}

func (e *UnrecoverableTimeout) Error() string {
	return fmt.Sprintf("wire: unrecoverable timeout acquiring document for %s", e.Op)
}

// ClassNotFound reports that a type alias could not be resolved to a
// factory (on read) or a registered name (on write).
type ClassNotFound struct {
	Alias string
}

func (e *ClassNotFound) Error() string {
	return fmt.Sprintf("wire: class not found for alias %q", e.Alias)
}

// MethodWriterValidation is a build-time error raised while constructing a
// method-event writer: a duplicate event id, a non-interface argument, or an
// unsupported method signature.
type MethodWriterValidation struct {
	Interface string
	Method    string
	Reason    string
}

func (e *MethodWriterValidation) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("wire: method writer validation failed for %s: %s", e.Interface, e.Reason)
	}
	return fmt.Sprintf("wire: method writer validation failed for %s.%s: %s", e.Interface, e.Method, e.Reason)
}

// ProtocolViolation reports a reader that failed to progress, encountered an
// unknown required tag, or found a malformed document header. The caller may
// retry from the next document boundary. Cause, when set, is one of the
// exported sentinels below (e.g. ErrFailedToProgress) so callers can
// errors.Is against it.
type ProtocolViolation struct {
	Detail string
	Cause  error
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("wire: protocol violation: %s", e.Detail)
}

func (e *ProtocolViolation) Unwrap() error { return e.Cause }

// TransientIO wraps a failure from the backing bytes buffer or transport.
// It is never produced by the codec itself, only propagated.
type TransientIO struct {
	Cause error
}

func (e *TransientIO) Error() string {
	return fmt.Sprintf("wire: transient I/O error: %v", e.Cause)
}

func (e *TransientIO) Unwrap() error { return e.Cause }

// Exported sentinels for errors.Is checks. A ProtocolViolation whose Cause is
// one of these matches it through Unwrap.
var (
	// ErrFailedToProgress is wrapped by a ProtocolViolation raised when a
	// parser consumes zero bytes for an event key.
	ErrFailedToProgress = errors.New("wire: parser failed to progress")

	// ErrNotReady names the not-ready document state. Package framing does
	// not return it: ReadingDocument reports a not-ready header as a context
	// whose IsPresent is false, with a nil error.
	ErrNotReady = errors.New("wire: document not ready")
)
