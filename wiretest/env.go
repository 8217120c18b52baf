// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package wiretest

import "os"

// Regress reports whether the harness should overwrite expected fixtures
// with freshly captured output instead of asserting against them.
func Regress() bool {
	return os.Getenv("regress.tests") == "true"
}

// Base reports whether the harness should run only its baseline case,
// skipping agitated variants.
func Base() bool {
	return os.Getenv("base.tests") == "true"
}

// DumpCode reports whether the harness should log the captured output as it
// runs, for debugging a failing comparison.
func DumpCode() bool {
	return os.Getenv("dumpCode") == "true"
}
