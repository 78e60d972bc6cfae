// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import "fmt"

// Op is the device operation which failed.
type Op string

// Device operations.
const (
	OpOpen  Op = "open"
	OpRead  Op = "read"
	OpWrite Op = "write"
	OpSync  Op = "sync"
	OpClose Op = "close"
)

// IOError records a failed device operation.
type IOError struct {
	Err    error
	Op     Op
	Path   string
	Offset int64
}

// Error implements error.
func (e *IOError) Error() string {
	switch {
	case e.Path != "" && (e.Op == OpRead || e.Op == OpWrite):
		return fmt.Sprintf("%s %s at offset %d: %s", e.Op, e.Path, e.Offset, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
	case e.Op == OpRead || e.Op == OpWrite:
		return fmt.Sprintf("%s at offset %d: %s", e.Op, e.Offset, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}
