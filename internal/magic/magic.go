// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package magic implements the magic number detection for files and block devices.
package magic

import (
	"bytes"
	"io"

	"github.com/siderolabs/go-ntfsreloc/internal/ioutil"
)

// Magic defines a filesystem magic value.
type Magic struct {
	// Value to search for.
	Value []byte

	// Offset in the file where the magic value is located.
	Offset int
}

// Check reads exactly len(Value) bytes at Offset and compares them to the magic value.
//
// A failed or short read is returned as an error, a mismatch is not.
func (magic *Magic) Check(r io.ReaderAt) (bool, error) {
	buf := make([]byte, len(magic.Value))

	if err := ioutil.ReadFullAt(r, buf, int64(magic.Offset)); err != nil {
		return false, err
	}

	return bytes.Equal(buf, magic.Value), nil
}
