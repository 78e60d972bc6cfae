// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package endianness converts on-disk little-endian integers to and from native values.
//
// The conversion is defined on bytes, so the result does not depend on the byte order
// of the host.
package endianness

import (
	"encoding/binary"
)

// Uint32Size is the on-disk size of a 32-bit field.
const Uint32Size = 4

// Uint32LE decodes the first four bytes of data as a little-endian unsigned integer.
func Uint32LE(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[:Uint32Size])
}

// PutUint32LE encodes v into the first four bytes of data in little-endian order.
func PutUint32LE(data []byte, v uint32) {
	binary.LittleEndian.PutUint32(data[:Uint32Size], v)
}
