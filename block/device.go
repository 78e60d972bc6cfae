// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package block provides support for operations on blockdevices.
package block

import (
	"errors"
	"os"
)

// ErrNoGeometry is returned when the device doesn't report where it starts on the disk.
//
// This is the normal case for regular files (disk images).
var ErrNoGeometry = errors.New("partition geometry is not available")

// Device wraps blockdevice operations.
type Device struct {
	f *os.File

	devNo uint64
}

// ReadAt implements io.ReaderAt.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	return d.f.WriteAt(p, off)
}

// Sync commits the written data to the underlying storage.
func (d *Device) Sync() error {
	return d.f.Sync()
}

// Close the device.
func (d *Device) Close() error {
	return d.f.Close()
}
