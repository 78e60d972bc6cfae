// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bootsector reads and updates the NTFS boot sector fields used for relocation.
//
// Only two fields are touched: the "NTFS" OEM magic at offset 3 and the
// hidden sectors count (the volume start sector) at offset 28.
// Every access is positioned, no file offset is shared between calls.
package bootsector

import (
	"io"

	"github.com/siderolabs/go-ntfsreloc/block"
	"github.com/siderolabs/go-ntfsreloc/internal/endianness"
	"github.com/siderolabs/go-ntfsreloc/internal/ioutil"
	"github.com/siderolabs/go-ntfsreloc/internal/magic"
)

// Boot sector layout.
const (
	MagicOffset       = 3
	StartSectorOffset = 28
	StartSectorSize   = endianness.Uint32Size
)

var ntfsMagic = magic.Magic{
	Offset: MagicOffset,
	Value:  []byte("NTFS"),
}

// SyncWriterAt is a device which can be written to and flushed.
type SyncWriterAt interface {
	io.WriterAt

	Sync() error
}

// ReadMagic reports whether the boot sector carries the NTFS magic.
//
// A mismatch is not an error; failing to read the magic is.
func ReadMagic(r io.ReaderAt) (bool, error) {
	ok, err := ntfsMagic.Check(r)
	if err != nil {
		return false, &block.IOError{Op: block.OpRead, Offset: MagicOffset, Err: err}
	}

	return ok, nil
}

// ReadStartSector returns the start sector recorded in the boot sector.
func ReadStartSector(r io.ReaderAt) (uint32, error) {
	buf := make([]byte, StartSectorSize)

	if err := ioutil.ReadFullAt(r, buf, StartSectorOffset); err != nil {
		return 0, &block.IOError{Op: block.OpRead, Offset: StartSectorOffset, Err: err}
	}

	return endianness.Uint32LE(buf), nil
}

// WriteStartSector records a new start sector and flushes it to the storage.
func WriteStartSector(w SyncWriterAt, sector uint32) error {
	buf := make([]byte, StartSectorSize)
	endianness.PutUint32LE(buf, sector)

	if err := ioutil.WriteFullAt(w, buf, StartSectorOffset); err != nil {
		return &block.IOError{Op: block.OpWrite, Offset: StartSectorOffset, Err: err}
	}

	if err := w.Sync(); err != nil {
		return &block.IOError{Op: block.OpSync, Err: err}
	}

	return nil
}
