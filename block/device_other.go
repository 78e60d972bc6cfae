// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !linux

package block

import (
	"os"
)

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string, opts ...Option) (*Device, error) {
	options := applyOptions(opts...)

	f, err := os.OpenFile(path, options.Flag|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}

	return &Device{
		f: f,
	}, nil
}

// GetPartitionStart is only supported on Linux.
func (d *Device) GetPartitionStart() (uint64, error) {
	return 0, ErrNoGeometry
}
