// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import "os"

// Options for NewFromPath.
type Options struct {
	// Flag is the access mode (os.O_RDONLY or os.O_RDWR).
	Flag int
}

// Option configures Options.
type Option func(*Options)

// OpenForWrite opens the device for reading and writing.
func OpenForWrite() Option {
	return func(o *Options) {
		o.Flag = os.O_RDWR
	}
}

func applyOptions(opts ...Option) Options {
	o := Options{
		Flag: os.O_RDONLY,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
