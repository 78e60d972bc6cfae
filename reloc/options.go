// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package reloc

import "go.uber.org/zap"

// Options for Run.
type Options struct {
	// Logger to use for logging.
	Logger *zap.Logger
	// Opener to open the device with.
	Opener Opener
}

// Option is an option for Run.
type Option func(*Options)

// WithLogger sets the logger for the run.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithOpener overrides the way the device is opened.
func WithOpener(opener Opener) Option {
	return func(o *Options) {
		o.Opener = opener
	}
}

func applyOptions(opts ...Option) Options {
	o := Options{
		Logger: zap.NewNop(),
		Opener: OpenBlockDevice,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
