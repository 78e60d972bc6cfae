// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package reloc reconciles the start sector recorded in an NTFS boot sector
// with the actual start of the partition holding the filesystem.
package reloc

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/siderolabs/gen/optional"
	"go.uber.org/zap"

	"github.com/siderolabs/go-ntfsreloc/block"
	"github.com/siderolabs/go-ntfsreloc/bootsector"
)

// Common errors.
var (
	ErrGeometryUnavailable   = errors.New("failed to read partition geometry")
	ErrNoAuthoritativeSector = errors.New("no start sector available: geometry is missing and no start sector was specified")
	ErrWholeDisk             = errors.New("device looks like an entire disk (start=0) instead of a single partition")
	ErrMagicMismatch         = errors.New("device does not appear to be a real NTFS volume")
	ErrSectorOutOfRange      = errors.New("start sector does not fit into the 32-bit boot sector field")
)

// Config is the input of a reconciliation run.
type Config struct {
	// StartSector overrides the start sector reported by the device, nil if not specified.
	StartSector *uint32

	// DevicePath is the partition (or image) holding the NTFS filesystem.
	DevicePath string

	// Write the authoritative start sector into the boot sector if it differs.
	Write bool
	// Force the write even if the device looks like a whole disk or isn't NTFS.
	Force bool
	// BlockOptional allows devices which don't report partition geometry (e.g. regular files).
	BlockOptional bool
}

// Device is the storage holding the boot sector.
type Device interface {
	io.ReaderAt
	bootsector.SyncWriterAt
	io.Closer

	GetPartitionStart() (uint64, error)
}

// Opener opens the device, for writing if write is set.
type Opener func(path string, write bool) (Device, error)

// OpenBlockDevice is the default Opener.
func OpenBlockDevice(path string, write bool) (Device, error) {
	var opts []block.Option

	if write {
		opts = append(opts, block.OpenForWrite())
	}

	dev, err := block.NewFromPath(path, opts...)
	if err != nil {
		return nil, err
	}

	return dev, nil
}

// Run the reconciliation described by cfg.
//
// A nil error means the run completed; Report.Outcome tells what was found (or done),
// and Report.Inconclusive is set when the result can't be trusted.
//
//nolint:gocyclo,cyclop
func Run(cfg Config, opts ...Option) (*Report, error) {
	options := applyOptions(opts...)
	logger := options.Logger.With(zap.String("device", cfg.DevicePath))

	dev, err := options.Opener(cfg.DevicePath, cfg.Write)
	if err != nil {
		return nil, &block.IOError{Op: block.OpOpen, Path: cfg.DevicePath, Err: err}
	}

	closed := false

	defer func() {
		if !closed {
			dev.Close() //nolint:errcheck
		}
	}()

	report := &Report{
		Device: cfg.DevicePath,
	}

	if cfg.StartSector != nil {
		report.SpecifiedStart = optional.Some(*cfg.StartSector)
	}

	partitionStart, err := dev.GetPartitionStart()

	switch {
	case err != nil:
		geometryErr := fmt.Errorf("%w: %w", ErrGeometryUnavailable, err)

		if !cfg.BlockOptional {
			return nil, geometryErr
		}

		if cfg.Write && cfg.StartSector == nil {
			return nil, fmt.Errorf("%w: %w", ErrNoAuthoritativeSector, geometryErr)
		}

		logger.Warn("partition geometry unavailable", zap.Error(err))
	default:
		report.PartitionStart = optional.Some(partitionStart)

		logger.Debug("partition geometry", zap.Uint64("start", partitionStart))

		if partitionStart == 0 && !cfg.Force {
			if cfg.Write {
				return nil, ErrWholeDisk
			}

			logger.Warn("device looks like an entire disk (start=0), it won't be modified without force")
		}
	}

	report.Authoritative = authoritativeSector(report)

	if cfg.Write && report.Authoritative.ValueOrZero() > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrSectorOutOfRange, report.Authoritative.ValueOrZero())
	}

	isNTFS, err := bootsector.ReadMagic(dev)
	if err != nil {
		return nil, err
	}

	if !isNTFS {
		report.MagicMismatch = true

		switch {
		case cfg.Force:
			logger.Warn("NTFS magic not found, proceeding as forced")
		case cfg.Write:
			return nil, ErrMagicMismatch
		default:
			logger.Warn("NTFS magic not found")

			report.Inconclusive = ErrMagicMismatch
		}
	}

	report.FilesystemStart, err = bootsector.ReadStartSector(dev)
	if err != nil {
		return nil, err
	}

	logger.Debug("filesystem start sector", zap.Uint32("start", report.FilesystemStart))

	if !report.Authoritative.IsPresent() {
		report.Outcome = OutcomeUnknown

		if report.Inconclusive == nil {
			report.Inconclusive = ErrNoAuthoritativeSector
		}

		return report, nil
	}

	target := report.Authoritative.ValueOrZero()

	switch {
	case target == uint64(report.FilesystemStart):
		report.Outcome = OutcomeNoChange

		return report, nil
	case !cfg.Write:
		report.Outcome = OutcomeChangeNeeded

		return report, nil
	}

	if err = bootsector.WriteStartSector(dev, uint32(target)); err != nil {
		return nil, err
	}

	closed = true

	if err = dev.Close(); err != nil {
		return nil, &block.IOError{Op: block.OpClose, Path: cfg.DevicePath, Err: err}
	}

	logger.Info("filesystem start sector altered",
		zap.Uint32("old", report.FilesystemStart),
		zap.Uint64("new", target),
	)

	report.Outcome = OutcomeChanged

	return report, nil
}

// authoritativeSector picks the specified start sector over the one reported by the device.
func authoritativeSector(report *Report) optional.Optional[uint64] {
	if report.SpecifiedStart.IsPresent() {
		return optional.Some(uint64(report.SpecifiedStart.ValueOrZero()))
	}

	return report.PartitionStart
}
