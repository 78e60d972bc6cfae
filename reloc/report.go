// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package reloc

import "github.com/siderolabs/gen/optional"

// Outcome of a reconciliation run.
type Outcome int

// Outcomes.
const (
	// OutcomeUnknown means there was nothing to compare the filesystem start sector to.
	OutcomeUnknown Outcome = iota
	// OutcomeNoChange means the filesystem already records the right start sector.
	OutcomeNoChange
	// OutcomeChangeNeeded means the start sectors differ, but writing was not requested.
	OutcomeChangeNeeded
	// OutcomeChanged means the boot sector was rewritten.
	OutcomeChanged
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "unknown"
	case OutcomeNoChange:
		return "no change"
	case OutcomeChangeNeeded:
		return "change needed"
	case OutcomeChanged:
		return "changed"
	default:
		return "invalid"
	}
}

// Report describes a completed reconciliation run.
type Report struct { //nolint:govet
	// Device path as passed in the Config.
	Device string

	// PartitionStart as reported by the device geometry.
	PartitionStart optional.Optional[uint64]
	// SpecifiedStart is the start sector from the Config.
	SpecifiedStart optional.Optional[uint32]
	// Authoritative is the start sector the filesystem should record.
	Authoritative optional.Optional[uint64]

	// FilesystemStart is the start sector recorded in the boot sector before the run.
	FilesystemStart uint32

	// MagicMismatch is set if the NTFS magic was not found.
	MagicMismatch bool

	Outcome Outcome

	// Inconclusive is set when the run completed but the outcome can't be relied on:
	// ErrMagicMismatch or ErrNoAuthoritativeSector.
	Inconclusive error
}
