// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux headers constants.
//
// Hardcoded here to avoid CGo dependency.
const (
	HDIO_GETGEO = 0x0301 //nolint:revive,stylecheck
)

// hdGeometry is struct hd_geometry from linux/hdreg.h.
type hdGeometry struct {
	heads     uint8
	sectors   uint8
	cylinders uint16
	start     uint // unsigned long
}

// GetPartitionStart returns the sector (in 512-byte units) at which the device starts on its disk.
//
// Whole disks report 0. Devices which are not block devices return ErrNoGeometry.
func (d *Device) GetPartitionStart() (uint64, error) {
	var geo hdGeometry

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), HDIO_GETGEO, uintptr(unsafe.Pointer(&geo)))

	runtime.KeepAlive(d)

	if errno == 0 {
		return uint64(geo.start), nil
	}

	isBlock, err := d.IsBlockDevice()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoGeometry, err)
	}

	if !isBlock {
		return 0, fmt.Errorf("%w: %w", ErrNoGeometry, errno)
	}

	// some drivers (loop, device-mapper) don't implement getgeo, sysfs still knows the offset
	start, err := d.sysFsPartitionStart()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoGeometry, err)
	}

	return start, nil
}

func (d *Device) sysFsPartitionStart() (uint64, error) {
	sysFsPath, err := d.sysFsPath()
	if err != nil {
		return 0, err
	}

	contents := readSysFsFile(filepath.Join(sysFsPath, "start"))
	if contents != "" {
		return strconv.ParseUint(contents, 10, 64)
	}

	isWhole, err := d.IsWholeDisk()
	if err != nil {
		return 0, err
	}

	if isWhole {
		return 0, nil
	}

	return 0, fmt.Errorf("no start sector in %s", sysFsPath)
}

func readSysFsFile(path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(contents))
}
