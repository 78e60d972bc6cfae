// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-ntfsreloc/reloc"
)

func createImage(t *testing.T, fsStart uint32, oem string) string {
	t.Helper()

	buf := make([]byte, 512)

	copy(buf, "\xebR\x90"+oem)
	binary.LittleEndian.PutUint32(buf[28:], fsStart)

	path := filepath.Join(t.TempDir(), "ntfs.img")

	require.NoError(t, os.WriteFile(path, buf, 0o600))

	return path
}

func readFsStart(t *testing.T, path string) uint32 {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	return binary.LittleEndian.Uint32(contents[28:])
}

func TestRun(t *testing.T) {
	for _, test := range []struct {
		name string

		fsStart uint32
		oem     string
		args    []string

		expectedCode    int
		expectedStdout  string
		expectedStderr  string
		expectedFsStart uint32
	}{
		{
			name:            "change needed",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-b", "-s", "2048"},
			expectedCode:    exitChange,
			expectedStdout:  "NTFS Start Sector:\nspecified=2048\nfilesystem=63\nFilesystem start sector should be 2048, use --write to change it.\n",
			expectedFsStart: 63,
		},
		{
			name:            "write",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"--allow-non-partition", "--start=2048", "--write"},
			expectedCode:    exitChange,
			expectedStdout:  "NTFS Start Sector:\nspecified=2048\nfilesystem=63\nFilesystem start sector altered to 2048\n",
			expectedFsStart: 2048,
		},
		{
			name:            "no change",
			fsStart:         2048,
			oem:             "NTFS    ",
			args:            []string{"-b", "-s2048", "-w"},
			expectedCode:    exitOK,
			expectedStdout:  "NTFS Start Sector:\nspecified=2048\nfilesystem=2048\nNo changes are necessary.\n",
			expectedFsStart: 2048,
		},
		{
			name:            "not a partition",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-w", "-s", "2048"},
			expectedCode:    exitError,
			expectedStderr:  "error: failed to read partition geometry",
			expectedFsStart: 63,
		},
		{
			name:            "no start sector",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-b"},
			expectedCode:    exitError,
			expectedStdout:  "NTFS Start Sector:\nfilesystem=63\n",
			expectedStderr:  "error: no start sector available",
			expectedFsStart: 63,
		},
		{
			name:            "not ntfs",
			fsStart:         63,
			oem:             "MSDOS5.0",
			args:            []string{"-b", "-s", "2048"},
			expectedCode:    exitError,
			expectedStdout:  "NTFS Start Sector:\nspecified=2048\nfilesystem=63\nFilesystem start sector should be 2048, use --write to change it.\n",
			expectedStderr:  "error: device does not appear to be a real NTFS volume",
			expectedFsStart: 63,
		},
		{
			name:            "not ntfs write",
			fsStart:         63,
			oem:             "MSDOS5.0",
			args:            []string{"-b", "-s", "2048", "-w"},
			expectedCode:    exitError,
			expectedStderr:  "error: device does not appear to be a real NTFS volume",
			expectedFsStart: 63,
		},
		{
			name:            "not ntfs forced",
			fsStart:         63,
			oem:             "MSDOS5.0",
			args:            []string{"-b", "-s", "2048", "-w", "-f"},
			expectedCode:    exitChange,
			expectedStdout:  "NTFS Start Sector:\nspecified=2048\nfilesystem=63\nFilesystem start sector altered to 2048\n",
			expectedFsStart: 2048,
		},
		{
			name:            "decimal start with leading zeros",
			fsStart:         2048,
			oem:             "NTFS    ",
			args:            []string{"-b", "-w", "-s", "0063"},
			expectedCode:    exitChange,
			expectedStdout:  "NTFS Start Sector:\nspecified=63\nfilesystem=2048\nFilesystem start sector altered to 63\n",
			expectedFsStart: 63,
		},
		{
			name:            "decimal start with leading zero",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-b", "-s", "02048"},
			expectedCode:    exitChange,
			expectedStdout:  "NTFS Start Sector:\nspecified=2048\nfilesystem=63\nFilesystem start sector should be 2048, use --write to change it.\n",
			expectedFsStart: 63,
		},
		{
			name:            "hex start rejected",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-b", "-w", "-s", "0x800"},
			expectedCode:    exitError,
			expectedStderr:  "Usage:",
			expectedFsStart: 63,
		},
		{
			name:            "start overflow rejected",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-b", "-w", "-s", "4294967296"},
			expectedCode:    exitError,
			expectedStderr:  "invalid argument",
			expectedFsStart: 63,
		},
		{
			name:            "invalid start",
			fsStart:         63,
			oem:             "NTFS    ",
			args:            []string{"-b", "-s", "abc"},
			expectedCode:    exitError,
			expectedStderr:  "Usage:",
			expectedFsStart: 63,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			path := createImage(t, test.fsStart, test.oem)

			var stdout, stderr bytes.Buffer

			code := run(append(test.args, path), &stdout, &stderr)

			assert.Equal(t, test.expectedCode, code, "stderr: %s", stderr.String())
			assert.Equal(t, test.expectedStdout, stdout.String())

			if test.expectedStderr != "" {
				assert.Contains(t, stderr.String(), test.expectedStderr)
			}

			assert.Equal(t, test.expectedFsStart, readFsStart(t, path))
		})
	}
}

type partitionDevice struct {
	*os.File

	start uint64
}

func (d partitionDevice) GetPartitionStart() (uint64, error) {
	return d.start, nil
}

// partitionOpener opens the image as if it was a partition starting at start.
func partitionOpener(start uint64) reloc.Option {
	return reloc.WithOpener(func(path string, write bool) (reloc.Device, error) {
		flag := os.O_RDONLY

		if write {
			flag = os.O_RDWR
		}

		f, err := os.OpenFile(path, flag, 0)
		if err != nil {
			return nil, err
		}

		return partitionDevice{File: f, start: start}, nil
	})
}

func TestRunPartition(t *testing.T) {
	path := createImage(t, 63, "NTFS    ")

	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitChange, run([]string{path}, &stdout, &stderr, partitionOpener(2048)))
	assert.Equal(t, "NTFS Start Sector:\npartition=2048\nfilesystem=63\nFilesystem start sector should be 2048, use --write to change it.\n", stdout.String())
	assert.EqualValues(t, 63, readFsStart(t, path))

	stdout.Reset()

	assert.Equal(t, exitChange, run([]string{"-w", path}, &stdout, &stderr, partitionOpener(2048)))
	assert.Equal(t, "NTFS Start Sector:\npartition=2048\nfilesystem=63\nFilesystem start sector altered to 2048\n", stdout.String())
	assert.EqualValues(t, 2048, readFsStart(t, path))

	stdout.Reset()

	assert.Equal(t, exitOK, run([]string{"-w", path}, &stdout, &stderr, partitionOpener(2048)))
	assert.Equal(t, "NTFS Start Sector:\npartition=2048\nfilesystem=2048\nNo changes are necessary.\n", stdout.String())

	stdout.Reset()

	assert.Equal(t, exitChange, run([]string{"-w", "-s", "4096", path}, &stdout, &stderr, partitionOpener(2048)))
	assert.Equal(t, "NTFS Start Sector:\npartition=2048\nspecified=4096\nfilesystem=2048\nFilesystem start sector altered to 4096\n", stdout.String())
	assert.EqualValues(t, 4096, readFsStart(t, path))
}

func TestRunWholeDisk(t *testing.T) {
	path := createImage(t, 63, "NTFS    ")

	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitError, run([]string{"-w", path}, &stdout, &stderr, partitionOpener(0)))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "error: device looks like an entire disk")
	assert.NotContains(t, stderr.String(), "Usage:")
	assert.EqualValues(t, 63, readFsStart(t, path))

	stdout.Reset()
	stderr.Reset()

	assert.Equal(t, exitChange, run([]string{path}, &stdout, &stderr, partitionOpener(0)))
	assert.Equal(t, "NTFS Start Sector:\npartition=0\nfilesystem=63\nFilesystem start sector should be 0, use --write to change it.\n", stdout.String())
	assert.Contains(t, stderr.String(), "entire disk")

	stdout.Reset()

	assert.Equal(t, exitChange, run([]string{"-w", "-f", path}, &stdout, &stderr, partitionOpener(0)))
	assert.EqualValues(t, 0, readFsStart(t, path))
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitError, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "error: no device name specified")
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()

	assert.Equal(t, exitError, run([]string{"/dev/sda1", "/dev/sda2"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "error: only one device may be specified")

	stderr.Reset()

	assert.Equal(t, exitOK, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "--allow-non-partition")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(reloc.OutcomeNoChange))
	assert.Equal(t, 1, exitCode(reloc.OutcomeChangeNeeded))
	assert.Equal(t, 1, exitCode(reloc.OutcomeChanged))
	assert.Equal(t, 2, exitCode(reloc.OutcomeUnknown))
}
