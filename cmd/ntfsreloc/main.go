// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package main implements ntfsreloc, a tool to fix the start sector of a moved NTFS filesystem.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/siderolabs/go-pointer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/go-ntfsreloc/reloc"
)

// Exit codes.
const (
	exitOK     = 0
	exitChange = 1
	exitError  = 2
)

const longHelp = `Adjust the filesystem start sector of an NTFS partition.

ntfsreloc displays the start sector recorded in the NTFS boot sector and
compares it with the start of the partition. No change is made without
the --write option.

Exit status is 2 if an error occurred, 1 if a change was made or is
needed, or 0 if the filesystem already has the correct value.`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer, opts ...reloc.Option) int {
	var (
		code    = exitOK
		started bool
	)

	cmd := newRootCmd(stdout, stderr, func(c int) {
		started = true
		code = c
	}, opts...)

	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)

		if !started {
			fmt.Fprint(stderr, cmd.UsageString())
		}

		return exitError
	}

	return code
}

type rootFlags struct {
	start         uint32
	write         bool
	force         bool
	blockOptional bool
	debug         bool
}

// sectorValue is a start sector flag, always read in base 10.
type sectorValue struct {
	v *uint32
}

var _ pflag.Value = sectorValue{}

func (s sectorValue) String() string {
	if s.v == nil {
		return "0"
	}

	return strconv.FormatUint(uint64(*s.v), 10)
}

func (s sectorValue) Set(val string) error {
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return err
	}

	*s.v = uint32(n)

	return nil
}

func (sectorValue) Type() string {
	return "sector"
}

// newRootCmd builds the command, setExit is called once the run starts and again with its exit code.
func newRootCmd(stdout, stderr io.Writer, setExit func(int), opts ...reloc.Option) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "ntfsreloc [flags] device",
		Short:         "Adjust filesystem start sector of an NTFS partition",
		Long:          longHelp,
		Args:          deviceArg,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setExit(exitError)

			cfg := reloc.Config{
				DevicePath:    args[0],
				Write:         flags.write,
				Force:         flags.force,
				BlockOptional: flags.blockOptional,
			}

			if cmd.Flags().Changed("start") {
				cfg.StartSector = pointer.To(flags.start)
			}

			logger := newLogger(stderr, flags.debug)
			defer logger.Sync() //nolint:errcheck

			report, err := reloc.Run(cfg, append([]reloc.Option{reloc.WithLogger(logger)}, opts...)...)
			if err != nil {
				return err
			}

			printReport(stdout, report)

			if report.Inconclusive != nil {
				return report.Inconclusive
			}

			setExit(exitCode(report.Outcome))

			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().VarP(sectorValue{&flags.start}, "start", "s",
		"start sector to write; determined from the partition geometry if omitted, required with --allow-non-partition --write")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write the new start sector to the partition")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false,
		"proceed even if the device does not look like a valid NTFS partition")
	cmd.Flags().BoolVarP(&flags.blockOptional, "allow-non-partition", "b", false,
		"proceed even if the device is not a partition (e.g. a regular file)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	return cmd
}

func deviceArg(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return errors.New("no device name specified")
	case 1:
		return nil
	default:
		return errors.New("only one device may be specified")
	}
}

func newLogger(w io.Writer, debug bool) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level))
}

func printReport(w io.Writer, report *reloc.Report) {
	fmt.Fprintln(w, "NTFS Start Sector:")

	if report.PartitionStart.IsPresent() {
		fmt.Fprintf(w, "partition=%d\n", report.PartitionStart.ValueOrZero())
	}

	if report.SpecifiedStart.IsPresent() {
		fmt.Fprintf(w, "specified=%d\n", report.SpecifiedStart.ValueOrZero())
	}

	fmt.Fprintf(w, "filesystem=%d\n", report.FilesystemStart)

	switch report.Outcome {
	case reloc.OutcomeNoChange:
		fmt.Fprintln(w, "No changes are necessary.")
	case reloc.OutcomeChangeNeeded:
		fmt.Fprintf(w, "Filesystem start sector should be %d, use --write to change it.\n", report.Authoritative.ValueOrZero())
	case reloc.OutcomeChanged:
		fmt.Fprintf(w, "Filesystem start sector altered to %d\n", report.Authoritative.ValueOrZero())
	case reloc.OutcomeUnknown:
	}
}

func exitCode(outcome reloc.Outcome) int {
	switch outcome {
	case reloc.OutcomeNoChange:
		return exitOK
	case reloc.OutcomeChangeNeeded, reloc.OutcomeChanged:
		return exitChange
	}

	return exitError
}
