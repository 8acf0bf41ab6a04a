package runtime

import (
	"errors"
	"fmt"
)

// ErrInvalidVersion is returned when a version string is not a full semantic version.
var ErrInvalidVersion = errors.New("invalid semantic version")

// ProvisionError is returned when the Node.js installation could not be
// created. Provisioning failures are not retried by the installer.
type ProvisionError struct {
	Op  string
	Err error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// MissingBinaryError is returned when node or the npm script is absent
// from an installation that passed provisioning.
type MissingBinaryError struct {
	Path string
}

func (e *MissingBinaryError) Error() string {
	return fmt.Sprintf("missing file: %s", e.Path)
}

// LaunchError is returned when every attempt to start an npm subcommand
// failed. Err is the error from the last attempt.
type LaunchError struct {
	Subcommand string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch npm %s subcommand: %v", e.Subcommand, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// CommandError is returned when npm ran but exited with a non-zero status.
type CommandError struct {
	Subcommand string
	ExitCode   int
	Stdout     string
	Stderr     string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to execute npm %s subcommand (exit code %d):\nstdout: %q\nstderr: %q",
		e.Subcommand, e.ExitCode, e.Stdout, e.Stderr)
}

// MetadataParseError is returned when `npm info --json` output cannot be decoded.
type MetadataParseError struct {
	Package string
	Err     error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("failed to parse npm metadata for %s: %v", e.Package, e.Err)
}

func (e *MetadataParseError) Unwrap() error {
	return e.Err
}

// NoVersionFoundError is returned when registry metadata lists no usable version.
type NoVersionFoundError struct {
	Package string
}

func (e *NoVersionFoundError) Error() string {
	return fmt.Sprintf("no version found for npm package %s", e.Package)
}

// IsCommandError reports whether err is, or wraps, a CommandError.
func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

// IsLaunchError reports whether err is, or wraps, a LaunchError.
func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}
