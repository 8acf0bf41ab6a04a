// Package platform maps the host operating system and CPU architecture to the
// labels used by the Node.js distribution site.
package platform

import (
	"errors"
	"fmt"
	goruntime "runtime"

	"github.com/dtvem/noderuntime/src/internal/constants"
)

// Platform holds the Node.js labels for an operating system and architecture.
type Platform struct {
	OS   string // "darwin", "linux" or "win"
	Arch string // "x64" or "arm64"
}

// UnsupportedError is returned when the host cannot be mapped to a Node.js build.
type UnsupportedError struct {
	Kind  string // "operating system" or "architecture"
	Value string // the raw GOOS or GOARCH value
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", e.Kind, e.Value)
}

// IsUnsupported checks if an error indicates an unsupported platform.
func IsUnsupported(err error) bool {
	var target *UnsupportedError
	return errors.As(err, &target)
}

var osLabels = map[string]string{
	constants.OSDarwin:  constants.NodeOSDarwin,
	constants.OSLinux:   constants.NodeOSLinux,
	constants.OSWindows: constants.NodeOSWindows,
}

var archLabels = map[string]string{
	constants.ArchAMD64: constants.NodeArchX64,
	constants.ArchARM64: constants.NodeArchARM64,
}

// Resolve maps a GOOS/GOARCH pair to Node.js labels.
func Resolve(goos, goarch string) (Platform, error) {
	osLabel, ok := osLabels[goos]
	if !ok {
		return Platform{}, &UnsupportedError{Kind: "operating system", Value: goos}
	}

	archLabel, ok := archLabels[goarch]
	if !ok {
		return Platform{}, &UnsupportedError{Kind: "architecture", Value: goarch}
	}

	return Platform{OS: osLabel, Arch: archLabel}, nil
}

// Current resolves the platform the process is running on.
func Current() (Platform, error) {
	return Resolve(goruntime.GOOS, goruntime.GOARCH)
}

// FolderName returns the directory name of an extracted distribution,
// e.g. node-v18.15.0-linux-x64.
func (p Platform) FolderName(version string) string {
	return fmt.Sprintf("node-%s-%s-%s", version, p.OS, p.Arch)
}

// ArchiveName returns the file name of a distribution archive,
// e.g. node-v18.15.0-linux-x64.tar.gz.
func (p Platform) ArchiveName(version, ext string) string {
	return p.FolderName(version) + "." + ext
}

// String returns the platform as "<os>-<arch>".
func (p Platform) String() string {
	return p.OS + "-" + p.Arch
}
