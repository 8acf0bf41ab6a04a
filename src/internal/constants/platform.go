// Package constants defines common constants used across noderuntime
package constants

// Operating systems (Go's runtime.GOOS values)
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"
)

// CPU architectures (Go's runtime.GOARCH values)
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// Node.js distribution labels used in archive and folder names
const (
	NodeOSWindows = "win"
	NodeOSDarwin  = "darwin"
	NodeOSLinux   = "linux"
	NodeArchX64   = "x64"
	NodeArchARM64 = "arm64"
)

// ExtTarGz is the extension of the Node.js distribution archives
const ExtTarGz = "tar.gz"
