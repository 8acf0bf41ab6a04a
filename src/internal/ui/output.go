// Package ui provides colored console output utilities for user interfaces
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
)

var (
	// Color functions for different message types
	successColor  = color.New(color.FgGreen, color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow, color.Bold)
	infoColor     = color.New(color.FgCyan)
	debugColor    = color.New(color.FgHiBlack)

	// Symbols
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "⚠"
	infoSymbol    = "→"
	debugSymbol   = "·"

	verboseMode atomic.Bool
)

// VerboseEnvVar enables debug output when set to "1" or "true".
const VerboseEnvVar = "NODERUNTIME_VERBOSE"

// SetVerbose toggles debug output
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// IsVerbose reports whether debug output is enabled
func IsVerbose() bool {
	return verboseMode.Load()
}

// CheckVerboseEnv enables verbose mode if NODERUNTIME_VERBOSE is set to a truthy value
func CheckVerboseEnv() {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(VerboseEnvVar)))
	if value == "1" || value == "true" {
		SetVerbose(true)
	}
}

// Debug prints a dimmed diagnostic message to stderr when verbose mode is on
func Debug(format string, args ...interface{}) {
	if !IsVerbose() {
		return
	}
	message := fmt.Sprintf(format, args...)
	_, _ = debugColor.Fprintf(os.Stderr, "%s %s\n", debugSymbol, message)
}

// Success prints a success message in green with a checkmark
func Success(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = successColor.Printf("%s %s\n", successSymbol, message)
}

// Error prints an error message in red with an X to stderr
func Error(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = errorColor.Fprintf(os.Stderr, "%s %s\n", errorSymbol, message)
}

// Warning prints a warning message in yellow with a warning symbol
func Warning(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = warningColor.Printf("%s %s\n", warningSymbol, message)
}

// Info prints an info message in cyan with an arrow
func Info(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	_, _ = infoColor.Printf("%s %s\n", infoSymbol, message)
}

// Highlight prints text in a highlighted color (for emphasis)
func Highlight(text string) string {
	return color.New(color.FgCyan, color.Bold).Sprint(text)
}

// HighlightVersion prints a version string in a highlighted color
func HighlightVersion(version string) string {
	return color.New(color.FgMagenta, color.Bold).Sprint(version)
}
