// Package nudge provides the version information for nudge.
package nudge

// Version is the current version of nudge.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
