// Package version contains the version number.
package version

// Name is the software name.
const Name = "gojaprobe"

// Version is the software version.
const Version = "0.1.0-dev"
