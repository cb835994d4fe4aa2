// Package version provides version information.
package version

// Version is set at build time via -ldflags "-X github.com/VoxDroid/amcsetup/internal/version.Version=<value>"
var Version = "dev"
