// Package buildinfo exposes version metadata injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/cryptonaut/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

const appName = "cryptonaut"

var (
	Version = "N/A"
	Commit  = "N/A"
	Date    = "N/A"
)

// UserAgent is sent with every request to the remote service.
func UserAgent() string {
	return appName + "|" + Version
}

// String renders the build metadata on three lines.
func String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", Version, Date, Commit)
}
