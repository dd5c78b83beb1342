// Package buildinfo exposes the version information stamped into the esmap
// binary at build time:
//
//	go build -ldflags "-X github.com/matzehuels/esmap/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/esmap/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/esmap/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/esmap
package buildinfo

import "fmt"

var (
	Version = "dev"     // semantic version, e.g. "v0.3.0"
	Commit  = "none"    // git commit SHA
	Date    = "unknown" // build timestamp
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies esmap in HTTP responses, e.g. "esmap/v0.3.0".
func UserAgent() string {
	return "esmap/" + Version
}
