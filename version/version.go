// Package version carries build metadata injected with -ldflags, for example
//
//	-X github.com/pitabwire/clientkit/version.Version=v1.2.0
package version //nolint:revive // package name intentionally matches build-info convention

//nolint:gochecknoglobals // set at build time
var (
	Repository string
	Version    string
	Commit     string
	Date       string
)
