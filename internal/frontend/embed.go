package frontend

import (
	"embed"
	"io/fs"
)

// The built admin shell is compiled into the binary so the service deploys
// as a single artifact.
//
//go:embed dist
var distFS embed.FS

// GetDistFS returns the embedded admin shell filesystem rooted at dist/
func GetDistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}
