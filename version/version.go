package version

import (
	"fmt"
	"sync"
)

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild may be set at link time with
// -ldflags "-X github.com/dynastynet/finalityd/version.appBuild=foo".
// Build tags holding anything but ASCII letters, digits and '-' are ignored.
var appBuild string

var (
	version     string
	versionOnce sync.Once
)

// Version returns the semantic version of the application, with the build
// tag appended when there is a valid one.
func Version() string {
	versionOnce.Do(func() {
		version = fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
		if isValidBuild(appBuild) {
			version += "-" + appBuild
		}
	})
	return version
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	for _, r := range build {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
		default:
			return false
		}
	}
	return true
}
