package version

import "runtime/debug"

// version is overridden at build time:
//
//	go build -ldflags "-X github.com/vinodismyname/xlquery/pkg/version.version=v1.2.0"
var version = "dev"

// Version returns the ldflags version, else the module version recorded in
// the build info, else "dev" with the VCS revision when known.
func Version() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return version + "+" + s.Value[:7]
		}
	}
	return version
}
