package common

import (
	"path"
	"strings"
)

// PackageName returns the name entities of pkgPath are referred to by in
// schema files and table paths: the last path element, skipping a major
// version element ("example.com/shop/v2" is "shop") and dropping a ".vN"
// suffix ("gopkg.in/shop.v3" is "shop"). Returns "" for an empty path.
func PackageName(pkgPath string) string {
	pkgPath = strings.TrimSuffix(pkgPath, "/")
	if pkgPath == "" {
		return ""
	}

	name := path.Base(pkgPath)
	if isMajorVersion(name) {
		if dir := path.Dir(pkgPath); dir != "." && dir != "/" {
			name = path.Base(dir)
		}
	}

	if i := strings.LastIndex(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}

	return name
}

// isMajorVersion reports whether s looks like "v2", "v10".
func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}

	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
