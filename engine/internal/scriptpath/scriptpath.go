// Package scriptpath resolves bundled-script references for engines.
package scriptpath

import "path/filepath"

// Resolve turns a script reference into the path the interpreter-side
// wrapper should open. Relative references are joined onto dir; a
// reference without an extension gets suffix appended. Absolute paths
// with an extension pass through unchanged. Empty input stays empty.
func Resolve(ref, dir, suffix string) string {
	if ref == "" {
		return ""
	}
	if filepath.Ext(ref) == "" {
		ref += suffix
	}
	if !filepath.IsAbs(ref) && dir != "" {
		ref = filepath.Join(dir, ref)
	}
	return ref
}
