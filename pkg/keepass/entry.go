package keepass

import (
	"path/filepath"
	"strings"
)

// Entry is a single row of a vault listing, identified by its full path
// string. Whether it is a group or a leaf is a property of the path itself,
// not stored state.
type Entry string

// IsGroup reports whether path names a group. The vault tool marks groups
// with a trailing slash in its listing output.
func IsGroup(path string) bool {
	return strings.HasSuffix(path, "/")
}

// IsGroup reports whether the entry is a group.
func (e Entry) IsGroup() bool { return IsGroup(string(e)) }

// Name returns the last path segment, keeping the trailing slash on groups.
func (e Entry) Name() string {
	s := string(e)
	if s == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// vaultExtensions are the database file extensions this tool opens.
var vaultExtensions = map[string]bool{
	".kdbx": true,
	".kdb":  true,
}

// IsVaultFile reports whether path looks like a KeePass database file.
func IsVaultFile(path string) bool {
	return vaultExtensions[strings.ToLower(filepath.Ext(path))]
}
