package keepass

import "strings"

// Navigator tracks the current group path while the user walks the vault
// tree. The path is a "/"-joined sequence of group names, each segment
// followed by "/"; the root is the empty string. It is owned by a single
// open vault view and never shared.
type Navigator struct {
	path string
}

// Path returns the current group path ("" at the root).
func (n *Navigator) Path() string { return n.path }

// Resolve returns name interpreted relative to the current group. An empty
// name resolves to the group itself.
func (n *Navigator) Resolve(name string) string {
	return n.path + name
}

// Descend moves into segment, which should carry its trailing slash as the
// vault tool lists groups (e.g. "Web/").
func (n *Navigator) Descend(segment string) {
	n.path = n.Resolve(segment)
}

// Ascend removes the last segment from the current path: a trailing run of
// non-slash characters plus its optional trailing slash. At the root this
// is a no-op.
func (n *Navigator) Ascend() {
	p := strings.TrimSuffix(n.path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		n.path = p[:i+1]
	} else {
		n.path = ""
	}
}
