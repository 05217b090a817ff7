package keepass

import (
	"context"
	"strings"
)

// Operation names reported to the access observer.
const (
	OpGroupList  = "group.list"
	OpGroupEnter = "group.enter"
	OpEntryShow  = "entry.show"
	OpEntryField = "entry.field"
)

// maskLen is the fixed width of the password mask in entry details. Fixed
// so the display leaks nothing about the real value's length.
const maskLen = 13

// protectedFields are only revealed by the tool when asked explicitly.
var protectedFields = map[string]bool{
	"Password": true,
}

// Browser is the query façade over one open vault: it resolves names
// against the navigation state, runs vault tool queries through the
// session, and parses the results.
type Browser struct {
	// Recursive lists all descendants instead of one level. Recursive
	// listings come back with paths relative to the vault root, not the
	// current group; they are passed through un-rerooted and the display
	// layer decides how to present them.
	Recursive bool

	// OnAccess, when set, is told about every vault operation with the full
	// path involved. Values are never reported. Used for audit and history
	// recording.
	OnAccess func(op, path string)

	session *Session
	nav     Navigator
}

// NewBrowser creates a browser over session, positioned at the vault root.
func NewBrowser(session *Session) *Browser {
	return &Browser{session: session}
}

// Session exposes the underlying password session.
func (b *Browser) Session() *Session { return b.session }

// Path returns the current group path.
func (b *Browser) Path() string { return b.nav.Path() }

// ListCurrentGroup lists the entries under the current group in the order
// the vault tool emits them.
func (b *Browser) ListCurrentGroup(ctx context.Context) ([]Entry, error) {
	var flags []string
	if b.Recursive {
		flags = []string{"-R", "-f"}
	}

	path := b.nav.Path()
	out, err := b.session.Execute(ctx, "ls", flags, path)
	if err != nil {
		return nil, err
	}
	b.access(OpGroupList, path)

	lines := ParseEntryList(out)
	entries := make([]Entry, len(lines))
	for i, line := range lines {
		entries[i] = Entry(line)
	}
	return entries, nil
}

// GetField returns the named field of an entry, resolved against the
// current group. An absent field yields "" rather than an error; the
// text-based tool output cannot distinguish "not set" from "no such line".
func (b *Browser) GetField(ctx context.Context, entryName, fieldName string) (string, error) {
	path := b.nav.Resolve(entryName)

	var flags []string
	if protectedFields[fieldName] {
		flags = []string{"-s"}
	}

	out, err := b.session.Execute(ctx, "show", flags, path)
	if err != nil {
		return "", err
	}
	b.access(OpEntryField, path)

	return ParseFieldSet(out).Get(fieldName), nil
}

// GetEntryDetails returns the entry's full field text for display, with the
// password value replaced by a fixed-length mask. This is a display-safety
// transform only; GetField still returns the real value.
func (b *Browser) GetEntryDetails(ctx context.Context, entryName string) (string, error) {
	path := b.nav.Resolve(entryName)

	out, err := b.session.Execute(ctx, "show", []string{"-s"}, path)
	if err != nil {
		return "", err
	}
	b.access(OpEntryShow, path)

	return maskPasswordLines(out), nil
}

// EnterGroup descends into the named group.
func (b *Browser) EnterGroup(entryName string) {
	b.nav.Descend(entryName)
	b.access(OpGroupEnter, b.nav.Path())
}

// GoBack ascends one level. At the vault root it is a no-op.
func (b *Browser) GoBack() {
	b.nav.Ascend()
}

func (b *Browser) access(op, path string) {
	if b.OnAccess != nil {
		b.OnAccess(op, path)
	}
}

// maskPasswordLines rewrites every "Password: ..." line to carry the fixed
// mask instead of the cleartext value.
func maskPasswordLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		name, _, ok := strings.Cut(line, ":")
		if ok && protectedFields[name] {
			lines[i] = name + ": " + strings.Repeat("*", maskLen)
		}
	}
	return strings.Join(lines, "\n")
}
