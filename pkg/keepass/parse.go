package keepass

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FieldSet maps field names ("Title", "UserName", "Password", "URL", ...)
// to values, built from one `show` invocation. It is never cached: each
// field access re-runs the tool so decrypted values do not linger in memory.
type FieldSet map[string]string

// Get returns the value for name, or "" when the field is absent. An empty
// string is deliberately ambiguous between "not set" and "no matching line
// in the tool output"; callers treat both as not set.
func (f FieldSet) Get(name string) string {
	return f[name]
}

// Has reports whether name was present in the parsed output, even if its
// value is empty.
func (f FieldSet) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// ParseEntryList parses `ls` output: one path per line, groups suffixed
// with "/". The trailing newline the tool emits produces one empty element,
// which is dropped. Order is preserved exactly as emitted; nothing is
// sorted or deduplicated.
func ParseEntryList(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// ParseFieldSet parses `show` output: one "Name: value" pair per line.
// Only the first colon delimits, so values containing colons (URLs, ports)
// survive intact. A single space after the colon is trimmed. Lines without
// a colon are tolerated and skipped. When a field name repeats, the first
// occurrence wins.
//
// The text is NFC-normalized first so field names coming from the tool
// compare equal regardless of how the terminal encoded them.
func ParseFieldSet(text string) FieldSet {
	fields := make(FieldSet)
	for _, line := range strings.Split(norm.NFC.String(text), "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok || name == "" {
			continue
		}
		if _, dup := fields[name]; dup {
			continue
		}
		fields[name] = strings.TrimPrefix(value, " ")
	}
	return fields
}
