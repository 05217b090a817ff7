// Package cli provides shared utilities for kpcli commands.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FilterEntries narrows a vault listing to the paths matching pattern.
// A pattern with glob characters (*?[) is matched with filepath.Match
// against each path; a plain pattern is a substring match, which is the
// more useful behavior when scanning long recursive listings. An empty
// pattern returns the listing unchanged.
//
// Listing order is preserved; this never re-sorts what the vault tool
// emitted.
func FilterEntries(pattern string, entries []string) ([]string, error) {
	if pattern == "" {
		return entries, nil
	}

	if !strings.ContainsAny(pattern, "*?[") {
		var matches []string
		for _, e := range entries {
			if strings.Contains(e, pattern) {
				matches = append(matches, e)
			}
		}
		return matches, nil
	}

	// Validate pattern syntax once up front.
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	var matches []string
	for _, e := range entries {
		// Match against the full path and against it without the group
		// slash, so "Web*" catches both "Web/" and "Web/login".
		matched, err := filepath.Match(pattern, e)
		if err != nil {
			return nil, err
		}
		if !matched {
			matched, _ = filepath.Match(pattern, strings.TrimSuffix(e, "/"))
		}
		if matched {
			matches = append(matches, e)
		}
	}
	return matches, nil
}
