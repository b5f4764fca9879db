// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package emails

import (
	"regexp"
	"strings"
)

var (
	// ".com" followed by whitespace is where users forget the comma
	comSpace = regexp.MustCompile(`\.com\s+`)

	addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-z]{2,}`)
	exactAddress   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-z]{2,}$`)
)

// FormatInput rewrites ".com<whitespace>" into ".com, " so addresses typed
// with spaces become comma separated.
func FormatInput(text string) string {
	return comSpace.ReplaceAllString(text, ".com, ")
}

// Normalize extracts every email address from free text, left to right.
// Duplicates are kept. Input without addresses yields an empty slice.
func Normalize(text string) []string {
	found := addressPattern.FindAllString(FormatInput(text), -1)
	if found == nil {
		return []string{}
	}
	return found
}

// Valid reports whether addr is exactly one email address.
func Valid(addr string) bool {
	return exactAddress.MatchString(addr)
}

// Canonical is the comparison form of an address: trimmed and lowercased.
func Canonical(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Contains reports whether addr is in list, compared by Canonical.
func Contains(list []string, addr string) bool {
	return Index(list, addr) >= 0
}

// Index returns the position of addr in list, compared by Canonical, or -1.
func Index(list []string, addr string) int {
	want := Canonical(addr)
	for i, a := range list {
		if Canonical(a) == want {
			return i
		}
	}
	return -1
}

// Unique drops repeated addresses (compared by Canonical), keeping the
// first occurrence and the original order.
func Unique(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		key := Canonical(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
